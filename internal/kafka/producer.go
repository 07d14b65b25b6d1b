package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-checkin/internal/logger"
	"ms-checkin/internal/models"
)

// Topic names carried by the producer. Values come from config so
// deployments can rename them without a rebuild.
type Topics struct {
	CheckinRecorded     string
	RegistrationCreated string
	RegistrationReleased string
	PromoRedeemed       string
}

// Producer streams domain events. One writer is shared across topics; the
// topic is set per message.
type Producer struct {
	Writer *kafka.Writer
	Topics Topics
	Logger *logger.Logger
}

func NewProducer(brokers []string, topics Topics, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log}
}

func (p *Producer) publish(topic, key string, payload any) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if p.Logger != nil {
		p.Logger.LogKafka("PUBLISH", topic, string(msgBytes))
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

// PublishCheckinRecorded streams a confirmed check-in.
func (p *Producer) PublishCheckinRecorded(event models.CheckinEvent) error {
	return p.publish(p.Topics.CheckinRecorded, event.ParticipantID, event)
}

// PublishRegistrationCreated streams a committed seat reservation.
func (p *Producer) PublishRegistrationCreated(event models.RegistrationEvent) error {
	return p.publish(p.Topics.RegistrationCreated, event.ParticipantID, event)
}

// PublishRegistrationReleased streams a released seat reservation.
func (p *Producer) PublishRegistrationReleased(event models.RegistrationEvent) error {
	return p.publish(p.Topics.RegistrationReleased, event.ParticipantID, event)
}

// PublishPromoRedeemed streams a committed promo redemption.
func (p *Producer) PublishPromoRedeemed(_ context.Context, promoID, code, customerID string) error {
	payload := map[string]string{
		"promo_id":    promoID,
		"code":        code,
		"customer_id": customerID,
	}
	return p.publish(p.Topics.PromoRedeemed, promoID, payload)
}

// Close flushes and shuts down the underlying writer.
func (p *Producer) Close() error {
	if err := p.Writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}
