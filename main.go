package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-checkin/internal/access"
	access_db "ms-checkin/internal/access/db"
	"ms-checkin/internal/api"
	"ms-checkin/internal/capacity"
	capacity_db "ms-checkin/internal/capacity/db"
	"ms-checkin/internal/checkin"
	checkin_db "ms-checkin/internal/checkin/db"
	"ms-checkin/internal/config"
	"ms-checkin/internal/database/migrations"
	"ms-checkin/internal/kafka"
	"ms-checkin/internal/logger"
	"ms-checkin/internal/participants"
	participants_db "ms-checkin/internal/participants/db"
	"ms-checkin/internal/qr"
	"ms-checkin/internal/sse"
	"ms-checkin/internal/stats"
	"ms-checkin/internal/ticketing"
	ticketing_db "ms-checkin/internal/ticketing/db"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unavailable, token cache disabled: %v", err))
		return nil
	}
	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Check-in Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions(), log)
		if err := runner.MigrateUp(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
		}
	}

	redisClient := connectRedis(ctx, cfg.Redis, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := kafka.Topics{
			CheckinRecorded:      cfg.Kafka.Topics.CheckinRecorded,
			RegistrationCreated:  cfg.Kafka.Topics.RegistrationCreated,
			RegistrationReleased: cfg.Kafka.Topics.RegistrationReleased,
			PromoRedeemed:        cfg.Kafka.Topics.PromoRedeemed,
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, topics, log)
		defer producer.Close()

		requiredTopics := []string{
			topics.CheckinRecorded,
			topics.RegistrationCreated,
			topics.RegistrationReleased,
			topics.PromoRedeemed,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, domain events will not be published")
	}

	codec := qr.NewCodec(cfg.Badge.QRSecret)
	issuer := access.NewScannerTokenIssuer(cfg.Scanner.JWTSecret, cfg.Scanner.TokenTTL)
	emitter := sse.NewCheckinEventEmitter()
	statsService := stats.NewService(bunDB)

	var tokenCache access.TokenCache
	if redisClient != nil {
		tokenCache = access.NewRedisTokenCache(redisClient, cfg.Redis.TokenTTL)
	}

	accessService := access.NewService(
		&access_db.DB{Bun: bunDB},
		tokenCache,
		statsService,
		codec,
		issuer,
		log,
	)

	var capacityPublisher capacity.KafkaPublisher
	var checkinPublisher checkin.KafkaPublisher
	var promoPublisher ticketing.PromoPublisher
	if producer != nil {
		capacityPublisher = producer
		checkinPublisher = producer
		promoPublisher = producer
	}

	capacityService := capacity.NewService(&capacity_db.DB{Bun: bunDB}, capacityPublisher, log)
	checkinService := checkin.NewService(&checkin_db.DB{Bun: bunDB}, accessService, checkinPublisher, emitter, log)
	participantService := participants.NewService(&participants_db.DB{Bun: bunDB}, codec, cfg.Badge.BaseURL, log)
	ticketingService := ticketing.NewService(&ticketing_db.DB{Bun: bunDB}, capacityService, log)
	promoService := ticketing.NewPromoService(&ticketing_db.DB{Bun: bunDB}, promoPublisher, log)

	handler := api.NewHandler(
		accessService,
		checkinService,
		capacityService,
		participantService,
		ticketingService,
		promoService,
		statsService,
		emitter,
		issuer,
		log,
	)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Check-in Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Check-in Service shutdown complete")
	}
}
