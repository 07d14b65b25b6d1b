package qr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-checkin/internal/qr"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	codec := qr.NewCodec("badge-secret")

	payload := qr.BadgePayload{
		Token:         "tok123",
		EventID:       "event-1",
		ParticipantID: "participant-1",
	}

	encrypted, err := codec.EncryptPayload(payload)
	assert.NoError(t, err)
	assert.NotContains(t, encrypted, "tok123")

	decrypted, err := codec.DecryptPayload(encrypted)
	assert.NoError(t, err)
	assert.Equal(t, payload, *decrypted)
}

func TestDecryptWrongSecret(t *testing.T) {
	codec := qr.NewCodec("badge-secret")
	encrypted, err := codec.EncryptPayload(qr.BadgePayload{Token: "tok123"})
	assert.NoError(t, err)

	other := qr.NewCodec("different-secret")
	_, err = other.DecryptPayload(encrypted)
	assert.Error(t, err)
}

func TestDecryptGarbage(t *testing.T) {
	codec := qr.NewCodec("badge-secret")

	_, err := codec.DecryptPayload("not base64!!!")
	assert.Error(t, err)

	_, err = codec.DecryptPayload("c2hvcnQ=")
	assert.Error(t, err)
}

func TestBadgeQRProducesPNG(t *testing.T) {
	codec := qr.NewCodec("badge-secret")

	png, err := codec.BadgeQR("https://events.example.com/checkin", "tok123")
	assert.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes.
	assert.Equal(t, byte(0x89), png[0])
	assert.Equal(t, []byte("PNG"), png[1:4])

	encryptedPNG, err := codec.EncryptedBadgeQR(qr.BadgePayload{Token: "tok123", EventID: "e", ParticipantID: "p"})
	assert.NoError(t, err)
	assert.NotEmpty(t, encryptedPNG)
}
