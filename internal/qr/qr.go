package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"
)

// BadgePayload is what a badge QR carries once decrypted.
type BadgePayload struct {
	Token         string `json:"token"`
	EventID       string `json:"event_id"`
	ParticipantID string `json:"participant_id"`
}

// Codec encrypts badge payloads and renders them as QR codes.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Codec{secret: hashed[:]}
}

// BadgeQR renders a plain URL-style badge (baseURL?token=...) as a QR PNG.
func (c *Codec) BadgeQR(baseURL, token string) ([]byte, error) {
	return qrcode.Encode(fmt.Sprintf("%s?token=%s", baseURL, token), qrcode.Medium, 256)
}

// EncryptedBadgeQR renders the full encrypted payload as a QR PNG, for
// badges that must not leak participant identifiers in cleartext.
func (c *Codec) EncryptedBadgeQR(payload BadgePayload) ([]byte, error) {
	encrypted, err := c.EncryptPayload(payload)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func (c *Codec) EncryptPayload(payload BadgePayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(c.secret)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

func (c *Codec) DecryptPayload(encoded string) (*BadgePayload, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(raw) < aes.BlockSize {
		return nil, errors.New("ciphertext too short")
	}

	block, err := aes.NewCipher(c.secret)
	if err != nil {
		return nil, err
	}

	iv := raw[:aes.BlockSize]
	data := make([]byte, len(raw)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, raw[aes.BlockSize:])

	var payload BadgePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.Token == "" {
		return nil, errors.New("payload missing token")
	}
	return &payload, nil
}
