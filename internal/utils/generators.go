package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateBadgeToken returns an opaque identifier embedded in badge QR
// codes. 16 random bytes, hex encoded.
func GenerateBadgeToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// Fallback to a timestamp-based token if random generation fails
		return fmt.Sprintf("tok_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// GenerateUUID creates a random UUID v4
func GenerateUUID() string {
	uuid := make([]byte, 16)
	_, err := rand.Read(uuid)
	if err != nil {
		return fmt.Sprintf("id_%d", time.Now().UnixNano())
	}

	// Set version to 4 (random)
	uuid[6] = (uuid[6] & 0x0F) | 0x40
	// Set variant to RFC4122
	uuid[8] = (uuid[8] & 0x3F) | 0x80

	return fmt.Sprintf("%x-%x-%x-%x-%x",
		uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:])
}
