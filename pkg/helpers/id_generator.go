package helpers

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// IDGenerator generates various types of identifiers
type IDGenerator struct{}

// NewIDGenerator creates a new ID generator
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GenerateUUID generates a UUID v4
func (g *IDGenerator) GenerateUUID() string {
	return uuid.New().String()
}

// GenerateDeviceToken generates an opaque token for anonymous guest identities.
// The token is client-persisted in a cookie, so it must be unguessable.
func (g *IDGenerator) GenerateDeviceToken() string {
	return uuid.New().String()
}

// GenerateAccessToken generates a random token for personal access tokens
func (g *IDGenerator) GenerateAccessToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to UUID
		return uuid.New().String()
	}
	return hex.EncodeToString(buf)
}
