package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"time"

	"github.com/google/uuid"
)

const (
	ScopeAuthentication = "authentication"
	ScopeRefresh        = "refresh"
)

// Token is a bearer token for the API surface. Only the SHA-256 hash is
// stored; the plaintext is returned to the client once at issue time.
type Token struct {
	Hash      []byte    `gorm:"primaryKey"`
	Plaintext string    `gorm:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	User      User
	Expiry    time.Time `gorm:"not null"`
	Scope     string    `gorm:"not null"`
}

func GenerateToken(userID uuid.UUID, ttl time.Duration, scope string) (*Token, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, err
	}

	plaintext := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	hash := sha256.Sum256([]byte(plaintext))

	return &Token{
		Hash:      hash[:],
		Plaintext: plaintext,
		UserID:    userID,
		Expiry:    time.Now().Add(ttl),
		Scope:     scope,
	}, nil
}

// TokenHash maps a plaintext token back to its stored lookup key.
func TokenHash(plaintext string) []byte {
	hash := sha256.Sum256([]byte(plaintext))
	return hash[:]
}
