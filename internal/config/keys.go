package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// apiKeyBytes is the entropy of a generated API key.
const apiKeyBytes = 24

// KeyHasher hashes and verifies reader API keys.
type KeyHasher struct {
	BcryptCost int
	Pepper     string // optional global secret for additional security
}

// NewKeyHasher creates a hasher from environment variables.
// It reads BCRYPT_COST (default: 12) and optionally API_KEY_PEPPER.
func NewKeyHasher() (*KeyHasher, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	hasher := &KeyHasher{
		BcryptCost: cost,
		Pepper:     os.Getenv("API_KEY_PEPPER"),
	}

	if err := hasher.normalize(); err != nil {
		return nil, err
	}

	return hasher, nil
}

// normalize validates the configuration.
func (h *KeyHasher) normalize() error {
	if h.BcryptCost < bcrypt.MinCost || h.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be %d-14)", h.BcryptCost, bcrypt.MinCost)
	}
	return nil
}

// GenerateKey returns a new random API key.
func (h *KeyHasher) GenerateKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return "rk_" + hex.EncodeToString(buf), nil
}

// HashKey hashes an API key using bcrypt (with optional pepper).
func (h *KeyHasher) HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key+h.Pepper), h.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash api key: %w", err)
	}
	return string(hash), nil
}

// VerifyKey reports whether key matches the stored hash.
func (h *KeyHasher) VerifyKey(key, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(key+h.Pepper)) == nil
}
