package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Source kinds for ingested content.
const (
	SourceText = "text"
	SourceHTML = "html"
)

// Metadata describes one ingested source.
type Metadata struct {
	Timestamp string `json:"timestamp"` // RFC3339 format
	Hash      string `json:"hash"`      // SHA256 hex digest of the original content
	Source    string `json:"source"`
	WordCount int    `json:"word_count"`
}

// NewMetadata creates metadata for original content and its cleaned text.
func NewMetadata(original, cleaned, source string) *Metadata {
	return &Metadata{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      ContentHash(original),
		Source:    source,
		WordCount: len(strings.Fields(cleaned)),
	}
}

// ContentHash returns the hex SHA-256 digest of content.
func ContentHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

