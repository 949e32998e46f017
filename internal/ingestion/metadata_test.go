package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewMetadata(t *testing.T) {
	metadata := NewMetadata("<p>Hello world</p>", "Hello world", SourceHTML)

	assert.Equal(t, ContentHash("<p>Hello world</p>"), metadata.Hash)
	assert.Equal(t, 2, metadata.WordCount)
	assert.Equal(t, SourceHTML, metadata.Source)

	_, err := time.Parse(time.RFC3339, metadata.Timestamp)
	assert.NoError(t, err)
}
