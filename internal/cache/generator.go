package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/logger"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/rewriting"
)

// DefaultTTL is how long generated text stays cached.
const DefaultTTL = 7 * 24 * time.Hour

const keyPrefix = "reader-agent:generation:"

// Generator wraps a rewriting.Generator with a cache lookup. Cache errors are
// logged and never fail a generation.
type Generator struct {
	next  rewriting.Generator
	store Store
	ttl   time.Duration
	log   *logger.Logger
}

// NewGenerator creates a caching generator. A non-positive ttl uses DefaultTTL.
func NewGenerator(next rewriting.Generator, store Store, ttl time.Duration, log *logger.Logger) *Generator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{next: next, store: store, ttl: ttl, log: log.With("component", "generation_cache")}
}

// Generate returns the cached text for req or calls the wrapped generator and
// caches a non-empty result.
func (g *Generator) Generate(ctx context.Context, req rewriting.Request) (string, error) {
	key := Key(req)

	cached, ok, err := g.store.Get(ctx, key)
	if err != nil {
		g.log.Warn("cache lookup failed", "style", req.Style.Key, "error", err)
	} else if ok {
		g.log.Debug("cache hit", "style", req.Style.Key)
		return cached, nil
	}

	content, err := g.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return content, nil
	}

	if err := g.store.Set(context.WithoutCancel(ctx), key, content, g.ttl); err != nil {
		g.log.Warn("cache write failed", "style", req.Style.Key, "error", err)
	}
	return content, nil
}

// Key derives the cache key of a request from the content hash, the style and
// the personalization lines. The source text is hashed when no content hash is
// set.
func Key(req rewriting.Request) string {
	contentHash := req.ContentHash
	if contentHash == "" {
		sum := sha256.Sum256([]byte(req.Source))
		contentHash = hex.EncodeToString(sum[:])
	}

	h := sha256.New()
	h.Write([]byte(contentHash))
	h.Write([]byte{0})
	h.Write([]byte(req.Style.Key))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(req.Personalization, "\n")))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

var _ rewriting.Generator = (*Generator)(nil)
