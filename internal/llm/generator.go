package llm

import (
	"context"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/rewriting"
)

// StyleGenerator produces one rewrite per call through a Client.
type StyleGenerator struct {
	client Client
	tier   ModelTier
}

// NewStyleGenerator creates a generator using the given model tier.
func NewStyleGenerator(client Client, tier ModelTier) *StyleGenerator {
	if tier == "" {
		tier = TierStandard
	}
	return &StyleGenerator{client: client, tier: tier}
}

// Generate sends the request's prompt to the model.
func (g *StyleGenerator) Generate(ctx context.Context, req rewriting.Request) (string, error) {
	return g.client.GenerateContent(ctx, req.Prompt, g.tier)
}

var _ rewriting.Generator = (*StyleGenerator)(nil)
