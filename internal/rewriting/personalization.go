// Package rewriting builds the per-style versions of a document: it asks a
// Generator for each requested style in parallel, substitutes a deterministic
// fallback whenever generation fails, and records every finished version.
package rewriting

import (
	"strings"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
)

// Personalization instructions, in the order they are emitted.
const (
	InstructionBaseline       = "Keep formatting predictable and easy to scan."
	InstructionShortSentences = "Use short sentence length."
	InstructionPlainWords     = "Prefer concrete, everyday vocabulary."
	InstructionChunking       = "Break ideas into explicit chunks."
)

// PersonalizationInstructions derives generator instructions from a profile.
// The baseline instruction is always first; the rest follow in fixed order.
func PersonalizationInstructions(profile *types.ReaderProfile) []string {
	instructions := []string{InstructionBaseline}
	if profile == nil {
		return instructions
	}

	if profile.ReadingSpeed == types.ReadingSpeedSlow || strings.EqualFold(profile.SentenceLength, "short") {
		instructions = append(instructions, InstructionShortSentences)
	}
	if profile.SimplifyJargon || profile.MainStruggle == types.StruggleVocabulary {
		instructions = append(instructions, InstructionPlainWords)
	}
	if profile.MainStruggle == types.StruggleSentenceLength || profile.HasDyslexiaPattern {
		instructions = append(instructions, InstructionChunking)
	}
	return instructions
}

// FormatInstructions renders instructions as a bulleted block for prompts.
func FormatInstructions(instructions []string) string {
	var sb strings.Builder
	for i, instruction := range instructions {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		sb.WriteString(instruction)
	}
	return sb.String()
}
