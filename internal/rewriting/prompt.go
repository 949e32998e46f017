package rewriting

import (
	"fmt"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/prompts"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
)

const promptFile = "rewriting.json"

// BuildPrompt renders the generation prompt for one style.
func BuildPrompt(style styles.Style, text string, personalization []string) string {
	instructions, err := prompts.Get(promptFile, fmt.Sprintf("style-%s", style.Key))
	if err != nil {
		instructions = prompts.Format(prompts.MustGet(promptFile, "style-default"), map[string]string{
			"StyleTitle":       style.Title,
			"StyleDescription": style.Description,
		})
	}

	return prompts.Format(prompts.MustGet(promptFile, "rewrite-document"), map[string]string{
		"System":            prompts.MustGet(promptFile, "rewrite-system"),
		"StyleInstructions": instructions,
		"Personalization":   FormatInstructions(personalization),
		"Text":              text,
	})
}
