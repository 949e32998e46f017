package rewriting

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ingestion"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
)

const (
	maxFallbackBullets    = 8
	fallbackSectionSize   = 3
	fallbackSentenceWords = 14
)

type replacement struct {
	pattern *regexp.Regexp
	with    string
}

// jargonReplacements are applied in order, case-insensitively, on word boundaries.
var jargonReplacements = []replacement{
	{regexp.MustCompile(`(?i)\butilize\b`), "use"},
	{regexp.MustCompile(`(?i)\bapproximately\b`), "about"},
	{regexp.MustCompile(`(?i)\bcommence\b`), "start"},
	{regexp.MustCompile(`(?i)\bterminate\b`), "end"},
	{regexp.MustCompile(`(?i)\bfacilitate\b`), "help"},
	{regexp.MustCompile(`(?i)\bsubsequently\b`), "later"},
	{regexp.MustCompile(`(?i)\bdemonstrate\b`), "show"},
	{regexp.MustCompile(`(?i)\badditional\b`), "more"},
	{regexp.MustCompile(`(?i)\bprior to\b`), "before"},
	{regexp.MustCompile(`(?i)\bin order to\b`), "to"},
}

// Fallback produces a deterministic version of text for style without calling
// any generator. It returns non-empty output for any non-empty input.
func Fallback(style styles.Key, text string) string {
	cleaned := ingestion.CleanText(text)
	sentences := ingestion.SplitSentences(cleaned)
	if len(sentences) == 0 {
		return cleaned
	}

	var out string
	switch style {
	case styles.BulletPoints:
		out = fallbackBullets(sentences)
	case styles.PlainLanguage:
		out = fallbackPlainLanguage(strings.Join(sentences, " "))
	case styles.Restructured:
		out = fallbackSections(sentences)
	default:
		out = fallbackShortSentences(sentences)
	}

	if strings.TrimSpace(out) == "" {
		return cleaned
	}
	return out
}

func fallbackBullets(sentences []string) string {
	if len(sentences) > maxFallbackBullets {
		sentences = sentences[:maxFallbackBullets]
	}
	lines := make([]string, len(sentences))
	for i, s := range sentences {
		lines[i] = "- " + s
	}
	return strings.Join(lines, "\n")
}

func fallbackPlainLanguage(text string) string {
	for _, r := range jargonReplacements {
		text = r.pattern.ReplaceAllString(text, r.with)
	}
	return text
}

func fallbackSections(sentences []string) string {
	var blocks []string
	for start := 0; start < len(sentences); start += fallbackSectionSize {
		end := start + fallbackSectionSize
		if end > len(sentences) {
			end = len(sentences)
		}
		header := fmt.Sprintf("Section %d", len(blocks)+1)
		blocks = append(blocks, header+"\n"+strings.Join(sentences[start:end], " "))
	}
	return strings.Join(blocks, "\n\n")
}

func fallbackShortSentences(sentences []string) string {
	shortened := make([]string, 0, len(sentences))
	for _, s := range sentences {
		words := strings.Fields(s)
		if len(words) > fallbackSentenceWords {
			words = words[:fallbackSentenceWords]
		}
		shortened = append(shortened, strings.Join(words, " "))
	}
	return strings.Join(shortened, "\n")
}
