// Package ingestion turns uploaded source material into the clean text the
// decision engine and the generators work on.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	hyphenBreak     = regexp.MustCompile(`(\p{L})-[ \t]*\n[ \t]*(\p{L})`)
	innerWhitespace = regexp.MustCompile(`[ \t]+`)
	excessBlank     = regexp.MustCompile(`\n{3,}`)
	sentenceEnd     = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)
)

// CleanText normalizes extracted text while preserving its structure:
// words split across a hyphenated line break are joined, trailing spaces are
// stripped, runs of spaces collapse, and three or more blank lines shrink to one.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// CRLF → LF
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	content = hyphenBreak.ReplaceAllString(content, "$1$2")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = excessBlank.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims trailing whitespace and collapses inner runs of spaces.
// Leading indentation of list items is kept.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	indent := ""
	if isBulletLine(trimmed) {
		indent = strings.Repeat(" ", len(line)-len(trimmed))
	}
	return indent + innerWhitespace.ReplaceAllString(trimmed, " ")
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// SplitSentences cleans text and splits it into trimmed, non-empty sentences.
// Terminal punctuation stays attached to its sentence.
func SplitSentences(text string) []string {
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil
	}
	flat := strings.Join(strings.Fields(cleaned), " ")

	var sentences []string
	for _, match := range sentenceEnd.FindAllString(flat, -1) {
		if s := strings.TrimSpace(match); s != "" && strings.Trim(s, ".!? ") != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// IngestFromFile reads a text or HTML file, cleans it, and returns the cleaned
// text with metadata. Files ending in .html or .htm go through ExtractHTMLText.
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	source := SourceText
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
		source = SourceHTML
	}
	return Ingest(string(content), source)
}

// Ingest cleans raw content of the given source kind and returns the cleaned
// text with metadata. HTML is reduced to its readable text first.
func Ingest(raw, source string) (string, *Metadata, error) {
	text := raw
	if source == SourceHTML {
		extracted, err := ExtractHTMLText(raw)
		if err != nil {
			return "", nil, err
		}
		text = extracted
	}

	cleanedText := CleanText(text)
	return cleanedText, NewMetadata(raw, cleanedText, source), nil
}
