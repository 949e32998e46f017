// Package observability provides formatted output for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/collapse"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ranking"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/rewriting"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxLinesPerCandidate bounds how much of each version is shown
	maxLinesPerCandidate = 12
)

// Printer handles formatted output for the CLI.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are
// wrapped at word boundaries.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDecision outputs the per-style scores behind a recommendation, in
// catalog order, with the contribution of each scoring source.
func (p *Printer) PrintDecision(catalog *styles.Catalog, d ranking.Decision) {
	var sb strings.Builder

	density := "sparse"
	if d.Metrics.Dense {
		density = "dense"
	}
	sb.WriteString(fmt.Sprintf("Text:        %d words, %d sentences, %.2f words/sentence (%s)\n",
		d.Metrics.WordCount, d.Metrics.SentenceCount, d.Metrics.AvgWordsPerSentence, density))
	sb.WriteString(fmt.Sprintf("Recommended: %s (%s)\n\n", catalog.Title(d.Recommended), d.Recommended))

	sources := make([]string, 0, len(d.Components))
	for name := range d.Components {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	sb.WriteString(fmt.Sprintf("%-16s %7s", "style", "total"))
	for _, name := range sources {
		sb.WriteString(fmt.Sprintf(" %10s", name))
	}
	sb.WriteString("\n")

	for _, key := range catalog.Keys() {
		marker := " "
		if key == d.Recommended {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s%-15s %7.3f", marker, key, d.Scores[key]))
		for _, name := range sources {
			sb.WriteString(fmt.Sprintf(" %10.3f", d.Components[name][key]))
		}
		sb.WriteString("\n")
	}

	p.printBox("DECISION TRACE", sb.String())
}

// PrintCandidates outputs each generated version, marking fallbacks and the
// recommended style.
func (p *Printer) PrintCandidates(candidates []rewriting.Candidate, recommended styles.Key) {
	for _, c := range candidates {
		title := fmt.Sprintf("VERSION %d: %s", c.Ordinal, strings.ToUpper(c.Title))
		if c.Style == recommended {
			title += " (recommended)"
		}
		if c.Fallback {
			title += " [fallback]"
		}

		lines := strings.Split(strings.TrimSpace(c.Content), "\n")
		if len(lines) > maxLinesPerCandidate {
			more := len(lines) - maxLinesPerCandidate
			lines = append(lines[:maxLinesPerCandidate], fmt.Sprintf("... and %d more lines", more))
		}
		p.printBox(title, strings.Join(lines, "\n"))
	}
}

// PrintCollapse outputs the outcome of a collapse.
func (p *Printer) PrintCollapse(outcome *collapse.Outcome) {
	if outcome == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Style:   %s (version %d)\n", outcome.Title, outcome.Ordinal))
	sb.WriteString(fmt.Sprintf("Reason:  %s\n", outcome.Reason))
	if outcome.NoContent {
		sb.WriteString("No generated content; showing the source text.\n")
	}

	keys := make([]string, 0, len(outcome.ProfileUpdates.StyleWeights))
	for k := range outcome.ProfileUpdates.StyleWeights {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		sb.WriteString("Weights:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  • %-15s %.3f\n", k, outcome.ProfileUpdates.StyleWeights[styles.Key(k)]))
		}
	}

	p.printBox("COLLAPSED", sb.String())
}

// wrap splits line into chunks of at most width runes, breaking at spaces
// where possible.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var out []string
	var current []rune
	for _, word := range strings.Fields(line) {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				out = append(out, string(current))
				current = nil
			}
			out = append(out, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= width:
			current = append(append(current, ' '), w...)
		default:
			out = append(out, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		out = append(out, string(current))
	}
	return out
}

// pad right-pads s with spaces to width runes.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
