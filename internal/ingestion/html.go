package ingestion

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelector matches page chrome that never belongs to the reading text.
const noiseSelector = "nav, footer, header, script, style, noscript, form, aside, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup"

// blockSelector matches elements whose text should end on its own line.
const blockSelector = "p, li, h1, h2, h3, h4, h5, h6, blockquote, pre, tr, br, div"

// contentSelectors are tried in order; the body is used when none match.
var contentSelectors = []string{
	"main",
	"article",
	"[role='main']",
	".content",
	"#content",
	".main-content",
	"#main-content",
}

// ExtractHTMLText parses HTML and returns the main readable text with one
// block element per line. List items are rendered as "- " lines.
func ExtractHTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	var main *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			main = selection.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	main.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})
	main.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(main.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && line != "-" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
