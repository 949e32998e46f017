package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHTMLText_PrefersMainContent(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<body>
<nav>Nav</nav>
<header>Site header</header>
<main>
<h1>Reading</h1>
<p>First paragraph.</p>
<ul>
<li>Point one</li>
<li>Point two</li>
</ul>
</main>
<footer>Footer</footer>
<script>var x = 1;</script>
</body>
</html>`

	text, err := ExtractHTMLText(html)
	require.NoError(t, err)

	assert.Equal(t, "Reading\nFirst paragraph.\n- Point one\n- Point two", text)
}

func TestExtractHTMLText_FallsBackToBody(t *testing.T) {
	text, err := ExtractHTMLText(`<html><body><div>Plain body.</div><style>p{}</style></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Plain body.", text)
}

func TestExtractHTMLText_Empty(t *testing.T) {
	text, err := ExtractHTMLText("")
	require.NoError(t, err)
	assert.Empty(t, text)
}
