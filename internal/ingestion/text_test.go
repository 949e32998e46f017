package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_JoinsHyphenatedLineBreaks(t *testing.T) {
	input := "The infor-\nmation was hard to under- \n  stand."
	result := CleanText(input)

	assert.Equal(t, "The information was hard to understand.", result)
}

func TestCleanText_KeepsHyphenatedWordsOnOneLine(t *testing.T) {
	result := CleanText("A well-known fact.")
	assert.Equal(t, "A well-known fact.", result)
}

func TestCleanText_PreserveBulletLists(t *testing.T) {
	input := "- Item 1\n- Item 2\n* Item 3"
	result := CleanText(input)

	assert.Contains(t, result, "- Item 1")
	assert.Contains(t, result, "- Item 2")
	assert.Contains(t, result, "* Item 3")
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	input := "Line    with    multiple    spaces   "
	result := CleanText(input)

	assert.Equal(t, "Line with multiple spaces", result)
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	input := "Line 1\n\n\n\n\nLine 2"
	result := CleanText(input)

	assert.Equal(t, "Line 1\n\nLine 2", result)
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	input := "Line 1\r\nLine 2\rLine 3\nLine 4"
	result := CleanText(input)

	assert.NotContains(t, result, "\r")
	assert.Equal(t, "Line 1\nLine 2\nLine 3\nLine 4", result)
}

func TestCleanText_DeterministicOutput(t *testing.T) {
	input := "Test content   with   spaces\n\n\nMultiple   blank   lines"
	assert.Equal(t, CleanText(input), CleanText(input))
}

func TestCleanText_EmptyInput(t *testing.T) {
	assert.Empty(t, CleanText(""))
	assert.Empty(t, CleanText("   \n  \n  "))
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	input := "Test with émojis 🚀 and spéciàl chàracters"
	result := CleanText(input)

	assert.Contains(t, result, "émojis")
	assert.Contains(t, result, "🚀")
	assert.Contains(t, result, "spéciàl chàracters")
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single without punctuation", input: "just words", want: []string{"just words"}},
		{name: "mixed terminators", input: "One. Two! Three?", want: []string{"One.", "Two!", "Three?"}},
		{name: "ellipsis stays attached", input: "Wait... Go on.", want: []string{"Wait...", "Go on."}},
		{name: "line breaks flattened", input: "First line\ncontinues. Second.", want: []string{"First line continues.", "Second."}},
		{name: "punctuation only", input: "...!?", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.input))
		})
	}
}

func TestIngestFromFile_Text(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "chapter.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("# Chapter One\n\nThe   fox ran."), 0644))

	cleanedText, metadata, err := IngestFromFile(testFile)
	require.NoError(t, err)

	assert.Equal(t, "# Chapter One\n\nThe fox ran.", cleanedText)
	assert.Equal(t, SourceText, metadata.Source)
	assert.Len(t, metadata.Hash, 64)
	assert.Equal(t, 6, metadata.WordCount)
}

func TestIngestFromFile_HTML(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "page.html")
	html := `<html><body><nav>Menu</nav><main><h1>Title</h1><p>Body text.</p></main></body></html>`
	require.NoError(t, os.WriteFile(testFile, []byte(html), 0644))

	cleanedText, metadata, err := IngestFromFile(testFile)
	require.NoError(t, err)

	assert.Equal(t, "Title\nBody text.", cleanedText)
	assert.Equal(t, SourceHTML, metadata.Source)
	assert.Equal(t, ContentHash(html), metadata.Hash)
}

func TestIngestFromFile_FileNotFound(t *testing.T) {
	cleanedText, metadata, err := IngestFromFile("/nonexistent/file.txt")

	assert.Error(t, err)
	assert.Empty(t, cleanedText)
	assert.Nil(t, metadata)
	assert.Contains(t, err.Error(), "file not found")
}

func TestContentHash_Stable(t *testing.T) {
	assert.Equal(t, ContentHash("abc"), ContentHash("abc"))
	assert.NotEqual(t, ContentHash("Content 1"), ContentHash("Content 2"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", ContentHash("abc"))
}
