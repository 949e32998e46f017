// Package density computes lexical density metrics used as a proxy for text complexity.
package density

import (
	"math"
	"regexp"
	"strings"
)

// DenseThreshold is the average sentence length (in words) at or above which
// text is considered dense.
const DenseThreshold = 22.0

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// Metrics summarizes the density of a text.
type Metrics struct {
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`
	Dense               bool    `json:"dense"`
}

// Analyze computes density metrics for text. Empty text yields zero metrics.
func Analyze(text string) Metrics {
	words := len(strings.Fields(text))
	sentences := CountSentences(text)

	avg := float64(words)
	if sentences > 0 {
		avg = float64(words) / float64(sentences)
	}

	return Metrics{
		WordCount:           words,
		SentenceCount:       sentences,
		AvgWordsPerSentence: math.Round(avg*100) / 100,
		Dense:               avg >= DenseThreshold,
	}
}

// CountSentences counts non-blank segments after splitting on runs of '.', '!' and '?'.
func CountSentences(text string) int {
	count := 0
	for _, segment := range sentenceBreak.Split(text, -1) {
		if strings.TrimSpace(segment) != "" {
			count++
		}
	}
	return count
}
