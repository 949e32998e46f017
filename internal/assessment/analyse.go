// Package assessment turns the results of the retype reading test into a
// reader profile.
package assessment

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/llm"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/logger"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/prompts"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/schemas"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
)

// TestSentence is the sentence the reader is asked to retype.
const TestSentence = "The cat wearing a hat sat on the mat staring at a rat"

// Input is one completed reading test.
type Input struct {
	RetypedText             string
	SelfDescribedDifficulty string
	TimeTakenSeconds        float64
}

// Result is the reading profile produced by an assessment.
type Result struct {
	HasDyslexiaPattern bool     `json:"has_dyslexia_pattern"`
	ReadingSpeed       string   `json:"reading_speed"`
	ComprehensionScore int      `json:"comprehension_score"`
	MainStruggle       string   `json:"main_struggle"`
	RecommendedStyle   string   `json:"recommended_style"`
	SentenceLength     string   `json:"sentence_length,omitempty"`
	SimplifyJargon     bool     `json:"simplify_jargon,omitempty"`
	Assessment         string   `json:"assessment"`
	SkippedWords       []string `json:"skipped_words"`
	Fallback           bool     `json:"fallback"`
}

// DefaultResult is the profile used when the model is unavailable or answers
// with something unusable.
func DefaultResult(skipped []string) *Result {
	return &Result{
		HasDyslexiaPattern: false,
		ReadingSpeed:       types.ReadingSpeedMedium,
		ComprehensionScore: 50,
		MainStruggle:       types.StruggleGeneral,
		RecommendedStyle:   "bullet",
		Assessment:         "Could not analyse at this time. Defaulting to bullet style.",
		SkippedWords:       skipped,
		Fallback:           true,
	}
}

// SkippedWords returns the words of TestSentence that do not appear anywhere
// in the retyped text, compared case-insensitively and in sentence order.
func SkippedWords(retyped string) []string {
	typed := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(retyped)) {
		typed[w] = true
	}
	skipped := []string{}
	for _, w := range strings.Fields(strings.ToLower(TestSentence)) {
		if !typed[w] {
			skipped = append(skipped, w)
		}
	}
	return skipped
}

// Analyser asks the model for a reading profile.
type Analyser struct {
	client llm.Client
	tier   llm.ModelTier
	log    *logger.Logger
}

// NewAnalyser creates an analyser. client may be nil, in which case every
// assessment yields the default profile.
func NewAnalyser(client llm.Client, log *logger.Logger) *Analyser {
	if log == nil {
		log = logger.Nop()
	}
	return &Analyser{client: client, tier: llm.TierLite, log: log}
}

// Analyse scores one reading test. It never fails: any model or validation
// problem is logged and the default profile is returned.
func (a *Analyser) Analyse(ctx context.Context, in Input) *Result {
	skipped := SkippedWords(in.RetypedText)

	res, err := a.analyse(ctx, in, skipped)
	if err != nil {
		a.log.Warn("using default assessment", "error", err)
		return DefaultResult(skipped)
	}
	return res
}

func (a *Analyser) analyse(ctx context.Context, in Input, skipped []string) (*Result, error) {
	if a.client == nil {
		return nil, &AnalysisError{Message: "no model client configured"}
	}

	prompt := prompts.Format(prompts.MustGet("assessment.json", "analyse-reading-test"), map[string]string{
		"TestSentence":  TestSentence,
		"Retyped":       in.RetypedText,
		"Seconds":       strconv.FormatFloat(in.TimeTakenSeconds, 'f', -1, 64),
		"SkippedWords":  formatSkipped(skipped),
		"SelfDescribed": in.SelfDescribedDifficulty,
	})

	raw, err := a.client.GenerateJSON(ctx, prompt, a.tier)
	if err != nil {
		return nil, &AnalysisError{Message: "model call failed", Cause: err}
	}

	body := llm.ExtractJSONObject(raw)
	if body == "" {
		return nil, &AnalysisError{Message: "model returned no JSON object"}
	}
	if err := schemas.Validate(schemas.Assessment, []byte(body)); err != nil {
		return nil, &AnalysisError{Message: "model output does not match the assessment schema", Cause: err}
	}

	var res Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return nil, &AnalysisError{Message: "failed to decode model output", Cause: err}
	}
	res.SkippedWords = skipped
	res.Fallback = false
	return &res, nil
}

// Apply merges an assessment into a profile and returns the display title of
// the recommended style.
func Apply(profile *types.ReaderProfile, res *Result, catalog *styles.Catalog) string {
	score := res.ComprehensionScore
	profile.HasDyslexiaPattern = res.HasDyslexiaPattern
	profile.ReadingSpeed = res.ReadingSpeed
	profile.ComprehensionScore = &score
	profile.MainStruggle = res.MainStruggle
	profile.RecommendedStyle = res.RecommendedStyle
	profile.Assessment = res.Assessment
	if res.SentenceLength != "" {
		profile.SentenceLength = res.SentenceLength
	}
	if res.SimplifyJargon {
		profile.SimplifyJargon = true
	}
	if profile.SchemaVersion == 0 {
		profile.SchemaVersion = types.ProfileSchemaVersion
	}

	if key, ok := catalog.Normalize(res.RecommendedStyle); ok {
		return catalog.Title(key)
	}
	return catalog.Title(styles.Key(res.RecommendedStyle))
}

func formatSkipped(words []string) string {
	if len(words) == 0 {
		return "none"
	}
	return strings.Join(words, ", ")
}
