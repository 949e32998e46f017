package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/go-playground/validator/v10"
)

// ProfileSchemaVersion is the current ReaderProfile schema version.
// Version 0 is the untyped key/value blob written by onboarding before typed
// profiles existed (booleans and numbers frequently stored as strings).
const ProfileSchemaVersion = 1

// Reading speeds reported by the assessment.
const (
	ReadingSpeedSlow   = "slow"
	ReadingSpeedMedium = "medium"
	ReadingSpeedFast   = "fast"
)

// Main struggles reported by the assessment.
const (
	StruggleVocabulary     = "vocabulary"
	StruggleSentenceLength = "sentence_length"
	StruggleLetterSwapping = "letter_swapping"
	StruggleWordSkipping   = "word_skipping"
	StruggleGeneral        = "general"
)

// ReaderProfile holds onboarding and assessment signals for a reader, plus the
// style weights derived from the reader's learning state. Unknown keys are kept
// verbatim in Extra so that round-tripping a profile never drops data.
type ReaderProfile struct {
	SchemaVersion      int                    `json:"schema_version"`
	HasDyslexiaPattern bool                   `json:"has_dyslexia_pattern,omitempty"`
	MainStruggle       string                 `json:"main_struggle,omitempty" validate:"omitempty,oneof=vocabulary sentence_length letter_swapping word_skipping general"`
	ReadingSpeed       string                 `json:"reading_speed,omitempty" validate:"omitempty,oneof=slow medium fast"`
	RecommendedStyle   string                 `json:"recommended_style,omitempty" validate:"omitempty,max=64"`
	SentenceLength     string                 `json:"sentence_length,omitempty" validate:"omitempty,max=32"`
	SimplifyJargon     bool                   `json:"simplify_jargon,omitempty"`
	ComprehensionScore *int                   `json:"comprehension_score,omitempty" validate:"omitempty,min=0,max=100"`
	Assessment         string                 `json:"assessment,omitempty" validate:"omitempty,max=2000"`
	PreferredStyle     styles.Key             `json:"preferred_style,omitempty"`
	StyleWeights       map[styles.Key]float64 `json:"style_weights,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var profileValidator = newRequestValidator()

var knownProfileKeys = map[string]bool{
	"schema_version":       true,
	"has_dyslexia_pattern": true,
	"main_struggle":        true,
	"reading_speed":        true,
	"recommended_style":    true,
	"sentence_length":      true,
	"simplify_jargon":      true,
	"comprehension_score":  true,
	"assessment":           true,
	"preferred_style":      true,
	"style_weights":        true,
}

// Validate checks the known fields strictly. Use it on writes coming from clients.
func (p *ReaderProfile) Validate() error {
	return profileValidator.Struct(p)
}

// Clone returns a deep copy of the profile.
func (p ReaderProfile) Clone() ReaderProfile {
	out := p
	if p.ComprehensionScore != nil {
		score := *p.ComprehensionScore
		out.ComprehensionScore = &score
	}
	if p.StyleWeights != nil {
		out.StyleWeights = make(map[styles.Key]float64, len(p.StyleWeights))
		for k, v := range p.StyleWeights {
			out.StyleWeights[k] = v
		}
	}
	if p.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// UnmarshalJSON decodes a profile tolerantly: known keys are coerced to their
// typed form (so legacy string booleans like "true" are accepted), values that
// fail validation are reset to their zero value, and unknown keys go to Extra.
func (p *ReaderProfile) UnmarshalJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = ReaderProfile{SchemaVersion: ProfileSchemaVersion}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("reader profile must be a JSON object: %w", err)
	}

	out := ReaderProfile{}
	for key, value := range raw {
		switch key {
		case "schema_version":
			if n, ok := coerceInt(value); ok {
				out.SchemaVersion = n
			}
		case "has_dyslexia_pattern":
			out.HasDyslexiaPattern = coerceBool(value)
		case "main_struggle":
			out.MainStruggle = strings.ToLower(coerceString(value))
		case "reading_speed":
			out.ReadingSpeed = strings.ToLower(coerceString(value))
		case "recommended_style":
			out.RecommendedStyle = coerceString(value)
		case "sentence_length":
			out.SentenceLength = coerceString(value)
		case "simplify_jargon":
			out.SimplifyJargon = coerceBool(value)
		case "comprehension_score":
			if n, ok := coerceInt(value); ok {
				out.ComprehensionScore = &n
			}
		case "assessment":
			out.Assessment = coerceString(value)
		case "preferred_style":
			out.PreferredStyle = styles.Key(coerceString(value))
		case "style_weights":
			out.StyleWeights = coerceWeights(value)
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[key] = append(json.RawMessage(nil), value...)
		}
	}

	out.migrate()
	out.sanitize()
	*p = out
	return nil
}

// MarshalJSON writes known fields and Extra keys into one flat object.
func (p ReaderProfile) MarshalJSON() ([]byte, error) {
	type plain ReaderProfile
	known, err := json.Marshal(plain(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(p.Extra)+len(knownProfileKeys))
	for k, v := range p.Extra {
		if !knownProfileKeys[k] {
			merged[k] = v
		}
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, err
	}
	for k, v := range knownMap {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Merge applies the keys present in patch on top of p. Keys absent from the
// patch keep their current values; unknown keys are merged into Extra.
func (p *ReaderProfile) Merge(patch map[string]json.RawMessage) error {
	current, err := json.Marshal(p)
	if err != nil {
		return err
	}
	var base map[string]json.RawMessage
	if err := json.Unmarshal(current, &base); err != nil {
		return err
	}
	for k, v := range patch {
		base[k] = v
	}
	combined, err := json.Marshal(base)
	if err != nil {
		return err
	}
	return json.Unmarshal(combined, p)
}

// ExtraKeys returns the unknown keys in sorted order.
func (p *ReaderProfile) ExtraKeys() []string {
	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// migrate upgrades older schema versions in place.
func (p *ReaderProfile) migrate() {
	if p.SchemaVersion <= 0 {
		// v0 onboarding stored the retype test's recommended style as the
		// reader-visible preference; nothing else changed shape.
		p.SchemaVersion = 1
	}
	if p.SchemaVersion > ProfileSchemaVersion {
		p.SchemaVersion = ProfileSchemaVersion
	}
}

// sanitize zeroes known fields that fail validation.
func (p *ReaderProfile) sanitize() {
	err := profileValidator.Struct(p)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return
	}
	for _, fe := range verrs {
		switch fe.StructField() {
		case "MainStruggle":
			p.MainStruggle = ""
		case "ReadingSpeed":
			p.ReadingSpeed = ""
		case "RecommendedStyle":
			p.RecommendedStyle = ""
		case "SentenceLength":
			p.SentenceLength = ""
		case "ComprehensionScore":
			p.ComprehensionScore = nil
		case "Assessment":
			p.Assessment = ""
		}
	}
}

func coerceString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

func coerceBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	switch strings.ToLower(coerceString(raw)) {
	case "true", "yes", "1", "y":
		return true
	}
	return false
}

func coerceInt(raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(math.Round(f)), true
	}
	s := coerceString(raw)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(math.Round(f)), true
	}
	return 0, false
}

func coerceWeights(raw json.RawMessage) map[styles.Key]float64 {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	out := make(map[styles.Key]float64, len(m))
	for k, v := range m {
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			s := coerceString(v)
			parsed, perr := strconv.ParseFloat(s, 64)
			if perr != nil {
				continue
			}
			f = parsed
		}
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		out[styles.Key(k)] = f
	}
	return out
}
