package types

import (
	"strings"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
)

// LongDwellMS is the dwell time at which a view counts as a long dwell.
const LongDwellMS = 25_000

// SignalBundle carries behavioral signals observed while the reader compared
// versions. It is never persisted.
type SignalBundle struct {
	DwellMS  int64  `json:"dwell_ms,omitempty"`
	TTSStyle string `json:"tts_style,omitempty" validate:"max=64"`
}

// IsLongDwell reports whether the dwell time reached LongDwellMS.
func (b SignalBundle) IsLongDwell() bool {
	return b.DwellMS >= LongDwellMS
}

// HasTTS reports whether the reader played back any style via speech.
func (b SignalBundle) HasTTS() bool {
	return b.TTSStyle != ""
}

// Normalize clamps negative dwell to zero and canonicalizes the TTS style. An
// unrecognized TTS style is kept verbatim so it still counts as a TTS event.
func (b SignalBundle) Normalize(catalog *styles.Catalog) SignalBundle {
	out := b
	if out.DwellMS < 0 {
		out.DwellMS = 0
	}
	if key, ok := catalog.Normalize(b.TTSStyle); ok {
		out.TTSStyle = string(key)
	} else {
		out.TTSStyle = strings.TrimSpace(b.TTSStyle)
	}
	return out
}

// TTSKey returns the canonical TTS style, if it names a catalog style.
func (b SignalBundle) TTSKey(catalog *styles.Catalog) (styles.Key, bool) {
	return catalog.Normalize(b.TTSStyle)
}
