package rewriting

import (
	"fmt"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
)

// GenerationError records a generator failure for one style. The assembler
// logs it and substitutes the fallback; callers never receive it.
type GenerationError struct {
	Style   styles.Key
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed for %s: %s: %v", e.Style, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed for %s: %s", e.Style, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
