package assessment

import "fmt"

// AnalysisError describes why the model's assessment could not be used. The
// analyser logs it and returns the default profile instead.
type AnalysisError struct {
	Message string
	Cause   error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("assessment analysis failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("assessment analysis failed: %s", e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}
