package collapse

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned when no style of the document has generated
// content. The selection is still recorded as the catalog default.
var ErrNoContent = errors.New("no content available")

// InvalidStyleSelection records a chosen style that did not resolve to a
// catalog key with content. It is logged and resolution continues.
type InvalidStyleSelection struct {
	Raw     string
	Message string
}

func (e *InvalidStyleSelection) Error() string {
	return fmt.Sprintf("invalid style selection %q: %s", e.Raw, e.Message)
}

// InvalidInputError reports a malformed collapse request.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StatePersistenceError is returned when the collapse could not be committed.
// Nothing from the call was persisted.
type StatePersistenceError struct {
	Message string
	Cause   error
}

func (e *StatePersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StatePersistenceError) Unwrap() error {
	return e.Cause
}
