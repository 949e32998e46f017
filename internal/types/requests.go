package types

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var requestValidator = newRequestValidator()

// newRequestValidator reports fields by their JSON names.
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// CreateReaderRequest creates a reader.
type CreateReaderRequest struct {
	Name    string                     `json:"name" validate:"required,min=1,max=200"`
	Profile map[string]json.RawMessage `json:"profile,omitempty"`
}

// CreateReaderResponse carries the one-time API key for a new reader.
type CreateReaderResponse struct {
	Reader *Reader `json:"reader"`
	APIKey string  `json:"api_key"`
}

// TokenRequest exchanges a reader API key for a bearer token.
type TokenRequest struct {
	ReaderID string `json:"reader_id" validate:"required,uuid"`
	APIKey   string `json:"api_key" validate:"required,min=16"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateDocumentRequest creates a document from text or HTML. With Auto set the
// recommended style is generated and collapsed immediately.
type CreateDocumentRequest struct {
	Text string `json:"text,omitempty" validate:"required_without=HTML,max=200000"`
	HTML string `json:"html,omitempty" validate:"required_without=Text,max=1000000"`
	Auto bool   `json:"auto,omitempty"`
}

// TransformationsRequest asks for generated versions of a document.
type TransformationsRequest struct {
	Styles []string `json:"styles,omitempty" validate:"max=16,dive,required,max=64"`
}

// CollapseRequest finalizes a reader's choice. ChosenStyle and Version are
// alternatives; ChosenStyle wins when both are present.
type CollapseRequest struct {
	ChosenStyle string        `json:"chosen_style,omitempty" validate:"max=64"`
	Version     *int          `json:"version,omitempty" validate:"omitempty,min=1"`
	Signals     *SignalBundle `json:"signals,omitempty"`
}

// AssessmentRequest carries the results of the retype reading test.
type AssessmentRequest struct {
	RetypedText             string  `json:"retyped_text" validate:"required,max=2000"`
	SelfDescribedDifficulty string  `json:"self_described_difficulty" validate:"max=2000"`
	TimeTakenSeconds        float64 `json:"time_taken_seconds" validate:"min=0"`
}

// Validate validates the CreateReaderRequest using the validator.
func (r *CreateReaderRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Validate validates the TokenRequest using the validator.
func (r *TokenRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Validate validates the CreateDocumentRequest using the validator.
func (r *CreateDocumentRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Validate validates the TransformationsRequest using the validator.
func (r *TransformationsRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Validate validates the CollapseRequest using the validator.
func (r *CollapseRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Validate validates the AssessmentRequest using the validator.
func (r *AssessmentRequest) Validate() error {
	return requestValidator.Struct(r)
}
