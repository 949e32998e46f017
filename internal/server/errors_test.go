package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/collapse"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/db"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/pipeline"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/schemas"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	validatorErr := (&types.CollapseRequest{ChosenStyle: string(make([]byte, 100))}).Validate()
	require.Error(t, validatorErr)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantFields []string
	}{
		{name: "not found", err: db.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", db.ErrNotFound), wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "no content", err: collapse.ErrNoContent, wantStatus: http.StatusConflict, wantCode: CodeNoContentAvailable},
		{name: "bad credentials", err: &ErrInvalidCredentials{}, wantStatus: http.StatusUnauthorized, wantCode: CodeUnauthorized},
		{name: "undecodable body", err: &ErrValidation{Field: "body", Message: "invalid JSON"}, wantStatus: http.StatusBadRequest, wantCode: CodeInvalidInput, wantFields: []string{"body"}},
		{name: "collapse input", err: &collapse.InvalidInputError{Field: "version", Message: "out of range"}, wantStatus: http.StatusBadRequest, wantCode: CodeInvalidInput, wantFields: []string{"version"}},
		{name: "pipeline input", err: &pipeline.InvalidInputError{Field: "text", Message: "empty"}, wantStatus: http.StatusBadRequest, wantCode: CodeInvalidInput, wantFields: []string{"text"}},
		{
			name:       "pipeline input wrapping schema errors",
			err:        &pipeline.InvalidInputError{Field: "profile", Cause: &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "reading_speed"}}}},
			wantStatus: http.StatusBadRequest, wantCode: CodeInvalidInput, wantFields: []string{"reading_speed"},
		},
		{name: "request validation", err: validatorErr, wantStatus: http.StatusBadRequest, wantCode: CodeInvalidInput, wantFields: []string{"chosen_style"}},
		{
			name:       "persistence failure wrapping not found",
			err:        &collapse.StatePersistenceError{Message: "commit failed", Cause: db.ErrNotFound},
			wantStatus: http.StatusInternalServerError, wantCode: CodeInternal,
		},
		{name: "anything else", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, HTTPStatus(tt.err))
			body := NewErrorBody(tt.err)
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantFields, body.Fields)
		})
	}
}

func TestNewErrorBody_HidesInternalMessages(t *testing.T) {
	body := NewErrorBody(errors.New("pq: password authentication failed for user reader"))
	assert.Equal(t, "internal server error", body.Message)
}
