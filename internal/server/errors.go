// Package server provides the HTTP API of the reader agent.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/collapse"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/db"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/pipeline"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/schemas"
	"github.com/go-playground/validator/v10"
)

// Error codes returned in the "error" field of failed responses.
const (
	CodeInvalidInput       = "invalid_input"
	CodeUnauthorized       = "unauthorized"
	CodeNotFound           = "not_found"
	CodeNoContentAvailable = "no_content_available"
	CodeInternal           = "internal_error"
)

// ErrInvalidCredentials indicates an unknown reader or a wrong API key.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid reader id or api key"
}

// ErrValidation indicates a request the handler could not decode.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	Detail  any      `json:"detail,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	status, _ := classify(err)
	return status
}

// NewErrorBody builds the response body for err. Internal errors never expose
// their message.
func NewErrorBody(err error) ErrorBody {
	status, fields := classify(err)
	body := ErrorBody{Message: err.Error(), Fields: fields}
	switch status {
	case http.StatusBadRequest:
		body.Error = CodeInvalidInput
	case http.StatusUnauthorized:
		body.Error = CodeUnauthorized
	case http.StatusNotFound:
		body.Error = CodeNotFound
		body.Message = "document or reader not found"
	case http.StatusConflict:
		body.Error = CodeNoContentAvailable
	default:
		body.Error = CodeInternal
		body.Message = "internal server error"
	}
	return body
}

func classify(err error) (int, []string) {
	var (
		credentials  *ErrInvalidCredentials
		badRequest   *ErrValidation
		pipelineErr  *pipeline.InvalidInputError
		collapseErr  *collapse.InvalidInputError
		schemaErr    *schemas.ValidationError
		validateErrs validator.ValidationErrors
		persistErr   *collapse.StatePersistenceError
	)

	switch {
	case err == nil:
		return http.StatusOK, nil
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError, nil
	case errors.As(err, &credentials):
		return http.StatusUnauthorized, nil
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, nil
	case errors.Is(err, collapse.ErrNoContent):
		return http.StatusConflict, nil
	case errors.As(err, &badRequest):
		return http.StatusBadRequest, []string{badRequest.Field}
	case errors.As(err, &pipelineErr):
		if errors.As(err, &schemaErr) {
			return http.StatusBadRequest, schemaErr.Fields()
		}
		if errors.As(err, &validateErrs) {
			return http.StatusBadRequest, validationFields(validateErrs)
		}
		return http.StatusBadRequest, []string{pipelineErr.Field}
	case errors.As(err, &collapseErr):
		return http.StatusBadRequest, []string{collapseErr.Field}
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest, schemaErr.Fields()
	case errors.As(err, &validateErrs):
		return http.StatusBadRequest, validationFields(validateErrs)
	default:
		return http.StatusInternalServerError, nil
	}
}

// validationFields lists failing fields by their JSON path, without the
// request struct name.
func validationFields(errs validator.ValidationErrors) []string {
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		ns := fe.Namespace()
		for i := 0; i < len(ns); i++ {
			if ns[i] == '.' {
				ns = ns[i+1:]
				break
			}
		}
		fields = append(fields, ns)
	}
	return fields
}
