package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/assessment"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/db"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/server/middleware"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/google/uuid"
)

// decodeJSON reads a JSON body into dst. An empty body is accepted only when
// optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && optional {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Field: "body", Message: "request body too large"}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// readerID returns the authenticated reader. The auth middleware guarantees it
// is present on every route that calls this.
func (s *Server) readerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := middleware.GetReaderID(r)
	if err != nil {
		s.jsonResponse(w, http.StatusUnauthorized, ErrorBody{Error: CodeUnauthorized, Message: err.Error()})
		return uuid.Nil, false
	}
	return id, true
}

// handleCreateReader registers a reader and returns its API key once.
func (s *Server) handleCreateReader(w http.ResponseWriter, r *http.Request) {
	var req types.CreateReaderRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	apiKey, err := s.keys.GenerateKey()
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	hash, err := s.keys.HashKey(apiKey)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	reader, err := s.service.CreateReader(r.Context(), req.Name, req.Profile, hash)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, types.CreateReaderResponse{Reader: reader, APIKey: apiKey})
}

// handleToken exchanges a reader's API key for a bearer token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req types.TokenRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	id, err := uuid.Parse(req.ReaderID)
	if err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "reader_id", Message: "must be a UUID"})
		return
	}
	reader, err := s.service.GetReader(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		s.errorResponse(w, r, &ErrInvalidCredentials{})
		return
	}
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if !s.keys.VerifyKey(req.APIKey, reader.APIKeyHash) {
		s.log.Warn("api key rejected", "reader_id", id)
		s.errorResponse(w, r, &ErrInvalidCredentials{})
		return
	}

	token, expiresAt, err := s.jwtService.GenerateToken(reader.ID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.TokenResponse{Token: token, ExpiresAt: expiresAt})
}

// handleGetProfile returns the reader with profile and learning state.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	readerID, ok := s.readerID(w, r)
	if !ok {
		return
	}
	reader, err := s.service.GetReader(r.Context(), readerID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, reader)
}

// handleUpdateProfile merges a partial profile into the reader's profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	readerID, ok := s.readerID(w, r)
	if !ok {
		return
	}
	var patch map[string]json.RawMessage
	if err := decodeJSON(w, r, &patch, false); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	reader, err := s.service.UpdateProfile(r.Context(), readerID, patch)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, reader)
}

// handleAssessment runs the retype reading test.
func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	readerID, ok := s.readerID(w, r)
	if !ok {
		return
	}
	var req types.AssessmentRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	outcome, err := s.service.Assess(r.Context(), readerID, assessment.Input{
		RetypedText:             req.RetypedText,
		SelfDescribedDifficulty: req.SelfDescribedDifficulty,
		TimeTakenSeconds:        req.TimeTakenSeconds,
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, outcome)
}
