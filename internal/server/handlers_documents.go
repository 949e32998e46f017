package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/collapse"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/pipeline"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
)

// handleCreateDocument stores a text or HTML document, optionally generating
// and collapsing to the recommended style in the same call.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	readerID, ok := s.readerID(w, r)
	if !ok {
		return
	}
	var req types.CreateDocumentRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	outcome, err := s.service.CreateDocument(r.Context(), readerID, pipeline.SourceInput{
		Text: req.Text,
		HTML: req.HTML,
		Auto: req.Auto,
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, outcome)
}

// handleListDocuments lists the reader's recent documents. ?limit caps the
// page size.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	readerID, ok := s.readerID(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorResponse(w, r, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	docs, err := s.service.ListDocuments(r.Context(), readerID, limit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if docs == nil {
		docs = []types.Document{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}

// handleGetDocument returns one of the reader's documents.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	readerID, ok := s.readerID(w, r)
	if !ok {
		return
	}
	docID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	doc, err := s.service.GetDocument(r.Context(), readerID, docID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleTransformations generates the requested styles. An empty body asks
// for every style.
func (s *Server) handleTransformations(w http.ResponseWriter, r *http.Request) {
	readerID, ok := s.readerID(w, r)
	if !ok {
		return
	}
	docID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	var req types.TransformationsRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	res, err := s.service.RequestTransformations(r.Context(), readerID, docID, req.Styles)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleCollapse finalizes the reader's choice. When no style has content the
// recorded outcome is returned as the detail of a 409.
func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	readerID, ok := s.readerID(w, r)
	if !ok {
		return
	}
	docID, err := pathID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	var req types.CollapseRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	sel := collapse.Selection{ChosenStyle: req.ChosenStyle, Version: req.Version}
	if req.Signals != nil {
		sel.Signals = *req.Signals
	}

	outcome, err := s.service.Collapse(r.Context(), readerID, docID, sel)
	if errors.Is(err, collapse.ErrNoContent) {
		s.errorResponseWithDetail(w, r, err, outcome)
		return
	}
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, outcome)
}
