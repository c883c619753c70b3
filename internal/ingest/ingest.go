// Package ingest validates and submits bulk-ingestion requests. Validation is
// purely local and always runs before any network call; a request that fails
// validation never reaches the backend.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ncanzani/salesdeck/internal/backend"
)

// SuggestedTags are the source tags offered for document ingestion. A custom
// freeform tag is equally valid.
var SuggestedTags = []string{"docs", "faq", "pricing", "policies"}

// CatalogRequest is the wire shape of a catalog ingestion.
type CatalogRequest struct {
	Type string            `json:"type"` // always "catalog"
	Data []json.RawMessage `json:"data"`
}

// DocumentRequest is the wire shape of a document ingestion. FilePath is a
// path on the backend host, not a local file.
type DocumentRequest struct {
	Type      string `json:"type"` // always "document"
	FilePath  string `json:"file_path"`
	SourceTag string `json:"source_tag"`
}

// ValidationError is a local input problem. Its message is specific enough
// for the operator to fix the input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ParseCatalog checks that raw is syntactically valid JSON and that the top
// level is an array. Item fields are deliberately not checked here; the
// backend is the source of truth for required fields.
func ParseCatalog(raw string) (CatalogRequest, error) {
	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return CatalogRequest{}, &ValidationError{Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if _, ok := probe.([]any); !ok {
		return CatalogRequest{}, &ValidationError{Msg: "catalog must be a JSON array"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return CatalogRequest{}, &ValidationError{Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return CatalogRequest{Type: "catalog", Data: items}, nil
}

// NewDocumentRequest validates the two required fields after trimming
// whitespace.
func NewDocumentRequest(filePath, sourceTag string) (DocumentRequest, error) {
	filePath = strings.TrimSpace(filePath)
	sourceTag = strings.TrimSpace(sourceTag)
	if filePath == "" {
		return DocumentRequest{}, &ValidationError{Msg: "file path is required"}
	}
	if sourceTag == "" {
		return DocumentRequest{}, &ValidationError{Msg: "source tag is required"}
	}
	return DocumentRequest{Type: "document", FilePath: filePath, SourceTag: sourceTag}, nil
}

// State of a Submitter. Success and failure are mutually exclusive; each new
// submission clears the prior outcome.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

// ErrInFlight is returned when a submission is attempted while another one is
// still running on the same Submitter.
var ErrInFlight = errors.New("a submission is already in flight")

// Submitter runs validated ingestion requests against the backend, holding at
// most one in flight at a time.
type Submitter struct {
	client *backend.Client

	mu      sync.Mutex
	state   State
	result  backend.IngestResult
	lastErr string
}

// NewSubmitter creates a Submitter in the Idle state.
func NewSubmitter(client *backend.Client) *Submitter {
	return &Submitter{client: client}
}

// State returns the current state together with the outcome of the last
// finished submission: the result when Succeeded, the message when Failed.
func (s *Submitter) State() (State, backend.IngestResult, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.result, s.lastErr
}

// SubmitCatalog validates raw catalog JSON and posts it. No network call is
// made when validation fails.
func (s *Submitter) SubmitCatalog(ctx context.Context, raw string) (backend.IngestResult, error) {
	req, err := ParseCatalog(raw)
	if err != nil {
		return backend.IngestResult{}, err
	}
	return s.submit(ctx, req)
}

// SubmitDocument validates the path and tag and posts the document request.
func (s *Submitter) SubmitDocument(ctx context.Context, filePath, sourceTag string) (backend.IngestResult, error) {
	req, err := NewDocumentRequest(filePath, sourceTag)
	if err != nil {
		return backend.IngestResult{}, err
	}
	return s.submit(ctx, req)
}

func (s *Submitter) submit(ctx context.Context, req any) (backend.IngestResult, error) {
	s.mu.Lock()
	if s.state == Submitting {
		s.mu.Unlock()
		return backend.IngestResult{}, ErrInFlight
	}
	s.state = Submitting
	s.result = backend.IngestResult{}
	s.lastErr = ""
	s.mu.Unlock()

	res, err := s.client.Ingest(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Failed
		s.lastErr = backend.UserMessage(err)
		return backend.IngestResult{}, err
	}
	s.state = Succeeded
	s.result = res
	return res, nil
}
