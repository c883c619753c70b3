package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// TransportError means the call never produced a response: DNS failure,
// refused connection, timeout. Distinct from APIError, where the backend was
// reachable but answered with a non-success status.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cannot reach backend: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response. Detail carries the server-provided
// explanation when the body had one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// newAPIError consumes resp.Body looking for a {"detail": "..."} payload.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}

// UserMessage maps any error from this package to the message shown to the
// operator: the server detail for HTTP failures, a generic connectivity line
// for transport failures.
func UserMessage(err error) string {
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return "cannot reach backend"
	}
	var aErr *APIError
	if errors.As(err, &aErr) {
		return aErr.Error()
	}
	return err.Error()
}
