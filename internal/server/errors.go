package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/bulk"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/fetch"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/ratelimit"
)

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Upstream fetch failures map to 502 so clients can tell a bad destination
// apart from a bad request.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrValidation:
		return http.StatusBadRequest
	case *ratelimit.Error:
		return http.StatusTooManyRequests
	case *bulk.NotFoundError:
		return http.StatusNotFound
	case *bulk.ForbiddenError:
		return http.StatusForbidden
	case *fetch.Error:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// handleError maps an error to its status and writes it. Rate limit errors
// also get a Retry-After header.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	if rl, ok := err.(*ratelimit.Error); ok {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.RetryAfter/time.Second)+1))
	}
	s.errorResponse(w, HTTPStatus(err), err.Error())
}
