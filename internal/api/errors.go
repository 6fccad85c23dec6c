package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/clawplays/crowdplay/internal/votes"
)

// writeError writes a structured error response
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:     errType,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeVoteError maps engine submission errors to HTTP statuses. A vote
// during cooldown is a conflict with session state, not a bad request.
func (s *Server) writeVoteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, votes.ErrUnknownButton):
		s.writeError(w, r, http.StatusBadRequest, "unknown_button", err.Error())
	case errors.Is(err, votes.ErrCooldown):
		s.writeError(w, r, http.StatusConflict, "cooldown", err.Error())
	default:
		s.logger.Printf("submit vote: %v", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal", "failed to record vote")
	}
}
