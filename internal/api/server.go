// Package api exposes the voting session over HTTP: vote submission, live
// status, decoded game state, execution history, and the websocket feed.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clawplays/crowdplay/internal/gamestate"
	"github.com/clawplays/crowdplay/internal/store"
	"github.com/clawplays/crowdplay/internal/votes"
)

// Version is reported on every response and in health checks.
const Version = "0.3.0"

// maxHistoryLimit caps the GET /history page size; larger requests are
// rejected rather than silently shrunk.
const maxHistoryLimit = 500

// Voter is the vote engine surface the server needs.
type Voter interface {
	Submit(identity, button, displayName string) (votes.SubmitResult, error)
	Status() votes.Status
	Buttons() []string
}

// Snapshots supplies the most recent decoded game state, or nil before the
// first successful poll.
type Snapshots interface {
	Snapshot() *gamestate.Snapshot
}

// Server handles HTTP requests
type Server struct {
	engine    Voter
	snapshots Snapshots
	db        store.DB
	ws        http.HandlerFunc
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a new API server. db, snapshots and ws may be nil; the
// matching endpoints then degrade rather than the whole surface failing.
func NewServer(engine Voter, snapshots Snapshots, db store.DB, ws http.HandlerFunc) *Server {
	return &Server{
		engine:    engine,
		snapshots: snapshots,
		db:        db,
		ws:        ws,
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags),
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)

	r.Post("/vote", s.handleVote)
	r.Get("/status", s.handleStatus)
	r.Get("/gamestate", s.handleGameState)
	r.Get("/history", s.handleHistory)
	r.Get("/buttons", s.handleButtons)

	if s.ws != nil {
		r.Get("/ws", s.ws)
	}

	return r
}

// identity derives the per-caller vote key. RealIP middleware has already
// resolved proxy headers, so RemoteAddr is the caller's address, with or
// without a port.
func identity(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", "request body must be JSON with a button field")
		return
	}
	if req.Button == "" {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", "button is required")
		return
	}

	id := identity(r)
	name := req.DisplayName
	if name == "" {
		name = id
	}

	res, err := s.engine.Submit(id, req.Button, name)
	if err != nil {
		s.writeVoteError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, VoteResponse{
		Accepted:       true,
		WindowID:       res.WindowID,
		IsChange:       res.IsChange,
		PreviousButton: res.PreviousButton,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Status()
	s.writeJSON(w, http.StatusOK, StatusResponse{
		WindowID:        st.WindowID,
		TimeRemainingMs: st.TimeRemaining.Milliseconds(),
		TotalVotes:      st.TotalVotes,
		Tallies:         st.Tallies,
		CoolingDown:     st.CoolingDown,
		Previous:        st.Previous,
	})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "unavailable", "game state polling is disabled")
		return
	}
	snap := s.snapshots.Snapshot()
	if snap == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "unavailable", "no game state decoded yet")
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "unavailable", "execution history is disabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			s.writeError(w, r, http.StatusBadRequest, "invalid_request",
				fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
			return
		}
		limit = n
	}

	execs, err := s.db.ListExecutions(limit)
	if err != nil {
		s.logger.Printf("list executions: %v", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal", "failed to load execution history")
		return
	}

	entries := make([]HistoryEntry, 0, len(execs))
	for _, e := range execs {
		tallies := json.RawMessage(e.TalliesJSON)
		if len(tallies) == 0 {
			tallies = json.RawMessage("[]")
		}
		entries = append(entries, HistoryEntry{
			ID:         e.ID,
			WindowID:   e.WindowID,
			Winner:     e.Winner,
			TotalVotes: e.TotalVotes,
			Tallies:    tallies,
			ExecutedAt: e.ExecutedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, HistoryResponse{Executions: entries})
}

func (s *Server) handleButtons(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, ButtonsResponse{Buttons: s.engine.Buttons()})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Version", Version)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
