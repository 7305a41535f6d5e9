// Package api exposes the learning core over HTTP.
//
// Callers are authenticated upstream; the user id in the path is trusted.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-learn/internal/curriculum"
	"github.com/p-n-ai/pai-learn/internal/gamification"
	"github.com/p-n-ai/pai-learn/internal/leaderboard"
	"github.com/p-n-ai/pai-learn/internal/quiz"
)

const maxBodyBytes = 64 << 10

// Catalog is the part of the question bank the handlers read.
type Catalog interface {
	quiz.Catalog
	Subjects() []curriculum.Subject
}

// LeaderboardReader serves ranked XP boards.
type LeaderboardReader interface {
	Top(ctx context.Context, scope leaderboard.Scope, at time.Time, limit int) ([]leaderboard.Entry, error)
	Rank(ctx context.Context, scope leaderboard.Scope, at time.Time, userID string) (leaderboard.Entry, error)
}

// SignalStreamer upgrades a request into a live signal stream for userID.
type SignalStreamer interface {
	ServeUser(w http.ResponseWriter, r *http.Request, userID string)
}

// HealthCheck reports whether a backend is reachable.
type HealthCheck func(ctx context.Context) error

// Server holds the handler dependencies.
type Server struct {
	Catalog     Catalog
	Generator   *quiz.Generator
	Engine      *gamification.Engine
	Leaderboard LeaderboardReader // nil when the cache is disabled
	Signals     SignalStreamer    // nil disables the stream endpoint
	Checks      map[string]HealthCheck
	MaxCount    int
	Now         func() time.Time
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /v1/subjects", s.handleSubjects)
	mux.HandleFunc("POST /v1/quizzes", s.handleCreateQuiz)
	mux.HandleFunc("POST /v1/revision-sets", s.handleCreateRevisionSet)

	mux.HandleFunc("GET /v1/users/{userID}/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /v1/users/{userID}/profile", s.handleOnboard)
	mux.HandleFunc("POST /v1/users/{userID}/completions", s.handleCompletion)
	mux.HandleFunc("GET /v1/users/{userID}/signals", s.handleSignals)

	mux.HandleFunc("GET /v1/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /v1/users/{userID}/rank", s.handleRank)
	return mux
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.Checks {
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "backend", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
