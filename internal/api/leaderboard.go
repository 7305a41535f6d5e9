package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-learn/internal/leaderboard"
)

func (s *Server) leaderboardParams(w http.ResponseWriter, r *http.Request) (leaderboard.Scope, bool) {
	if s.Leaderboard == nil {
		writeError(w, http.StatusServiceUnavailable, "leaderboard disabled")
		return "", false
	}
	scope, err := leaderboard.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return scope, true
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	scope, ok := s.leaderboardParams(w, r)
	if !ok {
		return
	}

	limit := leaderboard.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.Leaderboard.Top(r.Context(), scope, s.now(), limit)
	if err != nil {
		slog.Error("leaderboard read failed", "scope", scope, "error", err)
		writeError(w, http.StatusServiceUnavailable, "leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scope": scope, "entries": entries})
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	scope, ok := s.leaderboardParams(w, r)
	if !ok {
		return
	}

	entry, err := s.Leaderboard.Rank(r.Context(), scope, s.now(), r.PathValue("userID"))
	if err != nil {
		if errors.Is(err, leaderboard.ErrNotRanked) {
			writeError(w, http.StatusNotFound, "user not ranked")
			return
		}
		slog.Error("leaderboard read failed", "scope", scope, "error", err)
		writeError(w, http.StatusServiceUnavailable, "leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
