package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/p-n-ai/pai-learn/internal/gamification"
	"github.com/p-n-ai/pai-learn/internal/profile"
)

// persistenceStatus maps a store failure to an HTTP status.
func persistenceStatus(err error) int {
	switch profile.KindOf(err) {
	case profile.KindNotFound:
		return http.StatusNotFound
	case profile.KindPermission:
		return http.StatusForbidden
	case profile.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func isInputError(err error) bool {
	return errors.Is(err, gamification.ErrUserRequired) || errors.Is(err, gamification.ErrGradeRequired)
}

func writePersistenceError(w http.ResponseWriter, err error) {
	writeJSON(w, persistenceStatus(err), errorResponse{
		Error: "profile store error",
		Kind:  string(profile.KindOf(err)),
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.Engine.Profile(r.Context(), r.PathValue("userID"))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writePersistenceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type onboardRequest struct {
	DisplayName string `json:"display_name"`
	Grade       string `json:"grade"`
}

func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	p, err := s.Engine.Onboard(r.Context(), r.PathValue("userID"), req.DisplayName, req.Grade)
	if err != nil {
		if isInputError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writePersistenceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type completionRequest struct {
	QuestionCount int    `json:"question_count"`
	ChapterID     string `json:"chapter_id"`
}

type completionFailure struct {
	errorResponse
	Outcome gamification.Outcome `json:"outcome"`
}

// handleCompletion records a finished session. When the profile write
// fails the computed outcome is still returned next to the error, since
// the client may already have shown it.
func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.QuestionCount < 0 {
		writeError(w, http.StatusBadRequest, "question_count must not be negative")
		return
	}

	out, err := s.Engine.CompleteQuiz(r.Context(), gamification.Completion{
		UserID:        r.PathValue("userID"),
		QuestionCount: req.QuestionCount,
		ChapterID:     req.ChapterID,
		At:            s.now(),
	})
	if err != nil {
		if isInputError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if out.Err == nil {
			writePersistenceError(w, err)
			return
		}
		writeJSON(w, persistenceStatus(err), completionFailure{
			errorResponse: errorResponse{Error: "profile not saved", Kind: string(profile.KindOf(err))},
			Outcome:       out,
		})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	if s.Signals == nil {
		writeError(w, http.StatusNotFound, "signal stream disabled")
		return
	}
	s.Signals.ServeUser(w, r, r.PathValue("userID"))
}
