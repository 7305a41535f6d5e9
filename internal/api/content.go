package api

import (
	"fmt"
	"net/http"

	"github.com/p-n-ai/pai-learn/internal/curriculum"
	"github.com/p-n-ai/pai-learn/internal/gamification"
	"github.com/p-n-ai/pai-learn/internal/quiz"
)

type subjectView struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Icon     string               `json:"icon,omitempty"`
	Chapters []curriculum.Chapter `json:"chapters"`
}

// handleSubjects lists subjects with their chapters. With ?grade= only
// chapters of that grade are listed and subjects without any are dropped.
func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	grade := r.URL.Query().Get("grade")

	out := []subjectView{}
	for _, subj := range s.Catalog.Subjects() {
		chapters := subj.Chapters
		if grade != "" {
			chapters = s.Catalog.Chapters(subj.ID, grade)
			if len(chapters) == 0 {
				continue
			}
		}
		out = append(out, subjectView{ID: subj.ID, Name: subj.Name, Icon: subj.Icon, Chapters: chapters})
	}
	writeJSON(w, http.StatusOK, map[string]any{"subjects": out})
}

type quizRequest struct {
	ChapterIDs []string `json:"chapter_ids"`
	Count      int      `json:"count"`
	Grade      string   `json:"grade"`
	Difficulty string   `json:"difficulty"`
}

// handleCreateQuiz builds a quiz. Requests the generator treats as empty
// (no chapters, a non-positive count, an unknown grade) get an empty quiz
// rather than an error. Only counts above MaxCount are refused.
func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Count > s.MaxCount {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("count must be at most %d", s.MaxCount))
		return
	}
	difficulty, ok := curriculum.ParseDifficulty(req.Difficulty)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown difficulty %q", req.Difficulty))
		return
	}

	questions := s.Generator.GenerateQuiz(req.ChapterIDs, req.Count, req.Grade, difficulty)
	writeJSON(w, http.StatusCreated, quiz.NewQuiz(questions, requested(req.Count, req.ChapterIDs)))
}

type revisionRequest struct {
	SubjectIDs []string `json:"subject_ids"`
	Grade      string   `json:"grade"`
	Total      *int     `json:"total"`
}

// handleCreateRevisionSet builds a revision session. An absent total means
// the standard session size; an explicit zero yields an empty set.
func (s *Server) handleCreateRevisionSet(w http.ResponseWriter, r *http.Request) {
	var req revisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	total := gamification.RevisionSessionSize
	if req.Total != nil {
		total = *req.Total
	}
	if total > s.MaxCount {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("total must be at most %d", s.MaxCount))
		return
	}

	items := s.Generator.GenerateRevisionSet(req.SubjectIDs, req.Grade, total)
	writeJSON(w, http.StatusCreated, quiz.NewRevisionSet(items, requested(total, req.SubjectIDs)))
}

// requested is the size reported back in an envelope. A request that
// selects nothing asked for nothing, so its empty result is not a shortfall.
func requested(n int, ids []string) int {
	if len(ids) == 0 || n < 0 {
		return 0
	}
	return n
}
