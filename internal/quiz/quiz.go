package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-learn/internal/curriculum"
)

// Quiz is a generated quiz handed to a client.
type Quiz struct {
	ID          string                `json:"id"`
	Questions   []curriculum.Question `json:"questions"`
	Requested   int                   `json:"requested"`
	Underfilled bool                  `json:"underfilled"`
	CreatedAt   time.Time             `json:"created_at"`
}

// RevisionSet is a generated revision session.
type RevisionSet struct {
	ID          string                    `json:"id"`
	Items       []curriculum.RevisionItem `json:"items"`
	Requested   int                       `json:"requested"`
	Underfilled bool                      `json:"underfilled"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// NewQuiz wraps generated questions with an ID and under-fill flag.
func NewQuiz(questions []curriculum.Question, requested int) Quiz {
	return Quiz{
		ID:          uuid.NewString(),
		Questions:   questions,
		Requested:   requested,
		Underfilled: len(questions) < requested,
		CreatedAt:   time.Now(),
	}
}

// NewRevisionSet wraps generated revision items with an ID and under-fill flag.
func NewRevisionSet(items []curriculum.RevisionItem, requested int) RevisionSet {
	return RevisionSet{
		ID:          uuid.NewString(),
		Items:       items,
		Requested:   requested,
		Underfilled: len(items) < requested,
		CreatedAt:   time.Now(),
	}
}
