// Package quiz builds quizzes and revision sets from the question bank.
package quiz

import (
	"math/rand/v2"

	"github.com/p-n-ai/pai-learn/internal/curriculum"
)

// Catalog is the read-only view of the question bank the generators need.
type Catalog interface {
	FindQuestions(pred func(curriculum.Question) bool) []curriculum.Question
	FindRevisionItems(pred func(curriculum.RevisionItem) bool) []curriculum.RevisionItem
	SubjectOfChapter(chapterID string) (string, bool)
	Chapters(subjectID, grade string) []curriculum.Chapter
}

// ShuffleFunc permutes n elements in place through swap.
type ShuffleFunc func(n int, swap func(i, j int))

// Option configures a Generator.
type Option func(*Generator)

// WithShuffle replaces the default Fisher–Yates shuffle (tests use this to
// make results reproducible).
func WithShuffle(fn ShuffleFunc) Option {
	return func(g *Generator) {
		g.shuffle = fn
	}
}

// Generator selects questions and revision items. It holds no mutable
// state and is safe for concurrent use.
type Generator struct {
	catalog Catalog
	shuffle ShuffleFunc
}

// NewGenerator creates a generator over catalog.
func NewGenerator(catalog Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog: catalog,
		shuffle: rand.Shuffle,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateQuiz returns up to count questions from chapterIDs for grade.
//
// When the chapters hold fewer than count matching questions, the pool is
// widened to the whole subject of the first requested chapter (same grade
// and difficulty rule). A result shorter than count is not an error; the
// caller decides whether to tell the user.
func (g *Generator) GenerateQuiz(chapterIDs []string, count int, grade string, difficulty curriculum.Difficulty) []curriculum.Question {
	if count <= 0 || len(chapterIDs) == 0 {
		return []curriculum.Question{}
	}

	pool := g.questionPool(toSet(chapterIDs), grade, difficulty)

	if len(pool) < count {
		if subjectID, ok := g.catalog.SubjectOfChapter(chapterIDs[0]); ok {
			subjectChapters := make(map[string]bool)
			for _, c := range g.catalog.Chapters(subjectID, grade) {
				subjectChapters[c.ID] = true
			}
			// Tags elsewhere in the subject can make the widened pool
			// stricter than the original one; keep whichever is larger.
			if wider := g.questionPool(subjectChapters, grade, difficulty); len(wider) > len(pool) {
				pool = wider
			}
		}
	}

	g.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > count {
		pool = pool[:count]
	}
	return pool
}

func (g *Generator) questionPool(chapters map[string]bool, grade string, difficulty curriculum.Difficulty) []curriculum.Question {
	pool := g.catalog.FindQuestions(func(q curriculum.Question) bool {
		return chapters[q.ChapterID] && q.Grade == grade
	})
	if difficulty == "" || difficulty == curriculum.DifficultyAll || !anyTagged(pool) {
		return pool
	}

	out := pool[:0]
	for _, q := range pool {
		if q.Difficulty == difficulty {
			out = append(out, q)
		}
	}
	return out
}

// anyTagged reports whether the pool carries difficulty tags at all. A
// pool without tags is not narrowed by difficulty.
func anyTagged(pool []curriculum.Question) bool {
	for _, q := range pool {
		if q.Difficulty != "" {
			return true
		}
	}
	return false
}

// GenerateRevisionSet spreads total items across subjectIDs in the given
// order using Apportion. Each subject draws only from its lead chapter for
// grade. Unfilled shares are not redistributed.
func (g *Generator) GenerateRevisionSet(subjectIDs []string, grade string, total int) []curriculum.RevisionItem {
	if len(subjectIDs) == 0 || total <= 0 {
		return []curriculum.RevisionItem{}
	}

	shares := Apportion(total, len(subjectIDs))
	out := []curriculum.RevisionItem{}
	for i, subjectID := range subjectIDs {
		chapters := g.catalog.Chapters(subjectID, grade)
		if len(chapters) == 0 {
			continue
		}
		lead := chapters[0].ID

		candidates := g.catalog.FindRevisionItems(func(r curriculum.RevisionItem) bool {
			return r.SubjectID == subjectID && r.Grade == grade && r.ChapterID == lead
		})
		g.shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		if len(candidates) > shares[i] {
			candidates = candidates[:shares[i]]
		}
		out = append(out, candidates...)
	}

	g.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Apportion splits total across n buckets: every bucket gets total/n and
// the first total%n buckets get one more.
func Apportion(total, n int) []int {
	if n <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	base, remainder := total/n, total%n
	shares := make([]int, n)
	for i := range shares {
		shares[i] = base
		if remainder > 0 {
			shares[i]++
			remainder--
		}
	}
	return shares
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
