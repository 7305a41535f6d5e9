package curriculum

import "sync"

// Bank is the in-memory question and revision catalog. It is filled once
// by Load and is read-only afterwards, so lookups are safe for concurrent use.
type Bank struct {
	subjects      []Subject
	subjectByID   map[string]int
	chapters      map[string]Chapter
	questions     []Question
	revisionItems []RevisionItem
	issues        []Issue
	mu            sync.RWMutex
}

func newBank() *Bank {
	return &Bank{
		subjectByID: make(map[string]int),
		chapters:    make(map[string]Chapter),
	}
}

// FindQuestions returns every question accepted by pred, in load order.
func (b *Bank) FindQuestions(pred func(Question) bool) []Question {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []Question{}
	for _, q := range b.questions {
		if pred == nil || pred(q) {
			out = append(out, q)
		}
	}
	return out
}

// FindRevisionItems returns every revision item accepted by pred, in load order.
func (b *Bank) FindRevisionItems(pred func(RevisionItem) bool) []RevisionItem {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []RevisionItem{}
	for _, r := range b.revisionItems {
		if pred == nil || pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Subject returns a subject by ID.
func (b *Bank) Subject(id string) (Subject, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.subjectByID[id]
	if !ok {
		return Subject{}, false
	}
	return b.subjects[i], true
}

// Subjects returns all subjects in load order.
func (b *Bank) Subjects() []Subject {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Subject{}, b.subjects...)
}

// Chapter returns a chapter by ID.
func (b *Bank) Chapter(id string) (Chapter, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.chapters[id]
	return c, ok
}

// SubjectOfChapter returns the ID of the subject owning chapterID.
func (b *Bank) SubjectOfChapter(chapterID string) (string, bool) {
	c, ok := b.Chapter(chapterID)
	if !ok {
		return "", false
	}
	return c.SubjectID, true
}

// Chapters returns the subject's chapters for a grade, in declared order.
func (b *Bank) Chapters(subjectID, grade string) []Chapter {
	s, ok := b.Subject(subjectID)
	if !ok {
		return nil
	}
	var out []Chapter
	for _, c := range s.Chapters {
		if c.Grade == grade {
			out = append(out, c)
		}
	}
	return out
}

// Issues returns the problems found while loading.
func (b *Bank) Issues() []Issue {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Issue{}, b.issues...)
}

// Stats summarises the bank contents.
type Stats struct {
	Subjects      int            `json:"subjects"`
	Chapters      int            `json:"chapters"`
	Questions     int            `json:"questions"`
	RevisionItems int            `json:"revision_items"`
	ByGrade       map[string]int `json:"by_grade"`
	ByDifficulty  map[string]int `json:"by_difficulty"`
}

// Stats counts questions by grade and difficulty tag ("untagged" for none).
func (b *Bank) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := Stats{
		Subjects:      len(b.subjects),
		Chapters:      len(b.chapters),
		Questions:     len(b.questions),
		RevisionItems: len(b.revisionItems),
		ByGrade:       make(map[string]int),
		ByDifficulty:  make(map[string]int),
	}
	for _, q := range b.questions {
		st.ByGrade[q.Grade]++
		d := string(q.Difficulty)
		if d == "" {
			d = "untagged"
		}
		st.ByDifficulty[d]++
	}
	return st
}
