package curriculum

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// loader collects documents from disk before they are indexed into a Bank.
// Indexing happens after the walk so that spreadsheets may reference
// chapters declared in YAML files visited later.
type loader struct {
	rootDir   string
	subjects  []sourced[Subject]
	questions []sourced[Question]
	revision  []sourced[RevisionItem]
	issues    []Issue
}

type sourced[T any] struct {
	path string
	item T
}

// Load reads every subject YAML and question spreadsheet under rootDir.
// Invalid documents and items are skipped and reported through Bank.Issues.
func Load(rootDir string) (*Bank, error) {
	l := &loader{rootDir: rootDir}

	if err := filepath.WalkDir(rootDir, l.visit); err != nil {
		return nil, fmt.Errorf("loading curriculum: %w", err)
	}

	b := l.build()
	slog.Info("curriculum loaded",
		"subjects", len(b.subjects),
		"questions", len(b.questions),
		"revision_items", len(b.revisionItems),
		"issues", len(b.issues),
	)
	return b, nil
}

// NewBank indexes in-memory content with the same checks Load applies.
// RevisionItem.SubjectID must be set by the caller.
func NewBank(subjects []Subject, questions []Question, revision []RevisionItem) *Bank {
	l := &loader{}
	for _, s := range subjects {
		l.subjects = append(l.subjects, sourced[Subject]{item: s})
	}
	for _, q := range questions {
		l.questions = append(l.questions, sourced[Question]{item: q})
	}
	for _, r := range revision {
		l.revision = append(l.revision, sourced[RevisionItem]{item: r})
	}
	return l.build()
}

func (l *loader) visit(path string, d fs.DirEntry, err error) error {
	if err != nil || d.IsDir() {
		return nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return l.loadSubjectFile(path)
	case ".xlsx":
		return l.loadSpreadsheet(path)
	}
	return nil
}

func (l *loader) loadSubjectFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		l.reject(path, "", fmt.Sprintf("invalid YAML: %v", err))
		return nil
	}
	if m, ok := raw.(map[string]any); !ok || m["id"] == nil {
		return nil // Not a subject file
	}
	if err := validateDocument(raw); err != nil {
		l.reject(path, "", err.Error())
		return nil
	}

	var doc subjectDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		l.reject(path, "", fmt.Sprintf("decoding subject: %v", err))
		return nil
	}

	l.subjects = append(l.subjects, sourced[Subject]{path: path, item: doc.Subject})
	for _, q := range doc.Questions {
		l.questions = append(l.questions, sourced[Question]{path: path, item: q})
	}
	for _, r := range doc.Revision {
		r.SubjectID = doc.ID
		l.revision = append(l.revision, sourced[RevisionItem]{path: path, item: r})
	}
	return nil
}

func (l *loader) reject(path, itemID, reason string) {
	slog.Warn("skipping curriculum content", "path", path, "item_id", itemID, "reason", reason)
	l.issues = append(l.issues, Issue{Path: path, ItemID: itemID, Reason: reason})
}

func (l *loader) build() *Bank {
	b := newBank()

	for _, src := range l.subjects {
		s := src.item
		if _, dup := b.subjectByID[s.ID]; dup {
			l.reject(src.path, s.ID, "duplicate subject id")
			continue
		}
		s.Name = clean(s.Name)
		chapters := make([]Chapter, 0, len(s.Chapters))
		for _, c := range s.Chapters {
			if _, dup := b.chapters[c.ID]; dup {
				l.reject(src.path, c.ID, "duplicate chapter id")
				continue
			}
			c.SubjectID = s.ID
			c.Name = clean(c.Name)
			b.chapters[c.ID] = c
			chapters = append(chapters, c)
		}
		s.Chapters = chapters
		b.subjectByID[s.ID] = len(b.subjects)
		b.subjects = append(b.subjects, s)
	}

	seen := make(map[string]bool)
	for _, src := range l.questions {
		q := normalizeQuestion(src.item)
		if reason := b.checkQuestion(q, seen); reason != "" {
			l.reject(src.path, q.ID, reason)
			continue
		}
		seen[q.ID] = true
		b.questions = append(b.questions, q)
	}

	seen = make(map[string]bool)
	for _, src := range l.revision {
		r := normalizeRevision(src.item)
		if reason := b.checkRevision(r, seen); reason != "" {
			l.reject(src.path, r.ID, reason)
			continue
		}
		seen[r.ID] = true
		b.revisionItems = append(b.revisionItems, r)
	}

	b.issues = l.issues
	return b
}

func (b *Bank) checkQuestion(q Question, seen map[string]bool) string {
	switch {
	case q.ID == "":
		return "missing id"
	case seen[q.ID]:
		return "duplicate question id"
	case len(q.Options) < 2:
		return "fewer than two options"
	case q.Answer < 0 || q.Answer >= len(q.Options):
		return fmt.Sprintf("answer index %d out of range", q.Answer)
	}
	if _, ok := ParseDifficulty(string(q.Difficulty)); !ok || q.Difficulty == DifficultyAll {
		return fmt.Sprintf("unknown difficulty %q", q.Difficulty)
	}
	c, ok := b.chapters[q.ChapterID]
	if !ok {
		return fmt.Sprintf("unknown chapter %q", q.ChapterID)
	}
	if c.Grade != q.Grade {
		return fmt.Sprintf("grade %q does not match chapter grade %q", q.Grade, c.Grade)
	}
	return ""
}

func (b *Bank) checkRevision(r RevisionItem, seen map[string]bool) string {
	switch {
	case r.ID == "":
		return "missing id"
	case seen[r.ID]:
		return "duplicate revision id"
	case len(r.Question.Options) < 2:
		return "fewer than two options"
	case r.Question.Answer < 0 || r.Question.Answer >= len(r.Question.Options):
		return fmt.Sprintf("answer index %d out of range", r.Question.Answer)
	}
	switch r.Kind {
	case KindFormula, KindConcept, KindTerm:
	default:
		return fmt.Sprintf("unknown revision type %q", r.Kind)
	}
	c, ok := b.chapters[r.ChapterID]
	if !ok || c.SubjectID != r.SubjectID {
		return fmt.Sprintf("chapter %q is not part of subject %q", r.ChapterID, r.SubjectID)
	}
	if c.Grade != r.Grade {
		return fmt.Sprintf("grade %q does not match chapter grade %q", r.Grade, c.Grade)
	}
	return ""
}

// clean trims and NFC-normalises display text so that visually identical
// strings authored on different keyboards compare equal.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func cleanAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = clean(s)
	}
	return out
}

func normalizeQuestion(q Question) Question {
	q.ID = strings.TrimSpace(q.ID)
	q.Difficulty = Difficulty(strings.ToLower(strings.TrimSpace(string(q.Difficulty))))
	q.Text = clean(q.Text)
	q.Options = cleanAll(q.Options)
	q.Explanation = clean(q.Explanation)
	return q
}

func normalizeRevision(r RevisionItem) RevisionItem {
	r.ID = strings.TrimSpace(r.ID)
	r.Topic = clean(r.Topic)
	r.Content = clean(r.Content)
	r.Question.Text = clean(r.Question.Text)
	r.Question.Options = cleanAll(r.Question.Options)
	return r
}
