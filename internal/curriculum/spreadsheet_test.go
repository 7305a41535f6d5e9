package curriculum_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/pai-learn/internal/curriculum"
)

func TestSpreadsheet_ImportExported(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "math.yaml"), []byte(`
id: math
name: Mathematics
chapters:
  - id: m9-numbers
    name: Number Systems
    grade: "9"
`), 0o644)

	questions := []curriculum.Question{
		{ID: "s1", ChapterID: "m9-numbers", Grade: "9", Text: "2 + 2", Options: []string{"3", "4", "5"}, Answer: 1, Explanation: "Basic addition."},
		{ChapterID: "m9-numbers", Grade: "9", Difficulty: curriculum.DifficultyHard, Text: "√49", Options: []string{"6", "7"}, Answer: 1},
	}
	if err := curriculum.ExportQuestions(questions, filepath.Join(dir, "authored.xlsx")); err != nil {
		t.Fatalf("ExportQuestions() error = %v", err)
	}

	bank, err := curriculum.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if issues := bank.Issues(); len(issues) != 0 {
		t.Fatalf("Issues() = %v, want none", issues)
	}

	got := bank.FindQuestions(nil)
	if len(got) != 2 {
		t.Fatalf("FindQuestions() = %d, want 2", len(got))
	}
	if got[0].ID != "s1" || got[0].Answer != 1 || len(got[0].Options) != 3 {
		t.Errorf("first question = %+v, want id s1 with 3 options and answer 1", got[0])
	}
	wantID := curriculum.StableQuestionID("m9-numbers", "√49")
	if got[1].ID != wantID {
		t.Errorf("generated ID = %q, want %q", got[1].ID, wantID)
	}
	if got[1].Difficulty != curriculum.DifficultyHard {
		t.Errorf("Difficulty = %q, want hard", got[1].Difficulty)
	}
}

func TestStableQuestionID(t *testing.T) {
	a := curriculum.StableQuestionID("c1", "What is 2 + 2?")
	b := curriculum.StableQuestionID("c1", "  What is 2 + 2?  ")
	c := curriculum.StableQuestionID("c2", "What is 2 + 2?")

	if a != b {
		t.Errorf("surrounding whitespace changed the id: %q vs %q", a, b)
	}
	if a == c {
		t.Error("different chapters should produce different ids")
	}
	if len(a) != len("q-")+12 {
		t.Errorf("len(id) = %d, want 14", len(a))
	}
}
