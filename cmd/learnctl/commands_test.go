package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/pai-learn/internal/curriculum"
	"github.com/p-n-ai/pai-learn/internal/quiz"
)

const mathYAML = `id: math
name: Mathematics
chapters:
  - id: m9
    name: Numbers
    grade: "9"
questions:
  - id: q1
    chapter_id: m9
    grade: "9"
    text: 2 + 2?
    options: ["3", "4"]
    answer: 1
  - id: q2
    chapter_id: m9
    grade: "9"
    difficulty: easy
    text: 1 + 1?
    options: ["2", "3"]
    answer: 0
revision:
  - id: r1
    chapter_id: m9
    grade: "9"
    type: term
    topic: Integers
    content: Whole numbers and their negatives.
    question:
      text: Is -3 an integer?
      options: ["yes", "no"]
      answer: 0
`

func contentDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBankValidate(t *testing.T) {
	dir := contentDir(t, map[string]string{"math.yaml": mathYAML})
	out, err := run(t, "bank", "validate", "--curriculum", dir)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	broken := contentDir(t, map[string]string{
		"math.yaml": mathYAML,
		"bad.yaml":  "id: bad\nname: Bad\n",
	})
	out, err = run(t, "bank", "validate", "--curriculum", broken)
	assert.True(t, errors.Is(err, errIssues))
	assert.Contains(t, out, "bad.yaml")
	assert.Contains(t, out, "1 issue(s)")
}

func TestBankStats(t *testing.T) {
	dir := contentDir(t, map[string]string{"math.yaml": mathYAML})
	out, err := run(t, "bank", "stats", "--curriculum", dir)
	require.NoError(t, err)

	var st curriculum.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 1, st.Subjects)
	assert.Equal(t, 2, st.Questions)
	assert.Equal(t, 1, st.RevisionItems)
	assert.Equal(t, 2, st.ByGrade["9"])
}

func TestBankExport(t *testing.T) {
	dir := contentDir(t, map[string]string{"math.yaml": mathYAML})
	dest := filepath.Join(t.TempDir(), "out.xlsx")

	out, err := run(t, "bank", "export", "--curriculum", dir, "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 questions")

	_, err = os.Stat(dest)
	require.NoError(t, err)
}

func TestQuiz(t *testing.T) {
	dir := contentDir(t, map[string]string{"math.yaml": mathYAML})

	out, err := run(t, "quiz", "--curriculum", dir, "--chapters", "m9", "--grade", "9", "--count", "5", "--difficulty", "easy")
	require.NoError(t, err)

	var q quiz.Quiz
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	require.Len(t, q.Questions, 1, "untagged q1 is excluded once the chapter carries tags")
	assert.Equal(t, "q2", q.Questions[0].ID)
	assert.True(t, q.Underfilled)

	_, err = run(t, "quiz", "--curriculum", dir, "--grade", "9")
	assert.Error(t, err)
	_, err = run(t, "quiz", "--curriculum", dir, "--chapters", "m9", "--grade", "9", "--difficulty", "brutal")
	assert.Error(t, err)
}

func TestRevision(t *testing.T) {
	dir := contentDir(t, map[string]string{"math.yaml": mathYAML})

	out, err := run(t, "revision", "--curriculum", dir, "--subjects", "math", "--grade", "9")
	require.NoError(t, err)

	var set quiz.RevisionSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	assert.Equal(t, 7, set.Requested)
	require.Len(t, set.Items, 1)
	assert.Equal(t, "r1", set.Items[0].ID)

	_, err = run(t, "revision", "--curriculum", dir, "--subjects", "math", "--grade", "9", "--total", "0")
	assert.Error(t, err)
}
