package curriculum

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/blake2b"
)

// QuestionSheet is the worksheet name used for spreadsheet import and export.
const QuestionSheet = "questions"

var optionColumns = []string{"option_a", "option_b", "option_c", "option_d", "option_e", "option_f"}

func sheetHeader() []any {
	h := []any{"id", "chapter_id", "grade", "difficulty", "text"}
	for _, c := range optionColumns {
		h = append(h, c)
	}
	return append(h, "answer", "explanation")
}

// loadSpreadsheet reads authored questions from the "questions" sheet.
// Columns are matched by header name; rows without an id get a stable
// content-derived one so re-imports keep the same identifiers.
func (l *loader) loadSpreadsheet(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		l.reject(path, "", fmt.Sprintf("opening spreadsheet: %v", err))
		return nil
	}
	defer f.Close()

	rows, err := f.GetRows(QuestionSheet)
	if err != nil {
		l.reject(path, "", fmt.Sprintf("reading sheet %q: %v", QuestionSheet, err))
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	cols := make(map[string]int)
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"chapter_id", "grade", "text", "answer"} {
		if _, ok := cols[required]; !ok {
			l.reject(path, "", fmt.Sprintf("missing column %q", required))
			return nil
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for n, row := range rows[1:] {
		q := Question{
			ID:          cell(row, "id"),
			ChapterID:   cell(row, "chapter_id"),
			Grade:       cell(row, "grade"),
			Difficulty:  Difficulty(cell(row, "difficulty")),
			Text:        cell(row, "text"),
			Explanation: cell(row, "explanation"),
		}
		if q.Text == "" && q.ChapterID == "" {
			continue // blank row
		}
		for _, c := range optionColumns {
			if v := cell(row, c); v != "" {
				q.Options = append(q.Options, v)
			}
		}
		answer, err := parseAnswer(cell(row, "answer"))
		if err != nil {
			l.reject(path, q.ID, fmt.Sprintf("row %d: %v", n+2, err))
			continue
		}
		q.Answer = answer
		if q.ID == "" {
			q.ID = StableQuestionID(q.ChapterID, q.Text)
		}
		l.questions = append(l.questions, sourced[Question]{path: path, item: q})
	}
	return nil
}

// parseAnswer accepts an option letter (A, B, ...) or a zero-based index.
func parseAnswer(s string) (int, error) {
	if len(s) == 1 {
		c := s[0] | 0x20
		if c >= 'a' && c <= 'f' {
			return int(c - 'a'), nil
		}
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid answer %q", s)
	}
	return i, nil
}

// StableQuestionID derives an identifier from a question's chapter and text.
func StableQuestionID(chapterID, text string) string {
	sum := blake2b.Sum256([]byte(chapterID + "\x00" + clean(text)))
	return "q-" + hex.EncodeToString(sum[:6])
}

// ExportQuestions writes questions to an .xlsx file in the import layout.
func ExportQuestions(questions []Question, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", QuestionSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	header := sheetHeader()
	if err := f.SetSheetRow(QuestionSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, q := range questions {
		row := []any{q.ID, q.ChapterID, q.Grade, string(q.Difficulty), q.Text}
		for j := range optionColumns {
			opt := ""
			if j < len(q.Options) {
				opt = q.Options[j]
			}
			row = append(row, opt)
		}
		row = append(row, string(rune('A'+q.Answer)), q.Explanation)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(QuestionSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving spreadsheet: %w", err)
	}
	return nil
}
