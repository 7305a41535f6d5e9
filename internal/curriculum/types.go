package curriculum

// Difficulty tags a question. Only part of the bank carries tags; an
// empty Difficulty means the question is untagged.
type Difficulty string

const (
	DifficultyAll    Difficulty = "all"
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps user input to a Difficulty. Empty input means all.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(s); d {
	case "", DifficultyAll:
		return DifficultyAll, true
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	default:
		return "", false
	}
}

// RevisionKind is the content type of a revision card.
type RevisionKind string

const (
	KindFormula RevisionKind = "formula"
	KindConcept RevisionKind = "concept"
	KindTerm    RevisionKind = "term"
)

// Subject represents a subject (e.g., Mathematics) and its ordered chapters.
type Subject struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Icon     string    `yaml:"icon" json:"icon"`
	Chapters []Chapter `yaml:"chapters" json:"chapters"`
}

// Chapter belongs to exactly one subject and one grade.
type Chapter struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	SubjectID string `yaml:"-" json:"subject_id"`
	Grade     string `yaml:"grade" json:"grade"`
}

// Question is a multiple-choice quiz item.
type Question struct {
	ID          string     `yaml:"id" json:"id"`
	ChapterID   string     `yaml:"chapter_id" json:"chapter_id"`
	Grade       string     `yaml:"grade" json:"grade"`
	Difficulty  Difficulty `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
	Text        string     `yaml:"text" json:"text"`
	Options     []string   `yaml:"options" json:"options"`
	Answer      int        `yaml:"answer" json:"answer"`
	Explanation string     `yaml:"explanation" json:"explanation"`
}

// EmbeddedQuestion is the single check question attached to a revision card.
type EmbeddedQuestion struct {
	Text    string   `yaml:"text" json:"text"`
	Options []string `yaml:"options" json:"options"`
	Answer  int      `yaml:"answer" json:"answer"`
}

// RevisionItem is a revision card keyed to a subject's chapter.
type RevisionItem struct {
	ID        string           `yaml:"id" json:"id"`
	SubjectID string           `yaml:"-" json:"subject_id"`
	ChapterID string           `yaml:"chapter_id" json:"chapter_id"`
	Grade     string           `yaml:"grade" json:"grade"`
	Kind      RevisionKind     `yaml:"type" json:"type"`
	Topic     string           `yaml:"topic" json:"topic"`
	Content   string           `yaml:"content" json:"content"`
	Question  EmbeddedQuestion `yaml:"question" json:"question"`
}

// subjectDocument is the on-disk layout of one subject YAML file.
type subjectDocument struct {
	Subject   `yaml:",inline"`
	Questions []Question     `yaml:"questions"`
	Revision  []RevisionItem `yaml:"revision"`
}

// Issue records a document or item rejected while loading the bank.
type Issue struct {
	Path   string `json:"path"`
	ItemID string `json:"item_id,omitempty"`
	Reason string `json:"reason"`
}
