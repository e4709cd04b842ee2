package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizbook/internal/progress"
)

// Question is a single multiple-choice question. Questions are immutable
// once the bank is loaded.
type Question struct {
	ID          int      `json:"-" yaml:"-"` // position in the bank
	Category    string   `json:"category" yaml:"category"`
	Question    string   `json:"question" yaml:"question"`
	Options     []string `json:"options" yaml:"options"`
	Answer      string   `json:"answer" yaml:"answer"`
	Explanation string   `json:"explanation" yaml:"explanation"`
}

// IsCorrect reports whether choice is exactly the answer.
func (q Question) IsCorrect(choice string) bool {
	return choice == q.Answer
}

// Bank is the loaded, read-only question bank.
type Bank struct {
	questions  []Question
	categories []string
	byCategory map[string][]int
}

// Load reads a question bank from path. JSON is the native format; files
// ending in .yaml or .yml are decoded as YAML and validated the same way.
func Load(path string) (*Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Index: -1, Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yamlToJSON(raw)
		if err != nil {
			return nil, &LoadError{Path: path, Index: -1, Err: err}
		}
	}

	b, err := Parse(raw)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return b, nil
}

// Parse builds a bank from a JSON document.
func Parse(raw []byte) (*Bank, error) {
	if err := validateDocument(raw); err != nil {
		return nil, &LoadError{Index: -1, Err: err}
	}

	var questions []Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, &LoadError{Index: -1, Err: fmt.Errorf("decode questions: %w", err)}
	}

	return New(questions)
}

// New builds a bank from in-memory questions, assigning IDs by position.
func New(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, &LoadError{Index: -1, Err: errors.New("bank has no questions")}
	}

	qs := make([]Question, len(questions))
	byCategory := make(map[string][]int)
	for i, q := range questions {
		if !slices.Contains(q.Options, q.Answer) {
			return nil, &LoadError{Index: i, Err: fmt.Errorf("answer %q is not one of the options", q.Answer)}
		}
		q.ID = i
		q.Options = slices.Clone(q.Options)
		qs[i] = q
		byCategory[q.Category] = append(byCategory[q.Category], i)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return &Bank{
		questions:  qs,
		categories: categories,
		byCategory: byCategory,
	}, nil
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Question returns the question at index i.
func (b *Bank) Question(i int) (Question, bool) {
	if !b.ValidIndex(i) {
		return Question{}, false
	}
	return b.questions[i], true
}

// Questions returns a copy of all questions in bank order.
func (b *Bank) Questions() []Question {
	return slices.Clone(b.questions)
}

// ValidIndex reports whether i refers to a question in the bank.
func (b *Bank) ValidIndex(i int) bool {
	return i >= 0 && i < len(b.questions)
}

// Categories returns "All" followed by every distinct category, sorted.
func (b *Bank) Categories() []string {
	return append([]string{progress.AllCategories}, b.categories...)
}

// HasCategory reports whether c is "All" or a category present in the bank.
func (b *Bank) HasCategory(c string) bool {
	if c == progress.AllCategories {
		return true
	}
	_, ok := b.byCategory[c]
	return ok
}

// IndicesByCategory returns the ascending indices of questions in category.
// "All" matches every question; an unknown category matches none.
func (b *Bank) IndicesByCategory(category string) []int {
	if category == progress.AllCategories {
		out := make([]int, len(b.questions))
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := slices.Clone(b.byCategory[category])
	if out == nil {
		out = []int{}
	}
	return out
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share the
// same schema validation.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml to json: %w", err)
	}
	return b, nil
}
