package progress

import (
	"fmt"
	"maps"
	"slices"
)

// AllCategories is the category sentinel that matches every question.
const AllCategories = "All"

// Mode selects how the working set of questions is built.
type Mode string

const (
	ModeSequential    Mode = "sequential"
	ModeRandom        Mode = "random"
	ModeMistakeReview Mode = "mistake_review"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeSequential, ModeRandom, ModeMistakeReview}

// ParseMode converts a stored or user-supplied string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSequential, ModeRandom, ModeMistakeReview:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Label returns a human-readable name for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeSequential:
		return "Sequential practice"
	case ModeRandom:
		return "Random practice"
	case ModeMistakeReview:
		return "Mistake book review"
	}
	return string(m)
}

// Progress is one user's saved quiz state.
type Progress struct {
	// FilteredIndices is the active working set of question indices.
	// Ascending in sequential and review modes, shuffled in random mode.
	FilteredIndices []int

	// CurrentIndex is the cursor into FilteredIndices, in [0, len(FilteredIndices)].
	CurrentIndex int

	// Score counts correct submissions.
	Score int

	// AnsweredCount counts all submissions.
	AnsweredCount int

	// MistakeBook holds the indices of questions answered incorrectly.
	MistakeBook IndexSet

	// UserAnswers maps a question index to the last option submitted for it.
	UserAnswers map[int]string

	Mode             Mode
	SelectedCategory string
}

// Default returns the progress of a brand-new user for a bank of n questions:
// sequential over every question, nothing answered.
func Default(n int) *Progress {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return &Progress{
		FilteredIndices:  indices,
		MistakeBook:      NewIndexSet(),
		UserAnswers:      make(map[int]string),
		Mode:             ModeSequential,
		SelectedCategory: AllCategories,
	}
}

// Shuffled reports whether the working set is in random order.
func (p *Progress) Shuffled() bool {
	return p.Mode == ModeRandom
}

// Accuracy returns Score/AnsweredCount as a percentage, or 0 before the
// first answer.
func (p *Progress) Accuracy() float64 {
	if p.AnsweredCount == 0 {
		return 0
	}
	return float64(p.Score) / float64(p.AnsweredCount) * 100
}

// Clone returns a deep copy of p.
func (p *Progress) Clone() *Progress {
	c := *p
	c.FilteredIndices = slices.Clone(p.FilteredIndices)
	c.MistakeBook = p.MistakeBook.Clone()
	c.UserAnswers = maps.Clone(p.UserAnswers)
	if c.UserAnswers == nil {
		c.UserAnswers = make(map[int]string)
	}
	return &c
}

// Equal reports whether p and o describe the same state. Order matters for
// FilteredIndices only.
func (p *Progress) Equal(o *Progress) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.CurrentIndex == o.CurrentIndex &&
		p.Score == o.Score &&
		p.AnsweredCount == o.AnsweredCount &&
		p.Mode == o.Mode &&
		p.SelectedCategory == o.SelectedCategory &&
		slices.Equal(p.FilteredIndices, o.FilteredIndices) &&
		p.MistakeBook.Equal(o.MistakeBook) &&
		maps.Equal(p.UserAnswers, o.UserAnswers)
}
