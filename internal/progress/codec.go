package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedRecord is returned when stored progress cannot be decoded.
var ErrMalformedRecord = errors.New("malformed progress record")

// record is the canonical wire format of a Progress.
//
// wrong_book is always written sorted ascending. user_answers keys are
// decimal question indices, since JSON object keys are strings; Unmarshal
// converts them back to ints. shuffled is derived from mode and ignored
// on read.
type record struct {
	CurrentIndex     int               `json:"current_index"`
	Score            int               `json:"score"`
	AnsweredCount    int               `json:"answered_count"`
	WrongBook        []int             `json:"wrong_book"`
	UserAnswers      map[string]string `json:"user_answers"`
	Mode             string            `json:"mode"`
	FilteredIndices  []int             `json:"filtered_indices"`
	Shuffled         bool              `json:"shuffled"`
	SelectedCategory string            `json:"selected_category"`
}

// Marshal encodes p in the canonical wire format.
func Marshal(p *Progress) ([]byte, error) {
	answers := make(map[string]string, len(p.UserAnswers))
	for idx, choice := range p.UserAnswers {
		answers[strconv.Itoa(idx)] = choice
	}

	filtered := p.FilteredIndices
	if filtered == nil {
		filtered = []int{}
	}

	rec := record{
		CurrentIndex:     p.CurrentIndex,
		Score:            p.Score,
		AnsweredCount:    p.AnsweredCount,
		WrongBook:        p.MistakeBook.Sorted(),
		UserAnswers:      answers,
		Mode:             string(p.Mode),
		FilteredIndices:  filtered,
		Shuffled:         p.Shuffled(),
		SelectedCategory: p.SelectedCategory,
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal progress: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a wire record produced by Marshal.
func Unmarshal(data []byte) (*Progress, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	mode, err := ParseMode(rec.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	answers := make(map[int]string, len(rec.UserAnswers))
	for key, choice := range rec.UserAnswers {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: user_answers key %q is not a question index", ErrMalformedRecord, key)
		}
		answers[idx] = choice
	}

	for _, idx := range rec.WrongBook {
		if idx < 0 {
			return nil, fmt.Errorf("%w: negative wrong_book index %d", ErrMalformedRecord, idx)
		}
	}
	for _, idx := range rec.FilteredIndices {
		if idx < 0 {
			return nil, fmt.Errorf("%w: negative filtered index %d", ErrMalformedRecord, idx)
		}
	}
	if rec.CurrentIndex < 0 || rec.Score < 0 || rec.AnsweredCount < 0 {
		return nil, fmt.Errorf("%w: negative counter", ErrMalformedRecord)
	}

	filtered := rec.FilteredIndices
	if filtered == nil {
		filtered = []int{}
	}

	category := rec.SelectedCategory
	if category == "" {
		category = AllCategories
	}

	return &Progress{
		FilteredIndices:  filtered,
		CurrentIndex:     rec.CurrentIndex,
		Score:            rec.Score,
		AnsweredCount:    rec.AnsweredCount,
		MistakeBook:      NewIndexSet(rec.WrongBook...),
		UserAnswers:      answers,
		Mode:             mode,
		SelectedCategory: category,
	}, nil
}
