package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/quizbook/internal/bank"
	"github.com/abhisek/quizbook/internal/progress"
	"github.com/abhisek/quizbook/internal/store"
)

// Session is one user's quiz state machine. It owns the user's Progress
// and saves it after every state-changing operation.
//
// A Session is not safe for concurrent use.
type Session struct {
	id       string
	username string
	bank     *bank.Bank
	repo     store.ProgressRepo
	logger   *zap.Logger
	shuffle  func([]int)

	p     *progress.Progress
	phase SessionPhase
	last  *Outcome
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithShuffler replaces the permutation used by random mode.
func WithShuffler(fn func([]int)) Option {
	return func(s *Session) {
		if fn != nil {
			s.shuffle = fn
		}
	}
}

func shuffleInts(xs []int) {
	rand.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
}

// Open restores username's session from repo, or starts a fresh one for a
// new user. Stored indices the bank no longer has are dropped.
//
// A non-nil Session returned together with a *PersistError is usable; the
// initial save simply failed.
func Open(ctx context.Context, b *bank.Bank, repo store.ProgressRepo, username string, opts ...Option) (*Session, error) {
	s := &Session{
		id:       uuid.New().String(),
		username: username,
		bank:     b,
		repo:     repo,
		logger:   zap.NewNop(),
		shuffle:  shuffleInts,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", s.id), zap.String("username", username))

	p, err := repo.Load(ctx, username)
	fresh := false
	switch {
	case errors.Is(err, store.ErrNotFound):
		p = progress.Default(b.Len())
		fresh = true
	case err != nil:
		return nil, fmt.Errorf("load progress: %w", err)
	}

	s.p = p
	changed := s.sanitize()
	s.phase = s.derivePhase()

	s.logger.Info("session opened",
		zap.Bool("new_user", fresh),
		zap.Bool("sanitized", changed),
		zap.String("mode", string(p.Mode)),
		zap.String("category", p.SelectedCategory),
		zap.Stringer("phase", s.phase),
	)

	if fresh || changed {
		return s, s.save(ctx, "open")
	}
	return s, nil
}

// sanitize makes restored progress consistent with the loaded bank and
// reports whether anything changed.
func (s *Session) sanitize() bool {
	p := s.p
	changed := false

	if p.MistakeBook == nil {
		p.MistakeBook = progress.NewIndexSet()
	}
	if p.UserAnswers == nil {
		p.UserAnswers = make(map[int]string)
	}

	seen := make(map[int]bool, len(p.FilteredIndices))
	kept := make([]int, 0, len(p.FilteredIndices))
	for _, idx := range p.FilteredIndices {
		if !s.bank.ValidIndex(idx) || seen[idx] {
			changed = true
			continue
		}
		seen[idx] = true
		kept = append(kept, idx)
	}
	p.FilteredIndices = kept

	for idx := range p.MistakeBook {
		if !s.bank.ValidIndex(idx) {
			p.MistakeBook.Remove(idx)
			changed = true
		}
	}
	for idx := range p.UserAnswers {
		if !s.bank.ValidIndex(idx) {
			delete(p.UserAnswers, idx)
			changed = true
		}
	}

	if p.CurrentIndex > len(p.FilteredIndices) {
		p.CurrentIndex = len(p.FilteredIndices)
		changed = true
	}
	if !s.bank.HasCategory(p.SelectedCategory) {
		p.SelectedCategory = progress.AllCategories
		changed = true
	}
	if p.Score > p.AnsweredCount {
		p.Score = p.AnsweredCount
		changed = true
	}
	return changed
}

func (s *Session) derivePhase() SessionPhase {
	switch {
	case len(s.p.FilteredIndices) == 0:
		return PhaseIdle
	case s.p.CurrentIndex >= len(s.p.FilteredIndices):
		return PhaseCompleted
	default:
		return PhaseAwaitingAnswer
	}
}

// save persists the progress. Failures are logged and returned as a
// *PersistError; the in-memory state is left as is.
func (s *Session) save(ctx context.Context, op string) error {
	if err := s.repo.Save(ctx, s.username, s.p); err != nil {
		s.logger.Warn("save progress failed", zap.String("op", op), zap.Error(err))
		return &PersistError{Op: op, Err: err}
	}
	s.logger.Debug("progress saved", zap.String("op", op))
	return nil
}

// buildIndices computes the working set for mode and category.
func (s *Session) buildIndices(mode progress.Mode, category string) []int {
	switch mode {
	case progress.ModeMistakeReview:
		return s.p.MistakeBook.Sorted()
	case progress.ModeRandom:
		idx := s.bank.IndicesByCategory(category)
		s.shuffle(idx)
		return idx
	default:
		return s.bank.IndicesByCategory(category)
	}
}

// ApplyFilter rebuilds the working set and moves the cursor to the start.
// Mistake review ignores category and replays the mistake book in
// ascending order.
//
// Only the cursor is reset: score, answered count, answers and the mistake
// book carry over across filter changes.
func (s *Session) ApplyFilter(ctx context.Context, mode progress.Mode, category string) error {
	if _, err := progress.ParseMode(string(mode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if mode != progress.ModeMistakeReview && !s.bank.HasCategory(category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidFilter, category)
	}

	s.p.Mode = mode
	if mode != progress.ModeMistakeReview {
		s.p.SelectedCategory = category
	}
	s.p.FilteredIndices = s.buildIndices(mode, category)
	s.p.CurrentIndex = 0
	s.last = nil
	s.phase = s.derivePhase()

	s.logger.Info("filter applied",
		zap.String("mode", string(mode)),
		zap.String("category", s.p.SelectedCategory),
		zap.Int("questions", len(s.p.FilteredIndices)),
	)
	return s.save(ctx, "apply_filter")
}

// CurrentQuestion returns the question under the cursor. It reports false
// when the working set is empty or exhausted.
func (s *Session) CurrentQuestion() (bank.Question, bool) {
	if s.p.CurrentIndex >= len(s.p.FilteredIndices) {
		return bank.Question{}, false
	}
	return s.bank.Question(s.p.FilteredIndices[s.p.CurrentIndex])
}

// SubmitAnswer scores choice against the current question.
//
// A correct answer increments the score; in mistake review it also
// removes the question from the mistake book. A wrong answer adds the
// question to the mistake book. Questions seen again after a restart can
// be answered again and are scored again.
func (s *Session) SubmitAnswer(ctx context.Context, choice string) (Outcome, error) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return Outcome{}, fmt.Errorf("%w: no current question", ErrInvalidState)
	}
	if s.phase == PhaseFeedback {
		return Outcome{}, fmt.Errorf("%w: question %d already answered", ErrInvalidState, q.ID)
	}

	out := Outcome{
		QuestionIndex: q.ID,
		Chosen:        choice,
		Correct:       q.IsCorrect(choice),
		CorrectAnswer: q.Answer,
		Explanation:   q.Explanation,
	}

	s.p.UserAnswers[q.ID] = choice
	if out.Correct {
		s.p.Score++
		if s.p.Mode == progress.ModeMistakeReview {
			out.Graduated = s.p.MistakeBook.Remove(q.ID)
		}
	} else {
		s.p.MistakeBook.Add(q.ID)
	}
	s.p.AnsweredCount++

	s.phase = PhaseFeedback
	s.last = &out

	s.logger.Info("answer submitted",
		zap.Int("question", q.ID),
		zap.Bool("correct", out.Correct),
		zap.Bool("graduated", out.Graduated),
		zap.Int("score", s.p.Score),
		zap.Int("answered", s.p.AnsweredCount),
	)
	return out, s.save(ctx, "submit_answer")
}

// Advance moves past the answered question. It is only valid while
// feedback is shown.
func (s *Session) Advance(ctx context.Context) error {
	if s.phase != PhaseFeedback {
		return fmt.Errorf("%w: advance from %s", ErrInvalidState, s.phase)
	}

	s.p.CurrentIndex++
	s.last = nil
	s.phase = s.derivePhase()

	if s.phase == PhaseCompleted {
		s.logger.Info("set completed", zap.Int("questions", len(s.p.FilteredIndices)))
	}
	return s.save(ctx, "advance")
}

// Restart moves the cursor back to the first question. Totals and the
// mistake book are kept. In mistake review the working set is refreshed
// from the mistake book so that graduated questions drop out.
func (s *Session) Restart(ctx context.Context) error {
	if s.p.Mode == progress.ModeMistakeReview {
		s.p.FilteredIndices = s.p.MistakeBook.Sorted()
	}
	s.p.CurrentIndex = 0
	s.last = nil
	s.phase = s.derivePhase()

	s.logger.Info("set restarted", zap.Int("questions", len(s.p.FilteredIndices)))
	return s.save(ctx, "restart")
}

// ResetStats clears the score, answered count and remembered answers, then
// rebuilds the current filter from the start. The mistake book is kept.
func (s *Session) ResetStats(ctx context.Context) error {
	s.p.Score = 0
	s.p.AnsweredCount = 0
	s.p.UserAnswers = make(map[int]string)
	s.p.FilteredIndices = s.buildIndices(s.p.Mode, s.p.SelectedCategory)
	s.p.CurrentIndex = 0
	s.last = nil
	s.phase = s.derivePhase()

	s.logger.Info("stats reset")
	return s.save(ctx, "reset_stats")
}

// Accuracy returns the percentage of correct answers, or 0 before the
// first answer.
func (s *Session) Accuracy() float64 {
	return s.p.Accuracy()
}

// Stats returns the running totals.
func (s *Session) Stats() Stats {
	total := len(s.p.FilteredIndices)
	pos := s.p.CurrentIndex + 1
	if pos > total {
		pos = total
	}
	return Stats{
		Position: pos,
		Total:    total,
		Score:    s.p.Score,
		Answered: s.p.AnsweredCount,
		Accuracy: s.Accuracy(),
		Mistakes: s.p.MistakeBook.Len(),
	}
}

// LastOutcome returns the outcome being shown as feedback, if any.
func (s *Session) LastOutcome() (Outcome, bool) {
	if s.last == nil {
		return Outcome{}, false
	}
	return *s.last, true
}

// PreviousAnswer returns the last option submitted for question idx.
func (s *Session) PreviousAnswer(idx int) (string, bool) {
	a, ok := s.p.UserAnswers[idx]
	return a, ok
}

// InMistakeBook reports whether question idx is in the mistake book.
func (s *Session) InMistakeBook(idx int) bool {
	return s.p.MistakeBook.Contains(idx)
}

// Progress returns a copy of the current progress.
func (s *Session) Progress() *progress.Progress {
	return s.p.Clone()
}

func (s *Session) Phase() SessionPhase    { return s.phase }
func (s *Session) ID() string             { return s.id }
func (s *Session) Username() string       { return s.username }
func (s *Session) Mode() progress.Mode    { return s.p.Mode }
func (s *Session) Category() string       { return s.p.SelectedCategory }
func (s *Session) Bank() *bank.Bank       { return s.bank }
func (s *Session) Logger() *zap.Logger    { return s.logger }
