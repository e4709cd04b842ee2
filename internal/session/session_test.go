package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizbook/internal/bank"
	"github.com/abhisek/quizbook/internal/progress"
	"github.com/abhisek/quizbook/internal/store"
)

// testBank has categories A, A, B. Every correct answer is "yes".
func testBank(t *testing.T) *bank.Bank {
	t.Helper()
	b, err := bank.New([]bank.Question{
		{Category: "A", Question: "q0", Options: []string{"yes", "no"}, Answer: "yes", Explanation: "e0"},
		{Category: "A", Question: "q1", Options: []string{"yes", "no"}, Answer: "yes", Explanation: "e1"},
		{Category: "B", Question: "q2", Options: []string{"no", "yes", "maybe"}, Answer: "yes"},
	})
	require.NoError(t, err)
	return b
}

func openSession(t *testing.T, repo store.ProgressRepo, opts ...Option) *Session {
	t.Helper()
	s, err := Open(context.Background(), testBank(t), repo, "alice", opts...)
	require.NoError(t, err)
	return s
}

// failingRepo loads nothing and refuses every save.
type failingRepo struct {
	store.ProgressRepo
	saveErr error
}

func (r failingRepo) Save(context.Context, string, *progress.Progress) error {
	return r.saveErr
}

type loadErrRepo struct {
	store.ProgressRepo
	err error
}

func (r loadErrRepo) Load(context.Context, string) (*progress.Progress, error) {
	return nil, r.err
}

func TestOpenNewUserStartsWithDefaults(t *testing.T) {
	repo := store.NewMemoryStore()
	s := openSession(t, repo)

	assert.Equal(t, PhaseAwaitingAnswer, s.Phase())
	assert.Equal(t, progress.ModeSequential, s.Mode())
	assert.Equal(t, progress.AllCategories, s.Category())
	assert.Equal(t, []int{0, 1, 2}, s.Progress().FilteredIndices)
	assert.NotEmpty(t, s.ID())

	saved, err := repo.Load(context.Background(), "alice")
	require.NoError(t, err, "new user progress is saved on open")
	assert.True(t, s.Progress().Equal(saved))
}

func TestOpenLoadErrorIsFatal(t *testing.T) {
	boom := errors.New("disk on fire")
	s, err := Open(context.Background(), testBank(t), loadErrRepo{store.NewMemoryStore(), boom}, "alice")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, boom)
}

func TestOpenRestoresSavedProgress(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryStore()

	s := openSession(t, repo)
	_, err := s.SubmitAnswer(ctx, "no")
	require.NoError(t, err)
	require.NoError(t, s.Advance(ctx))

	restored := openSession(t, repo)
	assert.True(t, s.Progress().Equal(restored.Progress()))
	assert.Equal(t, PhaseAwaitingAnswer, restored.Phase())
	assert.True(t, restored.InMistakeBook(0))
	prev, ok := restored.PreviousAnswer(0)
	assert.True(t, ok)
	assert.Equal(t, "no", prev)
	assert.NotEqual(t, s.ID(), restored.ID())
}

func TestOpenSanitizesStaleProgress(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryStore()

	// Saved against a larger bank that has since shrunk.
	stale := &progress.Progress{
		FilteredIndices:  []int{2, 7, 2, 1},
		CurrentIndex:     4,
		Score:            9,
		AnsweredCount:    5,
		MistakeBook:      progress.NewIndexSet(1, 9),
		UserAnswers:      map[int]string{1: "no", 8: "x"},
		Mode:             progress.ModeSequential,
		SelectedCategory: "Gone",
	}
	require.NoError(t, repo.Save(ctx, "alice", stale))

	s := openSession(t, repo)
	got := s.Progress()

	assert.Equal(t, []int{2, 1}, got.FilteredIndices)
	assert.Equal(t, 2, got.CurrentIndex)
	assert.Equal(t, PhaseCompleted, s.Phase())
	assert.Equal(t, []int{1}, got.MistakeBook.Sorted())
	assert.Equal(t, map[int]string{1: "no"}, got.UserAnswers)
	assert.Equal(t, progress.AllCategories, got.SelectedCategory)
	assert.Equal(t, 5, got.Score)

	saved, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.Equal(saved), "sanitized progress is written back")
}

// Scenarios A through F.

func TestScenarioA_SequentialCategoryFilter(t *testing.T) {
	s := openSession(t, store.NewMemoryStore())
	require.NoError(t, s.ApplyFilter(context.Background(), progress.ModeSequential, "A"))
	assert.Equal(t, []int{0, 1}, s.Progress().FilteredIndices)
	assert.Equal(t, "A", s.Category())
}

func TestScenarioBtoD_AnswerAndComplete(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	require.NoError(t, s.ApplyFilter(ctx, progress.ModeSequential, "A"))

	// B: correct answer to question 0.
	out, err := s.SubmitAnswer(ctx, "yes")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, 0, out.QuestionIndex)
	assert.Equal(t, "e0", out.Explanation)
	st := s.Stats()
	assert.Equal(t, 1, st.Score)
	assert.Equal(t, 1, st.Answered)
	assert.False(t, s.InMistakeBook(0))
	assert.Equal(t, PhaseFeedback, s.Phase())

	// C: incorrect answer to question 1.
	require.NoError(t, s.Advance(ctx))
	out, err = s.SubmitAnswer(ctx, "no")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, "yes", out.CorrectAnswer)
	st = s.Stats()
	assert.Equal(t, 1, st.Score)
	assert.Equal(t, 2, st.Answered)
	assert.Equal(t, []int{1}, s.Progress().MistakeBook.Sorted())

	// D: advancing from the last question completes the set.
	require.NoError(t, s.Advance(ctx))
	assert.Equal(t, PhaseCompleted, s.Phase())
	_, ok := s.CurrentQuestion()
	assert.False(t, ok)
	assert.Equal(t, 2, s.Stats().Position)
}

func TestScenarioE_MistakeReviewGraduates(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())

	for range 3 {
		_, err := s.SubmitAnswer(ctx, "no")
		require.NoError(t, err)
		require.NoError(t, s.Advance(ctx))
	}
	require.Equal(t, 3, s.Stats().Mistakes)

	require.NoError(t, s.ApplyFilter(ctx, progress.ModeMistakeReview, "ignored"))
	assert.Equal(t, []int{0, 1, 2}, s.Progress().FilteredIndices)

	out, err := s.SubmitAnswer(ctx, "yes")
	require.NoError(t, err)
	assert.True(t, out.Graduated)
	assert.False(t, s.InMistakeBook(0))
	assert.Equal(t, 2, s.Stats().Mistakes)

	require.NoError(t, s.Advance(ctx))
	out, err = s.SubmitAnswer(ctx, "no")
	require.NoError(t, err)
	assert.False(t, out.Graduated)
	assert.True(t, s.InMistakeBook(1))
}

func TestScenarioF_AccuracyWithoutAnswers(t *testing.T) {
	s := openSession(t, store.NewMemoryStore())
	assert.Equal(t, 0.0, s.Accuracy())
	assert.Equal(t, 0.0, s.Stats().Accuracy)
}

func TestAccuracy(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())

	for _, choice := range []string{"yes", "no", "yes"} {
		_, err := s.SubmitAnswer(ctx, choice)
		require.NoError(t, err)
		require.NoError(t, s.Advance(ctx))
	}
	assert.InDelta(t, 66.666, s.Accuracy(), 0.01)
}

func TestApplyFilter(t *testing.T) {
	reverse := func(xs []int) { slices.Reverse(xs) }

	tests := []struct {
		name     string
		mode     progress.Mode
		category string
		want     []int
	}{
		{"sequential all", progress.ModeSequential, progress.AllCategories, []int{0, 1, 2}},
		{"sequential B", progress.ModeSequential, "B", []int{2}},
		{"random all", progress.ModeRandom, progress.AllCategories, []int{2, 1, 0}},
		{"random A", progress.ModeRandom, "A", []int{1, 0}},
		{"mistake review empty", progress.ModeMistakeReview, "A", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openSession(t, store.NewMemoryStore(), WithShuffler(reverse))
			require.NoError(t, s.ApplyFilter(context.Background(), tt.mode, tt.category))
			assert.Equal(t, tt.want, s.Progress().FilteredIndices)
			assert.Equal(t, tt.mode, s.Mode())
			assert.Equal(t, 0, s.Progress().CurrentIndex)
		})
	}
}

func TestApplyFilterRandomIsPermutation(t *testing.T) {
	s := openSession(t, store.NewMemoryStore())
	for range 20 {
		require.NoError(t, s.ApplyFilter(context.Background(), progress.ModeRandom, progress.AllCategories))
		got := s.Progress().FilteredIndices
		assert.ElementsMatch(t, []int{0, 1, 2}, got)
		assert.True(t, s.Progress().Shuffled())
	}
}

func TestApplyFilterEmptySetIsIdle(t *testing.T) {
	s := openSession(t, store.NewMemoryStore())
	require.NoError(t, s.ApplyFilter(context.Background(), progress.ModeMistakeReview, ""))

	assert.Equal(t, PhaseIdle, s.Phase())
	_, ok := s.CurrentQuestion()
	assert.False(t, ok)
	_, err := s.SubmitAnswer(context.Background(), "yes")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 0, s.Stats().Position)
}

func TestApplyFilterRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	before := s.Progress()

	assert.ErrorIs(t, s.ApplyFilter(ctx, progress.Mode("shuffle"), progress.AllCategories), ErrInvalidFilter)
	assert.ErrorIs(t, s.ApplyFilter(ctx, progress.ModeSequential, "Nope"), ErrInvalidFilter)
	assert.True(t, before.Equal(s.Progress()))
}

func TestApplyFilterKeepsStats(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())

	_, err := s.SubmitAnswer(ctx, "yes")
	require.NoError(t, err)
	require.NoError(t, s.Advance(ctx))
	_, err = s.SubmitAnswer(ctx, "no")
	require.NoError(t, err)

	require.NoError(t, s.ApplyFilter(ctx, progress.ModeSequential, "B"))

	st := s.Stats()
	assert.Equal(t, 1, st.Score)
	assert.Equal(t, 2, st.Answered)
	assert.Equal(t, 1, st.Mistakes)
	assert.Equal(t, 1, st.Position)
	_, ok := s.PreviousAnswer(0)
	assert.True(t, ok, "answers survive a filter change")
	assert.Equal(t, PhaseAwaitingAnswer, s.Phase(), "pending feedback is dropped")
}

func TestMistakeReviewKeepsSelectedCategory(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	require.NoError(t, s.ApplyFilter(ctx, progress.ModeSequential, "B"))
	require.NoError(t, s.ApplyFilter(ctx, progress.ModeMistakeReview, "A"))
	assert.Equal(t, "B", s.Category())
}

func TestResetStats(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	require.NoError(t, s.ApplyFilter(ctx, progress.ModeSequential, "A"))

	_, err := s.SubmitAnswer(ctx, "no")
	require.NoError(t, err)
	require.NoError(t, s.Advance(ctx))

	require.NoError(t, s.ResetStats(ctx))
	got := s.Progress()
	assert.Zero(t, got.Score)
	assert.Zero(t, got.AnsweredCount)
	assert.Empty(t, got.UserAnswers)
	assert.Zero(t, got.CurrentIndex)
	assert.Equal(t, []int{0, 1}, got.FilteredIndices)
	assert.Equal(t, []int{0}, got.MistakeBook.Sorted(), "mistake book is kept")
}

func TestRestartKeepsTotalsAndAllowsRedo(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	require.NoError(t, s.ApplyFilter(ctx, progress.ModeSequential, "B"))

	_, err := s.SubmitAnswer(ctx, "no")
	require.NoError(t, err)
	require.NoError(t, s.Advance(ctx))
	require.Equal(t, PhaseCompleted, s.Phase())

	require.NoError(t, s.Restart(ctx))
	assert.Equal(t, PhaseAwaitingAnswer, s.Phase())
	assert.Equal(t, 1, s.Stats().Answered)

	// Same question again: redo is scored again.
	out, err := s.SubmitAnswer(ctx, "yes")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	st := s.Stats()
	assert.Equal(t, 1, st.Score)
	assert.Equal(t, 2, st.Answered)
	prev, _ := s.PreviousAnswer(2)
	assert.Equal(t, "yes", prev)
	// Outside review mode a correct redo does not clear the mistake.
	assert.True(t, s.InMistakeBook(2))
}

func TestRestartRefreshesMistakeReview(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	for range 2 {
		_, err := s.SubmitAnswer(ctx, "no")
		require.NoError(t, err)
		require.NoError(t, s.Advance(ctx))
	}

	require.NoError(t, s.ApplyFilter(ctx, progress.ModeMistakeReview, ""))
	_, err := s.SubmitAnswer(ctx, "yes")
	require.NoError(t, err)

	require.NoError(t, s.Restart(ctx))
	assert.Equal(t, []int{1}, s.Progress().FilteredIndices)
}

func TestInvalidStateLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())

	assert.ErrorIs(t, s.Advance(ctx), ErrInvalidState, "advance before answering")

	_, err := s.SubmitAnswer(ctx, "yes")
	require.NoError(t, err)
	before := s.Progress()

	_, err = s.SubmitAnswer(ctx, "no")
	assert.ErrorIs(t, err, ErrInvalidState, "double submit")
	assert.True(t, before.Equal(s.Progress()))
	out, ok := s.LastOutcome()
	assert.True(t, ok)
	assert.Equal(t, "yes", out.Chosen)
}

func TestSaveFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("read-only filesystem")
	repo := failingRepo{ProgressRepo: store.NewMemoryStore(), saveErr: boom}

	s, err := Open(ctx, testBank(t), repo, "alice")
	require.NotNil(t, s)
	var pe *PersistError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "open", pe.Op)
	assert.ErrorIs(t, err, boom)

	out, err := s.SubmitAnswer(ctx, "yes")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "submit_answer", pe.Op)
	assert.True(t, out.Correct)
	assert.Equal(t, 1, s.Stats().Score, "in-memory state stays authoritative")
	assert.Equal(t, PhaseFeedback, s.Phase())
}

func TestEveryOperationPersists(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryStore()
	s := openSession(t, repo)

	steps := []func() error{
		func() error { return s.ApplyFilter(ctx, progress.ModeSequential, "A") },
		func() error { _, err := s.SubmitAnswer(ctx, "no"); return err },
		func() error { return s.Advance(ctx) },
		func() error { return s.Restart(ctx) },
		func() error { return s.ResetStats(ctx) },
	}
	for i, step := range steps {
		require.NoError(t, step())
		saved, err := repo.Load(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, s.Progress().Equal(saved), "step %d not persisted", i)
	}
}

func TestScoreNeverExceedsAnswered(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	r := rand.New(rand.NewPCG(1, 2))
	modes := progress.Modes
	categories := s.Bank().Categories()
	choices := []string{"yes", "no", "maybe"}

	for i := range 500 {
		switch r.IntN(5) {
		case 0:
			_ = s.ApplyFilter(ctx, modes[r.IntN(len(modes))], categories[r.IntN(len(categories))])
		case 1:
			_ = s.Restart(ctx)
		case 2:
			if r.IntN(10) == 0 {
				_ = s.ResetStats(ctx)
			}
		default:
			if s.Phase() == PhaseFeedback {
				require.NoError(t, s.Advance(ctx))
			} else if s.Phase() == PhaseAwaitingAnswer {
				_, err := s.SubmitAnswer(ctx, choices[r.IntN(len(choices))])
				require.NoError(t, err)
			}
		}

		p := s.Progress()
		require.LessOrEqual(t, p.Score, p.AnsweredCount, "step %d", i)
		require.LessOrEqual(t, p.CurrentIndex, len(p.FilteredIndices), "step %d", i)
		for _, idx := range p.FilteredIndices {
			require.True(t, s.Bank().ValidIndex(idx))
		}
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "awaiting_answer", PhaseAwaitingAnswer.String())
	assert.Equal(t, "unknown", SessionPhase(42).String())
}
