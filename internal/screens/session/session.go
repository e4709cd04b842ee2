package session

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizbook/internal/progress"
	"github.com/abhisek/quizbook/internal/router"
	"github.com/abhisek/quizbook/internal/screen"
	"github.com/abhisek/quizbook/internal/screens/filter"
	sess "github.com/abhisek/quizbook/internal/session"
	"github.com/abhisek/quizbook/internal/ui/components"
	"github.com/abhisek/quizbook/internal/ui/layout"
)

// SessionScreen runs the quiz for one logged-in user.
type SessionScreen struct {
	sess   *sess.Session
	logout func() screen.Screen

	choice       components.MultiChoice
	choiceFor    int // bank index the choice was built for, -1 if none
	warning      string
	confirmReset bool
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)

// New creates a SessionScreen for s. logout builds the screen shown after
// the user logs out. A non-nil openErr is shown as a warning banner.
func New(s *sess.Session, logout func() screen.Screen, openErr error) *SessionScreen {
	scr := &SessionScreen{
		sess:      s,
		logout:    logout,
		choiceFor: -1,
	}
	scr.report(openErr)
	scr.sync()
	return scr
}

func (s *SessionScreen) Init() tea.Cmd {
	return nil
}

func (s *SessionScreen) Title() string {
	return fmt.Sprintf("%s · %s", s.sess.Mode().Label(), s.categoryLabel())
}

func (s *SessionScreen) categoryLabel() string {
	if s.sess.Mode() == progress.ModeMistakeReview {
		return "Mistake book"
	}
	return s.sess.Category()
}

func (s *SessionScreen) Status() layout.Status {
	st := s.sess.Stats()
	return layout.Status{
		Username: s.sess.Username(),
		Score:    st.Score,
		Answered: st.Answered,
		Accuracy: st.Accuracy,
		Mistakes: st.Mistakes,
	}
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.confirmReset {
		return []layout.KeyHint{
			{Key: "Y", Description: "Reset"},
			{Key: "N", Description: "Cancel"},
		}
	}

	var hints []layout.KeyHint
	switch s.sess.Phase() {
	case sess.PhaseAwaitingAnswer:
		hints = []layout.KeyHint{
			{Key: "↑↓/1-9", Description: "Choose"},
			{Key: "Enter", Description: "Submit"},
		}
	case sess.PhaseFeedback:
		hints = []layout.KeyHint{{Key: "Enter", Description: "Next"}}
	case sess.PhaseCompleted:
		hints = []layout.KeyHint{{Key: "Enter", Description: "Again"}}
	}
	return append(hints,
		layout.KeyHint{Key: "R", Description: "Restart"},
		layout.KeyHint{Key: "F", Description: "Filter"},
		layout.KeyHint{Key: "X", Description: "Reset stats"},
		layout.KeyHint{Key: "L", Description: "Log out"},
	)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case filter.AppliedMsg:
		s.report(msg.Err)
		s.sync()
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	ctx := context.Background()

	if s.confirmReset {
		switch key {
		case "y", "Y":
			s.confirmReset = false
			s.report(s.sess.ResetStats(ctx))
			s.sync()
		case "n", "N", "esc":
			s.confirmReset = false
		}
		return s, nil
	}

	switch key {
	case "r":
		s.report(s.sess.Restart(ctx))
		s.sync()
		return s, nil
	case "f":
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: filter.New(s.sess)} }
	case "x":
		s.confirmReset = true
		return s, nil
	case "l":
		s.sess.Logger().Info("logged out")
		next := s.logout()
		return s, func() tea.Msg { return router.ResetScreenMsg{Screen: next} }
	}

	switch s.sess.Phase() {
	case sess.PhaseAwaitingAnswer:
		if key == "enter" {
			s.submit(ctx)
			return s, nil
		}
		var picked bool
		s.choice, picked = s.choice.Update(msg)
		if picked {
			s.submit(ctx)
		}

	case sess.PhaseFeedback:
		switch key {
		case "enter", "space", "n", "right":
			s.report(s.sess.Advance(ctx))
			s.sync()
		}

	case sess.PhaseCompleted:
		if key == "enter" {
			s.report(s.sess.Restart(ctx))
			s.sync()
		}
	}
	return s, nil
}

func (s *SessionScreen) submit(ctx context.Context) {
	out, err := s.sess.SubmitAnswer(ctx, s.choice.Value())
	s.report(err)
	if errors.Is(err, sess.ErrInvalidState) {
		return
	}
	s.choice.Reveal(out.Chosen, out.CorrectAnswer)
}

// report turns an operation error into the warning banner. A successful
// save clears a previous warning.
func (s *SessionScreen) report(err error) {
	var pe *sess.PersistError
	switch {
	case err == nil:
		s.warning = ""
	case errors.As(err, &pe):
		s.warning = "Progress could not be saved and may be lost on exit: " + pe.Err.Error()
	default:
		s.warning = err.Error()
	}
}

// sync rebuilds the option list when the question under the cursor changed.
func (s *SessionScreen) sync() {
	if s.sess.Phase() != sess.PhaseAwaitingAnswer {
		if s.sess.Phase() != sess.PhaseFeedback {
			s.choiceFor = -1
		}
		return
	}
	q, ok := s.sess.CurrentQuestion()
	if !ok {
		return
	}
	if q.ID == s.choiceFor && !s.choice.Revealed() {
		return
	}
	s.choice = components.NewMultiChoice(q.Options)
	if prev, ok := s.sess.PreviousAnswer(q.ID); ok {
		s.choice.SetPrevious(prev)
	}
	s.choiceFor = q.ID
}
