package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizbook/internal/progress"
	sess "github.com/abhisek/quizbook/internal/session"
	"github.com/abhisek/quizbook/internal/ui/components"
	"github.com/abhisek/quizbook/internal/ui/layout"
	"github.com/abhisek/quizbook/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch {
	case s.confirmReset:
		body = renderResetConfirm(cw)
	case s.sess.Phase() == sess.PhaseIdle:
		body = s.renderIdle(cw)
	case s.sess.Phase() == sess.PhaseCompleted:
		body = s.renderCompleted(cw)
	default:
		body = s.renderQuestion(cw, height)
	}

	var b strings.Builder
	if s.warning != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Warning.Width(cw).Render("! "+s.warning)))
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, body))
	return b.String()
}

// renderQuestion renders the question card, the options and, once answered,
// the feedback block.
func (s *SessionScreen) renderQuestion(cw, height int) string {
	q, ok := s.sess.CurrentQuestion()
	if !ok {
		return ""
	}
	st := s.sess.Stats()

	var b strings.Builder
	b.WriteString(components.NewProgressBar("Question", st.Position, st.Total, cw).View())
	b.WriteString("\n")
	if !layout.IsCompactHeight(height) {
		b.WriteString("\n")
	}

	var card strings.Builder
	card.WriteString(theme.Badge.Render(q.Category))
	if s.sess.InMistakeBook(q.ID) && s.sess.Phase() == sess.PhaseAwaitingAnswer {
		card.WriteString(" " + lipgloss.NewStyle().Foreground(theme.Accent).Render("in mistake book"))
	}
	card.WriteString("\n\n")
	card.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(cw - 6).Render(q.Question))
	card.WriteString("\n\n")
	card.WriteString(s.choice.View())
	b.WriteString(components.Card(card.String(), cw))
	b.WriteString("\n")

	if out, ok := s.sess.LastOutcome(); ok {
		b.WriteString("\n")
		b.WriteString(renderFeedback(out, cw))
	}
	return b.String()
}

func renderFeedback(out sess.Outcome, cw int) string {
	var b strings.Builder
	if out.Correct {
		b.WriteString(theme.Correct.Render("Correct!"))
		if out.Graduated {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).
				Render("  Removed from your mistake book."))
		}
	} else {
		b.WriteString(theme.Incorrect.Render("Not quite."))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).
			Render(fmt.Sprintf("  The answer is %s.", out.CorrectAnswer)))
	}
	if out.Explanation != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Explanation.Width(cw).Render(out.Explanation))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Press Enter for the next question"))
	return b.String()
}

func (s *SessionScreen) renderCompleted(cw int) string {
	st := s.sess.Stats()

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 6).Render("Set complete!"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Questions in this set   %d", st.Total)))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Correct overall         %d of %d (%.1f%%)", st.Score, st.Answered, st.Accuracy)))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Mistake book            %d", st.Mistakes)))
	b.WriteString("\n\n")

	hint := "Enter or R to go again, F to pick another set."
	if st.Mistakes > 0 && s.sess.Mode() != progress.ModeMistakeReview {
		hint = "Enter or R to go again, F to review your mistakes."
	}
	b.WriteString(theme.Hint.Render(hint))
	return components.Card(b.String(), cw)
}

func (s *SessionScreen) renderIdle(cw int) string {
	msg := "No questions match this filter."
	if s.sess.Mode() == progress.ModeMistakeReview {
		msg = "Your mistake book is empty. Nice work!"
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 6).Render(msg))
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Press F to choose another mode or category."))
	return components.Card(b.String(), cw)
}

func renderResetConfirm(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 6).Render("Reset your statistics?"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render("Score, answer count and remembered answers are cleared."))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render("Your mistake book is kept."))
	b.WriteString("\n\n")
	b.WriteString(theme.Correct.Render("[Y] Reset"))
	b.WriteString("   ")
	b.WriteString(theme.Selected.Render("[N] Cancel"))
	return components.Card(b.String(), cw)
}
