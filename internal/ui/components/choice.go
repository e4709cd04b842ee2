package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizbook/internal/ui/theme"
)

// MaxNumberedChoices is the number of options reachable with digit keys.
const MaxNumberedChoices = 9

// MultiChoice is a multiple-choice selector for any number of options.
// Digits 1-9 jump to an option; arrows move the cursor.
type MultiChoice struct {
	Options  []string
	Selected int

	revealed bool
	chosen   int
	correct  int
	previous int // option answered on an earlier pass, -1 if none
}

// NewMultiChoice creates a selector with the cursor on the first option.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{
		Options:  options,
		chosen:   -1,
		correct:  -1,
		previous: -1,
	}
}

// SetPrevious marks the option submitted the last time this question was
// answered and moves the cursor to it.
func (m *MultiChoice) SetPrevious(option string) {
	if i := m.indexOf(option); i >= 0 {
		m.previous = i
		m.Selected = i
	}
}

// Update moves the cursor. The returned bool is true when a digit key picked
// an option directly, meaning the caller should submit it.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, bool) {
	if m.revealed {
		return m, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.Options) {
				m.Selected = i
				return m, true
			}
		}
	}
	return m, false
}

// Value returns the option under the cursor.
func (m MultiChoice) Value() string {
	if m.Selected < 0 || m.Selected >= len(m.Options) {
		return ""
	}
	return m.Options[m.Selected]
}

// Reveal locks the selector and highlights the chosen and correct options.
func (m *MultiChoice) Reveal(chosen, correct string) {
	m.revealed = true
	m.chosen = m.indexOf(chosen)
	m.correct = m.indexOf(correct)
}

// Revealed reports whether the answer is being shown.
func (m MultiChoice) Revealed() bool {
	return m.revealed
}

func (m MultiChoice) indexOf(option string) int {
	for i, o := range m.Options {
		if o == option {
			return i
		}
	}
	return -1
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	for i, opt := range m.Options {
		label := " "
		if i < MaxNumberedChoices {
			label = fmt.Sprintf("%d", i+1)
		}
		prefix := "  "
		if i == m.Selected && !m.revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, label, opt)

		switch {
		case m.revealed && i == m.correct:
			line = theme.Correct.Render(line + "  ✓")
		case m.revealed && i == m.chosen:
			line = theme.Incorrect.Render(line + "  ✗")
		case m.revealed:
			line = dim.Render(line)
		case i == m.Selected:
			line = theme.Selected.Render(line)
		default:
			line = theme.Unselected.Render(line)
		}
		if i == m.previous && !m.revealed {
			line += dim.Render("  (last answer)")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
