package filter

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizbook/internal/progress"
	"github.com/abhisek/quizbook/internal/router"
	"github.com/abhisek/quizbook/internal/screen"
	sess "github.com/abhisek/quizbook/internal/session"
	"github.com/abhisek/quizbook/internal/ui/components"
	"github.com/abhisek/quizbook/internal/ui/layout"
	"github.com/abhisek/quizbook/internal/ui/theme"
)

// AppliedMsg is delivered to the screen below the filter screen once the
// filter has been applied and the filter screen popped.
type AppliedMsg struct {
	Err error
}

type step int

const (
	stepMode step = iota
	stepCategory
)

// FilterScreen picks a mode, then a category. Mistake review skips the
// category step.
type FilterScreen struct {
	sess *sess.Session
	step step
	mode progress.Mode
	menu components.Menu
}

var _ screen.Screen = (*FilterScreen)(nil)
var _ screen.KeyHintProvider = (*FilterScreen)(nil)

// New creates a FilterScreen for s with the current mode preselected.
func New(s *sess.Session) *FilterScreen {
	f := &FilterScreen{sess: s}
	f.menu = f.modeMenu()
	return f
}

func (f *FilterScreen) Init() tea.Cmd {
	return nil
}

func (f *FilterScreen) Title() string {
	if f.step == stepCategory {
		return "Choose a category"
	}
	return "Choose a mode"
}

func (f *FilterScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
	}
	if f.step == stepCategory {
		hints = append(hints, layout.KeyHint{Key: "Backspace", Description: "Mode"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Cancel"})
}

func (f *FilterScreen) Status() layout.Status {
	st := f.sess.Stats()
	return layout.Status{
		Username: f.sess.Username(),
		Score:    st.Score,
		Answered: st.Answered,
		Accuracy: st.Accuracy,
		Mistakes: st.Mistakes,
	}
}

func (f *FilterScreen) modeMenu() components.Menu {
	items := make([]components.MenuItem, 0, len(progress.Modes))
	for _, m := range progress.Modes {
		item := components.MenuItem{
			Label:  m.Label(),
			Action: f.chooseMode(m),
		}
		if m == progress.ModeMistakeReview {
			item.Hint = fmt.Sprintf("%d questions", f.sess.Stats().Mistakes)
		}
		items = append(items, item)
	}
	menu := components.NewMenu(items)
	menu.Select(f.sess.Mode().Label())
	return menu
}

func (f *FilterScreen) categoryMenu() components.Menu {
	b := f.sess.Bank()
	cats := b.Categories()
	items := make([]components.MenuItem, 0, len(cats))
	for _, c := range cats {
		items = append(items, components.MenuItem{
			Label:  c,
			Hint:   fmt.Sprintf("%d", len(b.IndicesByCategory(c))),
			Action: f.chooseCategory(c),
		})
	}
	menu := components.NewMenu(items)
	menu.Select(f.sess.Category())
	return menu
}

func (f *FilterScreen) chooseMode(m progress.Mode) func() tea.Cmd {
	return func() tea.Cmd {
		f.mode = m
		if m == progress.ModeMistakeReview {
			return f.apply(f.sess.Category())
		}
		f.step = stepCategory
		f.menu = f.categoryMenu()
		return nil
	}
}

func (f *FilterScreen) chooseCategory(c string) func() tea.Cmd {
	return func() tea.Cmd {
		return f.apply(c)
	}
}

// apply changes the session filter, then pops back and reports the result
// to the screen underneath.
func (f *FilterScreen) apply(category string) tea.Cmd {
	err := f.sess.ApplyFilter(context.Background(), f.mode, category)
	return func() tea.Msg {
		return router.PopScreenMsg{Result: AppliedMsg{Err: err}}
	}
}

func (f *FilterScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "backspace" && f.step == stepCategory {
		f.step = stepMode
		f.menu = f.modeMenu()
		f.menu.Select(f.mode.Label())
		return f, nil
	}

	// A mode choice swaps in the category menu from inside Update; keep it.
	before := f.step
	menu, cmd := f.menu.Update(msg)
	if f.step == before {
		f.menu = menu
	}
	return f, cmd
}

func (f *FilterScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render(f.Title()))
	b.WriteString("\n\n")
	if f.step == stepCategory {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
			Render("Mode: " + f.mode.Label()))
		b.WriteString("\n\n")
	}
	b.WriteString(f.menu.View())

	return components.Center(components.Card(b.String(), cw), width, height)
}
