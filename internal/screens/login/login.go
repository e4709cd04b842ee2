package login

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizbook/internal/router"
	"github.com/abhisek/quizbook/internal/screen"
	"github.com/abhisek/quizbook/internal/ui/components"
	"github.com/abhisek/quizbook/internal/ui/layout"
	"github.com/abhisek/quizbook/internal/ui/theme"
)

// maxNameLen caps the nickname length.
const maxNameLen = 32

// Opener starts a quiz for username and returns the screen to show. An
// error keeps the user on the login screen.
type Opener func(username string) (screen.Screen, error)

// LoginScreen asks for a nickname. There is no password; the nickname only
// selects whose progress to load.
type LoginScreen struct {
	open  Opener
	input components.TextInput
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen that hands the nickname to open.
func New(open Opener) *LoginScreen {
	return &LoginScreen{
		open:  open,
		input: components.NewTextInput("your nickname", maxNameLen),
	}
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.input.Init()
}

func (l *LoginScreen) Title() string {
	return "Log in"
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return l, l.submit()
	}

	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return l, cmd
}

func (l *LoginScreen) submit() tea.Cmd {
	name := l.input.Value()
	if name == "" {
		l.input.SetError("please enter a nickname")
		return nil
	}

	next, err := l.open(name)
	if err != nil {
		l.input.SetError(err.Error())
		return nil
	}
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (l *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Q U I Z B O O K"))
	b.WriteString("\n\n")
	b.WriteString(theme.Subtitle.Width(cw).Render("Who's practicing today?"))
	b.WriteString("\n\n")
	b.WriteString(l.input.View())
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
		Render("Your progress is saved under this name."))

	return components.Center(components.Card(b.String(), cw), width, height)
}
