package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizbook/internal/bank"
	"github.com/abhisek/quizbook/internal/router"
	"github.com/abhisek/quizbook/internal/store"
)

func testOptions(t *testing.T) (Options, *store.MemoryStore) {
	t.Helper()
	b, err := bank.New([]bank.Question{
		{Category: "Neurons", Question: "Which part receives signals?", Options: []string{"Axon", "Dendrite"}, Answer: "Dendrite"},
		{Category: "Brain", Question: "Largest part of the brain?", Options: []string{"Cerebrum", "Cerebellum"}, Answer: "Cerebrum"},
	})
	require.NoError(t, err)
	repo := store.NewMemoryStore()
	return Options{Bank: b, Repo: repo}, repo
}

// send feeds msg to m without running the returned command.
func send(m AppModel, msg tea.Msg) AppModel {
	next, _ := m.Update(msg)
	return next.(AppModel)
}

// navigate feeds msg to m and applies the navigation message its command
// produces.
func navigate(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(AppModel)
	require.NotNil(t, cmd, "expected a navigation command")
	out := cmd()
	switch out.(type) {
	case router.PushScreenMsg, router.PopScreenMsg, router.ReplaceScreenMsg, router.ResetScreenMsg:
	default:
		t.Fatalf("expected a router message, got %T", out)
	}
	next, _ = m.Update(out)
	return next.(AppModel)
}

func typeText(m AppModel, text string) AppModel {
	for _, r := range text {
		m = send(m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return m
}

func TestLoginOpensQuiz(t *testing.T) {
	opts, repo := testOptions(t)
	m := newAppModel(opts)
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m = typeText(m, "amy")
	m = navigate(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	assert.Equal(t, "Sequential practice · All", m.router.Active().Title())
	assert.Equal(t, 1, m.router.Depth(), "login is replaced, not stacked")

	_, err := repo.Load(context.Background(), "amy")
	assert.NoError(t, err, "new user progress is created at login")

	view := m.render()
	assert.True(t, strings.Contains(view, "amy"), "header shows the user")
	assert.True(t, strings.Contains(view, "Which part receives signals?"))
}

func TestAnswerUpdatesHeaderAndLogout(t *testing.T) {
	opts, _ := testOptions(t)
	m := newAppModel(opts)
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = typeText(m, "bob")
	m = navigate(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = send(m, tea.KeyPressMsg{Code: '1', Text: "1"})
	assert.Contains(t, m.render(), "0/1")

	m = navigate(t, m, tea.KeyPressMsg{Code: 'l', Text: "l"})
	assert.Equal(t, "Log in", m.router.Active().Title())
	assert.NotContains(t, m.render(), "bob")
}

func TestFilterScreenEscAndApply(t *testing.T) {
	opts, _ := testOptions(t)
	m := newAppModel(opts)
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = typeText(m, "cy")
	m = navigate(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = navigate(t, m, tea.KeyPressMsg{Code: 'f', Text: "f"})
	require.Equal(t, 2, m.router.Depth())
	m = navigate(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.Equal(t, 1, m.router.Depth())

	// Sequential, then the "Brain" category (second entry after "All").
	m = navigate(t, m, tea.KeyPressMsg{Code: 'f', Text: "f"})
	m = send(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = send(m, tea.KeyPressMsg{Code: tea.KeyDown})
	m = navigate(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	assert.Equal(t, 1, m.router.Depth())
	assert.Equal(t, "Sequential practice · Brain", m.router.Active().Title())
	assert.Contains(t, m.render(), "Largest part of the brain?")
}

func TestTooSmallTerminal(t *testing.T) {
	opts, _ := testOptions(t)
	m := send(newAppModel(opts), tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, m.render(), "Terminal too small")
}

func TestRunRequiresDeps(t *testing.T) {
	assert.Error(t, Run(Options{}))
}
