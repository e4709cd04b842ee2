package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizbook/internal/bank"
	"github.com/abhisek/quizbook/internal/config"
	"github.com/abhisek/quizbook/internal/progress"
	"github.com/abhisek/quizbook/internal/store"
)

const testBank = `[
  {"category": "Neurons", "question": "Which part receives signals?", "options": ["Axon", "Dendrite"], "answer": "Dendrite", "explanation": ""},
  {"category": "Neurons", "question": "Which part sends signals?", "options": ["Axon", "Dendrite"], "answer": "Axon", "explanation": ""},
  {"category": "Brain", "question": "Largest part?", "options": ["Cerebrum", "Cerebellum"], "answer": "Cerebrum", "explanation": ""}
]`

// sandbox isolates config lookup and data dirs in a temp dir.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("QUIZBOOK_DB", "")
	t.Setenv("QUIZBOOK_LOG_PATH", "stderr")
	return dir
}

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestValidateBank(t *testing.T) {
	dir := sandbox(t)
	path := filepath.Join(dir, "bank.json")
	require.NoError(t, os.WriteFile(path, []byte(testBank), 0o644))

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "3 questions")
	assert.Contains(t, out, "Neurons")
}

func TestValidateUsesConfiguredBank(t *testing.T) {
	dir := sandbox(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte(testBank), 0o644))

	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "data.json: 3 questions")
}

func TestValidateRejectsBadBank(t *testing.T) {
	dir := sandbox(t)
	path := filepath.Join(dir, "bad.json")
	bad := `[{"category": "A", "question": "q", "options": ["x"], "answer": "y", "explanation": ""}]`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := execute(t, "validate", path)
	var le *bank.LoadError
	assert.ErrorAs(t, err, &le)
}

func TestStatsAndReset(t *testing.T) {
	dir := sandbox(t)
	progressDir := filepath.Join(dir, "progress")
	t.Setenv("QUIZBOOK_STORE_DIR", progressDir)

	fs, err := store.NewFileStore(progressDir)
	require.NoError(t, err)
	p := progress.Default(3)
	p.Score, p.AnsweredCount = 1, 2
	p.MistakeBook.Add(1)
	require.NoError(t, fs.Save(context.Background(), "amy", p))

	out, err := execute(t, "--store", "file", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "amy")
	assert.Contains(t, out, "50.0%")

	out, err = execute(t, "--store", "file", "stats", "amy")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 2 answered")
	assert.Contains(t, out, "[1]")

	_, err = execute(t, "--store", "file", "stats", "nobody")
	assert.Error(t, err)

	_, err = execute(t, "--store", "file", "reset", "amy")
	assert.Error(t, err, "reset needs --yes")

	out, err = execute(t, "--store", "file", "reset", "amy", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = fs.Load(context.Background(), "amy")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestSQLiteStoreFromDBFlag(t *testing.T) {
	dir := sandbox(t)
	dbPath := filepath.Join(dir, "nested", "q.db")

	out, err := execute(t, "--db", dbPath, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved progress yet.")
	assert.FileExists(t, dbPath)
}

func TestUnknownStoreDriver(t *testing.T) {
	sandbox(t)
	_, err := execute(t, "--store", "postgres", "stats")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestVersion(t *testing.T) {
	sandbox(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "quizbook")
}

func TestOpenProgressRepoRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{Store: config.Store{Driver: config.DriverRedis, RedisAddr: mr.Addr()}}

	ctx := context.Background()
	repo, closeRepo, err := openProgressRepo(ctx, cfg)
	require.NoError(t, err)
	defer closeRepo()

	require.NoError(t, repo.Save(ctx, "amy", progress.Default(2)))
	names, err := repo.Usernames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"amy"}, names)
}
