package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbook/internal/progress"
	"github.com/abhisek/quizbook/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats [username]",
	Short: "Show saved progress for one user or all users",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		repo, closeRepo, err := openProgressRepo(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeRepo()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			p, err := repo.Load(ctx, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no saved progress for %q", args[0])
			}
			if err != nil {
				return err
			}
			printUserStats(cmd, args[0], p)
			return nil
		}

		names, err := repo.Usernames(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(out, "No saved progress yet.")
			return nil
		}

		fmt.Fprintf(out, "%-24s  %7s  %8s  %8s  %8s  %-16s\n",
			"User", "Score", "Answered", "Accuracy", "Mistakes", "Mode")
		fmt.Fprintln(out, strings.Repeat("─", 82))
		for _, name := range names {
			p, err := repo.Load(ctx, name)
			if err != nil {
				fmt.Fprintf(out, "%-24s  %s\n", truncate(name, 24), err)
				continue
			}
			fmt.Fprintf(out, "%-24s  %7d  %8d  %7.1f%%  %8d  %-16s\n",
				truncate(name, 24), p.Score, p.AnsweredCount, p.Accuracy(), p.MistakeBook.Len(), p.Mode)
		}
		return nil
	},
}

func printUserStats(cmd *cobra.Command, username string, p *progress.Progress) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User:         %s\n", username)
	fmt.Fprintf(out, "Mode:         %s\n", p.Mode.Label())
	fmt.Fprintf(out, "Category:     %s\n", p.SelectedCategory)
	fmt.Fprintf(out, "Position:     %d of %d\n", min(p.CurrentIndex+1, len(p.FilteredIndices)), len(p.FilteredIndices))
	fmt.Fprintf(out, "Score:        %d of %d answered (%.1f%%)\n", p.Score, p.AnsweredCount, p.Accuracy())
	fmt.Fprintf(out, "Mistake book: %d %v\n", p.MistakeBook.Len(), p.MistakeBook.Sorted())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
