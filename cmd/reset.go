package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <username>",
	Short: "Delete a user's saved progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes all progress for %q; rerun with --yes to confirm", args[0])
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		repo, closeRepo, err := openProgressRepo(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeRepo()

		if err := repo.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Progress for %q deleted.\n", args[0])
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
