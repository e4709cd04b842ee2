package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbook/internal/bank"
)

var validateCmd = &cobra.Command{
	Use:   "validate [bank]",
	Short: "Check a question bank file and summarize it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path = cfg.BankPath
		}

		b, err := bank.Load(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d questions\n", path, b.Len())
		for _, c := range b.Categories()[1:] {
			fmt.Fprintf(out, "  %-30s %4d\n", c, len(b.IndicesByCategory(c)))
		}
		return nil
	},
}
