package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizbook/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "quizbook",
	Short: "Terminal flashcard quiz with a mistake book",
	Long: "Quizbook runs multiple-choice quizzes from a question bank file, remembers each " +
		"user's score and answers, and keeps a mistake book of questions to review.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default ./quizbook.yaml or $XDG_CONFIG_HOME/quizbook/quizbook.yaml)")
	pf.String("bank", "", "Path to the question bank, JSON or YAML (overrides bank_path)")
	pf.String("store", "", "Progress store driver: sqlite, file, redis or memory (overrides store.driver)")
	pf.String("db", "", "Path to SQLite database file (overrides store.dsn and QUIZBOOK_DB)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies flag
// overrides in priority order: flags, env, file, defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("bank"); v != "" {
		cfg.BankPath = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store.Driver = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Store.DSN = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
