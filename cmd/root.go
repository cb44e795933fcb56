package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"advanced-prompt/internal/logging"
)

// NewRootCmd creates the advanced-prompt root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "advanced-prompt",
		Short: "Row-based prompt editing, parameter sweeps and chat drafting for image prompts",
		Long: `advanced-prompt keeps a flat image prompt and its row view in sync, runs
parameter sweeps over the generation form and drafts prompts with a chat model.

Without a subcommand it starts the HTTP API.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("log-level", envOr("LOG_LEVEL", "info"), "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().String("log-format", envOr("LOG_FORMAT", "text"), "Log format (text or json)")
	root.PersistentFlags().Bool("json", false, "Output in JSON format")

	serve := NewServeCmd()
	root.AddCommand(serve, NewRowsCmd(), NewSweepCmd())
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

// Execute loads .env and runs the root command.
func Execute() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	return logging.New(level, format)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
