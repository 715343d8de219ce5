package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wonder-codes/echo-repo/internal/config"
	"github.com/wonder-codes/echo-repo/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "echorepo",
	Short: "Generate README files from code or repositories with an LLM",
	Long: `echorepo turns a code snippet or a public repository into a structured
README using a chat model, keeps a history of what it generated and answers
follow-up questions about the code.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		l, err := logging.New(os.Stderr, loaded.LogLevel, loaded.LogFormat)
		if err != nil {
			return err
		}
		cfg, logger = loaded, l
		log.Logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
