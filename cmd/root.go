package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"go.withmatt.com/maildigest/internal/config"
	"go.withmatt.com/maildigest/internal/log"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "maildigest",
	Short: "Fetch a compact digest of a Gmail account",
	Long: `maildigest fetches a Gmail profile, labels and recent messages concurrently
and reduces each message to its essential fields for downstream tools.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		return log.Setup(debug)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return log.Close()
	},
}

func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("account", "", "Gmail address whose stored login to use")
	rootCmd.PersistentFlags().String("env-file", "", "load GMAIL_* credentials from this file")
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// loadConfig reads the config file, applies defaults, and loads the env
// file named by --env-file or the config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	loaded, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("unable to load config: %w", err)
	}
	cfg := loaded.WithDefaults()

	if account, _ := cmd.Flags().GetString("account"); account != "" {
		cfg.Account = account
	}
	if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
		cfg.EnvFile = envFile
	}

	if cfg.EnvFile != "" {
		// Variables already set in the environment win over the file.
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return config.Config{}, fmt.Errorf("unable to load env file %s: %w", cfg.EnvFile, err)
		}
	}

	log.Printf("config account=%q max_messages=%d workers=%d", cfg.Account, cfg.MaxMessages, cfg.Workers)
	return cfg, nil
}
