package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/talkie/internal/badges"
	"github.com/abhisek/talkie/internal/logger"
	"github.com/abhisek/talkie/internal/progress"
	"github.com/abhisek/talkie/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "talkie",
	Short: "Spoken English practice for kids",
	Long:  "Talkie tracks children's speaking practice: grading, XP, unlocks, badges, streaks and what to try next.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(cmd)
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().String("db", "", "Database path or postgres:// DSN (overrides TALKIE_DB env var)")
	rootCmd.PersistentFlags().String("env-file", "", "Load environment variables from this file (default .env if present)")
	rootCmd.PersistentFlags().String("log-mode", "", "Log format: dev or prod (overrides TALKIE_LOG_MODE env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnv reads the --env-file, or .env when present. Variables already
// set in the environment win.
func loadEnv(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then TALKIE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func newLogger(cmd *cobra.Command) (*logger.Logger, error) {
	m, _ := cmd.Flags().GetString("log-mode")
	if m == "" {
		m = os.Getenv("TALKIE_LOG_MODE")
	}
	log, err := logger.New(m)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}

func newLedger(s *store.Store, log *logger.Logger) *progress.Ledger {
	return progress.NewLedger(s, badges.Default(), progress.WithLogger(log))
}
