package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/logger"
	"github.com/abhisek/talkie/internal/session"
	"github.com/abhisek/talkie/internal/tutor"
	"github.com/abhisek/talkie/internal/ui/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Show a learner's progress, badges and suggestions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		u, err := s.Repo().GetUser(ctx, args[0])
		if err != nil {
			return err
		}
		t := tutor.New(newLedger(s, logger.Nop()), s, content.Default(), session.NewMemoryStore(0))
		v, err := t.ProgressSnapshot(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		suggestions, err := t.Suggestions(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("load suggestions: %w", err)
		}
		fmt.Print(report.Progress(u.Name, v, suggestions))
		return nil
	},
}
