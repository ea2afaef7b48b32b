package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <user-id>",
	Short: "Rebuild a learner's counters from their attempt log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		snap, err := newLedger(s, log).Rebuild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Rebuilt %s: %d XP, %d stars, %d attempts, %d day streak\n",
			args[0], snap.XPTotal, snap.TotalStars, snap.TotalSessions, snap.Streak)
		return nil
	},
}
