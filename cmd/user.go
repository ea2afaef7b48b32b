package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/talkie/internal/logger"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learners",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Register a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			id = uuid.NewString()
		}
		u, err := newLedger(s, logger.Nop()).CreateUser(cmd.Context(), id, args[0])
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Printf("Created %s (%s)\n", u.Name, u.ID)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a learner and all their progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := newLedger(s, logger.Nop()).DeleteUser(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learners",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		users, err := s.Repo().ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No learners yet.")
			return nil
		}
		for _, u := range users {
			fmt.Printf("%-36s  %-20s  %s\n", u.ID, u.Name, u.CreatedAt.Local().Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	userCreateCmd.Flags().String("id", "", "Use this id instead of a random one")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userListCmd)
}
