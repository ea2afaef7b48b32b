package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/ui/theme"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Work with content packs",
}

var contentValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a content pack against the pack schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := content.Load(args[0])
		if err != nil {
			fmt.Println(theme.Failure.Render("✗ invalid"))
			return err
		}
		fmt.Println(theme.Earned.Render("✓ valid"), theme.Hint.Render(fmt.Sprintf("%s %s", b.Name, b.Version)))
		for _, c := range content.AllCategories() {
			n := b.Count(c)
			line := fmt.Sprintf("  %-10s %4d", c, n)
			if n == 0 {
				fmt.Println(theme.Warning.Render(line + "  (empty)"))
				continue
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	contentCmd.AddCommand(contentValidateCmd)
}
