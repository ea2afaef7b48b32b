package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/talkie/internal/badges"
	"github.com/abhisek/talkie/internal/ui/theme"
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List the badge catalog",
	Run: func(cmd *cobra.Command, args []string) {
		var last badges.Category
		for _, d := range badges.Default().Definitions() {
			if d.Category != last {
				fmt.Println(theme.Section.Render(string(d.Category)))
				last = d.Category
			}
			fmt.Printf("%s %s  %s\n", d.Icon, theme.Earned.Render(d.Name), theme.Hint.Render(d.Description))
		}
	},
}
