package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/talkie/internal/llm"
	"github.com/abhisek/talkie/internal/store"
	"github.com/abhisek/talkie/internal/ui/theme"
)

const stampLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded coach generation requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generation requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.FailedOnly, _ = cmd.Flags().GetBool("failed")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.From = time.Now().Add(-since)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.LLMEventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println(theme.Hint.Render("No requests recorded."))
			return nil
		}

		t := newTable("ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
		for _, e := range events {
			ok := theme.Earned.Render("yes")
			if !e.Success {
				ok = theme.Failure.Render("no")
			}
			t.Row(
				strconv.FormatInt(e.ID, 10),
				e.Timestamp.Local().Format(stampLayout),
				e.Purpose,
				truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				ok,
			)
		}
		fmt.Println(t.String())
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.LLMEventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("request %d: %w", id, store.ErrNotFound)
		}

		fmt.Println(theme.Title.Render(fmt.Sprintf("Request %d", e.ID)))
		fields := [][2]string{
			{"Time", e.Timestamp.Local().Format(stampLayout)},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		}
		if e.ErrorMessage != "" {
			fields = append(fields, [2]string{"Error", theme.Failure.Render(e.ErrorMessage)})
		}
		for _, f := range fields {
			fmt.Printf("%-9s %s\n", f[0]+":", f[1])
		}

		printBody("Prompt", e.RequestBody)
		printBody("Reply", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		repo := s.LLMEventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return err
		}
		if len(byPurpose) == 0 {
			fmt.Println(theme.Hint.Render("No usage recorded yet."))
			return nil
		}
		byModel, err := repo.LLMUsageByModel(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(theme.Title.Render("Usage by purpose"))
		fmt.Println(usageTable(byPurpose))
		fmt.Println()
		fmt.Println(theme.Title.Render("Estimated cost (USD)"))
		fmt.Println(costTable(byModel))
		return nil
	},
}

func usageTable(rows []store.LLMUsage) string {
	t := newTable("Purpose", "Calls", "Input", "Output", "Avg ms")
	var calls, in, out int
	for _, u := range rows {
		t.Row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens),
			strconv.FormatInt(u.AvgLatencyMs, 10))
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	t.Row("total", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), "")
	return t.String()
}

// costTable prices each model from the pricing table. Models without a
// price show "?" and mark the total as partial.
func costTable(rows []store.LLMUsage) string {
	t := newTable("Model", "Calls", "Input", "Output", "Cost")
	var total float64
	partial := false
	for _, u := range rows {
		cost := "?"
		if price := llm.LookupCost(u.Model); price != nil {
			c := price.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			partial = true
		}
		t.Row(truncate(u.Model, 32), strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), cost)
	}
	label := "total"
	if partial {
		label = "total (partial)"
	}
	t.Row(label, "", "", "", formatCost(total))
	return t.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(theme.Hint).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.TableHeader
			}
			return theme.TableCell
		})
}

func printBody(label, body string) {
	fmt.Println()
	fmt.Println(theme.Section.Render(label))
	if strings.TrimSpace(body) == "" {
		fmt.Println(theme.Hint.Render("(not captured)"))
		return
	}
	fmt.Println(body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only this purpose (coach, roleplay, meaning, sentence)")
	llmListCmd.Flags().Bool("failed", false, "Only failed requests")
	llmListCmd.Flags().Duration("since", 0, "Only requests newer than this, e.g. 24h")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
