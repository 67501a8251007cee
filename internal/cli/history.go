package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/report"
	"github.com/ppiankov/credence/internal/store"
)

var (
	historyUser  string
	historyPage  int
	historyLimit int
	historySort  string
	historyAsc   bool
	historyYes   bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage saved analyses",
	Long: `History reads the configured store (store.driver / store.dsn) for one user.

Example:
  credence history list --user alice --sort credibility_score
  credence history show <id> --user alice
  credence history stats --user alice`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, st store.HistoryStore, _ []string) error {
		page, err := st.List(ctx, model.HistoryQuery{
			UserID:    historyUser,
			Page:      historyPage,
			Limit:     historyLimit,
			SortBy:    historySort,
			Ascending: historyAsc,
		})
		if err != nil {
			return err
		}
		renderHistory(os.Stdout, page)
		return nil
	}),
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, st store.HistoryStore, args []string) error {
		rec, err := st.Get(ctx, historyUser, args[0])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(report.NewRenderer(false).Markdown(rec))
		return err
	}),
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, st store.HistoryStore, args []string) error {
		if err := st.Delete(ctx, historyUser, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted %s\n", args[0])
		return nil
	}),
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved analyses for the user",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, st store.HistoryStore, _ []string) error {
		if !historyYes {
			return fmt.Errorf("refusing to delete all history for %s without --yes", historyUser)
		}
		n, err := st.DeleteAll(ctx, historyUser)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Deleted %d analyses\n", n)
		return nil
	}),
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize saved analyses by credibility band",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, st store.HistoryStore, _ []string) error {
		stats, err := st.Stats(ctx, historyUser)
		if err != nil {
			return err
		}
		renderStats(os.Stdout, stats)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyClearCmd, historyStatsCmd)

	historyCmd.PersistentFlags().StringVar(&historyUser, "user", "", "user id (required)")
	_ = historyCmd.MarkPersistentFlagRequired("user")

	historyListCmd.Flags().IntVar(&historyPage, "page", 1, "page number")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", model.DefaultPageLimit, "page size (max 100)")
	historyListCmd.Flags().StringVar(&historySort, "sort", model.SortCreatedAt, "sort field (created_at, credibility_score, title)")
	historyListCmd.Flags().BoolVar(&historyAsc, "asc", false, "ascending order")

	historyClearCmd.Flags().BoolVar(&historyYes, "yes", false, "confirm bulk deletion")
}

// withStore opens the configured store around a history subcommand
func withStore(fn func(ctx context.Context, st store.HistoryStore, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := currentConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		return fn(ctx, st, args)
	}
}

func renderHistory(w io.Writer, page *model.HistoryPage) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Date", "Score", "Band", "Method", "Title"})
	for _, rec := range page.Analyses {
		t.AppendRow(table.Row{
			rec.ID,
			rec.Timestamp.Format("2006-01-02 15:04"),
			rec.CredibilityScore,
			rec.Band,
			rec.Method,
			truncate(rec.Title, 50),
		})
	}
	p := page.Pagination
	t.AppendFooter(table.Row{"", "", "", "", "", fmt.Sprintf("page %d of %d (%d total)", p.Page, p.TotalPages, p.Total)})
	t.Render()
}

func renderStats(w io.Writer, stats *model.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Total analyses", stats.TotalAnalyses},
		{"Credible (70+)", stats.CredibilityDistribution.High},
		{"Mixed (40-69)", stats.CredibilityDistribution.Medium},
		{"Unreliable (<40)", stats.CredibilityDistribution.Low},
		{"Average score", stats.AverageCredibility},
	})
	t.Render()
}
