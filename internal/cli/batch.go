package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ppiankov/credence/internal/pipeline"
	"github.com/ppiankov/credence/internal/report"
	"github.com/ppiankov/credence/internal/store"
	"github.com/ppiankov/credence/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many URLs from a file",
	Long: `Batch reads URLs from a file (one per line, '#' comments and duplicates
skipped), analyzes them with a worker pool and writes one report per URL.

Fetches to the same domain are rate limited using rate_limiting settings.

Example:
  credence batch urls.txt
  credence batch urls.txt --workers 8 --md --out ./reports
  credence batch urls.txt --user alice --ai`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVarP(&concurrency, "workers", "w", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "overall batch timeout")

	addReportFlags(batchCmd)
	addAIFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	if err := configureAI(cfg, aiEnabled, aiProvider, aiModel, os.Getenv); err != nil {
		return err
	}
	if outDir != "" {
		cfg.Report.Dir = outDir
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	urls, err := worker.ReadURLsFromFile(file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Credence Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s (%d URLs)\n", file, len(urls))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Reports:      %s\n", reportTarget(cfg.Report.Dir, cfg.Report.S3Bucket))
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  AI provider:  %s\n", cfg.LLM.Provider)
	}
	fmt.Fprintf(os.Stderr, "\n")

	log, err := cliLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var st store.HistoryStore
	if userID != "" {
		if st, err = openStore(ctx, cfg); err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
	}

	analyzer, err := pipeline.Build(cfg, log, nil, st)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(analyzer, cfg.Concurrency.Workers,
		cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize).ForUser(userID)

	fmt.Fprintf(os.Stderr, "⚙️  Processing URLs with %d workers...\n\n", cfg.Concurrency.Workers)
	results := processor.ProcessURLs(ctx, urls)

	renderer := report.NewRenderer(!noFooter)
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "URL", "Score", "Band", "Method", "Result"})

	for _, res := range results {
		if res.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.URL, res.Error)
			t.AppendRow(table.Row{res.Index + 1, truncate(res.URL, 60), "-", "-", "-", "failed"})
			continue
		}
		if err := publish(ctx, cfg, renderer, res.Record); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.URL, err)
		}
		t.AppendRow(table.Row{
			res.Index + 1,
			truncate(res.URL, 60),
			res.Record.CredibilityScore,
			res.Record.Band,
			res.Record.Method,
			res.Duration.Round(time.Millisecond),
		})
	}
	t.Render()

	summary := worker.Summarize(results)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d URLs\n", summary.Total)
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", summary.Succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "  Average:   %d/100\n", summary.AverageScore)
	fmt.Fprintf(os.Stderr, "  Bands:     %d credible, %d mixed, %d unreliable\n",
		summary.Bands.High, summary.Bands.Medium, summary.Bands.Low)
	fmt.Fprintf(os.Stderr, "\n")

	if summary.Total > 0 && summary.Succeeded == 0 {
		return fmt.Errorf("all %d URLs failed", summary.Total)
	}
	return nil
}

func reportTarget(dir, bucket string) string {
	if bucket != "" {
		return "s3://" + bucket
	}
	return dir
}

// truncate shortens s to limit runes with an ellipsis
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
