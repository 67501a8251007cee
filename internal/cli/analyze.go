package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/credence/internal/logger"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/pipeline"
	"github.com/ppiankov/credence/internal/report"
	"github.com/ppiankov/credence/internal/store"
)

var (
	analyzeText    string
	analyzeFile    string
	analyzeTimeout time.Duration

	// shared with batch
	writeJSON  bool
	writeMD    bool
	outDir     string
	noFooter   bool
	userID     string
	aiEnabled  bool
	aiProvider string
	aiModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyze one article by URL or pasted text",
	Long: `Analyze fetches an article (or reads text), scores its credibility and
writes a report.

Exactly one input is required: a URL argument, --text or --file.
A URL wins over text when both are given.

Example:
  credence analyze https://apnews.com/article/example
  credence analyze --text "According to the ministry, inflation fell..."
  credence analyze --file article.txt --md
  credence analyze https://example.com --ai --provider anthropic`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "article text to analyze")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read article text from file ('-' for stdin)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 90*time.Second, "overall analysis timeout")

	addReportFlags(analyzeCmd)
	addAIFlags(analyzeCmd)
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&writeJSON, "json", true, "write a JSON report")
	cmd.Flags().BoolVar(&writeMD, "md", false, "write a Markdown report")
	cmd.Flags().StringVar(&outDir, "out", "", "report directory (overrides report.dir)")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().StringVar(&userID, "user", "", "save results to this user's history")
}

func addAIFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&aiEnabled, "ai", false, "enable AI-assisted analysis")
	cmd.Flags().StringVar(&aiProvider, "provider", "", "AI provider (openai, anthropic, gemini, ollama)")
	cmd.Flags().StringVar(&aiModel, "model", "", "AI model name (provider default when empty)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input, err := analyzeInput(args, analyzeText, analyzeFile, os.Stdin)
	if err != nil {
		return err
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

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

	if verbose {
		if input.IsURL() {
			fmt.Fprintf(os.Stderr, "⚙️  Analyzing %s\n", input.URL)
		} else {
			fmt.Fprintf(os.Stderr, "⚙️  Analyzing %d characters of text\n", len(input.Content))
		}
	}

	rec, err := analyzer.AnalyzeAndStore(ctx, userID, input)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	renderer := report.NewRenderer(!noFooter)
	renderer.Summary(os.Stdout, rec)
	if rec.ID != "" {
		fmt.Fprintf(os.Stderr, "✓ Saved to history as %s\n", rec.ID)
	}

	return publish(ctx, cfg, renderer, rec)
}

// publish writes the selected report formats to the configured sink
func publish(ctx context.Context, cfg *model.Config, renderer *report.Renderer, rec *model.HistoryRecord) error {
	formats := selectedFormats(writeJSON, writeMD)
	if len(formats) == 0 {
		return nil
	}

	sink, err := report.NewSink(ctx, cfg.Report)
	if err != nil {
		return fmt.Errorf("report sink: %w", err)
	}
	locations, err := report.Publish(ctx, sink, renderer, rec, formats...)
	for _, loc := range locations {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", loc)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// analyzeInput resolves the single input source for analyze
func analyzeInput(args []string, text, file string, stdin io.Reader) (model.ArticleInput, error) {
	var input model.ArticleInput
	if len(args) > 0 {
		input.URL = strings.TrimSpace(args[0])
	}

	switch {
	case text != "":
		input.Content = text
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return input, fmt.Errorf("read stdin: %w", err)
		}
		input.Content = string(data)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return input, fmt.Errorf("read %s: %w", file, err)
		}
		input.Content = string(data)
	}

	if err := input.Validate(); err != nil {
		return input, fmt.Errorf("%w (pass a URL, --text or --file)", err)
	}
	return input, nil
}

// configureAI turns the AI path on only when requested. Switching provider
// by flag drops credentials that belonged to the configured one.
func configureAI(cfg *model.Config, enabled bool, provider, modelName string, getenv func(string) string) error {
	if !enabled {
		cfg.LLM.Provider = ""
		return nil
	}

	if provider != "" && !strings.EqualFold(provider, cfg.LLM.Provider) {
		cfg.LLM.Provider = provider
		cfg.LLM.APIKey = ""
		cfg.LLM.BaseURL = ""
		cfg.LLM.Model = ""
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if modelName != "" {
		cfg.LLM.Model = modelName
	}

	applyProviderEnv(cfg, getenv)
	return requireProviderKey(cfg)
}

func selectedFormats(jsonOut, mdOut bool) []report.Format {
	var formats []report.Format
	if jsonOut {
		formats = append(formats, report.FormatJSON)
	}
	if mdOut {
		formats = append(formats, report.FormatMarkdown)
	}
	return formats
}

// cliLogger only emits structured logs in verbose mode; normal output is the summary
func cliLogger(cfg *model.Config) (logger.Logger, error) {
	if !verbose {
		return logger.NewNop(), nil
	}
	return newLogger(cfg)
}
