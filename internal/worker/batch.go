package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/telemetry"
)

// Analyzer analyzes one input and optionally stores it for userID
type Analyzer interface {
	AnalyzeAndStore(ctx context.Context, userID string, input model.ArticleInput) (*model.HistoryRecord, error)
}

// AnalyzeJob analyzes one URL from a batch
type AnalyzeJob struct {
	Index    int
	URL      string
	UserID   string
	Analyzer Analyzer
	Limiter  *Limiter
}

// Execute waits for the URL's domain bucket, then analyzes it
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	start := time.Now()
	res := &AnalyzeResult{Index: j.Index, URL: j.URL}

	if j.Limiter != nil {
		if err := j.Limiter.WaitURL(ctx, j.URL); err != nil {
			res.Error = fmt.Errorf("rate limit: %w", err)
			res.Duration = time.Since(start)
			return res
		}
	}

	rec, err := j.Analyzer.AnalyzeAndStore(ctx, j.UserID, model.ArticleInput{URL: j.URL})
	res.Record = rec
	res.Error = err
	res.Duration = time.Since(start)
	return res
}

// AnalyzeResult is the outcome for one batch URL
type AnalyzeResult struct {
	Index    int
	URL      string
	Record   *model.HistoryRecord
	Error    error
	Duration time.Duration
}

// GetError returns the analysis error
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchSummary aggregates a finished batch
type BatchSummary struct {
	Total        int
	Succeeded    int
	Failed       int
	AverageScore int
	Bands        model.CredibilityDistribution
}

// Summarize counts outcomes and bands across results
func Summarize(results []*AnalyzeResult) BatchSummary {
	s := BatchSummary{Total: len(results)}
	sum := 0
	for _, r := range results {
		if r.Error != nil || r.Record == nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		sum += r.Record.CredibilityScore
		s.Bands.Add(r.Record.CredibilityScore)
	}
	if s.Succeeded > 0 {
		s.AverageScore = int(float64(sum)/float64(s.Succeeded) + 0.5)
	}
	return s
}

// BatchProcessor analyzes many URLs concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
	userID      string
	metrics     *telemetry.Metrics
}

// NewBatchProcessor creates a processor. requestsPerSecond <= 0 disables
// per-domain rate limiting.
func NewBatchProcessor(analyzer Analyzer, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	b := &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
	if requestsPerSecond > 0 {
		b.limiter = NewLimiter(requestsPerSecond, burst)
	}
	return b
}

// ForUser stores every successful analysis in userID's history
func (b *BatchProcessor) ForUser(userID string) *BatchProcessor {
	b.userID = userID
	return b
}

// WithMetrics counts batch outcomes
func (b *BatchProcessor) WithMetrics(m *telemetry.Metrics) *BatchProcessor {
	b.metrics = m
	return b
}

// ProcessURLs analyzes urls and returns results in input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*AnalyzeResult {
	if len(urls) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, url := range urls {
		job := &AnalyzeJob{
			Index:    i,
			URL:      url,
			UserID:   b.userID,
			Analyzer: b.analyzer,
			Limiter:  b.limiter,
		}
		if !pool.Submit(job) {
			break
		}
	}

	raw := pool.Wait()

	results := make([]*AnalyzeResult, 0, len(raw))
	for _, r := range raw {
		res := r.(*AnalyzeResult)
		b.count(res)
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

func (b *BatchProcessor) count(res *AnalyzeResult) {
	if b.metrics == nil {
		return
	}
	status := "ok"
	if res.Error != nil {
		status = "failed"
	}
	b.metrics.BatchItems.WithLabelValues(status).Inc()
}

// ProcessFile reads URLs from a file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}
	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadURLs(file)
}

// ReadURLs reads one URL per line, skipping blanks, '#' comments and duplicates
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return urls, nil
}
