// Package pipeline runs one credibility analysis end to end.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/credence/internal/analyze"
	"github.com/ppiankov/credence/internal/cache"
	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/logger"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/score"
	"github.com/ppiankov/credence/internal/store"
	"github.com/ppiankov/credence/internal/telemetry"
)

// ArticleSource turns a URL into article text
type ArticleSource interface {
	FromURL(ctx context.Context, rawURL string) (model.ArticleData, error)
}

// AIAnalyst produces an assessment from an external provider
type AIAnalyst interface {
	Analyze(ctx context.Context, content, url string) (*llm.Analysis, error)
	ProviderName() string
}

// Analyzer orchestrates extraction, scoring and artifact generation
type Analyzer struct {
	source    ArticleSource
	scorer    *score.Scorer
	generator *analyze.Generator
	analyst   AIAnalyst
	cache     cache.Cache
	cacheTTL  time.Duration
	store     store.HistoryStore
	metrics   *telemetry.Metrics
	tracer    trace.Tracer
	log       logger.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithAnalyst enables the AI path
func WithAnalyst(a AIAnalyst) Option {
	return func(an *Analyzer) { an.analyst = a }
}

// WithCache enables result caching
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(an *Analyzer) {
		an.cache = c
		an.cacheTTL = ttl
	}
}

// WithStore sets the history store used by AnalyzeAndStore
func WithStore(s store.HistoryStore) Option {
	return func(an *Analyzer) { an.store = s }
}

// WithMetrics records analysis metrics
func WithMetrics(m *telemetry.Metrics) Option {
	return func(an *Analyzer) { an.metrics = m }
}

// WithTracer overrides the default tracer
func WithTracer(t trace.Tracer) Option {
	return func(an *Analyzer) { an.tracer = t }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(an *Analyzer) { an.log = l }
}

// WithClock overrides time and id generation
func WithClock(now func() time.Time, newID func() string) Option {
	return func(an *Analyzer) {
		an.now = now
		an.newID = newID
	}
}

// NewAnalyzer creates an analyzer over source and scorer
func NewAnalyzer(source ArticleSource, scorer *score.Scorer, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:    source,
		scorer:    scorer,
		generator: analyze.NewGenerator(),
		tracer:    telemetry.Tracer(),
		log:       logger.NewNop(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AIEnabled reports whether the AI path is configured
func (a *Analyzer) AIEnabled() bool {
	return a.analyst != nil
}

// Analyze validates input, obtains article text, scores it and builds the result.
// Errors are *model.ValidationError or *model.ExtractionError; AI failures
// fall back to the rule path and are never returned.
func (a *Analyzer) Analyze(ctx context.Context, input model.ArticleInput) (*model.AnalysisResult, error) {
	ctx, span := a.tracer.Start(ctx, "pipeline.Analyze")
	defer span.End()

	input = input.Normalize()
	if err := input.Validate(); err != nil {
		span.SetStatus(codes.Error, "validation")
		return nil, err
	}

	kind := "text"
	if input.IsURL() {
		kind = "url"
	}
	span.SetAttributes(attribute.String("input.kind", kind))

	start := time.Now()
	key := a.cacheKey(input)
	if result, ok := a.cached(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return result, nil
	}

	article, err := a.article(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction")
		return nil, err
	}

	scored := a.scorer.Calculate(article)
	span.SetAttributes(attribute.Int("score.rules", scored.Score))

	result, fellBack := a.build(ctx, article, scored)
	span.SetAttributes(
		attribute.String("analysis.method", string(result.Method)),
		attribute.Int("analysis.score", result.CredibilityScore),
	)

	if !fellBack {
		a.remember(ctx, key, result)
	}

	if a.metrics != nil {
		a.metrics.AnalysesTotal.WithLabelValues(string(result.Method), kind).Inc()
		a.metrics.AnalysisDuration.WithLabelValues(string(result.Method)).Observe(time.Since(start).Seconds())
		a.metrics.ScoreDistribution.Observe(float64(result.CredibilityScore))
	}

	a.log.Debug("analysis completed",
		logger.String("input", kind),
		logger.String("title", result.Title),
		logger.Int("score", result.CredibilityScore),
		logger.String("method", string(result.Method)),
		logger.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// AnalyzeAndStore analyzes input and, for a non-empty userID, persists the
// result as a history record. Anonymous results carry no id.
func (a *Analyzer) AnalyzeAndStore(ctx context.Context, userID string, input model.ArticleInput) (*model.HistoryRecord, error) {
	result, err := a.Analyze(ctx, input)
	if err != nil {
		return nil, err
	}

	rec := &model.HistoryRecord{
		Timestamp:      a.now(),
		AnalysisResult: *result,
	}
	if userID == "" || a.store == nil {
		return rec, nil
	}

	rec.ID = a.newID()
	rec.UserID = userID
	if err := a.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (a *Analyzer) article(ctx context.Context, input model.ArticleInput) (model.ArticleData, error) {
	if !input.IsURL() {
		return extract.FromText(input.Content), nil
	}

	ctx, span := a.tracer.Start(ctx, "pipeline.Extract")
	defer span.End()

	article, err := a.source.FromURL(ctx, input.URL)
	if err != nil {
		if a.metrics != nil {
			a.metrics.ExtractionFailures.Inc()
		}
		a.log.Warn("extraction failed", logger.String("url", input.URL), logger.Err(err))

		var extErr *model.ExtractionError
		if !errors.As(err, &extErr) {
			err = &model.ExtractionError{URL: input.URL, Err: err}
		}
		return model.ArticleData{}, err
	}
	return article, nil
}

// build produces the result on the AI path when configured, else the rule path.
// fellBack is true when the AI path was attempted and failed.
func (a *Analyzer) build(ctx context.Context, article model.ArticleData, scored score.Result) (*model.AnalysisResult, bool) {
	if a.analyst == nil {
		return a.ruleResult(article, scored), false
	}

	url := ""
	if article.HasURL() {
		url = article.SourceURL
	}

	aiCtx, span := a.tracer.Start(ctx, "pipeline.AI")
	span.SetAttributes(attribute.String("ai.provider", a.analyst.ProviderName()))
	analysis, err := a.analyst.Analyze(aiCtx, article.Content, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback")
		span.End()

		a.log.Warn("AI analysis failed, using rule analysis",
			logger.String("provider", a.analyst.ProviderName()),
			logger.Err(err),
		)
		if a.metrics != nil {
			a.metrics.AIFallbacks.WithLabelValues(a.analyst.ProviderName()).Inc()
		}
		return a.ruleResult(article, scored), true
	}
	span.End()

	return &model.AnalysisResult{
		URL:                 article.SourceURL,
		Title:               article.Title,
		Content:             model.TruncateContent(article.Content),
		CredibilityScore:    analysis.CredibilityScore,
		Band:                model.BandFor(analysis.CredibilityScore),
		Explanation:         analysis.Explanation,
		Summary:             analysis.Summary,
		KeyPoints:           analysis.KeyPoints,
		Quotes:              analysis.Quotes,
		QuotesSynthetic:     analysis.QuotesSynthetic,
		Claims:              analysis.Claims,
		RedFlags:            analysis.RedFlags,
		PositiveIndicators:  analysis.PositiveIndicators,
		VerificationSources: analyze.Sources(),
		FinalVerdict:        analysis.FinalVerdict,
		Method:              model.MethodAI,
	}, false
}

func (a *Analyzer) ruleResult(article model.ArticleData, scored score.Result) *model.AnalysisResult {
	art := a.generator.Generate(article.Content, scored.Score)
	return &model.AnalysisResult{
		URL:                 article.SourceURL,
		Title:               article.Title,
		Content:             model.TruncateContent(article.Content),
		CredibilityScore:    scored.Score,
		Band:                model.BandFor(scored.Score),
		Explanation:         art.Explanation,
		Summary:             art.Summary,
		KeyPoints:           art.KeyPoints,
		Quotes:              art.Quotes,
		QuotesSynthetic:     art.QuotesSynthetic,
		Claims:              art.Claims,
		RedFlags:            art.RedFlags,
		PositiveIndicators:  art.PositiveIndicators,
		VerificationSources: art.VerificationSources,
		FinalVerdict:        art.FinalVerdict,
		Method:              model.MethodRules,
		Signals:             scored.Signals,
	}
}

func (a *Analyzer) cacheKey(input model.ArticleInput) string {
	if a.cache == nil {
		return ""
	}
	method := string(model.MethodRules)
	if a.analyst != nil {
		method = string(model.MethodAI) + ":" + a.analyst.ProviderName()
	}
	if input.IsURL() {
		return cache.CacheKey(method, "url", input.URL)
	}
	return cache.CacheKey(method, "text", input.Content)
}

func (a *Analyzer) cached(ctx context.Context, key string) (*model.AnalysisResult, bool) {
	if a.cache == nil {
		return nil, false
	}
	data, found := a.cache.Get(ctx, key)
	if !found {
		a.countCache("miss")
		return nil, false
	}
	var result model.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		a.log.Warn("discarding unreadable cache entry", logger.String("key", key), logger.Err(err))
		_ = a.cache.Delete(ctx, key)
		a.countCache("miss")
		return nil, false
	}
	a.countCache("hit")
	return &result, true
}

func (a *Analyzer) remember(ctx context.Context, key string, result *model.AnalysisResult) {
	if a.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, a.cacheTTL); err != nil {
		a.log.Warn("cache write failed", logger.String("key", key), logger.Err(err))
	}
}

func (a *Analyzer) countCache(result string) {
	if a.metrics != nil {
		a.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
