package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/credence/internal/cache"
	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/logger"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/score"
	"github.com/ppiankov/credence/internal/store"
)

const articleText = "According to the ministry, the study data shows inflation fell to 2.1 percent in March. " +
	"Economists said the figures were in line with expectations. " +
	"The central bank will meet next week to review rates."

type fakeSource struct {
	article model.ArticleData
	err     error
	calls   int
}

func (f *fakeSource) FromURL(ctx context.Context, rawURL string) (model.ArticleData, error) {
	f.calls++
	if f.err != nil {
		return model.ArticleData{}, f.err
	}
	a := f.article
	a.SourceURL = rawURL
	return a, nil
}

type fakeAnalyst struct {
	analysis *llm.Analysis
	err      error
	calls    int
}

func (f *fakeAnalyst) Analyze(ctx context.Context, content, url string) (*llm.Analysis, error) {
	f.calls++
	return f.analysis, f.err
}

func (f *fakeAnalyst) ProviderName() string { return "fake" }

func newTestAnalyzer(source ArticleSource, opts ...Option) *Analyzer {
	return NewAnalyzer(source, score.NewDefaultScorer(), opts...)
}

func TestAnalyze_ValidationError(t *testing.T) {
	src := &fakeSource{}
	a := newTestAnalyzer(src)

	_, err := a.Analyze(context.Background(), model.ArticleInput{URL: "  ", Content: ""})
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if ve.Message != "Either URL or content must be provided" {
		t.Errorf("Unexpected message: %s", ve.Message)
	}
	if src.calls != 0 {
		t.Errorf("Expected no extractor calls, got %d", src.calls)
	}
}

func TestAnalyze_TextRulePath(t *testing.T) {
	src := &fakeSource{}
	a := newTestAnalyzer(src)

	result, err := a.Analyze(context.Background(), model.ArticleInput{Content: articleText})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	want := score.NewDefaultScorer().Score(extract.FromText(articleText))
	if result.CredibilityScore != want {
		t.Errorf("Expected score %d, got %d", want, result.CredibilityScore)
	}
	if result.URL != model.TextSourceURL {
		t.Errorf("Expected URL %q, got %q", model.TextSourceURL, result.URL)
	}
	if result.Method != model.MethodRules {
		t.Errorf("Expected rules method, got %s", result.Method)
	}
	if result.Band != model.BandFor(want) {
		t.Errorf("Expected band %s, got %s", model.BandFor(want), result.Band)
	}
	if len(result.VerificationSources) != 4 {
		t.Errorf("Expected 4 verification sources, got %d", len(result.VerificationSources))
	}
	if len(result.Signals) == 0 {
		t.Error("Expected rule signals")
	}
	if src.calls != 0 {
		t.Errorf("Expected text input to skip the extractor, got %d calls", src.calls)
	}
}

func TestAnalyze_URLWinsOverContent(t *testing.T) {
	src := &fakeSource{article: model.ArticleData{Title: "Rates", Content: articleText}}
	a := newTestAnalyzer(src)

	result, err := a.Analyze(context.Background(), model.ArticleInput{
		URL:     "https://www.reuters.com/markets/rates",
		Content: "ignored",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if src.calls != 1 {
		t.Errorf("Expected one extractor call, got %d", src.calls)
	}
	if result.URL != "https://www.reuters.com/markets/rates" {
		t.Errorf("Unexpected URL: %s", result.URL)
	}

	textScore := score.NewDefaultScorer().Score(extract.FromText(articleText))
	if result.CredibilityScore != model.ClampScore(textScore+score.TrustedDomainBonus) {
		t.Errorf("Expected trusted domain bonus on top of %d, got %d", textScore, result.CredibilityScore)
	}
}

func TestAnalyze_TrimsURL(t *testing.T) {
	src := &fakeSource{article: model.ArticleData{Title: "Rates", Content: articleText}}
	a := newTestAnalyzer(src)

	result, err := a.Analyze(context.Background(), model.ArticleInput{URL: " https://www.reuters.com/x\n"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.URL != "https://www.reuters.com/x" {
		t.Errorf("Expected trimmed source URL, got %q", result.URL)
	}
}

func TestAnalyze_ExtractionError(t *testing.T) {
	a := newTestAnalyzer(&fakeSource{err: errors.New("connection refused")})

	_, err := a.Analyze(context.Background(), model.ArticleInput{URL: "https://example.com/x"})
	var ee *model.ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("Expected ExtractionError, got %v", err)
	}
	if ee.URL != "https://example.com/x" {
		t.Errorf("Unexpected URL: %s", ee.URL)
	}
}

func TestAnalyze_TruncatesContent(t *testing.T) {
	a := newTestAnalyzer(&fakeSource{})

	long := strings.Repeat("Measured reporting cites data. ", 100)
	result, err := a.Analyze(context.Background(), model.ArticleInput{Content: long})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if n := utf8.RuneCountInString(result.Content); n > model.MaxStoredContent {
		t.Errorf("Expected content <= %d runes, got %d", model.MaxStoredContent, n)
	}
}

func TestAnalyze_AIPath(t *testing.T) {
	analyst := &fakeAnalyst{analysis: &llm.Analysis{
		CredibilityScore: 91,
		Explanation:      "Well sourced.",
		Summary:          "Inflation fell.",
		KeyPoints:        []string{"Inflation fell"},
		Quotes:           []string{"in line with expectations"},
		Claims:           []model.Claim{{Claim: "Inflation fell", Verdict: model.VerdictTrue, Evidence: "Official data"}},
		RedFlags:         []string{},
		FinalVerdict:     "Reliable.",
	}}
	a := newTestAnalyzer(&fakeSource{}, WithAnalyst(analyst))

	result, err := a.Analyze(context.Background(), model.ArticleInput{Content: articleText})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Method != model.MethodAI {
		t.Errorf("Expected ai method, got %s", result.Method)
	}
	if result.CredibilityScore != 91 || result.Band != model.BandCredible {
		t.Errorf("Expected AI score 91/credible, got %d/%s", result.CredibilityScore, result.Band)
	}
	if result.Summary != "Inflation fell." {
		t.Errorf("Unexpected summary: %s", result.Summary)
	}
	if len(result.VerificationSources) != 4 {
		t.Errorf("Expected fixed verification sources, got %d", len(result.VerificationSources))
	}
}

func TestAnalyze_AIFailureFallsBack(t *testing.T) {
	analyst := &fakeAnalyst{err: &model.ExternalServiceError{Provider: "fake", Err: context.DeadlineExceeded}}
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	a := newTestAnalyzer(&fakeSource{}, WithAnalyst(analyst), WithCache(mem, time.Minute))

	for i := 0; i < 2; i++ {
		result, err := a.Analyze(context.Background(), model.ArticleInput{Content: articleText})
		if err != nil {
			t.Fatalf("Expected fallback, got error %v", err)
		}
		if result.Method != model.MethodRules {
			t.Errorf("Expected rules method after fallback, got %s", result.Method)
		}
	}
	if analyst.calls != 2 {
		t.Errorf("Expected fallback results to stay out of the cache, got %d AI calls", analyst.calls)
	}
}

func TestAnalyze_CacheHit(t *testing.T) {
	src := &fakeSource{article: model.ArticleData{Title: "Rates", Content: articleText}}
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	a := newTestAnalyzer(src, WithCache(mem, time.Minute))

	first, err := a.Analyze(context.Background(), model.ArticleInput{URL: "https://example.com/a"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := a.Analyze(context.Background(), model.ArticleInput{URL: "https://example.com/a"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if src.calls != 1 {
		t.Errorf("Expected second analysis from cache, got %d extractor calls", src.calls)
	}
	if first.CredibilityScore != second.CredibilityScore || first.Title != second.Title {
		t.Error("Expected cached result to match the original")
	}
}

func TestAnalyzeAndStore(t *testing.T) {
	st := store.NewMemoryStore()
	now := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	a := newTestAnalyzer(&fakeSource{},
		WithStore(st),
		WithClock(func() time.Time { return now }, func() string { return "fixed-id" }),
	)
	ctx := context.Background()

	rec, err := a.AnalyzeAndStore(ctx, "user-1", model.ArticleInput{Content: articleText})
	if err != nil {
		t.Fatalf("AnalyzeAndStore failed: %v", err)
	}
	if rec.ID != "fixed-id" || rec.UserID != "user-1" || !rec.Timestamp.Equal(now) {
		t.Errorf("Unexpected record identity: %+v", rec)
	}

	got, err := st.Get(ctx, "user-1", "fixed-id")
	if err != nil {
		t.Fatalf("Expected stored record: %v", err)
	}
	if got.CredibilityScore != rec.CredibilityScore {
		t.Errorf("Expected stored score %d, got %d", rec.CredibilityScore, got.CredibilityScore)
	}

	anon, err := a.AnalyzeAndStore(ctx, "", model.ArticleInput{Content: articleText})
	if err != nil {
		t.Fatalf("AnalyzeAndStore failed: %v", err)
	}
	if anon.ID != "" {
		t.Errorf("Expected anonymous result without id, got %s", anon.ID)
	}
	stats, _ := st.Stats(ctx, "")
	if stats.TotalAnalyses != 0 {
		t.Error("Expected anonymous analyses to stay unpersisted")
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `<html><head><title>Inflation report</title></head><body><article><p>%s</p></article></body></html>`, articleText)
	}))
	defer server.Close()

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.LLM.Provider = "openai" // no key: AI disabled, not fatal

	a, err := Build(cfg, logger.NewNop(), nil, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if a.AIEnabled() {
		t.Error("Expected AI path disabled without an API key")
	}

	result, err := a.Analyze(context.Background(), model.ArticleInput{URL: server.URL + "/story"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Title != "Inflation report" {
		t.Errorf("Expected extracted title, got %q", result.Title)
	}
	if !strings.Contains(result.Content, "inflation fell") {
		t.Errorf("Expected extracted content, got %q", result.Content)
	}
}

func TestBuild_UnknownProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "watson"

	if _, err := Build(cfg, logger.NewNop(), nil, nil); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}
