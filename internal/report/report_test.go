package report

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

func sampleRecord() *model.HistoryRecord {
	return &model.HistoryRecord{
		ID:        "abc",
		UserID:    "u1",
		Timestamp: time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
		AnalysisResult: model.AnalysisResult{
			URL:              "https://www.reuters.com/markets/rates",
			Title:            "Central Bank Holds Rates | Steady",
			Content:          "According to the bank, rates stay.",
			CredibilityScore: 85,
			Band:             model.BandCredible,
			Explanation:      "Well sourced.",
			Summary:          "Rates stay.",
			KeyPoints:        []string{"Rates stay"},
			Quotes:           []string{"placeholder"},
			QuotesSynthetic:  true,
			Claims: []model.Claim{
				{Claim: "Rates | stay", Verdict: model.VerdictTrue, Evidence: "Official"},
			},
			PositiveIndicators:  []string{"References external sources"},
			VerificationSources: []model.VerificationSource{{Name: "Snopes", URL: "https://snopes.com"}},
			FinalVerdict:        "VERIFIED",
			Method:              model.MethodRules,
			Signals: []model.Signal{
				{Type: model.SignalTrustedDomain, Delta: 30, Description: "Published on trusted domain reuters.com"},
			},
		},
	}
}

func TestRenderer_JSON(t *testing.T) {
	data, err := NewRenderer(false).JSON(sampleRecord())
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["credibilityScore"] != float64(85) {
		t.Errorf("Expected credibilityScore 85, got %v", decoded["credibilityScore"])
	}
	if decoded["id"] != "abc" {
		t.Errorf("Expected id abc, got %v", decoded["id"])
	}
}

func TestRenderer_Markdown(t *testing.T) {
	md := string(NewRenderer(true).Markdown(sampleRecord()))

	for _, want := range []string{
		"# Central Bank Holds Rates | Steady",
		"**Credibility score:** 85/100 (credible)",
		"> VERIFIED",
		"## Key Points",
		"generic placeholders",
		"| Rates \\| stay | TRUE | Official |",
		"| trusted_domain | +30 |",
		"[Snopes](https://snopes.com)",
		"Generated by credence",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
	if strings.Contains(md, "## Red Flags") {
		t.Error("Expected empty sections to be omitted")
	}
}

func TestRenderer_Summary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(false).Summary(&buf, sampleRecord())

	if !strings.Contains(buf.String(), "Score:   85/100 (credible, rules)") {
		t.Errorf("Unexpected summary: %s", buf.String())
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	if _, err := NewRenderer(false).Render(sampleRecord(), Format("pdf")); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestSlug(t *testing.T) {
	rec := sampleRecord()
	slug := Slug(rec)

	if !strings.HasPrefix(slug, "central-bank-holds-rates-steady-") {
		t.Errorf("Unexpected slug: %s", slug)
	}
	if len(slug) != len("central-bank-holds-rates-steady-")+8 {
		t.Errorf("Expected 8 hex chars of hash, got %s", slug)
	}

	other := sampleRecord()
	other.URL = "https://example.com/other"
	if Slug(other) == slug {
		t.Error("Expected different sources to produce different slugs")
	}

	empty := sampleRecord()
	empty.Title = "¿¿??"
	if !strings.HasPrefix(Slug(empty), "analysis-") {
		t.Errorf("Expected fallback slug, got %s", Slug(empty))
	}
}

func TestPublish_FileSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(filepath.Join(dir, "reports"))
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	locations, err := Publish(context.Background(), sink, NewRenderer(false), sampleRecord(), FormatJSON, FormatMarkdown)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("Expected 2 locations, got %v", locations)
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err != nil {
			t.Errorf("Expected file %s: %v", loc, err)
		}
	}
	if !strings.HasSuffix(locations[1], ".md") {
		t.Errorf("Expected markdown file, got %s", locations[1])
	}
}

func TestS3Sink_Put(t *testing.T) {
	var mu sync.Mutex
	var gotPath, gotType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink, err := NewS3Sink(context.Background(), model.ReportConfig{
		S3Bucket:          "credence",
		S3Prefix:          "/out/",
		S3Region:          "us-east-1",
		S3Endpoint:        server.URL,
		S3AccessKeyID:     "key",
		S3SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("NewS3Sink failed: %v", err)
	}
	sink.now = func() time.Time { return time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC) }

	loc, err := sink.Put(context.Background(), "story.json", []byte(`{"ok":true}`), FormatJSON.ContentType())
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if loc != "s3://credence/out/2025/07/story.json" {
		t.Errorf("Unexpected location: %s", loc)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/credence/out/2025/07/story.json" {
		t.Errorf("Expected path-style key, got %s", gotPath)
	}
	if gotType != "application/json" {
		t.Errorf("Expected JSON content type, got %s", gotType)
	}
	if !bytes.Contains(gotBody, []byte(`{"ok":true}`)) {
		t.Errorf("Unexpected body: %s", gotBody)
	}
}

func TestNewS3Sink_RequiresBucket(t *testing.T) {
	if _, err := NewS3Sink(context.Background(), model.ReportConfig{}); err == nil {
		t.Error("Expected error without bucket")
	}
}
