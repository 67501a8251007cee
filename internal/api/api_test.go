package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/credence/internal/api"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/store"
	"github.com/ppiankov/credence/internal/telemetry"
)

const testSecret = "test-secret-key-32-chars-minimum"

type fakeAnalyzer struct {
	mu    sync.Mutex
	store store.HistoryStore
	err   error
	panic bool
	calls int
	seq   int
}

func (f *fakeAnalyzer) AnalyzeAndStore(ctx context.Context, userID string, input model.ArticleInput) (*model.HistoryRecord, error) {
	f.mu.Lock()
	f.calls++
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}

	rec := &model.HistoryRecord{
		Timestamp: time.Date(2024, 3, 1, 12, 0, seq, 0, time.UTC),
		AnalysisResult: model.AnalysisResult{
			URL:              input.URL,
			Title:            "Inflation falls",
			Content:          input.Content,
			CredibilityScore: 65,
			Band:             model.BandFor(65),
			Method:           model.MethodRules,
		},
	}
	if userID == "" {
		return rec, nil
	}
	rec.ID = "rec-" + string(rune('a'+seq-1))
	rec.UserID = userID
	if err := f.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testServer struct {
	server   *api.Server
	analyzer *fakeAnalyzer
	store    *store.MemoryStore
	tokens   *api.TokenManager
	tel      *telemetry.Provider
}

func newTestServer(t *testing.T, mutate ...func(*model.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := model.DefaultConfig()
	cfg.RateLimiting.RequestsPerSecond = 1000
	cfg.RateLimiting.BurstSize = 1000
	for _, m := range mutate {
		m(cfg)
	}

	st := store.NewMemoryStore()
	an := &fakeAnalyzer{store: st}
	tokens := api.NewTokenManager(testSecret, time.Hour)
	tel := telemetry.NewProvider()

	srv := api.NewServer(cfg, api.Deps{
		Analyzer:  an,
		Store:     st,
		Tokens:    tokens,
		Telemetry: tel,
	}, "test")

	return &testServer{server: srv, analyzer: an, store: st, tokens: tokens, tel: tel}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(w, req)
	return w
}

func (ts *testServer) token(t *testing.T, user string) string {
	t.Helper()
	tok, err := ts.tokens.Issue(user)
	require.NoError(t, err)
	return tok
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestAnalyze_EmptyBodyIsValidationError(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/news/analyze", "", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Validation failed", body["error"])
	assert.Equal(t, "Either URL or content must be provided", body["message"])
	assert.Equal(t, 0, ts.analyzer.Calls())
}

func TestAnalyze_MalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/news/analyze", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, ts.analyzer.Calls())
}

func TestAnalyze_AnonymousIsNotPersisted(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/news/analyze", "", model.ArticleInput{Content: "Some article text."})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Analysis completed successfully", body["message"])

	analysis, ok := body["analysis"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 65, analysis["credibilityScore"])
	assert.NotContains(t, analysis, "id")

	stats, err := ts.store.Stats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalAnalyses)
}

func TestAnalyze_AuthenticatedIsPersisted(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token(t, "user-1")

	w := ts.do(t, http.MethodPost, "/news/analyze", tok, model.ArticleInput{URL: "https://example.com/a"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	analysis := decode(t, w)["analysis"].(map[string]interface{})
	assert.Equal(t, "rec-a", analysis["id"])
	assert.Equal(t, "user-1", analysis["userId"])

	w = ts.do(t, http.MethodGet, "/analysis/rec-a", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)["analysis"].(map[string]interface{})
	assert.Equal(t, "https://example.com/a", got["url"])
}

func TestAnalyze_InvalidTokenIsAnonymous(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/news/analyze", "garbage", model.ArticleInput{Content: "text"})

	require.Equal(t, http.StatusOK, w.Code)
	analysis := decode(t, w)["analysis"].(map[string]interface{})
	assert.NotContains(t, analysis, "id")
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		errText string
		message string
	}{
		{
			name:    "extraction",
			err:     &model.ExtractionError{URL: "https://x.test", Err: errors.New(`Get "http://127.0.0.1:9/admin": dial tcp 127.0.0.1:9: connect: connection refused hunter2`)},
			status:  http.StatusUnprocessableEntity,
			errText: "Extraction failed",
			message: "Unable to fetch content from the provided URL",
		},
		{
			name:    "internal",
			err:     errors.New("database password is hunter2"),
			status:  http.StatusInternalServerError,
			errText: "Internal server error",
			message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.analyzer.err = tt.err

			w := ts.do(t, http.MethodPost, "/news/analyze", "", model.ArticleInput{URL: "https://x.test"})

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.errText, body["error"])
			assert.Equal(t, tt.message, body["message"])
			assert.NotContains(t, w.Body.String(), "hunter2")
			assert.NotContains(t, w.Body.String(), "127.0.0.1")
		})
	}
}

func TestAnalyze_PanicIsRecovered(t *testing.T) {
	ts := newTestServer(t)
	ts.analyzer.panic = true

	w := ts.do(t, http.MethodPost, "/news/analyze", "", model.ArticleInput{Content: "text"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["error"])
}

func TestAnalyze_RateLimited(t *testing.T) {
	ts := newTestServer(t, func(cfg *model.Config) {
		cfg.RateLimiting.RequestsPerSecond = 0.001
		cfg.RateLimiting.BurstSize = 2
	})

	for i := 0; i < 2; i++ {
		w := ts.do(t, http.MethodPost, "/news/analyze", "", model.ArticleInput{Content: "text"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(t, http.MethodPost, "/news/analyze", "", model.ArticleInput{Content: "text"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 2, ts.analyzer.Calls())
	assert.InDelta(t, 1, testutil.ToFloat64(ts.tel.Metrics.RateLimited), 0.001)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	ts := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/analysis/history"},
		{http.MethodDelete, "/analysis/history"},
		{http.MethodGet, "/analysis/stats/summary"},
		{http.MethodGet, "/analysis/abc"},
		{http.MethodDelete, "/analysis/abc"},
	}

	for _, r := range routes {
		w := ts.do(t, r.method, r.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.path)
		assert.Equal(t, "Access token required", decode(t, w)["error"])

		w = ts.do(t, r.method, r.path, "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.path)
		assert.Equal(t, "Invalid token", decode(t, w)["error"])
	}
}

func TestHistory_PaginationAndOwnership(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.token(t, "alice")
	bob := ts.token(t, "bob")

	for i := 0; i < 3; i++ {
		w := ts.do(t, http.MethodPost, "/news/analyze", alice, model.ArticleInput{Content: "text"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(t, http.MethodGet, "/analysis/history?page=1&limit=2&sortBy=createdAt&order=asc", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message string            `json:"message"`
		Data    model.HistoryPage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Analysis history retrieved successfully", resp.Message)
	require.Len(t, resp.Data.Analyses, 2)
	assert.Equal(t, "rec-a", resp.Data.Analyses[0].ID)
	assert.Equal(t, model.Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, resp.Data.Pagination)

	// bob sees nothing and cannot read alice's record
	w = ts.do(t, http.MethodGet, "/analysis/history", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"analyses":[]`)

	w = ts.do(t, http.MethodGet, "/analysis/rec-a", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Analysis not found", decode(t, w)["error"])

	w = ts.do(t, http.MethodDelete, "/analysis/rec-a", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAndStats(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token(t, "alice")

	for i := 0; i < 3; i++ {
		w := ts.do(t, http.MethodPost, "/news/analyze", tok, model.ArticleInput{Content: "text"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(t, http.MethodGet, "/analysis/stats/summary", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var statsResp struct {
		Stats model.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statsResp))
	assert.Equal(t, 3, statsResp.Stats.TotalAnalyses)
	assert.Equal(t, 3, statsResp.Stats.CredibilityDistribution.Medium)
	assert.Equal(t, 65, statsResp.Stats.AverageCredibility)

	w = ts.do(t, http.MethodDelete, "/analysis/rec-b", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Analysis deleted successfully", decode(t, w)["message"])

	w = ts.do(t, http.MethodGet, "/analysis/rec-b", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/analysis/history", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["deleted"])

	w = ts.do(t, http.MethodGet, "/analysis/stats/summary", tok, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statsResp))
	assert.Equal(t, 0, statsResp.Stats.TotalAnalyses)
	assert.Equal(t, 0, statsResp.Stats.AverageCredibility)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])

	w = ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `credence_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestTokenManager(t *testing.T) {
	tokens := api.NewTokenManager(testSecret, time.Hour)

	tok, err := tokens.Issue("user-42")
	require.NoError(t, err)

	user, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", user)

	_, err = api.NewTokenManager("another-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, api.ErrInvalidToken)

	_, err = tokens.Issue("")
	assert.Error(t, err)

	_, err = api.NewTokenManager("", time.Hour).Issue("user-42")
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpiredAndForeignAlgorithms(t *testing.T) {
	tokens := api.NewTokenManager(testSecret, time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, api.Claims{
		Sub: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, api.ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, api.Claims{Sub: "user-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.ErrorIs(t, err, api.ErrInvalidToken)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, api.Claims{})
	signed, err = noSubject.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, api.ErrInvalidToken)
}
