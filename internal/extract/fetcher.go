package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

// Fetcher downloads article pages. One request per call, no retries.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *RobotsChecker
}

// NewFetcher creates a Fetcher from the HTTP section of the config
func NewFetcher(cfg model.HTTPConfig) *Fetcher {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultUserAgent
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  cfg.MaxBodyBytes,
	}
}

// WithRobots makes the fetcher refuse URLs disallowed by robots.txt
func (f *Fetcher) WithRobots(r *RobotsChecker) *Fetcher {
	f.robots = r
	return f
}

// Page is a fetched HTML document
type Page struct {
	HTML        string
	FinalURL    string
	StatusCode  int
	ContentType string
}

// ErrDisallowed is returned when robots.txt forbids the URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Fetch retrieves the page at rawURL. Any failure is an ExtractionError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	page, err := f.fetch(ctx, rawURL)
	if err != nil {
		return nil, &model.ExtractionError{URL: rawURL, Err: err}
	}
	return page, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*Page, error) {
	if f.robots != nil && !f.robots.IsAllowed(ctx, rawURL) {
		return nil, ErrDisallowed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %q", req.URL.Scheme)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Page{
		HTML:        string(body),
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
