package extract

import (
	"context"

	"github.com/ppiankov/credence/internal/model"
)

// Extractor turns a URL into ArticleData
type Extractor struct {
	fetcher *Fetcher
	content *ContentExtractor
}

// NewExtractor wires a fetcher and content extractor from config
func NewExtractor(httpCfg model.HTTPConfig, extractCfg model.ExtractConfig) *Extractor {
	fetcher := NewFetcher(httpCfg)
	if extractCfg.RespectRobots {
		fetcher.WithRobots(NewRobotsChecker(httpCfg.UserAgent, httpCfg.Timeout))
	}
	return &Extractor{
		fetcher: fetcher,
		content: NewContentExtractor(extractCfg.Readability),
	}
}

// FromURL fetches and extracts an article. Failures are ExtractionErrors;
// a page without usable text is not a failure.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (model.ArticleData, error) {
	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return model.ArticleData{}, err
	}

	extracted, err := e.content.Extract(page.HTML, page.FinalURL)
	if err != nil {
		return model.ArticleData{}, &model.ExtractionError{URL: rawURL, Err: err}
	}

	return model.ArticleData{
		Title:     extracted.Title,
		Content:   extracted.Content,
		SourceURL: rawURL,
	}, nil
}
