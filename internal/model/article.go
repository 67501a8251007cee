package model

import "strings"

// TextSourceURL is the source marker used for pasted text
const TextSourceURL = "Text Analysis"

// ArticleInput is what a caller submits for analysis: a URL or raw text
type ArticleInput struct {
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// Validate checks that at least one of URL or content is present
func (in ArticleInput) Validate() error {
	if strings.TrimSpace(in.URL) == "" && strings.TrimSpace(in.Content) == "" {
		return &ValidationError{Message: "Either URL or content must be provided"}
	}
	return nil
}

// Normalize trims surrounding whitespace from the URL
func (in ArticleInput) Normalize() ArticleInput {
	in.URL = strings.TrimSpace(in.URL)
	return in
}

// IsURL reports whether the input should go through the extractor.
// A URL wins when both fields are present.
func (in ArticleInput) IsURL() bool {
	return strings.TrimSpace(in.URL) != ""
}

// ArticleData is the common shape both input kinds are mapped into
type ArticleData struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	SourceURL string `json:"sourceUrl"`
}

// HasURL reports whether the article came from a real URL
func (a ArticleData) HasURL() bool {
	return a.SourceURL != "" && a.SourceURL != TextSourceURL
}
