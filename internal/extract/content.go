package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Literal fallbacks used when a page yields nothing usable
const (
	UntitledArticle    = "Untitled Article"
	NoContentExtracted = "Unable to extract content from this URL"
)

// minContainerText is the trimmed length a main-content container must exceed
const minContainerText = 100

// ContentSelectors are tried in order for the main article container
var ContentSelectors = []string{
	"article",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"main",
	".main-content",
}

// ContentExtractor isolates the title and main text of an HTML page
type ContentExtractor struct {
	readability bool
}

// NewContentExtractor creates an extractor; useReadability enables the
// readability pass between paragraph concatenation and the literal fallback
func NewContentExtractor(useReadability bool) *ContentExtractor {
	return &ContentExtractor{readability: useReadability}
}

// Extracted is the title and text pulled from a page
type Extracted struct {
	Title   string
	Content string
	Method  string // selector, paragraphs, readability, none
}

// Extract parses html and resolves title and content
func (e *ContentExtractor) Extract(html, pageURL string) (*Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	out := &Extracted{Title: extractTitle(doc)}

	// 1. Main content containers
	for _, sel := range ContentSelectors {
		text := selectionText(doc.Find(sel))
		if len([]rune(text)) > minContainerText {
			out.Content = text
			out.Method = "selector:" + sel
			return out, nil
		}
	}

	// 2. All paragraphs
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		out.Content = strings.Join(paragraphs, " ")
		out.Method = "paragraphs"
		return out, nil
	}

	// 3. Readability
	if e.readability {
		if text := readabilityText(html, pageURL); text != "" {
			out.Content = text
			out.Method = "readability"
			return out, nil
		}
	}

	out.Content = NoContentExtracted
	out.Method = "none"
	return out, nil
}

// extractTitle resolves <title>, then the first <h1>, then og:title
func extractTitle(doc *goquery.Document) string {
	if title := collapse(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := collapse(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = collapse(og); og != "" {
			return og
		}
	}
	return UntitledArticle
}

func readabilityText(html, pageURL string) string {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return ""
	}
	return collapse(article.TextContent)
}

// collapse trims and folds whitespace runs into single spaces
// selectionText joins the text of every matched element
func selectionText(sel *goquery.Selection) string {
	parts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
