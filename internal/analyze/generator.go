// Package analyze derives the human-readable artifacts of a credibility
// analysis from article text and its score.
package analyze

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/credence/internal/model"
)

// Limits on derived artifacts
const (
	MaxKeyPoints     = 4
	minKeyPoints     = 3
	MaxQuotes        = 2
	quoteScanLimit   = 3
	summarySentences = 3
	summaryMinLen    = 20
	claimMinLen      = 30
)

var keyPointIndicators = []string{
	"according to",
	"research shows",
	"study found",
	"data indicates",
	"experts say",
}

var claimIndicators = []string{"claim", "report", "according to"}

var quotePattern = regexp.MustCompile(`"([^"]{20,200})"`)

// Artifacts are the derived parts of an analysis
type Artifacts struct {
	Summary             string
	KeyPoints           []string
	Quotes              []string
	QuotesSynthetic     bool
	Claims              []model.Claim
	Explanation         string
	FinalVerdict        string
	VerificationSources []model.VerificationSource
	RedFlags            []string
	PositiveIndicators  []string
}

// Generator derives artifacts from content and score. Stateless.
type Generator struct{}

// NewGenerator creates a generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds every artifact for content scored at score
func (g *Generator) Generate(content string, score int) Artifacts {
	quotes, synthetic := Quotes(content)
	return Artifacts{
		Summary:             Summary(content),
		KeyPoints:           KeyPoints(content),
		Quotes:              quotes,
		QuotesSynthetic:     synthetic,
		Claims:              Claims(content, score),
		Explanation:         Explanation(score),
		FinalVerdict:        FinalVerdict(score),
		VerificationSources: Sources(),
		RedFlags:            RedFlags(content),
		PositiveIndicators:  PositiveIndicators(content),
	}
}

// Summary joins the first three non-trivial sentences, ending with '.'
// when more sentences were left out
func Summary(content string) string {
	s := sentences(content, summaryMinLen)
	if len(s) <= summarySentences {
		return strings.Join(s, ". ")
	}
	return strings.Join(s[:summarySentences], ". ") + "."
}

// KeyPoints returns up to four indicator sentences, padded with the earliest
// sentences when fewer than three matched. Sentences are never repeated.
func KeyPoints(content string) []string {
	s := sentences(content, summaryMinLen)
	points := make([]string, 0, MaxKeyPoints)
	used := make(map[int]bool)

	for i, sentence := range s {
		if containsAny(strings.ToLower(sentence), keyPointIndicators) {
			points = append(points, sentence)
			used[i] = true
			if len(points) >= MaxKeyPoints {
				return points
			}
		}
	}

	if len(points) < minKeyPoints {
		for i, sentence := range s {
			if len(points) >= MaxKeyPoints {
				break
			}
			if !used[i] {
				points = append(points, sentence)
			}
		}
	}
	return points
}

// Quotes extracts double-quoted spans of 20..200 characters, at most two.
// The second return value is true when the placeholders were used instead.
func Quotes(content string) ([]string, bool) {
	matches := quotePattern.FindAllStringSubmatch(content, quoteScanLimit)
	if len(matches) == 0 {
		return append([]string(nil), PlaceholderQuotes...), true
	}

	quotes := make([]string, 0, MaxQuotes)
	for _, m := range matches {
		if len(quotes) == MaxQuotes {
			break
		}
		quotes = append(quotes, m[1])
	}
	return quotes, false
}

// Claims picks one representative claim and labels it by score band.
// Non-empty content always yields exactly one claim.
func Claims(content string, score int) []model.Claim {
	text := claimSentence(content)
	if text == "" {
		return []model.Claim{}
	}
	return []model.Claim{{
		Claim:    text,
		Verdict:  ClaimVerdict(score),
		Evidence: ClaimEvidence(score),
	}}
}

func claimSentence(content string) string {
	candidates := sentences(content, claimMinLen)
	for _, s := range candidates {
		if containsAny(strings.ToLower(s), claimIndicators) {
			return s
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	// Short texts: first non-empty fragment, then the text itself
	if s := sentences(content, 0); len(s) > 0 {
		return s[0]
	}
	return strings.TrimSpace(content)
}

// RedFlags lists warning signs in the content
func RedFlags(content string) []string {
	lower := strings.ToLower(content)
	flags := []string{}
	if containsAny(lower, []string{"shocking", "unbelievable"}) {
		flags = append(flags, "Contains sensational language")
	}
	if containsAny(lower, []string{"secret", "they don't want you to know", "they don’t want you to know"}) {
		flags = append(flags, "Uses conspiracy-style language")
	}
	if utf8.RuneCountInString(content) < 100 {
		flags = append(flags, "Very short content length")
	}
	if fragmentCount(content) < 3 {
		flags = append(flags, "Limited sentence structure")
	}
	return flags
}

// PositiveIndicators lists signs of careful reporting in the content
func PositiveIndicators(content string) []string {
	lower := strings.ToLower(content)
	length := utf8.RuneCountInString(content)
	indicators := []string{}
	if containsAny(lower, []string{"according to", "research shows"}) {
		indicators = append(indicators, "References external sources")
	}
	if containsAny(lower, []string{"study", "data"}) {
		indicators = append(indicators, "Mentions research or data")
	}
	if containsAny(lower, []string{"expert", "professor"}) {
		indicators = append(indicators, "Cites expert opinions")
	}
	if length > 200 && length < 3000 {
		indicators = append(indicators, "Appropriate content length")
	}
	if fragmentCount(content) > 5 {
		indicators = append(indicators, "Well-structured content")
	}
	return indicators
}
