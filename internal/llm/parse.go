package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/credence/internal/analyze"
	"github.com/ppiankov/credence/internal/model"
)

// Limits applied to provider output
const (
	MaxKeyPoints  = 4
	MaxQuotes     = 2
	MaxClaims     = 3
	maxIndicators = 10
)

// Defaults for fields a provider leaves out
const (
	DefaultExplanation = "Analysis completed using AI-powered fact-checking."
	DefaultSummary     = "Content analyzed for credibility and accuracy."
	defaultClaim       = "Primary claims in the content"
	defaultEvidence    = "AI analysis of content credibility and factual accuracy"
	defaultScore       = 50
)

var (
	defaultKeyPoints = []string{
		"Content structure analyzed",
		"Source credibility assessed",
		"Factual claims verified",
		"Writing quality evaluated",
	}
	defaultQuotes = []string{
		"Key statements extracted from content",
		"Notable claims identified for verification",
	}
)

// ErrUnparseable means the provider reply was not a JSON object
var ErrUnparseable = errors.New("llm: response is not a JSON object")

// Analysis is a validated provider assessment
type Analysis struct {
	CredibilityScore   int
	Explanation        string
	Summary            string
	KeyPoints          []string
	Quotes             []string
	QuotesSynthetic    bool
	Claims             []model.Claim
	RedFlags           []string
	PositiveIndicators []string
	FinalVerdict       string
}

// ParseAnalysis strips markdown fences, decodes the JSON object and
// normalizes every field. Wrong-typed fields fall back to defaults;
// only a reply that is not a JSON object is an error.
func ParseAnalysis(text string) (*Analysis, error) {
	raw := map[string]interface{}{}
	if err := json.Unmarshal([]byte(StripFences(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	score := scoreField(raw["credibilityScore"])
	a := &Analysis{
		CredibilityScore:   score,
		Explanation:        stringField(raw["explanation"], DefaultExplanation),
		Summary:            stringField(raw["summary"], DefaultSummary),
		RedFlags:           stringList(raw["redFlags"], maxIndicators),
		PositiveIndicators: stringList(raw["positiveIndicators"], maxIndicators),
		FinalVerdict:       stringField(raw["finalVerdict"], analyze.FinalVerdict(score)),
	}

	a.KeyPoints = stringList(raw["keyPoints"], MaxKeyPoints)
	if len(a.KeyPoints) == 0 {
		a.KeyPoints = append([]string(nil), defaultKeyPoints...)
	}

	a.Quotes = stringList(raw["quotes"], MaxQuotes)
	if len(a.Quotes) == 0 {
		a.Quotes = append([]string(nil), defaultQuotes...)
		a.QuotesSynthetic = true
	}

	a.Claims = claimList(raw["claims"])
	if len(a.Claims) == 0 {
		a.Claims = []model.Claim{{
			Claim:    defaultClaim,
			Verdict:  analyze.ClaimVerdict(score),
			Evidence: defaultEvidence,
		}}
	}

	return a, nil
}

// StripFences removes a leading ```json or ``` fence and a trailing ``` fence
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func scoreField(v interface{}) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return defaultScore
		}
		f = parsed
	default:
		return defaultScore
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultScore
	}
	return model.ClampScore(int(math.Round(math.Max(-1, math.Min(101, f)))))
}

func stringField(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return fallback
}

func stringList(v interface{}, limit int) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := []string{}
	for _, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(s))
		if len(out) == limit {
			break
		}
	}
	return out
}

func claimList(v interface{}) []model.Claim {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []model.Claim
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		claim := stringField(obj["claim"], "")
		if claim == "" {
			continue
		}
		verdict, _ := obj["verdict"].(string)
		out = append(out, model.Claim{
			Claim:    claim,
			Verdict:  model.ParseVerdict(strings.ToUpper(strings.TrimSpace(verdict))),
			Evidence: stringField(obj["evidence"], defaultEvidence),
		})
		if len(out) == MaxClaims {
			break
		}
	}
	return out
}
