package score

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/credence/internal/model"
)

// BaseScore is where every article starts
const BaseScore = 50

// Domain deltas
const (
	TrustedDomainBonus       = 30
	QuestionableDomainMalus  = -30
	wellFormedSentenceBonus  = 5
	malformedSentencePenalty = -10
)

// phraseRule fires once when any of its phrases occurs in the content
type phraseRule struct {
	signal   model.SignalType
	phrases  []string
	delta    int
	severity model.SignalSeverity
	label    string
}

var phraseRules = []phraseRule{
	{model.SignalAttribution, []string{"according to", "research shows"}, 10, model.SeverityInfo, "Attributes statements to sources"},
	{model.SignalEvidence, []string{"study", "data"}, 5, model.SeverityInfo, "Mentions studies or data"},
	{model.SignalAuthority, []string{"expert", "professor"}, 5, model.SeverityInfo, "References experts"},
	{model.SignalSensational, []string{"shocking", "unbelievable"}, -10, model.SeverityWarning, "Uses sensational language"},
	{model.SignalConspiracy, []string{"they don't want you to know"}, -15, model.SeverityCritical, "Uses conspiratorial phrasing"},
	{model.SignalMiracle, []string{"miracle cure", "secret"}, -10, model.SeverityWarning, "Uses miracle or secret phrasing"},
}

// Result is a score with the signals that produced it
type Result struct {
	Score   int            `json:"score"`
	Signals []model.Signal `json:"signals"`
}

// Scorer computes the rule-based credibility score. It holds no per-call state
// and is safe for concurrent use.
type Scorer struct {
	domains *DomainClassifier
	phrases *PhraseMatcher
}

// NewScorer creates a scorer over the given domain lists
func NewScorer(cfg model.ScoringConfig) *Scorer {
	var all []string
	for _, r := range phraseRules {
		all = append(all, r.phrases...)
	}
	return &Scorer{
		domains: NewDomainClassifier(cfg.TrustedDomains, cfg.QuestionableDomains),
		phrases: NewPhraseMatcher(all),
	}
}

// NewDefaultScorer creates a scorer with the built-in domain lists
func NewDefaultScorer() *Scorer {
	return NewScorer(model.DefaultConfig().Scoring)
}

// Calculate scores an article. Deterministic for identical input.
func (s *Scorer) Calculate(article model.ArticleData) Result {
	total := BaseScore
	var signals []model.Signal

	// 1. Domain (real URLs only, at most one branch)
	if article.HasURL() {
		if sig, ok := s.domainSignal(article.SourceURL); ok {
			total += sig.Delta
			signals = append(signals, sig)
		}
	}

	// 2. Phrase rules
	found := s.phrases.Match(article.Content)
	for _, rule := range phraseRules {
		var matched []string
		for _, p := range rule.phrases {
			if found[p] {
				matched = append(matched, p)
			}
		}
		if len(matched) == 0 {
			continue
		}
		total += rule.delta
		signals = append(signals, model.Signal{
			Type:        rule.signal,
			Severity:    rule.severity,
			Description: rule.label,
			Delta:       rule.delta,
			Data: map[string]interface{}{
				"matched": matched,
				"formula": fmt.Sprintf("any(%s) -> %+d", strings.Join(rule.phrases, " | "), rule.delta),
			},
		})
	}

	// 3. Sentence length
	if sig, ok := sentenceSignal(article.Content); ok {
		total += sig.Delta
		signals = append(signals, sig)
	}

	return Result{
		Score:   model.ClampScore(total),
		Signals: signals,
	}
}

// Score is Calculate without the signal breakdown
func (s *Scorer) Score(article model.ArticleData) int {
	return s.Calculate(article).Score
}

func (s *Scorer) domainSignal(rawURL string) (model.Signal, bool) {
	class, matched := s.domains.Classify(rawURL)
	host := HostOf(rawURL)
	switch class {
	case DomainTrusted:
		return model.Signal{
			Type:        model.SignalTrustedDomain,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Published on trusted domain %s", matched),
			Delta:       TrustedDomainBonus,
			Data:        map[string]interface{}{"host": host, "matched": matched},
		}, true
	case DomainQuestionable:
		return model.Signal{
			Type:        model.SignalQuestionableDomain,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("Published on questionable domain %s", matched),
			Delta:       QuestionableDomainMalus,
			Data:        map[string]interface{}{"host": host, "matched": matched},
		}, true
	}
	return model.Signal{}, false
}

// sentenceSignal applies the mean fragment length heuristic.
// (20,200) is well-formed prose, <10 or >300 is fragment-like or run-on,
// 10..20 and 200..300 are neutral.
func sentenceSignal(content string) (model.Signal, bool) {
	mean, count := MeanSentenceLength(content)
	if count == 0 {
		return model.Signal{}, false
	}

	data := map[string]interface{}{
		"sentences":   count,
		"mean_length": math.Round(mean*100) / 100,
	}

	switch {
	case mean > 20 && mean < 200:
		data["formula"] = "20 < mean_length < 200 -> +5"
		return model.Signal{
			Type:        model.SignalSentenceLength,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Well-formed sentences (mean %.0f chars)", mean),
			Delta:       wellFormedSentenceBonus,
			Data:        data,
		}, true
	case mean < 10 || mean > 300:
		data["formula"] = "mean_length < 10 || mean_length > 300 -> -10"
		return model.Signal{
			Type:        model.SignalSentenceLength,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("Fragmented or run-on sentences (mean %.0f chars)", mean),
			Delta:       malformedSentencePenalty,
			Data:        data,
		}, true
	}
	return model.Signal{}, false
}

// MeanSentenceLength splits on '.', drops fragments that are blank after
// trimming and averages the untrimmed fragment lengths in characters.
func MeanSentenceLength(content string) (float64, int) {
	total := 0
	count := 0
	for _, frag := range strings.Split(content, ".") {
		if strings.TrimSpace(frag) == "" {
			continue
		}
		total += utf8.RuneCountInString(frag)
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(total) / float64(count), count
}
