package score

import (
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/credence/internal/model"
)

func textArticle(content string) model.ArticleData {
	return model.ArticleData{Title: "t", Content: content, SourceURL: model.TextSourceURL}
}

func TestScorer_Calculate_PositivePhrases(t *testing.T) {
	scorer := NewDefaultScorer()

	// 50 +10 (according to) +5 (study/data) +5 (expert) +5 (mean length 70)
	result := scorer.Calculate(textArticle("According to research shows by experts, study data confirms the result."))
	if result.Score != 75 {
		t.Errorf("Expected score 75, got %d", result.Score)
	}

	types := make(map[model.SignalType]int)
	for _, s := range result.Signals {
		types[s.Type] = s.Delta
	}
	want := map[model.SignalType]int{
		model.SignalAttribution:    10,
		model.SignalEvidence:       5,
		model.SignalAuthority:      5,
		model.SignalSentenceLength: 5,
	}
	for typ, delta := range want {
		if got, ok := types[typ]; !ok || got != delta {
			t.Errorf("Expected signal %s with delta %d, got %d (present=%v)", typ, delta, got, ok)
		}
	}
	if len(result.Signals) != len(want) {
		t.Errorf("Expected %d signals, got %d", len(want), len(result.Signals))
	}
}

func TestScorer_Calculate_NegativePhrases(t *testing.T) {
	scorer := NewDefaultScorer()

	// 50 -10 (miracle) -15 (conspiracy); mean length 16 is in the neutral band
	score := scorer.Score(textArticle("Miracle cure. Buy now. They don't want you to know."))
	if score != 25 {
		t.Errorf("Expected score 25, got %d", score)
	}
}

func TestScorer_Calculate_TypographicApostrophe(t *testing.T) {
	scorer := NewDefaultScorer()

	plain := scorer.Score(textArticle("They don't want you to know this"))
	curly := scorer.Score(textArticle("They don’t want you to know this"))
	if plain != curly {
		t.Errorf("Expected apostrophe styles to score the same, got %d and %d", plain, curly)
	}
}

func TestScorer_Calculate_ShortQuestionableContent(t *testing.T) {
	scorer := NewDefaultScorer()

	for _, content := range []string{"Shocking! Read this now.", "Short text here", "x"} {
		article := model.ArticleData{
			Title:     "t",
			Content:   content,
			SourceURL: "https://www.infowars.com/posts/1",
		}
		if score := scorer.Score(article); score > 20 {
			t.Errorf("Expected score <= 20 for %q on questionable domain, got %d", content, score)
		}
	}
}

func TestScorer_Calculate_DomainOnlyForRealURL(t *testing.T) {
	scorer := NewDefaultScorer()
	content := "Plain words without any rule phrases in it at all here"

	text := scorer.Score(textArticle(content))
	trusted := scorer.Score(model.ArticleData{Content: content, SourceURL: "https://www.reuters.com/world/x"})
	questionable := scorer.Score(model.ArticleData{Content: content, SourceURL: "https://naturalnews.com/a"})
	neutral := scorer.Score(model.ArticleData{Content: content, SourceURL: "https://example.org/a"})

	if trusted-text != TrustedDomainBonus {
		t.Errorf("Expected trusted bonus %d, got %d", TrustedDomainBonus, trusted-text)
	}
	if questionable-text != QuestionableDomainMalus {
		t.Errorf("Expected questionable malus %d, got %d", QuestionableDomainMalus, questionable-text)
	}
	if neutral != text {
		t.Errorf("Expected neutral domain to leave score unchanged, got %d vs %d", neutral, text)
	}
}

func TestScorer_Calculate_DomainExclusive(t *testing.T) {
	scorer := NewScorer(model.ScoringConfig{
		TrustedDomains:      []string{"example.com"},
		QuestionableDomains: []string{"example.com"},
	})

	result := scorer.Calculate(model.ArticleData{Content: "Neutral words", SourceURL: "https://example.com/a"})
	domainSignals := 0
	for _, s := range result.Signals {
		if s.Type == model.SignalTrustedDomain || s.Type == model.SignalQuestionableDomain {
			domainSignals++
			if s.Type != model.SignalTrustedDomain {
				t.Errorf("Expected trusted to win, got %s", s.Type)
			}
		}
	}
	if domainSignals != 1 {
		t.Errorf("Expected exactly one domain signal, got %d", domainSignals)
	}
}

func TestScorer_Calculate_SentenceLengthBands(t *testing.T) {
	tests := []struct {
		name    string
		content string
		delta   int
	}{
		{"fragments", "a. b. c. d.", malformedSentencePenalty},
		{"neutral short", strings.Repeat("w", 15) + ".", 0},
		{"well formed", strings.Repeat("w", 50) + ".", wellFormedSentenceBonus},
		{"neutral long", strings.Repeat("w", 250) + ".", 0},
		{"run-on", strings.Repeat("w", 350), malformedSentencePenalty},
		{"dead zone lower edge", strings.Repeat("w", 20) + ".", 0},
		{"dead zone upper edge", strings.Repeat("w", 200) + ".", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := sentenceSignal(tt.content)
			if tt.delta == 0 {
				if ok {
					t.Errorf("Expected no signal, got delta %d", sig.Delta)
				}
				return
			}
			if !ok || sig.Delta != tt.delta {
				t.Errorf("Expected delta %d, got %d (ok=%v)", tt.delta, sig.Delta, ok)
			}
		})
	}
}

func TestScorer_Calculate_Bounds(t *testing.T) {
	scorer := NewDefaultScorer()

	worst := model.ArticleData{
		Content:   "Shocking. Unbelievable. Secret miracle cure. They don't want you to know.",
		SourceURL: "https://infowars.com/x",
	}
	if score := scorer.Score(worst); score < 0 || score > 100 {
		t.Errorf("Expected score in [0,100], got %d", score)
	}

	best := model.ArticleData{
		Content:   "According to the study data, the expert and professor agree on the findings reported here.",
		SourceURL: "https://apnews.com/article/x",
	}
	if score := scorer.Score(best); score != 100 {
		t.Errorf("Expected score clamped to 100, got %d", score)
	}

	if score := scorer.Score(textArticle("")); score != BaseScore {
		t.Errorf("Expected base score for empty content, got %d", score)
	}
}

func TestScorer_Calculate_Deterministic(t *testing.T) {
	scorer := NewDefaultScorer()
	article := model.ArticleData{
		Content:   "According to experts, the data is shocking. Read more about the study.",
		SourceURL: "https://bbc.com/news/1",
	}

	want := scorer.Score(article)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := scorer.Score(article); got != want {
				t.Errorf("Expected %d, got %d", want, got)
			}
		}()
	}
	wg.Wait()
}

func TestMeanSentenceLength(t *testing.T) {
	mean, count := MeanSentenceLength("abc. defgh.  . ")
	if count != 2 {
		t.Fatalf("Expected 2 fragments, got %d", count)
	}
	// "abc" (3) and " defgh" (6)
	if mean != 4.5 {
		t.Errorf("Expected mean 4.5, got %f", mean)
	}

	if _, count := MeanSentenceLength("   "); count != 0 {
		t.Errorf("Expected 0 fragments for blank content, got %d", count)
	}
}
