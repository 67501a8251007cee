package model

// MaxStoredContent caps the article text carried in a result
const MaxStoredContent = 1000

// AnalysisResult is the output of one credibility analysis
type AnalysisResult struct {
	URL                 string               `json:"url"`
	Title               string               `json:"title"`
	Content             string               `json:"content"`
	CredibilityScore    int                  `json:"credibilityScore"`
	Band                Band                 `json:"band"`
	Explanation         string               `json:"explanation"`
	Summary             string               `json:"summary"`
	KeyPoints           []string             `json:"keyPoints"`
	Quotes              []string             `json:"quotes"`
	QuotesSynthetic     bool                 `json:"quotesSynthetic"`
	Claims              []Claim              `json:"claims"`
	RedFlags            []string             `json:"redFlags"`
	PositiveIndicators  []string             `json:"positiveIndicators"`
	VerificationSources []VerificationSource `json:"verificationSources"`
	FinalVerdict        string               `json:"finalVerdict"`
	Method              Method               `json:"method"`
	Signals             []Signal             `json:"signals,omitempty"`
}

// VerificationSource is a fact-checking organization a reader can consult
type VerificationSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Method records which path produced the artifacts
type Method string

const (
	MethodRules Method = "rules"
	MethodAI    Method = "ai"
)

// Band is the categorical reading of a credibility score
type Band string

const (
	BandCredible   Band = "credible"
	BandMixed      Band = "mixed"
	BandUnreliable Band = "unreliable"
)

// Band thresholds shared by every caller
const (
	CredibleThreshold = 70
	MixedThreshold    = 40
)

// BandFor maps a score onto the canonical band table
func BandFor(score int) Band {
	switch {
	case score >= CredibleThreshold:
		return BandCredible
	case score >= MixedThreshold:
		return BandMixed
	default:
		return BandUnreliable
	}
}

// ClampScore bounds a score to [0,100]
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TruncateContent cuts content to MaxStoredContent runes
func TruncateContent(s string) string {
	r := []rune(s)
	if len(r) <= MaxStoredContent {
		return s
	}
	return string(r[:MaxStoredContent])
}

// Signal records one scoring rule that fired, with its transparent inputs
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Delta       int                    `json:"delta"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a scoring signal
type SignalType string

const (
	SignalTrustedDomain      SignalType = "trusted_domain"
	SignalQuestionableDomain SignalType = "questionable_domain"
	SignalAttribution        SignalType = "attribution"
	SignalEvidence           SignalType = "evidence"
	SignalAuthority          SignalType = "authority"
	SignalSensational        SignalType = "sensational"
	SignalConspiracy         SignalType = "conspiracy"
	SignalMiracle            SignalType = "miracle"
	SignalSentenceLength     SignalType = "sentence_length"
)

// SignalSeverity indicates how a signal moved the score
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
