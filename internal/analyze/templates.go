package analyze

import "github.com/ppiankov/credence/internal/model"

// Placeholder quotes returned when the text contains no quoted spans.
// Results carrying them are marked QuotesSynthetic.
var PlaceholderQuotes = []string{
	"This represents a significant development in the field according to the article.",
	"The implications of these findings could be far-reaching for the industry.",
}

// VerificationSources is the fixed list of fact-checking organizations
var VerificationSources = []model.VerificationSource{
	{Name: "Reuters Fact Check", URL: "https://reuters.com/fact-check"},
	{Name: "Associated Press", URL: "https://apnews.com"},
	{Name: "Snopes", URL: "https://snopes.com"},
	{Name: "PolitiFact", URL: "https://politifact.com"},
}

type bandTemplates struct {
	evidence     string
	explanation  string
	finalVerdict string
	verdict      model.Verdict
}

var templates = map[model.Band]bandTemplates{
	model.BandCredible: {
		evidence:     "Verified by multiple reliable sources and fact-checking organizations",
		explanation:  "Based on our analysis, this content appears to be from credible sources with factual information. The article demonstrates good journalistic standards and cites reliable sources.",
		finalVerdict: "VERIFIED - This content has been verified as accurate based on reliable sources and demonstrates good journalistic standards.",
		verdict:      model.VerdictTrue,
	},
	model.BandMixed: {
		evidence:     "Partially supported but lacks complete verification",
		explanation:  "This content contains some questionable claims that require further verification. While not entirely unreliable, readers should cross-reference with additional sources.",
		finalVerdict: "MIXED - This content contains both accurate and questionable information. Readers should verify claims independently.",
		verdict:      model.VerdictMisleading,
	},
	model.BandUnreliable: {
		evidence:     "No credible evidence found to support this claim",
		explanation:  "This content shows signs of misinformation and should be treated with caution. The article lacks credible sources and may contain false or misleading information.",
		finalVerdict: "QUESTIONABLE - This content contains significant misinformation and should be verified before sharing.",
		verdict:      model.VerdictFalse,
	},
}

// Explanation returns the explanation template for a score
func Explanation(score int) string {
	return templates[model.BandFor(score)].explanation
}

// FinalVerdict returns the overall verdict template for a score
func FinalVerdict(score int) string {
	return templates[model.BandFor(score)].finalVerdict
}

// ClaimVerdict returns the claim verdict label for a score
func ClaimVerdict(score int) model.Verdict {
	return templates[model.BandFor(score)].verdict
}

// ClaimEvidence returns the claim evidence template for a score
func ClaimEvidence(score int) string {
	return templates[model.BandFor(score)].evidence
}

// Sources returns a copy of the verification source list
func Sources() []model.VerificationSource {
	return append([]model.VerificationSource(nil), VerificationSources...)
}
