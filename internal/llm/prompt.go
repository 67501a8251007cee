package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxPromptContent caps the article text sent to a provider (characters)
const MaxPromptContent = 12000

// SystemPrompt frames the provider as a fact-checker
const SystemPrompt = "You are an expert fact-checker and news analyst. You answer with a single JSON object and nothing else."

const analysisSchema = `{
  "credibilityScore": [number between 0-100],
  "explanation": "[detailed explanation of the credibility assessment]",
  "summary": "[concise summary of the main points]",
  "keyPoints": [
    "[key point 1]",
    "[key point 2]",
    "[key point 3]",
    "[key point 4]"
  ],
  "quotes": [
    "[notable quote 1]",
    "[notable quote 2]"
  ],
  "claims": [
    {
      "claim": "[main claim from the article]",
      "verdict": "[TRUE/FALSE/MISLEADING/UNVERIFIED]",
      "evidence": "[explanation of the evidence supporting this verdict]"
    }
  ],
  "redFlags": [
    "[potential red flag 1]",
    "[potential red flag 2]"
  ],
  "positiveIndicators": [
    "[positive credibility indicator 1]",
    "[positive credibility indicator 2]"
  ],
  "finalVerdict": "[overall assessment of the content's reliability]"
}`

var analysisFactors = []string{
	"Source credibility and reputation",
	"Presence of citations and references",
	"Writing quality and professionalism",
	"Emotional language vs. factual reporting",
	"Consistency with known facts",
	"Potential bias or agenda",
	"Sensationalism or clickbait elements",
	"Date relevance and context",
}

// BuildPrompt constructs the analysis prompt for one article.
// url is omitted from the prompt when empty.
func BuildPrompt(content, url string) string {
	var b strings.Builder

	b.WriteString("Analyze the following news content for credibility, accuracy, and potential misinformation.\n\n")
	if url != "" {
		fmt.Fprintf(&b, "URL: %s\n", url)
	}
	fmt.Fprintf(&b, "Content: %s\n\n", capContent(content))

	b.WriteString("Please provide a comprehensive analysis in the following JSON format:\n\n")
	b.WriteString(analysisSchema)
	b.WriteString("\n\nConsider these factors in your analysis:\n")
	for i, f := range analysisFactors {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f)
	}
	b.WriteString("\nProvide only the JSON response without any additional text.\n")

	return b.String()
}

func capContent(content string) string {
	if utf8.RuneCountInString(content) <= MaxPromptContent {
		return content
	}
	return string([]rune(content)[:MaxPromptContent]) + "..."
}
