// Package report renders analyses as JSON or Markdown and ships them to a sink.
package report

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/ppiankov/credence/internal/model"
)

// Format is an output encoding
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// ContentType returns the MIME type for f
func (f Format) ContentType() string {
	if f == FormatMarkdown {
		return "text/markdown; charset=utf-8"
	}
	return "application/json"
}

// Renderer renders analysis records
type Renderer struct {
	includeFooter bool
	now           func() time.Time
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Render encodes rec in format f
func (r *Renderer) Render(rec *model.HistoryRecord, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return r.JSON(rec)
	case FormatMarkdown:
		return r.Markdown(rec), nil
	default:
		return nil, fmt.Errorf("unknown report format: %s", f)
	}
}

// JSON renders rec as indented JSON
func (r *Renderer) JSON(rec *model.HistoryRecord) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// Markdown renders rec as a human-readable report
func (r *Renderer) Markdown(rec *model.HistoryRecord) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", rec.Title)
	fmt.Fprintf(&b, "- **Source:** %s\n", rec.URL)
	fmt.Fprintf(&b, "- **Credibility score:** %d/100 (%s)\n", rec.CredibilityScore, rec.Band)
	fmt.Fprintf(&b, "- **Method:** %s\n", rec.Method)
	if !rec.Timestamp.IsZero() {
		fmt.Fprintf(&b, "- **Analyzed:** %s\n", rec.Timestamp.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "\n> %s\n\n", rec.FinalVerdict)

	b.WriteString("## Explanation\n\n")
	b.WriteString(rec.Explanation + "\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString(rec.Summary + "\n\n")

	writeList(&b, "Key Points", rec.KeyPoints)

	if len(rec.Quotes) > 0 {
		b.WriteString("## Notable Quotes\n\n")
		if rec.QuotesSynthetic {
			b.WriteString("_No quotations were found in the text; these are generic placeholders._\n\n")
		}
		for _, q := range rec.Quotes {
			fmt.Fprintf(&b, "> %s\n\n", q)
		}
	}

	if len(rec.Claims) > 0 {
		b.WriteString("## Claims\n\n")
		b.WriteString("| Claim | Verdict | Evidence |\n")
		b.WriteString("|-------|---------|----------|\n")
		for _, c := range rec.Claims {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(c.Claim), c.Verdict, cell(c.Evidence))
		}
		b.WriteString("\n")
	}

	writeList(&b, "Red Flags", rec.RedFlags)
	writeList(&b, "Positive Indicators", rec.PositiveIndicators)

	if len(rec.Signals) > 0 {
		b.WriteString("## Score Breakdown\n\n")
		b.WriteString("| Signal | Delta | Description |\n")
		b.WriteString("|--------|-------|-------------|\n")
		for _, s := range rec.Signals {
			fmt.Fprintf(&b, "| %s | %+d | %s |\n", s.Type, s.Delta, cell(s.Description))
		}
		b.WriteString("\n")
	}

	if len(rec.VerificationSources) > 0 {
		b.WriteString("## Verify Independently\n\n")
		for _, s := range rec.VerificationSources {
			fmt.Fprintf(&b, "- [%s](%s)\n", s.Name, s.URL)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n\n_Generated by credence on %s. Scores are heuristic and not a substitute for fact-checking._\n",
			r.now().Format("2006-01-02"))
	}

	return b.Bytes()
}

// Summary prints a short terminal summary
func (r *Renderer) Summary(w io.Writer, rec *model.HistoryRecord) {
	fmt.Fprintf(w, "\n%s\n", rec.Title)
	fmt.Fprintf(w, "  Source:  %s\n", rec.URL)
	fmt.Fprintf(w, "  Score:   %d/100 (%s, %s)\n", rec.CredibilityScore, rec.Band, rec.Method)
	fmt.Fprintf(w, "  Verdict: %s\n", rec.FinalVerdict)
	if len(rec.RedFlags) > 0 {
		fmt.Fprintf(w, "  Red flags: %s\n", strings.Join(rec.RedFlags, "; "))
	}
	if len(rec.PositiveIndicators) > 0 {
		fmt.Fprintf(w, "  Positive:  %s\n", strings.Join(rec.PositiveIndicators, "; "))
	}
}

func writeList(b *bytes.Buffer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

const maxSlugLen = 60

// Slug builds a file-safe name from the title plus a short hash of the source
func Slug(rec *model.HistoryRecord) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(rec.Title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "analysis"
	}

	sum := sha256.Sum256([]byte(rec.URL + "\x00" + rec.Content))
	return base + "-" + hex.EncodeToString(sum[:4])
}
