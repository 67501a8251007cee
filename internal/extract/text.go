package extract

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/credence/internal/model"
)

// DefaultTextTitle is used when pasted text has no usable first line
const DefaultTextTitle = "Text Content Analysis"

var (
	stripPolicy = bluemonday.StrictPolicy()

	// tagPattern matches a syntactically complete start, end or self-closing tag
	tagPattern = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)(\s+[a-zA-Z_:][-a-zA-Z0-9_:.]*(\s*=\s*("[^"]*"|'[^']*'|[^\s"'<>=]+))?)*\s*/?>`)
)

// FromText maps pasted text into ArticleData
func FromText(text string) model.ArticleData {
	content := SanitizeText(text)
	return model.ArticleData{
		Title:     TitleFromText(content),
		Content:   content,
		SourceURL: model.TextSourceURL,
	}
}

// SanitizeText applies NFKC and trims whitespace. Text pasted from rich
// editors that carries real HTML tags is also stripped and entity-decoded;
// a bare '<' in prose is left alone.
func SanitizeText(text string) string {
	if looksLikeHTML(text) {
		text = html.UnescapeString(stripPolicy.Sanitize(escapeStrayBrackets(text)))
	}
	text = norm.NFKC.String(text)
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// looksLikeHTML reports whether text contains at least one complete tag
// naming a known HTML atom
func looksLikeHTML(text string) bool {
	if !strings.Contains(text, "<") {
		return false
	}
	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		if atom.Lookup([]byte(strings.ToLower(m[1]))) != 0 {
			return true
		}
	}
	return false
}

// escapeStrayBrackets encodes every '<' that does not open a complete tag,
// so the sanitizer cannot swallow the prose that follows it
func escapeStrayBrackets(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(text, -1) {
		b.WriteString(strings.ReplaceAll(text[last:loc[0]], "<", "&lt;"))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(strings.ReplaceAll(text[last:], "<", "&lt;"))
	return b.String()
}

// TitleFromText uses the first non-blank line when it is 11..99 characters long
func TitleFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if n := utf8.RuneCountInString(line); n > 10 && n < 100 {
			return line
		}
		break
	}
	return DefaultTextTitle
}
