package analyze

import (
	"strings"
	"unicode/utf8"
)

// sentences splits on '.' and keeps trimmed fragments longer than minLen characters
func sentences(content string, minLen int) []string {
	var out []string
	for _, frag := range strings.Split(content, ".") {
		frag = strings.TrimSpace(frag)
		if utf8.RuneCountInString(frag) > minLen {
			out = append(out, frag)
		}
	}
	return out
}

// fragmentCount counts the pieces produced by splitting on '.', blank ones included
func fragmentCount(content string) int {
	return len(strings.Split(content, "."))
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
