package score

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// DomainClass is the outcome of a domain lookup
type DomainClass int

const (
	DomainNeutral DomainClass = iota
	DomainTrusted
	DomainQuestionable
)

// DomainClassifier matches article hosts against trusted and questionable lists
type DomainClassifier struct {
	trusted      map[string]bool
	questionable map[string]bool
}

// NewDomainClassifier builds a classifier from the two lists
func NewDomainClassifier(trusted, questionable []string) *DomainClassifier {
	c := &DomainClassifier{
		trusted:      make(map[string]bool, len(trusted)),
		questionable: make(map[string]bool, len(questionable)),
	}
	for _, d := range trusted {
		if d = normalizeHost(d); d != "" {
			c.trusted[d] = true
		}
	}
	for _, d := range questionable {
		if d = normalizeHost(d); d != "" {
			c.questionable[d] = true
		}
	}
	return c
}

// Classify returns the class of the URL's host and the list entry that matched.
// Trusted wins; a host is never both.
func (c *DomainClassifier) Classify(rawURL string) (DomainClass, string) {
	host := HostOf(rawURL)
	if host == "" {
		return DomainNeutral, ""
	}
	if d, ok := lookup(c.trusted, host); ok {
		return DomainTrusted, d
	}
	if d, ok := lookup(c.questionable, host); ok {
		return DomainQuestionable, d
	}
	return DomainNeutral, ""
}

// HostOf returns the normalized host of an http(s) URL, or "" for anything else
func HostOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return normalizeHost(parsed.Hostname())
}

// RegistrableDomain returns eTLD+1 for a host, falling back to the host itself
func RegistrableDomain(host string) string {
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

func lookup(set map[string]bool, host string) (string, bool) {
	if set[host] {
		return host, true
	}
	if reg := RegistrableDomain(host); set[reg] {
		return reg, true
	}
	// Entries deeper than eTLD+1 (e.g. news.example.com)
	for d := range set {
		if strings.HasSuffix(host, "."+d) {
			return d, true
		}
	}
	return "", false
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}
