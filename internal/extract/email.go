package extract

import (
	"iter"
	"regexp"
	"slices"
	"strings"

	"github.com/mcnijman/go-emailaddress"
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// placeholderDomains are documentation and template domains that never
// belong to a real contact.
var placeholderDomains = map[string]struct{}{
	"example.com":    {},
	"example.org":    {},
	"example.net":    {},
	"test.com":       {},
	"yourdomain.com": {},
	"domain.com":     {},
	"email.com":      {},
}

// assetExtensions catch retina image names such as logo@2x.png, which match
// the address grammar.
var assetExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"svg":  {},
	"webp": {},
	"ico":  {},
	"bmp":  {},
	"css":  {},
	"js":   {},
}

// Matcher finds email addresses in page text and markup.
type Matcher struct {
	pattern *regexp.Regexp
}

// NewMatcher returns a Matcher using the default address pattern and filters.
func NewMatcher() *Matcher {
	return &Matcher{pattern: emailPattern}
}

// Emails lazily yields the distinct lower-cased addresses found in sources,
// in first-seen order across all sources.
func (m *Matcher) Emails(sources ...string) iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		for _, src := range sources {
			for _, raw := range m.pattern.FindAllString(src, -1) {
				email := strings.ToLower(raw)
				if _, dup := seen[email]; dup {
					continue
				}
				seen[email] = struct{}{}
				if !acceptable(email) {
					continue
				}
				if !yield(email) {
					return
				}
			}
		}
	}
}

// Find collects Emails into a slice.
func (m *Matcher) Find(sources ...string) []string {
	return slices.Collect(m.Emails(sources...))
}

func acceptable(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return false
	}
	// Percent escapes only show up in undecoded mailto: hrefs.
	if strings.ContainsRune(email[:at], '%') {
		return false
	}
	domain := email[at+1:]
	if _, placeholder := placeholderDomains[domain]; placeholder {
		return false
	}
	if dot := strings.LastIndexByte(domain, '.'); dot >= 0 {
		if _, asset := assetExtensions[domain[dot+1:]]; asset {
			return false
		}
	}
	if _, err := emailaddress.Parse(email); err != nil {
		return false
	}
	return true
}
