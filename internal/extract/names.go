package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// DefaultContextWindow is how many characters of flattened text on each side of an
// address the context strategy inspects.
const DefaultContextWindow = 100

// namePattern matches two or three capitalised words, optionally with a
// middle initial: "Jane Doe", "Jane Q. Public", "Anne-Marie O'Neil".
var namePattern = regexp.MustCompile(
	`(?:\p{Lu}'\p{Lu}\p{Ll}+|\p{Lu}\p{Ll}+(?:-\p{Lu}\p{Ll}+)?)` +
		`(?:\s+\p{Lu}\.)?` +
		`(?:\s+(?:\p{Lu}'\p{Lu}\p{Ll}+|\p{Lu}\p{Ll}+(?:-\p{Lu}\p{Ll}+)?)){1,2}`,
)

// nonNameTokens are capitalised words that often sit next to a name but are
// not part of it. They are trimmed from either end of a candidate.
var nonNameTokens = map[string]struct{}{
	"about": {}, "address": {}, "call": {}, "contact": {}, "contacts": {}, "director": {},
	"dr": {}, "email": {}, "e-mail": {}, "fax": {}, "for": {}, "from": {}, "hello": {},
	"info": {}, "mail": {}, "manager": {}, "meet": {}, "miss": {}, "mr": {}, "mrs": {},
	"ms": {}, "our": {}, "phone": {}, "please": {}, "prof": {}, "reach": {}, "send": {},
	"staff": {}, "team": {}, "tel": {}, "the": {}, "to": {}, "us": {}, "write": {},
}

// blockedNames are whole phrases that look like names but never are.
var blockedNames = map[string]struct{}{
	"all rights":          {},
	"all rights reserved": {},
	"contact us":          {},
	"privacy policy":      {},
	"terms of":            {},
	"read more":           {},
	"learn more":          {},
	"click here":          {},
	"get in":              {},
	"get in touch":        {},
	"follow us":           {},
	"about us":            {},
	"home page":           {},
	"site map":            {},
	"cookie policy":       {},
	"log in":              {},
	"sign up":             {},
}

// contactKeywords mark class or id values of containers that usually hold a
// person's details.
var contactKeywords = []string{"contact", "team", "staff", "author", "bio", "member", "employee"}

// Strategy looks for a name belonging to email in doc. It reports false when
// it has no opinion.
type Strategy func(doc *Document, email string) (string, bool)

// Associator runs a fixed chain of strategies; the first non-empty answer
// wins.
type Associator struct {
	strategies []Strategy
	window     int
}

// AssociatorOption customises an Associator.
type AssociatorOption func(*Associator)

// WithContextWindow sets the context strategy window size in characters.
func WithContextWindow(n int) AssociatorOption {
	return func(a *Associator) {
		if n > 0 {
			a.window = n
		}
	}
}

// WithStrategies replaces the default strategy chain.
func WithStrategies(strategies ...Strategy) AssociatorOption {
	return func(a *Associator) {
		a.strategies = strategies
	}
}

// NewAssociator builds the default chain: structured data, then the enclosing
// contact section, then the surrounding text window.
func NewAssociator(opts ...AssociatorOption) *Associator {
	a := &Associator{window: DefaultContextWindow}
	for _, opt := range opts {
		opt(a)
	}
	if a.strategies == nil {
		a.strategies = []Strategy{StructuredData, ContactSection, a.ContextWindow}
	}
	return a
}

// Associate returns the best name for email or "".
func (a *Associator) Associate(doc *Document, email string) string {
	if doc == nil {
		return ""
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, strategy := range a.strategies {
		if name, ok := strategy(doc, email); ok && name != "" {
			return name
		}
	}
	return ""
}

// ContextWindow applies the name pattern to the text around the first
// occurrence of email in the flattened page text.
func (a *Associator) ContextWindow(doc *Document, email string) (string, bool) {
	loc := findFold(doc.Text, email)
	if loc == nil {
		return "", false
	}
	start := loc[0]
	for range a.window {
		if start == 0 {
			break
		}
		_, size := utf8.DecodeLastRuneInString(doc.Text[:start])
		start -= size
	}
	end := loc[1]
	for range a.window {
		if end == len(doc.Text) {
			break
		}
		_, size := utf8.DecodeRuneInString(doc.Text[end:])
		end += size
	}
	window := doc.Text[start:end]
	return closestName(window, loc[0]-start, loc[1]-start)
}

// ContactSection looks for the nearest ancestor of the address whose class
// or id suggests a contact block and searches that block's text.
func ContactSection(doc *Document, email string) (string, bool) {
	holder := doc.elementHolding(email)
	if holder == nil {
		return "", false
	}
	for n := holder; n != nil; n = n.Parent {
		if n.Type != html.ElementNode || !isContactContainer(n) {
			continue
		}
		text := flattenText(n)
		loc := findFold(text, email)
		if loc == nil {
			// mailto-only addresses have no text offset; measure from the start.
			loc = []int{0, 0}
		}
		if name, ok := closestName(text, loc[0], loc[1]); ok {
			return name, true
		}
		return "", false
	}
	return "", false
}

// elementHolding returns the mailto anchor for email or, failing that, the
// element whose own text mentions it.
func (d *Document) elementHolding(email string) *html.Node {
	if len(d.dom.Nodes) == 0 {
		return nil
	}
	root := d.dom.Nodes[0]

	var anchor, textParent *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		switch n.Type {
		case html.ElementNode:
			if _, skip := skippedTextElements[n.Data]; skip {
				return false
			}
			if n.Data == "a" && mailtoAddress(attr(n, "href")) == email {
				anchor = n
				return true
			}
		case html.TextNode:
			if textParent == nil && findFold(n.Data, email) != nil {
				textParent = n.Parent
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)

	if anchor != nil {
		return anchor
	}
	return textParent
}

func isContactContainer(n *html.Node) bool {
	marker := strings.ToLower(attr(n, "class") + " " + attr(n, "id"))
	if strings.TrimSpace(marker) == "" {
		return false
	}
	for _, kw := range contactKeywords {
		if strings.Contains(marker, kw) {
			return true
		}
	}
	return false
}

// closestName returns the acceptable name match nearest to the span
// [emailStart, emailEnd) of text. Ties go to the earlier match.
func closestName(text string, emailStart, emailEnd int) (string, bool) {
	best := ""
	bestDist := -1
	for _, m := range nameCandidates(text) {
		dist := spanDistance(m.start, m.end, emailStart, emailEnd)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = m.name, dist
		}
	}
	return best, bestDist >= 0
}

type nameMatch struct {
	name       string
	start, end int
}

// nameCandidates scans text for name-shaped runs. A run that starts with a
// non-name token ("Email John Smith") is rescanned from the next word so the
// token does not swallow the name behind it.
func nameCandidates(text string) []nameMatch {
	var out []nameMatch
	pos := 0
	for pos < len(text) {
		loc := namePattern.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		raw := text[start:end]
		first := raw
		if idx := strings.IndexFunc(raw, unicode.IsSpace); idx >= 0 {
			first = raw[:idx]
		}
		if isNonNameToken(first) {
			pos = start + len(first)
			continue
		}
		if name, ok := cleanName(raw); ok {
			out = append(out, nameMatch{name: name, start: start, end: end})
		}
		pos = end
	}
	return out
}

func spanDistance(aStart, aEnd, bStart, bEnd int) int {
	switch {
	case aEnd <= bStart:
		return bStart - aEnd
	case bEnd <= aStart:
		return aStart - bEnd
	default:
		return 0
	}
}

// cleanName trims non-name tokens from a candidate and rejects what is left
// if it is too short or on the blocklist.
func cleanName(candidate string) (string, bool) {
	words := strings.Fields(candidate)
	for len(words) > 0 && isNonNameToken(words[0]) {
		words = words[1:]
	}
	for len(words) > 0 && isNonNameToken(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	if len(words) < 2 {
		return "", false
	}
	if isInitial(words[len(words)-1]) {
		return "", false
	}
	name := strings.Join(words, " ")
	if _, blocked := blockedNames[strings.ToLower(name)]; blocked {
		return "", false
	}
	return name, true
}

func isNonNameToken(word string) bool {
	_, ok := nonNameTokens[strings.ToLower(strings.TrimSuffix(word, "."))]
	return ok
}

func isInitial(word string) bool {
	return utf8.RuneCountInString(word) == 2 && strings.HasSuffix(word, ".")
}

// findFold returns the byte span of the first case-insensitive occurrence of
// needle in haystack.
func findFold(haystack, needle string) []int {
	if needle == "" {
		return nil
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(needle))
	if err != nil {
		return nil
	}
	return re.FindStringIndex(haystack)
}
