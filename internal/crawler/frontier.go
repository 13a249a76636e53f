package crawler

import (
	"net/url"
	"strings"
)

// DefaultPriorityKeywords mark links likely to lead to contact information.
var DefaultPriorityKeywords = []string{"contact", "team", "staff", "about", "directory"}

// FrontierItem is a URL waiting to be fetched.
type FrontierItem struct {
	URL      string
	Depth    int
	Priority bool
}

type depthBand struct {
	priority []FrontierItem
	normal   []FrontierItem
}

func (b *depthBand) empty() bool {
	return len(b.priority) == 0 && len(b.normal) == 0
}

// Frontier orders pending URLs by depth, serving priority links first within
// each depth. Every URL is accepted at most once for the life of the frontier.
type Frontier struct {
	bands    []depthBand
	seen     map[string]struct{}
	keywords []string
	size     int
}

// NewFrontier builds an empty frontier. With no keywords the
// DefaultPriorityKeywords are used.
func NewFrontier(keywords ...string) *Frontier {
	if len(keywords) == 0 {
		keywords = DefaultPriorityKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Frontier{
		seen:     make(map[string]struct{}),
		keywords: lowered,
	}
}

// Push enqueues rawURL at depth. anchorText is the link text that led to the
// URL and may be empty. It returns false when the URL is invalid, negative
// depth is given, or the normalized URL was already seen.
func (f *Frontier) Push(rawURL, anchorText string, depth int) bool {
	return f.push(rawURL, anchorText, depth, true)
}

// PushSeed enqueues a starting URL at depth 0. Seeds keep the order they
// were given in and never take the priority lane.
func (f *Frontier) PushSeed(rawURL string) bool {
	return f.push(rawURL, "", 0, false)
}

func (f *Frontier) push(rawURL, anchorText string, depth int, prioritize bool) bool {
	if depth < 0 {
		return false
	}
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return false
	}
	if _, ok := f.seen[normalized]; ok {
		return false
	}
	f.seen[normalized] = struct{}{}

	for len(f.bands) <= depth {
		f.bands = append(f.bands, depthBand{})
	}
	item := FrontierItem{
		URL:      normalized,
		Depth:    depth,
		Priority: prioritize && f.isPriority(normalized, anchorText),
	}
	band := &f.bands[depth]
	if item.Priority {
		band.priority = append(band.priority, item)
	} else {
		band.normal = append(band.normal, item)
	}
	f.size++
	return true
}

// Pop removes the next item: the shallowest depth first, and within a depth
// the priority lane before the normal lane, each in insertion order.
func (f *Frontier) Pop() (FrontierItem, bool) {
	for i := range f.bands {
		band := &f.bands[i]
		if band.empty() {
			continue
		}
		var item FrontierItem
		if len(band.priority) > 0 {
			item, band.priority = band.priority[0], band.priority[1:]
		} else {
			item, band.normal = band.normal[0], band.normal[1:]
		}
		f.size--
		return item, true
	}
	return FrontierItem{}, false
}

// MarkSeen records rawURL as visited without queueing it, so a redirect
// target is not fetched again when a later page links to it. It returns true
// when the URL was not seen before.
func (f *Frontier) MarkSeen(rawURL string) bool {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return false
	}
	if _, ok := f.seen[normalized]; ok {
		return false
	}
	f.seen[normalized] = struct{}{}
	return true
}

// Seen reports whether rawURL was ever accepted by Push or MarkSeen.
func (f *Frontier) Seen(rawURL string) bool {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return false
	}
	_, ok := f.seen[normalized]
	return ok
}

// Len returns the number of items still queued.
func (f *Frontier) Len() int {
	return f.size
}

// isPriority matches keywords against the URL path and the anchor text. The
// host is ignored so a name like teamwork.example does not flag every link.
func (f *Frontier) isPriority(rawURL, anchorText string) bool {
	var path string
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	for _, k := range f.keywords {
		if containsLower(path, k) || containsLower(anchorText, k) {
			return true
		}
	}
	return false
}
