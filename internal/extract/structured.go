package extract

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// StructuredData looks the address up in JSON-LD blocks, then schema.org
// microdata, then h-card/vCard microformats.
func StructuredData(doc *Document, email string) (string, bool) {
	if name, ok := jsonLDName(doc, email); ok {
		return name, true
	}
	if name, ok := microdataName(doc, email); ok {
		return name, true
	}
	return microformatName(doc, email)
}

func jsonLDName(doc *Document, email string) (string, bool) {
	var found string
	doc.dom.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &payload); err != nil {
			return true
		}
		if name, ok := searchJSONLD(payload, email); ok {
			found = name
			return false
		}
		return true
	})
	return found, found != ""
}

// searchJSONLD walks arrays, @graph lists, and nested objects depth first.
// Object keys are visited in sorted order so the match is stable.
func searchJSONLD(node any, email string) (string, bool) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if name, ok := searchJSONLD(item, email); ok {
				return name, true
			}
		}
	case map[string]any:
		if emailMatches(v["email"], email) {
			if name := jsonLDPersonName(v); name != "" {
				return name, true
			}
		}
		for _, key := range slices.Sorted(maps.Keys(v)) {
			if key == "email" {
				continue
			}
			if name, ok := searchJSONLD(v[key], email); ok {
				return name, true
			}
		}
	}
	return "", false
}

func emailMatches(value any, email string) bool {
	switch v := value.(type) {
	case string:
		return normalizeEmailValue(v) == email
	case []any:
		for _, item := range v {
			if emailMatches(item, email) {
				return true
			}
		}
	}
	return false
}

func normalizeEmailValue(v string) string {
	if addr := mailtoAddress(v); addr != "" {
		return addr
	}
	return strings.ToLower(strings.TrimSpace(v))
}

func jsonLDPersonName(obj map[string]any) string {
	if name, ok := obj["name"].(string); ok && strings.TrimSpace(name) != "" {
		return collapseSpace(name)
	}
	given, _ := obj["givenName"].(string)
	family, _ := obj["familyName"].(string)
	return collapseSpace(given + " " + family)
}

// microdataName inspects every itemscope that owns an itemprop="email"
// matching the address. Properties of nested scopes belong to those scopes.
func microdataName(doc *Document, email string) (string, bool) {
	var found string
	doc.dom.Find("[itemscope]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		scope := s.Nodes[0]
		props := scopeProperties(scope)
		matched := false
		for _, n := range props["email"] {
			if normalizeEmailValue(itempropValue(n)) == email {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}
		if names := props["name"]; len(names) > 0 {
			found = collapseSpace(itempropValue(names[0]))
		}
		if found == "" && len(props["givenName"]) > 0 && len(props["familyName"]) > 0 {
			found = collapseSpace(itempropValue(props["givenName"][0]) + " " + itempropValue(props["familyName"][0]))
		}
		return found == ""
	})
	return found, found != ""
}

func scopeProperties(scope *html.Node) map[string][]*html.Node {
	props := make(map[string][]*html.Node)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if prop := attr(c, "itemprop"); prop != "" {
				for _, p := range strings.Fields(prop) {
					props[p] = append(props[p], c)
				}
			}
			if hasAttr(c, "itemscope") {
				continue
			}
			walk(c)
		}
	}
	walk(scope)
	return props
}

func itempropValue(n *html.Node) string {
	if v := attr(n, "content"); v != "" {
		return v
	}
	if n.Data == "a" || n.Data == "link" {
		if v := attr(n, "href"); v != "" {
			return v
		}
	}
	return flattenText(n)
}

// microformatName handles h-card (p-name/u-email) and legacy vCard (fn/email).
func microformatName(doc *Document, email string) (string, bool) {
	var found string
	doc.dom.Find(".h-card, .vcard").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		matched := false
		card.Find(".u-email, .email").EachWithBreak(func(_ int, e *goquery.Selection) bool {
			value, ok := e.Attr("href")
			if !ok {
				value = e.Text()
			}
			matched = normalizeEmailValue(value) == email
			return !matched
		})
		if !matched {
			return true
		}
		found = collapseSpace(card.Find(".p-name, .fn").First().Text())
		return found == ""
	})
	return found, found != ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
