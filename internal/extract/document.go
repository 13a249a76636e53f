package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// skippedTextElements never contribute to the flattened page text.
var skippedTextElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
}

// Document is a parsed HTML page plus the derived views the extractors share.
type Document struct {
	// HTML is the raw markup as fetched.
	HTML string
	// Text is the visible page text with whitespace collapsed.
	Text string
	// Title is the trimmed <title> text.
	Title string

	base *url.URL
	dom  *goquery.Document
}

// Link is an anchor discovered on a page, resolved to an absolute URL.
type Link struct {
	URL  string
	Text string
}

// ParseDocument parses body relative to baseURL. Malformed markup is repaired
// by the HTML5 parser rather than rejected.
func ParseDocument(baseURL string, body []byte) (*Document, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	dom, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if href, ok := dom.Find("base[href]").First().Attr("href"); ok {
		if resolved, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = resolved
		}
	}

	doc := &Document{
		HTML:  string(body),
		Title: collapseSpace(dom.Find("title").First().Text()),
		base:  base,
		dom:   dom,
	}
	if len(dom.Nodes) > 0 {
		doc.Text = flattenText(dom.Nodes[0])
	}
	return doc, nil
}

// Links returns every http(s) anchor on the page in document order.
func (d *Document) Links() []Link {
	var links []Link
	d.dom.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		resolved, err := d.base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		links = append(links, Link{
			URL:  resolved.String(),
			Text: collapseSpace(s.Text()),
		})
	})
	return links
}

// MailtoAddresses returns the decoded targets of every mailto: anchor in
// document order. Values are left unvalidated for the Matcher to scan.
func (d *Document) MailtoAddresses() []string {
	var addrs []string
	d.dom.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if addr := mailtoAddress(href); addr != "" {
			addrs = append(addrs, addr)
		}
	})
	return addrs
}

// flattenText concatenates the visible text below n, one space between text
// nodes, whitespace collapsed.
func flattenText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if _, skip := skippedTextElements[n.Data]; skip {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseSpace(b.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// mailtoAddress returns the lower-cased address of a mailto: href, or "".
func mailtoAddress(href string) string {
	href = strings.TrimSpace(href)
	if len(href) < len("mailto:") || !strings.EqualFold(href[:len("mailto:")], "mailto:") {
		return ""
	}
	addr := href[len("mailto:"):]
	if idx := strings.IndexByte(addr, '?'); idx >= 0 {
		addr = addr[:idx]
	}
	if unescaped, err := url.PathUnescape(addr); err == nil {
		addr = unescaped
	}
	return strings.ToLower(strings.TrimSpace(addr))
}
