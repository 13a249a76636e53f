package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherFindCounts(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "No addresses on this page.", nil},
		{"one", "Write to Jane@Site.test today", []string{"jane@site.test"}},
		{
			"many",
			"a.b@one.test, c+d@two.test; e_f@sub.three.test",
			[]string{"a.b@one.test", "c+d@two.test", "e_f@sub.three.test"},
		},
		{"duplicate case", "x@site.test and X@SITE.TEST", []string{"x@site.test"}},
		{"placeholder", "john@example.com or real@site.test", []string{"real@site.test"}},
		{"placeholders only", "you@yourdomain.com me@test.com", nil},
		{"retina image", `<img src="logo@2x.png"> team@site.test`, []string{"team@site.test"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := m.Find(tc.text)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatcherScansSourcesInOrder(t *testing.T) {
	t.Parallel()

	text := "Sales: sales@site.test"
	raw := `<a href="mailto:ceo@site.test"></a><p>Sales: sales@site.test</p>`

	got := NewMatcher().Find(text, raw)
	require.Equal(t, []string{"sales@site.test", "ceo@site.test"}, got)
}

func TestMatcherEmailsIsLazy(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x@a.test y@b.test z@c.test ", 3)
	var got []string
	for email := range NewMatcher().Emails(text) {
		got = append(got, email)
		if len(got) == 2 {
			break
		}
	}
	require.Equal(t, []string{"x@a.test", "y@b.test"}, got)
}

func TestMatcherRejectsMalformedLocalPart(t *testing.T) {
	t.Parallel()

	got := NewMatcher().Find("broken..dots@site.test")
	assert.Empty(t, got)
}

func TestMatcherDecodesEncodedMailto(t *testing.T) {
	t.Parallel()

	body := `<html><body><a href="mailto:Jane%20Doe%20%3Cjane@site.test%3E">Write to us</a></body></html>`
	doc, err := ParseDocument("https://site.test/", []byte(body))
	require.NoError(t, err)
	require.Equal(t, []string{"jane doe <jane@site.test>"}, doc.MailtoAddresses())

	sources := append([]string{doc.Text}, doc.MailtoAddresses()...)
	sources = append(sources, doc.HTML)
	assert.Equal(t, []string{"jane@site.test"}, NewMatcher().Find(sources...))
}

func TestMatcherRejectsPercentEscapes(t *testing.T) {
	t.Parallel()

	got := NewMatcher().Find(`<a href="mailto:Jane%20Doe%20%3Cjane@site.test%3E">`)
	assert.Empty(t, got)
}
