package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, body string) *Document {
	t.Helper()
	doc, err := ParseDocument("https://site.test/", []byte(body))
	require.NoError(t, err)
	return doc
}

func TestAssociateJSONLD(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<html><head>
<script type="application/ld+json">{"@type":"Person","email":"a@b.com","name":"A B"}</script>
</head><body><p>Nothing else here.</p></body></html>`)

	assert.Equal(t, "A B", NewAssociator().Associate(doc, "a@b.com"))
}

func TestAssociateJSONLDNestedGraph(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"Organization","name":"Acme Widgets","email":"info@acme.test",
   "employee":[{"@type":"Person","givenName":"Grace","familyName":"Hopper","email":"mailto:GRACE@acme.test"}]}
]}</script>
<script type="application/ld+json">{ not json </script>`)

	a := NewAssociator()
	assert.Equal(t, "Grace Hopper", a.Associate(doc, "grace@acme.test"))
	assert.Equal(t, "Acme Widgets", a.Associate(doc, "info@acme.test"))
}

func TestAssociateJSONLDStableAcrossKeys(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<script type="application/ld+json">
{"@type":"Article",
 "editor":{"@type":"Person","name":"Eve Editor","email":"desk@news.test"},
 "author":{"@type":"Person","name":"Alice Author","email":"desk@news.test"},
 "publisher":{"@type":"Organization","name":"News Desk","email":"desk@news.test"}}
</script>`)

	a := NewAssociator()
	for range 50 {
		require.Equal(t, "Alice Author", a.Associate(doc, "desk@news.test"))
	}
}

func TestAssociateMicrodata(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<div itemscope itemtype="https://schema.org/Organization">
  <span itemprop="name">Acme Widgets</span>
  <div itemprop="employee" itemscope itemtype="https://schema.org/Person">
    <span itemprop="name">Ada Lovelace</span>
    <a itemprop="email" href="mailto:ada@acme.test">write</a>
  </div>
</div>`)

	assert.Equal(t, "Ada Lovelace", NewAssociator().Associate(doc, "ada@acme.test"))
}

func TestAssociateMicroformat(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<div class="h-card"><span class="p-name">Linus Pauling</span>
<a class="u-email" href="mailto:linus@site.test">mail</a></div>`)

	name, ok := StructuredData(doc, "linus@site.test")
	require.True(t, ok)
	assert.Equal(t, "Linus Pauling", name)
}

func TestAssociateContactSection(t *testing.T) {
	t.Parallel()

	filler := strings.Repeat("lorem ipsum dolor sit amet ", 10)
	doc := mustParse(t, `<body>
<p>Website by Studio Person</p>
<div class="staff-card">
  <h3>Marie Curie</h3>
  <p>`+filler+`</p>
  <a href="mailto:marie@lab.test">Send a message</a>
</div></body>`)

	name, ok := ContactSection(doc, "marie@lab.test")
	require.True(t, ok)
	assert.Equal(t, "Marie Curie", name)
	assert.Equal(t, "Marie Curie", NewAssociator().Associate(doc, "marie@lab.test"))
}

func TestAssociateContactSectionPicksClosest(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<section id="our-team">
<p>Alan Turing: alan@lab.test</p>
<p>Katherine Johnson: katherine@lab.test</p>
</section>`)

	a := NewAssociator()
	assert.Equal(t, "Alan Turing", a.Associate(doc, "alan@lab.test"))
	assert.Equal(t, "Katherine Johnson", a.Associate(doc, "katherine@lab.test"))
}

func TestAssociateContextWindow(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<body>Contact: Jane Doe, jane@site.test</body>`)
	assert.Equal(t, "Jane Doe", NewAssociator().Associate(doc, "jane@site.test"))
}

func TestAssociateContextWindowMiddleInitial(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<p>Questions? Email John Q. Public at jqp@site.test.</p>`)
	assert.Equal(t, "John Q. Public", NewAssociator().Associate(doc, "jqp@site.test"))
}

func TestAssociateContextWindowRespectsSize(t *testing.T) {
	t.Parallel()

	far := "Jane Doe " + strings.Repeat("x ", 80) + "jane@site.test"
	doc := mustParse(t, "<p>"+far+"</p>")

	assert.Empty(t, NewAssociator().Associate(doc, "jane@site.test"))
	assert.Equal(t, "Jane Doe", NewAssociator(WithContextWindow(500)).Associate(doc, "jane@site.test"))
}

func TestAssociateContextWindowCountsCharacters(t *testing.T) {
	t.Parallel()

	// 60 two-byte characters: inside a 100 character window, outside 100 bytes.
	near := "Jane Doe " + strings.Repeat("é", 60) + " jane@site.test"
	doc := mustParse(t, "<p>"+near+"</p>")

	assert.Equal(t, "Jane Doe", NewAssociator().Associate(doc, "jane@site.test"))
	assert.Empty(t, NewAssociator(WithContextWindow(50)).Associate(doc, "jane@site.test"))
}

func TestAssociateReturnsEmpty(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<body><p>reach us anytime at hello@site.test, we reply fast.</p></body>`)
	assert.Empty(t, NewAssociator().Associate(doc, "hello@site.test"))
}

func TestAssociateBlocklist(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<footer>Contact Us: office@site.test. All Rights Reserved.</footer>`)
	assert.Empty(t, NewAssociator().Associate(doc, "office@site.test"))
}

func TestAssociateStrategyOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	first := func(*Document, string) (string, bool) {
		calls = append(calls, "first")
		return "", false
	}
	second := func(*Document, string) (string, bool) {
		calls = append(calls, "second")
		return "Second Choice", true
	}
	third := func(*Document, string) (string, bool) {
		calls = append(calls, "third")
		return "Third Choice", true
	}

	a := NewAssociator(WithStrategies(first, second, third))
	assert.Equal(t, "Second Choice", a.Associate(mustParse(t, "<p></p>"), "x@site.test"))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestCleanName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Meet Jane Doe", "Jane Doe", true},
		{"Jane Doe Email", "Jane Doe", true},
		{"Contact Us", "", false},
		{"Privacy Policy", "", false},
		{"Dr Smith", "", false},
		{"Anne-Marie O'Neil", "Anne-Marie O'Neil", true},
	}
	for _, tc := range tests {
		got, ok := cleanName(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
