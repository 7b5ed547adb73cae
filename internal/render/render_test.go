package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docpress/internal/content"
)

func TestDocument_HeadingAnchorsMatchTOC(t *testing.T) {
	blocks := content.Parse(`[
		{"type":"heading","props":{"level":1},"content":[{"type":"text","text":"Getting Started"}]},
		{"type":"paragraph","content":[{"type":"text","text":"Intro"}]},
		{"type":"heading","props":{"level":2},"content":[{"type":"text","text":"Getting Started"}]},
		{"type":"heading","props":{"level":4},"content":[{"type":"text","text":"Fine print"}]}
	]`)

	res, err := Document(blocks)
	require.NoError(t, err)

	require.Len(t, res.TOC, 2)
	assert.Equal(t,
		`<h1 id="getting-started">Getting Started</h1><p>Intro</p><h2 id="getting-started-2">Getting Started</h2><h4>Fine print</h4>`,
		res.HTML)
}

func TestDocument_StringAndOutOfRangeLevelsKeepAnchorsAligned(t *testing.T) {
	blocks := content.Parse(`[
		{"type":"heading","props":{"level":"4"},"content":[{"type":"text","text":"Deep"}]},
		{"type":"heading","props":{"level":2},"content":[{"type":"text","text":"Intro"}]},
		{"type":"heading","props":{"level":"2"},"content":[{"type":"text","text":"Setup"}]},
		{"type":"heading","props":{"level":9},"content":[{"type":"text","text":"Too deep"}]},
		{"type":"heading","props":{"level":1.5},"content":[{"type":"text","text":"Fraction"}]},
		{"type":"heading","content":[{"type":"text","text":"No level"}]}
	]`)

	res, err := Document(blocks)
	require.NoError(t, err)

	require.Len(t, res.TOC, 2)
	assert.Equal(t, "intro", res.TOC[0].ID)
	assert.Equal(t, "setup", res.TOC[1].ID)
	assert.Equal(t,
		`<h4>Deep</h4><h2 id="intro">Intro</h2><h2 id="setup">Setup</h2><p>Too deep</p><p>Fraction</p><p>No level</p>`,
		res.HTML)
}

func TestDocument_InlineFormatting(t *testing.T) {
	blocks := content.Parse(`[
		{"type":"paragraph","content":[
			{"type":"text","text":"a < b","styles":{"bold":true,"italic":true}},
			{"type":"link","href":"https://example.com","content":[{"type":"text","text":"site"}]},
			{"type":"link","href":"javascript:alert(1)","content":[{"type":"text","text":"bad"}]}
		]}
	]`)

	res, err := Document(blocks)
	require.NoError(t, err)

	assert.Equal(t,
		`<p><strong><em>a &lt; b</em></strong><a href="https://example.com">site</a>bad</p>`,
		res.HTML)
}

func TestDocument_ListsAndCode(t *testing.T) {
	blocks := content.Parse(`[
		{"type":"bulletListItem","content":[{"type":"text","text":"one"}]},
		{"type":"bulletListItem","content":[{"type":"text","text":"two"}]},
		{"type":"numberedListItem","content":[{"type":"text","text":"first"}]},
		{"type":"codeBlock","content":[{"type":"text","text":"x := <-ch"}]}
	]`)

	res, err := Document(blocks)
	require.NoError(t, err)

	assert.Equal(t,
		`<ul><li>one</li><li>two</li></ul><ol><li>first</li></ol><pre><code>x := &lt;-ch</code></pre>`,
		res.HTML)
}

func TestDocument_NestedHeadingsInOrder(t *testing.T) {
	blocks := content.Parse(`[
		{"type":"paragraph","content":[{"type":"text","text":"p"}],
		 "children":[{"type":"heading","props":{"level":3},"content":[{"type":"text","text":"Child"}]}]},
		{"type":"heading","props":{"level":1},"content":[{"type":"text","text":"Next"}]}
	]`)

	res, err := Document(blocks)
	require.NoError(t, err)

	assert.Contains(t, res.HTML, `<h3 id="child">Child</h3>`)
	assert.Contains(t, res.HTML, `<h1 id="next">Next</h1>`)
}

func TestDocument_Empty(t *testing.T) {
	res, err := Document(nil)
	require.NoError(t, err)
	assert.Empty(t, res.HTML)
	assert.Empty(t, res.TOC)
}

func TestReconcile_OverwritesStaleIDs(t *testing.T) {
	out, err := Reconcile(`<h2 id="old">A</h2><h3>B</h3><h3>C</h3>`, []content.TocItem{
		{ID: "a", Level: 2},
		{ID: "b", Level: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, `<h2 id="a">A</h2><h3 id="b">B</h3><h3>C</h3>`, out)
}
