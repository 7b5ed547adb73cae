package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"allowed markup kept", `<p>Hello <strong>world</strong></p>`, `<p>Hello <strong>world</strong></p>`},
		{"attributes stripped", `<p class="x" style="color:red" onclick="evil()">hi</p>`, `<p>hi</p>`},
		{"headings up to h3", `<h1>a</h1><h3>c</h3>`, `<h1>a</h1><h3>c</h3>`},
		{"deep heading unwrapped", `<h4>deep</h4>`, `deep`},
		{"table unwrapped", `<table><tr><td><em>cell</em></td></tr></table>`, `<em>cell</em>`},
		{"https href kept", `<a href="https://example.com/x">link</a>`, `<a href="https://example.com/x">link</a>`},
		{"mailto href kept", `<a href="mailto:a@b.c">mail</a>`, `<a href="mailto:a@b.c">mail</a>`},
		{"fragment href kept", `<a href="#setup">jump</a>`, `<a href="#setup">jump</a>`},
		{"javascript href dropped", `<a href="javascript:alert(1)">x</a>`, `<a>x</a>`},
		{"relative path href dropped", `<a href="/admin">x</a>`, `<a>x</a>`},
		{"ftp href dropped", `<a href="ftp://host/file">x</a>`, `<a>x</a>`},
		{"anchor extras stripped", `<a href="http://a.b" target="_blank" rel="x">x</a>`, `<a href="http://a.b">x</a>`},
		{"script removed", `<p>ok</p><script>alert(1)</script>`, `<p>ok</p>`},
		{"style body removed", `<style>p{color:red}</style><p>ok</p>`, `<p>ok</p>`},
		{"href with spaces dropped", `<a href="https://example.com/a b">x</a>`, `<a>x</a>`},
		{"img removed", `<p>a<img src="x" onerror="y">b</p>`, `<p>ab</p>`},
		{"empty", ``, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := New()
	inputs := []string{
		`<p>Tom &amp; Jerry's "show"</p>`,
		`<div><section><a href="javascript:x" title="t">bad</a><a href="#ok">ok</a></section></div>`,
		`<ul><li>one<li>two</ul><pre><code>x &lt; y</code></pre>`,
		`<p>unclosed <b>bold <i>both`,
		`plain text with < and >`,
		`<blockquote><font color="red">quoted</font></blockquote>`,
	}
	for _, in := range inputs {
		once := s.Sanitize(in)
		assert.Equal(t, once, s.Sanitize(once), in)
	}
}

func TestSanitize_MalformedDoesNotPanic(t *testing.T) {
	s := New()
	assert.NotPanics(t, func() {
		s.Sanitize(`<<<>>><a href=">`)
		s.Sanitize(`</p></div><p`)
	})
}

func TestPlainText(t *testing.T) {
	s := New()

	assert.Equal(t, "Fixed bug & more", s.PlainText(`<p>Fixed <strong>bug</strong> &amp; more</p>`))
	assert.Equal(t, "", strings.TrimSpace(s.PlainText(`<p><br></p>`)))
	assert.Equal(t, "", strings.TrimSpace(s.PlainText(`<p>&nbsp;</p>`)))
	assert.Equal(t, "", s.PlainText(""))
	assert.Equal(t, "x", s.PlainText(`<script>alert(1)</script>x`))
}
