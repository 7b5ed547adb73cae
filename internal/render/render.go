// Package render turns a block tree into HTML for the public reading view.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"docpress/internal/content"
	"docpress/internal/sanitize"
)

// Result is a rendered body together with the TOC its anchors match.
type Result struct {
	HTML string            `json:"html"`
	TOC  []content.TocItem `json:"toc"`
}

// Document renders blocks and reconciles heading ids against the TOC derived
// from the same blocks.
func Document(blocks []content.Block) (Result, error) {
	toc := content.ExtractHeadings(blocks)

	var buf bytes.Buffer
	writeBlocks(&buf, blocks)

	out, err := Reconcile(buf.String(), toc)
	if err != nil {
		return Result{}, err
	}
	return Result{HTML: out, TOC: toc}, nil
}

func writeBlocks(buf *bytes.Buffer, blocks []content.Block) {
	for i := 0; i < len(blocks); {
		b := blocks[i]
		if tag := listTag(b.Type); tag != "" {
			fmt.Fprintf(buf, "<%s>", tag)
			for ; i < len(blocks) && blocks[i].Type == b.Type; i++ {
				buf.WriteString("<li>")
				writeInlines(buf, blocks[i].Inlines())
				writeChildren(buf, blocks[i].Children)
				buf.WriteString("</li>")
			}
			fmt.Fprintf(buf, "</%s>", tag)
			continue
		}
		writeBlock(buf, b)
		i++
	}
}

func listTag(blockType string) string {
	switch blockType {
	case "bulletListItem", "checkListItem":
		return "ul"
	case "numberedListItem":
		return "ol"
	}
	return ""
}

func writeBlock(buf *bytes.Buffer, b content.Block) {
	switch b.Type {
	case "heading":
		level, ok := content.HeadingLevel(b.Props)
		if !ok || level < 1 || level > 6 {
			// only levels the TOC can count may become h1-h3
			buf.WriteString("<p>")
			writeInlines(buf, b.Inlines())
			buf.WriteString("</p>")
			break
		}
		fmt.Fprintf(buf, "<h%d>", level)
		writeInlines(buf, b.Inlines())
		fmt.Fprintf(buf, "</h%d>", level)
	case "codeBlock":
		buf.WriteString("<pre><code>")
		buf.WriteString(html.EscapeString(b.Text()))
		buf.WriteString("</code></pre>")
	case "quote":
		buf.WriteString("<blockquote>")
		writeInlines(buf, b.Inlines())
		buf.WriteString("</blockquote>")
	case "image":
		src, _ := b.Props["url"].(string)
		if !sanitize.SafeHref.MatchString(src) {
			break
		}
		caption, _ := b.Props["caption"].(string)
		fmt.Fprintf(buf, `<figure><img src="%s" alt="%s">`, html.EscapeString(src), html.EscapeString(caption))
		if caption != "" {
			fmt.Fprintf(buf, "<figcaption>%s</figcaption>", html.EscapeString(caption))
		}
		buf.WriteString("</figure>")
	default:
		buf.WriteString("<p>")
		writeInlines(buf, b.Inlines())
		buf.WriteString("</p>")
	}
	writeChildren(buf, b.Children)
}

func writeChildren(buf *bytes.Buffer, children []content.Block) {
	if len(children) == 0 {
		return
	}
	buf.WriteString(`<div class="block-children">`)
	writeBlocks(buf, children)
	buf.WriteString("</div>")
}

var styleTags = []struct{ style, tag string }{
	{"bold", "strong"},
	{"italic", "em"},
	{"underline", "u"},
	{"strike", "s"},
	{"code", "code"},
}

func writeInlines(buf *bytes.Buffer, runs []content.Inline) {
	for _, r := range runs {
		if r.Type == "link" {
			var inner bytes.Buffer
			writeInlines(&inner, decodeRuns(r))
			if sanitize.SafeHref.MatchString(r.Href) {
				fmt.Fprintf(buf, `<a href="%s">%s</a>`, html.EscapeString(r.Href), inner.String())
			} else {
				buf.Write(inner.Bytes())
			}
			continue
		}

		var open, closing []string
		for _, st := range styleTags {
			if on, _ := r.Styles[st.style].(bool); on {
				open = append(open, "<"+st.tag+">")
				closing = append([]string{"</" + st.tag + ">"}, closing...)
			}
		}
		buf.WriteString(strings.Join(open, ""))
		buf.WriteString(strings.ReplaceAll(html.EscapeString(r.Text), "\n", "<br>"))
		buf.WriteString(strings.Join(closing, ""))
	}
}

func decodeRuns(r content.Inline) []content.Inline {
	return content.Block{Content: r.Content}.Inlines()
}
