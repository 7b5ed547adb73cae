package render

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docpress/internal/content"
	"docpress/internal/reader"
)

// headingNode adapts a parsed h1-h3 element to reader.HeadingElement.
type headingNode struct {
	n     *html.Node
	level int
}

func (h headingNode) Level() int { return h.level }

func (h headingNode) ID() string {
	for _, a := range h.n.Attr {
		if a.Key == "id" {
			return a.Val
		}
	}
	return ""
}

func (h headingNode) SetID(id string) {
	for i, a := range h.n.Attr {
		if a.Key == "id" {
			h.n.Attr[i].Val = id
			return
		}
	}
	h.n.Attr = append(h.n.Attr, html.Attribute{Key: "id", Val: id})
}

// Reconcile is the post-render pass: it walks the rendered h1-h3 elements in
// document order and assigns them the TOC anchor ids positionally.
func Reconcile(fragment string, toc []content.TocItem) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", fmt.Errorf("parse rendered html: %w", err)
	}

	var headings []reader.HeadingElement
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H1:
				headings = append(headings, headingNode{n: n, level: 1})
			case atom.H2:
				headings = append(headings, headingNode{n: n, level: 2})
			case atom.H3:
				headings = append(headings, headingNode{n: n, level: 3})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	reader.AssignAnchors(headings, toc)

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return buf.String(), nil
}
