package reader

import "docpress/internal/content"

// HeadingElement is a rendered heading whose id can be rewritten.
type HeadingElement interface {
	Level() int
	ID() string
	SetID(id string)
}

// AssignAnchors gives the first N rendered h1-h3 elements the ids of the
// first N TOC items, in order. It returns how many ids were changed.
func AssignAnchors(headings []HeadingElement, toc []content.TocItem) int {
	changed := 0
	i := 0
	for _, h := range headings {
		if i >= len(toc) {
			break
		}
		if lvl := h.Level(); lvl < 1 || lvl > content.MaxTocLevel {
			continue
		}
		if h.ID() != toc[i].ID {
			h.SetID(toc[i].ID)
			changed++
		}
		i++
	}
	return changed
}

// AnchorSync re-applies anchors every time the rendered subtree changes,
// since the renderer may re-mount heading nodes.
type AnchorSync struct {
	headings func() []HeadingElement
	toc      []content.TocItem
}

func NewAnchorSync(headings func() []HeadingElement, toc []content.TocItem) *AnchorSync {
	return &AnchorSync{headings: headings, toc: toc}
}

// SetTOC replaces the item list after the body changed and re-applies it.
func (s *AnchorSync) SetTOC(toc []content.TocItem) int {
	s.toc = toc
	return s.OnMutation()
}

// OnMutation is the structural change callback.
func (s *AnchorSync) OnMutation() int {
	return AssignAnchors(s.headings(), s.toc)
}
