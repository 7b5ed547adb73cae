package content

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxTocLevel is the deepest heading level listed in a table of contents.
	MaxTocLevel = 3
	// FallbackAnchor replaces headings whose text produces an empty slug.
	FallbackAnchor = "section"
)

// TocItem is one table of contents entry derived from a heading block.
type TocItem struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

var (
	separatorRun = regexp.MustCompile(`[\s_]+`)
	disallowed   = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRun    = regexp.MustCompile(`-+`)
)

// Slugify normalizes heading text into an anchor id.
func Slugify(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = separatorRun.ReplaceAllString(s, "-")
	s = disallowed.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	if s == "" {
		return FallbackAnchor
	}
	return s
}

// ExtractHeadings walks the tree depth-first, pre-order, and lists level 1-3
// headings with anchor ids that are unique within the result.
// Repeated slugs get -2, -3, ... in order of appearance.
func ExtractHeadings(blocks []Block) []TocItem {
	var (
		items = make([]TocItem, 0)
		seen  = make(map[string]int)
		used  = make(map[string]bool)
	)

	var walk func(nodes []Block)
	walk = func(nodes []Block) {
		for _, node := range nodes {
			if node.Type == "heading" {
				if level, ok := HeadingLevel(node.Props); ok && level >= 1 && level <= MaxTocLevel {
					text := node.Text()
					id := uniqueAnchor(Slugify(text), seen, used)
					if strings.TrimSpace(text) == "" {
						text = fmt.Sprintf("Heading %d", len(items)+1)
					}
					items = append(items, TocItem{ID: id, Text: text, Level: level})
				}
			}
			if len(node.Children) > 0 {
				walk(node.Children)
			}
		}
	}
	walk(blocks)
	return items
}

// uniqueAnchor keeps the first occurrence of base untouched and suffixes later
// ones. A suffixed id that collides with an id already handed out keeps counting.
func uniqueAnchor(base string, seen map[string]int, used map[string]bool) string {
	n := seen[base] + 1
	id := base
	if n > 1 || used[id] {
		if n == 1 {
			n = 2
		}
		id = fmt.Sprintf("%s-%d", base, n)
		for used[id] {
			n++
			id = fmt.Sprintf("%s-%d", base, n)
		}
	}
	seen[base] = n
	used[id] = true
	return id
}

// HeadingLevel reads a heading's "level" prop, which editors store as a
// number or a numeric string. ok is false when it is not an integer.
func HeadingLevel(props map[string]any) (level int, ok bool) {
	switch v := props["level"].(type) {
	case float64:
		return int(v), v == float64(int(v))
	case int:
		return v, true
	case json.Number:
		i, err := v.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		return i, err == nil
	default:
		return 0, false
	}
}
