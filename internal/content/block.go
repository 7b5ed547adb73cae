// Package content converts stored document bodies to block trees and derives
// the table of contents from them.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Block is one node of the editor's block tree.
// Content is kept raw because its shape depends on the block type
// (inline runs for text blocks, rows for tables).
type Block struct {
	ID       string          `json:"id,omitempty"`
	Type     string          `json:"type"`
	Props    map[string]any  `json:"props,omitempty"`
	Content  json.RawMessage `json:"content,omitempty"`
	Children []Block         `json:"children,omitempty"`
}

// Inline is a run of inline content. Links nest further runs in Content.
type Inline struct {
	Type    string          `json:"type,omitempty"`
	Text    string          `json:"text,omitempty"`
	Href    string          `json:"href,omitempty"`
	Styles  map[string]any  `json:"styles,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// ErrNotBlockList is returned by Decode when the value is not a list of blocks.
var ErrNotBlockList = errors.New("content is not a block list")

// Parse turns a stored body into a block tree. The value may be a JSON string,
// raw JSON bytes, an already decoded structure or nil. Anything that does not
// decode to a list of blocks yields nil; failures are logged, never returned.
func Parse(stored any) []Block {
	blocks, err := Decode(stored)
	if err != nil {
		slog.Warn("content parse failed, treating body as empty", "error", err)
		return nil
	}
	return blocks
}

// Decode is Parse with the error surfaced.
func Decode(stored any) ([]Block, error) {
	var raw []byte
	switch v := stored.(type) {
	case nil:
		return nil, nil
	case string:
		raw = []byte(v)
	case *string:
		if v == nil {
			return nil, nil
		}
		raw = []byte(*v)
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	case []Block:
		return v, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("re-encode native content: %w", err)
		}
		raw = b
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if !strings.HasPrefix(trimmed, "[") {
		return nil, ErrNotBlockList
	}

	var blocks []Block
	if err := json.Unmarshal([]byte(trimmed), &blocks); err != nil {
		return nil, fmt.Errorf("decode block list: %w", err)
	}
	return blocks, nil
}

// Serialize encodes a block tree into its stored string form.
// A nil tree is stored as an empty list.
func Serialize(blocks []Block) (string, error) {
	if blocks == nil {
		blocks = []Block{}
	}
	b, err := json.Marshal(blocks)
	if err != nil {
		return "", fmt.Errorf("encode block list: %w", err)
	}
	return string(b), nil
}

// Inlines decodes the inline runs of a block. Non-inline content yields nil.
func (b Block) Inlines() []Inline {
	return decodeInlines(b.Content)
}

// Text flattens the inline content of a block, following link runs.
func (b Block) Text() string {
	var sb strings.Builder
	writeText(&sb, b.Inlines())
	return sb.String()
}

func decodeInlines(raw json.RawMessage) []Inline {
	if len(raw) == 0 {
		return nil
	}
	var runs []Inline
	if err := json.Unmarshal(raw, &runs); err != nil {
		return nil
	}
	return runs
}

func writeText(sb *strings.Builder, runs []Inline) {
	for _, r := range runs {
		sb.WriteString(r.Text)
		if len(r.Content) > 0 {
			writeText(sb, decodeInlines(r.Content))
		}
	}
}
