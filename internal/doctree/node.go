// Package doctree decodes Tiptap-style JSON document trees and renders them to HTML.
package doctree

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// Kind discriminates document tree nodes.
type Kind string

const (
	KindDoc            Kind = "doc"
	KindParagraph      Kind = "paragraph"
	KindHeading        Kind = "heading"
	KindText           Kind = "text"
	KindBulletList     Kind = "bulletList"
	KindOrderedList    Kind = "orderedList"
	KindListItem       Kind = "listItem"
	KindBlockquote     Kind = "blockquote"
	KindCodeBlock      Kind = "codeBlock"
	KindHorizontalRule Kind = "horizontalRule"
	KindTable          Kind = "table"
	KindTableRow       Kind = "tableRow"
	KindTableCell      Kind = "tableCell"
	KindTableHeader    Kind = "tableHeader"
)

// MarkKind discriminates inline marks.
type MarkKind string

const (
	MarkBold   MarkKind = "bold"
	MarkItalic MarkKind = "italic"
	MarkCode   MarkKind = "code"
	MarkLink   MarkKind = "link"
)

// ErrEmpty is returned by Parse when the input holds no document.
var ErrEmpty = errors.New("doctree: empty document")

// Node is one element of a document tree.
type Node struct {
	Kind    Kind
	Attrs   Attrs
	Content []Node
	Text    string
	Marks   []Mark
}

// Mark is an inline annotation on a text node.
type Mark struct {
	Kind  MarkKind
	Attrs Attrs
}

// Attrs holds the node and mark attributes the renderer understands.
// Unknown attributes are dropped.
type Attrs struct {
	Level    int
	Language string
	Href     string
}

type rawNode struct {
	Type    string          `json:"type"`
	Attrs   json.RawMessage `json:"attrs"`
	Content []Node          `json:"content"`
	Text    string          `json:"text"`
	Marks   []Mark          `json:"marks"`
}

// UnmarshalJSON decodes a node, accepting "document" as an alias for the root kind.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind := Kind(raw.Type)
	if kind == "document" {
		kind = KindDoc
	}
	*n = Node{
		Kind:    kind,
		Attrs:   decodeAttrs(raw.Attrs),
		Content: raw.Content,
		Text:    raw.Text,
		Marks:   raw.Marks,
	}
	return nil
}

// UnmarshalJSON decodes a mark.
func (m *Mark) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  string          `json:"type"`
		Attrs json.RawMessage `json:"attrs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Mark{Kind: MarkKind(raw.Type), Attrs: decodeAttrs(raw.Attrs)}
	return nil
}

// decodeAttrs reads attributes leniently: a non-object value or a field of
// the wrong type yields the zero value instead of an error.
func decodeAttrs(data json.RawMessage) Attrs {
	var m map[string]any
	if len(data) == 0 || json.Unmarshal(data, &m) != nil {
		return Attrs{}
	}
	var a Attrs
	switch v := m["level"].(type) {
	case float64:
		a.Level = int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			a.Level = i
		}
	}
	if s, ok := m["language"].(string); ok {
		a.Language = s
	}
	if s, ok := m["href"].(string); ok {
		a.Href = s
	}
	return a
}

// Parse decodes a document tree. The input may be the tree itself or a JSON
// string holding the serialized tree.
func Parse(data []byte) (*Node, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrEmpty
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		inner := bytes.TrimSpace([]byte(s))
		if len(inner) == 0 {
			return nil, ErrEmpty
		}
		if inner[0] == '"' {
			return nil, errors.New("doctree: nested string document")
		}
		return Parse(inner)
	}
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
