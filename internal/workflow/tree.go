package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/parser"
)

// Kind identifies which variant a Node holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindSequence
	KindMapping
)

// Node is a parsed YAML value: a mapping, a sequence, a scalar (kept in its
// string form) or null. Mapping pairs keep document order.
type Node struct {
	Kind  Kind
	Str   string
	Items []*Node
	Pairs []Pair
}

// Pair is a single key/value entry of a mapping Node.
type Pair struct {
	Key   string
	Value *Node
}

// Get returns the value stored under key. It reports false when n is not a
// mapping or the key is absent.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMapping {
		return nil, false
	}
	for _, p := range n.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present in a mapping, regardless of its value.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Scalar returns the string form of a scalar node.
func (n *Node) Scalar() (string, bool) {
	if n == nil || n.Kind != KindString {
		return "", false
	}
	return n.Str, true
}

// Mapping returns the pairs of a mapping node, or nil for any other shape.
func (n *Node) Mapping() []Pair {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	return n.Pairs
}

// Sequence returns the items of a sequence node, or nil for any other shape.
func (n *Node) Sequence() []*Node {
	if n == nil || n.Kind != KindSequence {
		return nil
	}
	return n.Items
}

// IsMapping reports whether n holds a mapping.
func (n *Node) IsMapping() bool {
	return n != nil && n.Kind == KindMapping
}

// String returns a scalar as is and any other shape in YAML flow style,
// so a misplaced mapping still shows up as something readable.
func (n *Node) String() string {
	if n == nil || n.Kind == KindNull {
		return "null"
	}
	if n.Kind == KindString {
		return n.Str
	}
	out, err := yaml.MarshalWithOptions(n.value(), yaml.Flow(true))
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(out))
}

func (n *Node) value() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindString:
		return n.Str
	case KindSequence:
		items := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			items = append(items, item.value())
		}
		return items
	case KindMapping:
		pairs := make(yaml.MapSlice, 0, len(n.Pairs))
		for _, p := range n.Pairs {
			pairs = append(pairs, yaml.MapItem{Key: p.Key, Value: p.Value.value()})
		}
		return pairs
	default:
		return nil
	}
}

// emptyMapping is what empty or non-mapping documents are normalized to.
func emptyMapping() *Node {
	return &Node{Kind: KindMapping}
}

// decodeTree parses YAML bytes into a Node. Empty documents and documents
// whose root is not a mapping become an empty mapping. A stream with more
// than one non-empty document is rejected.
func decodeTree(data []byte) (*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return emptyMapping(), nil
	}

	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, err
	}
	docs := 0
	for _, doc := range file.Docs {
		if doc != nil && doc.Body != nil {
			docs++
		}
	}
	if docs > 1 {
		return nil, fmt.Errorf("%w (%d found)", ErrMultipleDocuments, docs)
	}

	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		if errors.Is(err, io.EOF) {
			return emptyMapping(), nil
		}
		return nil, err
	}
	root := fromValue(raw)
	if !root.IsMapping() {
		return emptyMapping(), nil
	}
	return root, nil
}

func fromValue(v any) *Node {
	switch val := v.(type) {
	case nil:
		return &Node{Kind: KindNull}
	case yaml.MapSlice:
		n := &Node{Kind: KindMapping, Pairs: make([]Pair, 0, len(val))}
		for _, item := range val {
			n.Pairs = append(n.Pairs, Pair{Key: scalarString(item.Key), Value: fromValue(item.Value)})
		}
		return n
	case []any:
		n := &Node{Kind: KindSequence, Items: make([]*Node, 0, len(val))}
		for _, item := range val {
			n.Items = append(n.Items, fromValue(item))
		}
		return n
	default:
		return &Node{Kind: KindString, Str: scalarString(val)}
	}
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
