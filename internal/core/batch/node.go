// Package batch concatenates lists of structured records into a single
// record whose tensor leaves are batched along their leading axis.
//
// Records are modeled as a closed tree of nodes: maps, lists, tuples,
// records (named tuples), nil placeholders, and tensor leaves. Batching a
// list of structurally identical records yields one record of the same
// shape where every leaf is the leading-axis concatenation of the
// corresponding leaves.
package batch

import (
	"fmt"
	"sort"

	"github.com/emer/etable/etensor"

	"github.com/elefant-ai/actionspace/internal/errors"
)

// Kind identifies the variant a Node holds.
type Kind int

const (
	// KindNil is a placeholder that batches to itself.
	KindNil Kind = iota
	// KindMap holds string-keyed child nodes.
	KindMap
	// KindList holds ordered child nodes of uniform role.
	KindList
	// KindTuple holds ordered child nodes of positional roles.
	KindTuple
	// KindRecord holds named, ordered child nodes.
	KindRecord
	// KindTensor is a leaf holding a float64 or int64 tensor.
	KindTensor
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindRecord:
		return "record"
	case KindTensor:
		return "tensor"
	}

	// This should be unreachable:
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Field is a named child of a record node. Order is significant.
type Field struct {
	Name string
	Node *Node
}

// Node is one vertex of a record tree. Construct with the variant
// constructors; the zero value is not valid.
type Node struct {
	kind    Kind
	entries map[string]*Node
	seq     []*Node
	fields  []Field
	f64     *etensor.Float64
	i64     *etensor.Int64
}

// Nil returns the placeholder node.
func Nil() *Node {
	return &Node{kind: KindNil}
}

// Map returns a map node over the given entries. The map is held by
// reference; callers must not mutate it afterwards.
func Map(entries map[string]*Node) *Node {
	return &Node{kind: KindMap, entries: entries}
}

// List returns a list node over the given children.
func List(nodes ...*Node) *Node {
	return &Node{kind: KindList, seq: nodes}
}

// Tuple returns a tuple node over the given children.
func Tuple(nodes ...*Node) *Node {
	return &Node{kind: KindTuple, seq: nodes}
}

// Record returns a record node over the given fields, preserving order.
func Record(fields ...Field) *Node {
	return &Node{kind: KindRecord, fields: fields}
}

// Float64Leaf returns a tensor leaf holding t.
func Float64Leaf(t *etensor.Float64) *Node {
	return &Node{kind: KindTensor, f64: t}
}

// Int64Leaf returns a tensor leaf holding t.
func Int64Leaf(t *etensor.Int64) *Node {
	return &Node{kind: KindTensor, i64: t}
}

// FromValue converts a dynamically typed value into a node tree.
//
// Supported values are nil, *Node (returned as-is), *etensor.Float64,
// *etensor.Int64, map[string]any, and []any.
//
// # Errors
//
// Any other type produces a CodeBatchUnsupportedLeaf error naming the
// offending Go type.
func FromValue(v any) (*Node, error) {
	switch val := v.(type) {
	case nil:
		return Nil(), nil
	case *Node:
		return val, nil
	case *etensor.Float64:
		return Float64Leaf(val), nil
	case *etensor.Int64:
		return Int64Leaf(val), nil
	case map[string]any:
		entries := make(map[string]*Node, len(val))
		for k, child := range val {
			node, err := FromValue(child)
			if err != nil {
				return nil, err
			}
			entries[k] = node
		}
		return Map(entries), nil
	case []any:
		nodes := make([]*Node, len(val))
		for i, child := range val {
			node, err := FromValue(child)
			if err != nil {
				return nil, err
			}
			nodes[i] = node
		}
		return List(nodes...), nil
	default:
		return nil, errors.Newf(errors.CodeBatchUnsupportedLeaf,
			"unsupported type %T: only float64 and int64 tensors are supported outside map, list, tuple, record, and nil nodes", v)
	}
}

// Kind reports the variant this node holds.
func (n *Node) Kind() Kind {
	return n.kind
}

// Len reports the number of direct children. Nil and tensor nodes have
// none.
func (n *Node) Len() int {
	switch n.kind {
	case KindMap:
		return len(n.entries)
	case KindList, KindTuple:
		return len(n.seq)
	case KindRecord:
		return len(n.fields)
	default:
		return 0
	}
}

// Key returns the child under the given key of a map node.
func (n *Node) Key(key string) (*Node, bool) {
	child, ok := n.entries[key]
	return child, ok
}

// Keys returns the keys of a map node in sorted order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.entries))
	for k := range n.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Index returns the i-th child of a list or tuple node. It panics if i
// is out of range, matching slice indexing semantics.
func (n *Node) Index(i int) *Node {
	return n.seq[i]
}

// Field returns the i-th field of a record node. It panics if i is out
// of range.
func (n *Node) Field(i int) Field {
	return n.fields[i]
}

// FieldNames returns the field names of a record node in declaration
// order.
func (n *Node) FieldNames() []string {
	names := make([]string, len(n.fields))
	for i, f := range n.fields {
		names[i] = f.Name
	}
	return names
}

// Float64 returns the float64 tensor of a tensor leaf, or nil when the
// node is not a float64 leaf.
func (n *Node) Float64() *etensor.Float64 {
	return n.f64
}

// Int64 returns the int64 tensor of a tensor leaf, or nil when the node
// is not an int64 leaf.
func (n *Node) Int64() *etensor.Int64 {
	return n.i64
}
