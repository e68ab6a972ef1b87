// Package ast holds the generic syntax tree decoded from the translator's
// JSON encoding of Elixir quoted expressions.
//
// Every construct arrives as a tagged tuple {operation, metadata, arguments}
// and is decoded into a Node whose Kind is the operation. Keyword lists such
// as [do: body] arrive as JSON objects and become "keyword_list" nodes with
// one "keyword_pair" child per entry.
package ast

import "strings"

// Node kinds produced by the decoder itself. Every other kind is the
// operation symbol of a tagged tuple ("defmodule", "|>", "@", ...).
const (
	KindBlock       = "__block__"
	KindAliases     = "__aliases__"
	KindKeywordList = "keyword_list"
	KindKeywordPair = "keyword_pair"
	KindLiteral     = "literal"
	KindNil         = "nil"
	KindList        = "list"
	KindUnknown     = "unknown"
	KindNestedCall  = "nested_call"
)

// Node is one syntax tree node. A tree is built bottom-up by the decoder and
// must not be mutated afterwards; rules only read it.
type Node struct {
	Kind     string  `json:"kind"`
	Line     int     `json:"line,omitempty"`   // 1-based, 0 when absent
	Column   int     `json:"column,omitempty"` // 1-based, 0 when absent
	Children []*Node `json:"children,omitempty"`
	// Value carries the textual payload of literals and the key of keyword
	// pairs. HasValue distinguishes an empty payload from no payload.
	Value    string `json:"value,omitempty"`
	HasValue bool   `json:"has_value,omitempty"`
}

// Visitor is called once per node by Walk.
type Visitor func(n *Node)

// Walk visits n and all of its descendants depth-first, pre-order.
func (n *Node) Walk(fn Visitor) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindAll returns every node in the subtree rooted at n (n included) whose
// Kind equals kind, in pre-order.
func (n *Node) FindAll(kind string) []*Node {
	var out []*Node
	n.Walk(func(c *Node) {
		if c.Kind == kind {
			out = append(out, c)
		}
	})
	return out
}

// Keyword returns the value of the first keyword pair with the given key.
// It reports false when n is not a keyword list or the key is absent.
func (n *Node) Keyword(key string) (*Node, bool) {
	if n == nil || n.Kind != KindKeywordList {
		return nil, false
	}
	for _, c := range n.Children {
		if c.Kind != KindKeywordPair || !c.HasValue || c.Value != key {
			continue
		}
		if len(c.Children) == 0 {
			return nil, false
		}
		return c.Children[0], true
	}
	return nil, false
}

// BlockChildren returns the expressions of a block body. A body holding a
// single expression is not wrapped in __block__, so any other node is
// returned as a one-element slice.
func (n *Node) BlockChildren() []*Node {
	if n.Kind == KindBlock {
		return n.Children
	}
	return []*Node{n}
}

// MaxLine returns the largest line number found anywhere in the subtree.
func (n *Node) MaxLine() int {
	line := n.Line
	for _, c := range n.Children {
		if l := c.MaxLine(); l > line {
			line = l
		}
	}
	return line
}

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// AliasParts returns the identifier segments of an __aliases__ node,
// skipping children without a textual value.
func (n *Node) AliasParts() []string {
	if n == nil || n.Kind != KindAliases {
		return nil
	}
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		if c.HasValue {
			parts = append(parts, c.Value)
		}
	}
	return parts
}

// AliasName joins the alias path with dots (MyApp.Accounts.User).
func (n *Node) AliasName() (string, bool) {
	parts := n.AliasParts()
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "."), true
}
