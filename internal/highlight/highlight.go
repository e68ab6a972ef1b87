// Package highlight derives highlighting tokens from Elixir source with the
// tree-sitter-elixir grammar. It is used when the translator does not emit
// tokens of its own.
package highlight

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_elixir "github.com/tree-sitter/tree-sitter-elixir/bindings/go"

	"github.com/DeusData/elixir-analyzer/internal/ast"
)

var (
	languageOnce sync.Once
	language     *tree_sitter.Language
	parserPool   *sync.Pool
)

func initLanguage() {
	languageOnce.Do(func() {
		language = tree_sitter.NewLanguage(tree_sitter_elixir.Language())
		parserPool = &sync.Pool{
			New: func() any {
				p := tree_sitter.NewParser()
				if err := p.SetLanguage(language); err != nil {
					panic(fmt.Sprintf("set language: %v", err))
				}
				return p
			},
		}
	})
}

// parse parses Elixir source into a tree-sitter tree. The caller must close it.
func parse(source []byte) (*tree_sitter.Tree, error) {
	initLanguage()

	p, _ := parserPool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to get elixir parser")
	}
	tree := p.Parse(source, nil)
	parserPool.Put(p)

	if tree == nil {
		return nil, fmt.Errorf("parse failed for elixir source")
	}
	return tree, nil
}

// walkFunc is called for each node during traversal.
// Return false to skip children.
type walkFunc func(node *tree_sitter.Node) bool

func walk(node *tree_sitter.Node, fn walkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			walk(child, fn)
		}
	}
}

func nodeText(node *tree_sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// keywordCalls are call targets shown as keywords.
var keywordCalls = map[string]bool{
	"defmodule": true, "def": true, "defp": true, "defmacro": true, "defmacrop": true,
	"defstruct": true, "defprotocol": true, "defimpl": true, "defexception": true,
	"defdelegate": true, "defguard": true, "defguardp": true, "defoverridable": true,
	"case": true, "cond": true, "with": true, "if": true, "unless": true,
	"receive": true, "try": true, "for": true, "quote": true, "unquote": true,
	"import": true, "require": true, "alias": true, "use": true, "raise": true,
	"reraise": true, "throw": true,
}

// keywordNodes are anonymous grammar nodes shown as keywords.
var keywordNodes = map[string]bool{
	"do": true, "end": true, "fn": true, "after": true, "else": true,
	"catch": true, "rescue": true, "when": true, "and": true, "or": true,
	"not": true, "in": true,
}

var constantNodes = map[string]bool{
	"atom": true, "quoted_atom": true, "boolean": true, "nil": true,
	"integer": true, "float": true, "char": true, "alias": true,
}

var stringNodes = map[string]bool{
	"string": true, "charlist": true, "sigil": true,
}

var docAttributes = map[string]bool{
	"moduledoc": true, "doc": true, "typedoc": true,
}

// Tokens returns highlighting tokens for source in document order.
func Tokens(source []byte) ([]ast.Token, error) {
	if len(source) == 0 {
		return nil, nil
	}
	tree, err := parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var tokens []ast.Token
	walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		kind := n.Kind()
		switch {
		case kind == "comment":
			tokens = append(tokens, span(ast.TokenComment, n, n))
			return false
		case stringNodes[kind]:
			tokens = append(tokens, span(ast.TokenString, n, n))
			return false
		case constantNodes[kind]:
			tokens = append(tokens, span(ast.TokenConstant, n, n))
			return false
		case kind == "unary_operator":
			return !attribute(n, source, &tokens)
		case kind == "call":
			if target := n.ChildByFieldName("target"); target != nil && target.Kind() == "identifier" &&
				keywordCalls[nodeText(target, source)] {
				tokens = append(tokens, span(ast.TokenKeyword, target, target))
			}
			return true
		case !n.IsNamed() && keywordNodes[kind]:
			tokens = append(tokens, span(ast.TokenKeyword, n, n))
			return false
		}
		return true
	})
	return tokens, nil
}

// attribute emits tokens for a module attribute (@name value). Documentation
// attributes mark their string as a structured comment. It reports whether
// the node was fully handled.
func attribute(n *tree_sitter.Node, source []byte, tokens *[]ast.Token) bool {
	at := n.Child(0)
	operand := n.ChildByFieldName("operand")
	if at == nil || at.Kind() != "@" || operand == nil {
		return false
	}

	name := operand
	var args *tree_sitter.Node
	if operand.Kind() == "call" {
		if target := operand.ChildByFieldName("target"); target != nil {
			name = target
		}
		for i := uint(0); i < operand.ChildCount(); i++ {
			if c := operand.Child(i); c != nil && c.Kind() == "arguments" {
				args = c
			}
		}
	}
	if name.Kind() != "identifier" {
		return false
	}
	*tokens = append(*tokens, span(ast.TokenAnnotation, at, name))

	if args == nil {
		return true
	}
	doc := docAttributes[nodeText(name, source)]
	for i := uint(0); i < args.ChildCount(); i++ {
		c := args.Child(i)
		if c == nil {
			continue
		}
		switch {
		case doc && stringNodes[c.Kind()]:
			*tokens = append(*tokens, span(ast.TokenStructuredComment, c, c))
		case stringNodes[c.Kind()]:
			*tokens = append(*tokens, span(ast.TokenString, c, c))
		case constantNodes[c.Kind()]:
			*tokens = append(*tokens, span(ast.TokenConstant, c, c))
		}
	}
	return true
}

// span converts tree-sitter positions (0-based, end exclusive) to a token
// with 1-based lines and columns whose EndCol points one past the last
// character.
func span(typ string, from, to *tree_sitter.Node) ast.Token {
	start := from.StartPosition()
	end := to.EndPosition()
	return ast.Token{
		Type:    typ,
		Line:    safeRowToLine(start.Row),
		Col:     safeRowToLine(start.Column),
		EndLine: safeRowToLine(end.Row),
		EndCol:  safeRowToLine(end.Column),
	}
}

func safeRowToLine(row uint) int {
	const maxInt = int(^uint(0) >> 1)
	if row > uint(maxInt-1) {
		return maxInt
	}
	return int(row) + 1
}
