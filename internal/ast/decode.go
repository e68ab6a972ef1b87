package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// jsonValue is an order-preserving JSON value. encoding/json maps lose key
// order, and keyword lists must keep the order the translator wrote.
type jsonValue struct {
	kind  byte // 'z' null, 's' scalar, 'a' array, 'o' object
	text  string
	items []jsonValue
	keys  []string // object keys, parallel to items
}

func (v jsonValue) member(key string) (jsonValue, bool) {
	for i, k := range v.keys {
		if k == key {
			return v.items[i], true
		}
	}
	return jsonValue{}, false
}

// Parse decodes one JSON AST document into a tree. The only error is
// malformed JSON; unexpected shapes degrade to "unknown" or "nil" nodes.
func Parse(text string) (*Node, error) {
	v, err := readDocument([]byte(text))
	if err != nil {
		return nil, err
	}
	return fromJSON(v), nil
}

// ParseDocument decodes translator output. The output is either a plain AST
// document or an envelope {"ast": ..., "tokens": [...]} carrying
// highlighting tokens next to the tree. Any other object, including a
// keyword list that happens to have an "ast" key, decodes as a plain tree.
func ParseDocument(data []byte) (*Node, []Token, error) {
	v, err := readDocument(data)
	if err != nil {
		return nil, nil, err
	}
	if isEnvelope(v) {
		tree, _ := v.member("ast")
		var tokens []Token
		if raw, ok := v.member("tokens"); ok {
			tokens = tokensFromJSON(raw)
		}
		return fromJSON(tree), tokens, nil
	}
	return fromJSON(v), nil, nil
}

// isEnvelope reports whether v has exactly the key "ast", optionally
// followed by an array-valued "tokens".
func isEnvelope(v jsonValue) bool {
	if v.kind != 'o' || len(v.keys) == 0 || len(v.keys) > 2 || v.keys[0] != "ast" {
		return false
	}
	if len(v.keys) == 1 {
		return true
	}
	return v.keys[1] == "tokens" && v.items[1].kind == 'a'
}

func readDocument(data []byte) (jsonValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return jsonValue{}, fmt.Errorf("decode ast: empty document")
		}
		return jsonValue{}, fmt.Errorf("decode ast: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return jsonValue{}, fmt.Errorf("decode ast: trailing data after document")
	}
	return v, nil
}

func readValue(dec *json.Decoder) (jsonValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return jsonValue{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			v := jsonValue{kind: 'a'}
			for dec.More() {
				item, err := readValue(dec)
				if err != nil {
					return jsonValue{}, err
				}
				v.items = append(v.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return jsonValue{}, err
			}
			return v, nil
		case '{':
			v := jsonValue{kind: 'o'}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return jsonValue{}, err
				}
				key, _ := keyTok.(string)
				item, err := readValue(dec)
				if err != nil {
					return jsonValue{}, err
				}
				v.keys = append(v.keys, key)
				v.items = append(v.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return jsonValue{}, err
			}
			return v, nil
		}
		return jsonValue{}, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return jsonValue{kind: 's', text: t}, nil
	case json.Number:
		return jsonValue{kind: 's', text: t.String()}, nil
	case bool:
		return jsonValue{kind: 's', text: strconv.FormatBool(t)}, nil
	case nil:
		return jsonValue{kind: 'z'}, nil
	}
	return jsonValue{}, fmt.Errorf("unexpected token %v", tok)
}

func fromJSON(v jsonValue) *Node {
	switch v.kind {
	case 'z':
		return &Node{Kind: KindNil}
	case 's':
		return &Node{Kind: KindLiteral, Value: v.text, HasValue: true}
	case 'a':
		children := make([]*Node, 0, len(v.items))
		for _, item := range v.items {
			children = append(children, fromJSON(item))
		}
		return &Node{Kind: KindList, Children: children}
	case 'o':
		if tuple, ok := v.member("tuple"); ok && tuple.kind == 'a' && len(tuple.items) == 3 {
			return fromTuple(tuple.items[0], tuple.items[1], tuple.items[2])
		}
		return fromKeywordObject(v)
	}
	return &Node{Kind: KindUnknown}
}

func fromTuple(op, meta, args jsonValue) *Node {
	n := &Node{
		Kind:   operationKind(op),
		Line:   metaInt(meta, "line"),
		Column: metaInt(meta, "column"),
	}
	// The head of a call whose operation is itself an expression
	// (Mod.fun(...), anonymous calls) is kept as child 0.
	if n.Kind == KindNestedCall {
		n.Children = append(n.Children, fromJSON(op))
	}
	switch args.kind {
	case 'a':
		for _, item := range args.items {
			n.Children = append(n.Children, fromJSON(item))
		}
	case 'z':
	default:
		n.Children = append(n.Children, fromJSON(args))
	}
	return n
}

func fromKeywordObject(v jsonValue) *Node {
	pairs := make([]*Node, 0, len(v.keys))
	for i, key := range v.keys {
		val := fromJSON(v.items[i])
		pairs = append(pairs, &Node{
			Kind:     KindKeywordPair,
			Line:     val.Line,
			Column:   val.Column,
			Children: []*Node{val},
			Value:    key,
			HasValue: true,
		})
	}
	return &Node{Kind: KindKeywordList, Children: pairs}
}

func operationKind(op jsonValue) string {
	switch op.kind {
	case 's':
		return op.text
	case 'o':
		if _, ok := op.member("tuple"); ok {
			return KindNestedCall
		}
	}
	return KindUnknown
}

func metaInt(meta jsonValue, key string) int {
	if meta.kind != 'o' {
		return 0
	}
	v, ok := meta.member(key)
	if !ok || v.kind != 's' {
		return 0
	}
	return nonNegative(v.text)
}

func nonNegative(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			return 0
		}
		n = int(f)
	}
	if n < 0 {
		return 0
	}
	return n
}
