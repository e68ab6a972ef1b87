package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusData/elixir-analyzer/internal/ast"
)

const sample = `defmodule Greeter do
  @moduledoc "Greets people."

  # say hello
  def greet(name) do
    "Hello #{name}"
  end
end
`

func byType(tokens []ast.Token, typ string) []ast.Token {
	var out []ast.Token
	for _, tok := range tokens {
		if tok.Type == typ {
			out = append(out, tok)
		}
	}
	return out
}

func TestTokensComment(t *testing.T) {
	tokens, err := Tokens([]byte(sample))
	require.NoError(t, err)

	comments := byType(tokens, ast.TokenComment)
	require.Len(t, comments, 1)
	assert.Equal(t, ast.Token{Type: ast.TokenComment, Line: 4, Col: 3, EndLine: 4, EndCol: 14}, comments[0])
}

func TestTokensKeywords(t *testing.T) {
	tokens, err := Tokens([]byte(sample))
	require.NoError(t, err)

	keywords := byType(tokens, ast.TokenKeyword)
	require.NotEmpty(t, keywords)
	assert.Equal(t, 1, keywords[0].Line)
	assert.Equal(t, 1, keywords[0].Col)
	assert.Equal(t, 10, keywords[0].EndCol)
}

func TestTokensModuledoc(t *testing.T) {
	tokens, err := Tokens([]byte(sample))
	require.NoError(t, err)

	annotations := byType(tokens, ast.TokenAnnotation)
	require.Len(t, annotations, 1)
	assert.Equal(t, 2, annotations[0].Line)
	assert.Equal(t, 3, annotations[0].Col)
	assert.Equal(t, 13, annotations[0].EndCol)

	docs := byType(tokens, ast.TokenStructuredComment)
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].Line)

	strs := byType(tokens, ast.TokenString)
	require.Len(t, strs, 1)
	assert.Equal(t, 6, strs[0].Line)
}

func TestTokensPositionsAreValid(t *testing.T) {
	tokens, err := Tokens([]byte(sample))
	require.NoError(t, err)
	for _, tok := range tokens {
		assert.True(t, ast.KnownTokenType(tok.Type), tok.Type)
		assert.GreaterOrEqual(t, tok.Line, 1)
		assert.GreaterOrEqual(t, tok.EndLine, tok.Line)
		if tok.EndLine == tok.Line {
			assert.Greater(t, tok.EndCol, tok.Col)
		}
	}
}

func TestTokensEmptySource(t *testing.T) {
	tokens, err := Tokens(nil)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
