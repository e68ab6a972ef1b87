package rules

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remote(mod, fun string, line int, args string) string {
	l := strconv.Itoa(line)
	return `{"tuple":[{"tuple":[".",{"line":` + l + `},
[{"tuple":["__aliases__",{"line":` + l + `},["` + mod + `"]]},"` + fun + `"]]},
{"line":` + l + `},[` + args + `]]}`
}

func pipe(line int, left, right string) string {
	return `{"tuple":["|>",{"line":` + strconv.Itoa(line) + `},[` + left + `,` + right + `]]}`
}

const nameVar = `{"tuple":["name",{"line":1},null]}`

func TestPipeChainStartKey(t *testing.T) {
	assert.Equal(t, "S003", PipeChainStart{}.Key())
}

func TestPipeChainStartRemoteCall(t *testing.T) {
	// String.trim(name) |> String.upcase()
	tree := parse(t, pipe(1, remote("String", "trim", 1, nameVar), remote("String", "upcase", 1, "")))
	findings := PipeChainStart{}.Detect(tree)
	require.Len(t, findings, 1)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, "Pipe chain should start with a raw value", findings[0].Message)
}

func TestPipeChainStartLocalCall(t *testing.T) {
	// foo(bar) |> baz()
	tree := parse(t, pipe(1,
		`{"tuple":["foo",{"line":1},[{"tuple":["bar",{"line":1},null]}]]}`,
		`{"tuple":["baz",{"line":1},[]]}`))
	assert.Equal(t, []int{1}, lines(PipeChainStart{}.Detect(tree)))
}

func TestPipeChainStartRawValues(t *testing.T) {
	right := remote("String", "upcase", 1, "")
	cases := map[string]string{
		"variable":  nameVar,
		"attribute": `{"tuple":["@",{"line":1},[{"tuple":["name",{"line":1},null]}]]}`,
		"literal":   `"hello"`,
		"list":      `[{"tuple":["a",{"line":1},null]},{"tuple":["b",{"line":1},null]}]`,
		"map":       `{"tuple":["%{}",{"line":1},[]]}`,
		"keywords":  `{"a":1}`,
		"case":      `{"tuple":["case",{"line":1},[{"tuple":["x",{"line":1},null]},{"do":[]}]]}`,
		"sigil":     `{"tuple":["sigil_w",{"line":1},[{"tuple":["<<>>",{"line":1},["a b"]]},[]]]}`,
		"special":   `{"tuple":["__MODULE__",{"line":1},[]]}`,
		"operator":  `{"tuple":["+",{"line":1},[1,2]]}`,
		"alias":     `{"tuple":["__aliases__",{"line":1},["Foo"]]}`,
	}
	for name, left := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, PipeChainStart{}.Detect(parse(t, pipe(1, left, right))))
		})
	}
}

func TestPipeChainStartVariableChain(t *testing.T) {
	// name |> String.trim() |> String.upcase()
	tree := parse(t, pipe(1,
		pipe(1, nameVar, remote("String", "trim", 1, "")),
		remote("String", "upcase", 1, "")))
	assert.Empty(t, PipeChainStart{}.Detect(tree))
}

func TestPipeChainStartNestedReportsOnce(t *testing.T) {
	// String.trim(name) |> String.downcase() |> String.upcase()
	tree := parse(t, pipe(1,
		pipe(1, remote("String", "trim", 1, nameVar), remote("String", "downcase", 1, "")),
		remote("String", "upcase", 1, "")))
	assert.Len(t, PipeChainStart{}.Detect(tree), 1)
}

func TestPipeChainStartLineFallback(t *testing.T) {
	tree := parse(t, pipe(4,
		`{"tuple":["foo",[],[{"tuple":["bar",[],null]}]]}`,
		`{"tuple":["baz",{"line":4},[]]}`))
	assert.Equal(t, []int{4}, lines(PipeChainStart{}.Detect(tree)))
}

func TestPipeChainStartBangAndPredicate(t *testing.T) {
	tree := parse(t, pipe(2,
		`{"tuple":["fetch!",{"line":2},[{"tuple":["x",{"line":2},null]}]]}`,
		`{"tuple":["valid?",{"line":2},[]]}`))
	assert.Len(t, PipeChainStart{}.Detect(tree), 1)
}

func TestPipeChainStartTooFewChildren(t *testing.T) {
	assert.Empty(t, PipeChainStart{}.Detect(parse(t, `{"tuple":["|>",{"line":1},[1]]}`)))
}
