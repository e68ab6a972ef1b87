package rules

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// moduleJSON builds a defmodule whose only function sits on lastLine.
func moduleJSON(name string, startLine, lastLine int) string {
	parts := strings.Split(name, ".")
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + p + `"`
	}
	return fmt.Sprintf(`{"tuple":["defmodule",{"line":%d},[
{"tuple":["__aliases__",{"line":%d},[%s]]},
{"do":{"tuple":["def",{"line":%d},
[{"tuple":["some_func",{"line":%d},null]},{"do":"ok"}]]}}]]}`,
		startLine, startLine, strings.Join(quoted, ","), lastLine, lastLine)
}

func TestLargeModuleKey(t *testing.T) {
	assert.Equal(t, "S002", NewLargeModule(0).Key())
}

func TestLargeModuleSmall(t *testing.T) {
	assert.Empty(t, NewLargeModule(10).Detect(parse(t, moduleJSON("Small", 1, 3))))
}

func TestLargeModuleDetects(t *testing.T) {
	findings := NewLargeModule(200).Detect(parse(t, moduleJSON("MyApp.KitchenSink", 1, 250)))
	require.Len(t, findings, 1)
	assert.Equal(t, "MyApp.KitchenSink has 251 lines (max 200)", findings[0].Message)
	assert.Equal(t, 1, findings[0].Line)
}

func TestLargeModuleThresholdIsStrict(t *testing.T) {
	tree := parse(t, moduleJSON("Borderline", 1, 10))

	findings := NewLargeModule(10).Detect(tree)
	require.Len(t, findings, 1)
	assert.Equal(t, "Borderline has 11 lines (max 10)", findings[0].Message)

	assert.Empty(t, NewLargeModule(11).Detect(tree))
}

func TestLargeModuleDefaultThreshold(t *testing.T) {
	assert.Equal(t, 500, DefaultMaxModuleLines)
	assert.Equal(t, DefaultMaxModuleLines, NewLargeModule(0).MaxLines)
	assert.Equal(t, DefaultMaxModuleLines, NewLargeModule(-5).MaxLines)

	assert.Empty(t, LargeModule{}.Detect(parse(t, moduleJSON("Big", 1, 499))))
	assert.Len(t, LargeModule{}.Detect(parse(t, moduleJSON("Big", 1, 500))), 1)
}

func TestLargeModuleMultiple(t *testing.T) {
	tree := parse(t, `{"tuple":["__block__",[],[`+
		moduleJSON("First", 1, 100)+","+moduleJSON("Second", 110, 220)+`]]}`)

	findings := NewLargeModule(10).Detect(tree)
	require.Len(t, findings, 2)
	assert.True(t, strings.HasPrefix(findings[0].Message, "First "))
	assert.True(t, strings.HasPrefix(findings[1].Message, "Second "))
	assert.Equal(t, 110, findings[1].Line)
}

func TestLargeModuleSkipsUnlocated(t *testing.T) {
	tree := parse(t, `{"tuple":["defmodule",[],[
{"tuple":["__aliases__",[],["Foo"]]},{"do":{"tuple":["def",{"line":900},null]}}]]}`)
	assert.Empty(t, NewLargeModule(10).Detect(tree))
}
