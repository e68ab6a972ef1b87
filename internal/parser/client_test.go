package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTranslator writes a shell script standing in for parse.exs and returns
// a Client that runs it with /bin/sh.
func fakeTranslator(t *testing.T, body string, timeout time.Duration) *Client {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	script := filepath.Join(t.TempDir(), "parse.sh")
	require.NoError(t, os.WriteFile(script, []byte(body), 0o600))
	return New(Options{Executable: "/bin/sh", ScriptPath: script, Timeout: timeout})
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.ex")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseSuccess(t *testing.T) {
	// The fake echoes the file, so the "source" is already JSON.
	c := fakeTranslator(t, `cat "$1"`, time.Second*5)
	path := writeSource(t, `{"ast":{"tuple":["defmodule",{"line":1,"column":1},null]},
		"tokens":[{"type":"keyword","line":1,"col":1,"end_line":1,"end_col":10}]}`)

	res, err := c.Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "defmodule", res.AST.Kind)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, "keyword", res.Tokens[0].Type)
}

func TestParsePassesAbsolutePath(t *testing.T) {
	c := fakeTranslator(t, `printf '"%s"' "$1"`, time.Second*5)
	path := writeSource(t, "")

	res, err := c.Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.AST.Value)
	assert.True(t, filepath.IsAbs(res.AST.Value))
}

func TestParseNonZeroExit(t *testing.T) {
	c := fakeTranslator(t, `echo "syntax error before: end" >&2; exit 3`, time.Second*5)
	path := writeSource(t, "defmodule Broken do")

	_, err := c.Parse(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExit)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, path, perr.File)
	assert.Contains(t, perr.Stderr, "syntax error")
	assert.Contains(t, err.Error(), "status 3")
}

func TestParseTimeout(t *testing.T) {
	c := fakeTranslator(t, `exec sleep 10`, 200*time.Millisecond)
	path := writeSource(t, "")

	start := time.Now()
	_, err := c.Parse(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestParseMalformedOutput(t *testing.T) {
	c := fakeTranslator(t, `printf '{"tuple":['`, time.Second*5)
	path := writeSource(t, "")

	_, err := c.Parse(context.Background(), path)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestParseLaunchFailure(t *testing.T) {
	c := New(Options{Executable: filepath.Join(t.TempDir(), "no-such-elixir"), ScriptPath: "parse.exs"})
	path := writeSource(t, "")

	_, err := c.Parse(context.Background(), path)
	assert.ErrorIs(t, err, ErrLaunch)
}

func TestParseCanceled(t *testing.T) {
	c := fakeTranslator(t, `cat "$1"`, time.Second*5)
	path := writeSource(t, "null")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Parse(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFailuresAreIsolated(t *testing.T) {
	// One bad file must not affect parsing of the next one.
	c := fakeTranslator(t, `case "$1" in *bad.ex) exit 1;; esac; cat "$1"`, time.Second*5)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.ex")
	good := filepath.Join(dir, "good.ex")
	require.NoError(t, os.WriteFile(bad, []byte("null"), 0o600))
	require.NoError(t, os.WriteFile(good, []byte(`{"tuple":["foo",{"line":2},null]}`), 0o600))

	_, err := c.Parse(context.Background(), bad)
	require.ErrorIs(t, err, ErrExit)

	res, err := c.Parse(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, 2, res.AST.Line)
}

func TestDefaults(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, DefaultExecutable, c.executable)
	assert.Equal(t, DefaultTimeout, c.Timeout())
}

func TestScriptPathExtractedOnce(t *testing.T) {
	first := ScriptPath()
	second := ScriptPath()
	assert.Equal(t, first, second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, parseScript, data)
}

func TestFingerprint(t *testing.T) {
	a := New(Options{})
	b := New(Options{Executable: "/usr/local/bin/elixir"})
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Fingerprint(), New(Options{}).Fingerprint())

	script := filepath.Join(t.TempDir(), "parse.exs")
	require.NoError(t, os.WriteFile(script, []byte("IO.puts(1)"), 0o600))
	c := New(Options{ScriptPath: script})
	before := c.Fingerprint()
	require.NoError(t, os.WriteFile(script, []byte("IO.puts(2)"), 0o600))
	assert.NotEqual(t, before, c.Fingerprint())
}

func TestRunErrorCleanExitBeatsDeadline(t *testing.T) {
	c := New(Options{Timeout: time.Millisecond})

	// The process exited 0; the deadline passing before the check is not a timeout.
	assert.NoError(t, c.runError("/x.ex", nil, nil, context.DeadlineExceeded, ""))

	err := c.runError("/x.ex", errors.New("signal: killed"), nil, context.DeadlineExceeded, "partial")
	assert.ErrorIs(t, err, ErrTimeout)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "partial", perr.Stderr)

	assert.ErrorIs(t, c.runError("/x.ex", errors.New("killed"), context.Canceled, context.Canceled, ""), context.Canceled)
	assert.ErrorIs(t, c.runError("/x.ex", errors.New("exec: not found"), nil, nil, ""), ErrLaunch)
}
