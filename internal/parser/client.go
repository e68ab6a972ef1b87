// Package parser runs the external Elixir translator on one file at a time
// and decodes its JSON output into a syntax tree.
//
// The translator is `elixir parse.exs <file>`. It is trusted: its output is
// decoded without validation beyond JSON well-formedness. Every run is
// bounded by a wall-clock timeout after which the process is killed.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/DeusData/elixir-analyzer/internal/ast"
)

const (
	// DefaultTimeout bounds a single translator run.
	DefaultTimeout = 30 * time.Second
	// DefaultExecutable is looked up on PATH.
	DefaultExecutable = "elixir"

	// waitDelay bounds how long output pipes are drained after the
	// process was killed.
	waitDelay = 2 * time.Second
)

// Result is the decoded translator output for one file.
type Result struct {
	AST    *ast.Node   `json:"ast"`
	Tokens []ast.Token `json:"tokens,omitempty"`
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Executable string
	ScriptPath string
	Timeout    time.Duration
}

// Client invokes the translator. It holds no per-file state and is safe for
// concurrent use.
type Client struct {
	executable string
	script     string
	timeout    time.Duration
}

// New creates a Client.
func New(opts Options) *Client {
	c := &Client{
		executable: opts.Executable,
		script:     opts.ScriptPath,
		timeout:    opts.Timeout,
	}
	if c.executable == "" {
		c.executable = DefaultExecutable
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c
}

// Timeout returns the per-file timeout in effect.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Fingerprint identifies the translator: the executable and a digest of the
// script it runs. Cached output is only valid for the same fingerprint.
func (c *Client) Fingerprint() string {
	return c.executable + "|" + scriptDigest(c.script)
}

// Parse runs the translator on path. A failed run returns a *ParseError
// wrapping ErrTimeout, ErrExit, ErrLaunch or ErrDecode; cancellation of ctx
// is returned as ctx.Err().
func (c *Client) Parse(ctx context.Context, path string) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	ctx, span := startParseSpan(ctx, abs)
	defer span.End()

	start := time.Now()
	res, err := c.run(ctx, abs)
	recordParseMetrics(ctx, time.Since(start), failureCause(err))

	tokens := 0
	if res != nil {
		tokens = len(res.Tokens)
	}
	setParseSpanResult(span, tokens, err)
	return res, err
}

func (c *Client) run(ctx context.Context, abs string) (*Result, error) {
	script := c.script
	if script == "" {
		script = ScriptPath()
	}

	cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, c.executable, script, abs)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if err := c.runError(abs, runErr, ctx.Err(), cmdCtx.Err(), stderr.String()); err != nil {
		return nil, err
	}

	tree, tokens, err := ast.ParseDocument(stdout.Bytes())
	if err != nil {
		return nil, &ParseError{
			File:   abs,
			Stderr: stderr.String(),
			Err:    fmt.Errorf("%w: %v", ErrDecode, err),
		}
	}
	return &Result{AST: tree, Tokens: tokens}, nil
}

// runError classifies the outcome of one translator run. A run that
// exited cleanly is a success even when the deadline passed afterwards.
func (c *Client) runError(abs string, err, parentErr, cmdErr error, stderr string) error {
	if err == nil {
		return nil
	}
	if parentErr != nil {
		return parentErr
	}
	if errors.Is(cmdErr, context.DeadlineExceeded) {
		return &ParseError{
			File:   abs,
			Stderr: stderr,
			Err:    fmt.Errorf("%w after %s", ErrTimeout, c.timeout),
		}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ParseError{
			File:   abs,
			Stderr: stderr,
			Err:    fmt.Errorf("%w (status %d)", ErrExit, exitErr.ExitCode()),
		}
	}
	return &ParseError{
		File:   abs,
		Stderr: stderr,
		Err:    fmt.Errorf("%w: %v", ErrLaunch, err),
	}
}

// failureCause names err for metric attributes; empty on success.
func failureCause(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrExit):
		return "exit"
	case errors.Is(err, ErrLaunch):
		return "launch"
	case errors.Is(err, ErrDecode):
		return "decode"
	}
	return "canceled"
}
