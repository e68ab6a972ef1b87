package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Failure causes wrapped by ParseError.
var (
	ErrTimeout = errors.New("translator timed out")
	ErrExit    = errors.New("translator exited with error")
	ErrLaunch  = errors.New("translator could not be started")
	ErrDecode  = errors.New("translator output is not valid JSON")
)

// ParseError reports why a file could not be turned into a tree. Stderr
// holds whatever the translator wrote to its error stream.
type ParseError struct {
	File   string
	Stderr string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse %s: %v", e.File, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, ": %s", firstLine(s))
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
