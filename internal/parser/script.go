package parser

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

//go:embed tools/parse.exs
var parseScript []byte

// fallbackScript is used when the embedded script cannot be written out.
var fallbackScript = filepath.Join("tools", "parse.exs")

// extracted is set once the embedded script has been written out.
var extracted atomic.Bool

// embeddedScriptPath materializes the embedded translator script once per
// process. The file lives until RemoveScript.
var embeddedScriptPath = sync.OnceValues(func() (string, error) {
	f, err := os.CreateTemp("", "elixir-analyzer-parse-*.exs")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(parseScript); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	extracted.Store(true)
	return f.Name(), nil
})

// RemoveScript deletes the extracted translator script, if any. Call it once
// at process exit; later parses fall back to a missing file.
func RemoveScript() error {
	if !extracted.Load() {
		return nil
	}
	p, err := embeddedScriptPath()
	if err != nil {
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ScriptPath returns the translator script location: the extracted
// embedded copy, or tools/parse.exs relative to the working directory.
func ScriptPath() string {
	p, err := embeddedScriptPath()
	if err != nil {
		return fallbackScript
	}
	return p
}

// scriptDigest hashes the script at path, or the embedded script when path
// is empty. An unreadable script hashes its path.
func scriptDigest(path string) string {
	data := parseScript
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "path:" + path
		}
		data = b
	}
	return strconv.FormatUint(xxh3.Hash(data), 16)
}
