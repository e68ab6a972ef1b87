package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DeusData/elixir-analyzer/internal/parser"
	"github.com/DeusData/elixir-analyzer/internal/rules"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	cfg := Load(t.TempDir())
	if cfg.EffectiveTimeout() != parser.DefaultTimeout {
		t.Errorf("timeout = %s", cfg.EffectiveTimeout())
	}
	if cfg.EffectiveMaxModuleLines() != rules.DefaultMaxModuleLines {
		t.Errorf("max lines = %d", cfg.EffectiveMaxModuleLines())
	}
	if !cfg.EffectiveFallback() {
		t.Error("fallback should default to true")
	}
	if cfg.Cache.Path != "" {
		t.Error("cache should default to off")
	}
}

func TestLoadFull(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
translator:
  executable: /opt/elixir/bin/elixir
  script: tools/parse.exs
  timeout: 5s
rules:
  disabled: [S003]
  large_module:
    max_lines: 300
discover:
  exclude: ["priv/**", "*_generated.ex"]
cache:
  path: .elixir-analyzer/cache.db
highlight:
  fallback: false
`)
	cfg := Load(dir)
	if cfg.EffectiveTimeout() != 5*time.Second {
		t.Errorf("timeout = %s", cfg.EffectiveTimeout())
	}
	if cfg.EffectiveMaxModuleLines() != 300 {
		t.Errorf("max lines = %d", cfg.EffectiveMaxModuleLines())
	}
	if cfg.EffectiveFallback() {
		t.Error("fallback should be off")
	}
	if len(cfg.Discover.Exclude) != 2 {
		t.Errorf("exclude = %v", cfg.Discover.Exclude)
	}

	opts := cfg.ParserOptions()
	if opts.Executable != "/opt/elixir/bin/elixir" || opts.ScriptPath != filepath.Join(dir, "tools", "parse.exs") {
		t.Errorf("parser options = %+v", opts)
	}
	ro := cfg.RuleOptions()
	if ro.MaxModuleLines != 300 || len(ro.Disabled) != 1 || ro.Disabled[0] != "S003" {
		t.Errorf("rule options = %+v", ro)
	}
	if got := cfg.CachePath(); got != filepath.Join(dir, ".elixir-analyzer", "cache.db") {
		t.Errorf("cache path = %q", got)
	}

	po := cfg.PipelineOptions(4)
	if po.Workers != 4 || po.Fallback || len(po.Exclude) != 2 || po.Rules.MaxModuleLines != 300 {
		t.Errorf("pipeline options = %+v", po)
	}
}

func TestAbsolutePathsKept(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "cache:\n  path: /var/cache/ea.db\n")
	if got := Load(dir).CachePath(); got != "/var/cache/ea.db" {
		t.Errorf("cache path = %q", got)
	}
}

func TestLoadInvalidYAMLUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "rules: [unclosed\n")
	cfg := Load(dir)
	if len(cfg.Rules.Disabled) != 0 {
		t.Error("expected defaults")
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}

	writeConfig(t, dir, "translator:\n  timeout: soon\n")
	if _, err := LoadFile(filepath.Join(dir, FileName)); err == nil {
		t.Error("expected error for bad duration")
	}

	writeConfig(t, dir, "rules:\n  disabled: [S999]\n")
	if _, err := LoadFile(filepath.Join(dir, FileName)); err == nil {
		t.Error("expected error for unknown rule")
	}
}
