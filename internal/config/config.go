package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DeusData/elixir-analyzer/internal/parser"
	"github.com/DeusData/elixir-analyzer/internal/pipeline"
	"github.com/DeusData/elixir-analyzer/internal/rules"
)

// FileName is the project configuration file looked up in the root.
const FileName = ".elixir-analyzer.yml"

// Config holds user-overridable analyzer settings.
type Config struct {
	Translator TranslatorConfig `yaml:"translator"`
	Rules      RulesConfig      `yaml:"rules"`
	Discover   DiscoverConfig   `yaml:"discover"`
	Cache      CacheConfig      `yaml:"cache"`
	Highlight  HighlightConfig  `yaml:"highlight"`

	// dir is where the file was loaded from; relative paths resolve
	// against it.
	dir string
}

// TranslatorConfig controls how the external parser is run.
type TranslatorConfig struct {
	// Executable defaults to "elixir" on PATH.
	Executable string `yaml:"executable"`
	// Script overrides the embedded parse.exs.
	Script string `yaml:"script"`
	// Timeout is a Go duration string such as "30s".
	Timeout string `yaml:"timeout"`
}

// RulesConfig selects and tunes rules.
type RulesConfig struct {
	Disabled    []string          `yaml:"disabled"`
	LargeModule LargeModuleConfig `yaml:"large_module"`
}

// LargeModuleConfig tunes the module size rule.
type LargeModuleConfig struct {
	MaxLines *int `yaml:"max_lines"`
}

// DiscoverConfig adds exclusions on top of the built-in ones.
type DiscoverConfig struct {
	Exclude []string `yaml:"exclude"`
}

// CacheConfig enables the parse cache. An empty path leaves it off.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// HighlightConfig controls the tree-sitter fallback.
type HighlightConfig struct {
	// Fallback derives tokens locally when the translator sends none.
	// Default: true.
	Fallback *bool `yaml:"fallback"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{}
}

// Load reads FileName from dir. A missing or invalid file yields defaults.
func Load(dir string) *Config {
	cfg, err := LoadFile(filepath.Join(dir, FileName))
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// LoadFile reads a configuration file and reports why it could not be used.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	cfg.dir = filepath.Dir(path)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := cfg.timeout(); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	for _, key := range cfg.Rules.Disabled {
		if _, ok := rules.Lookup(key); !ok {
			return nil, fmt.Errorf("parse config %s: unknown rule %q", path, key)
		}
	}
	return cfg, nil
}

func (c *Config) timeout() (time.Duration, error) {
	if c.Translator.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Translator.Timeout)
	if err != nil {
		return 0, fmt.Errorf("translator.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("translator.timeout: must be positive, got %s", d)
	}
	return d, nil
}

// EffectiveTimeout returns the configured translator timeout, or
// parser.DefaultTimeout if not set.
func (c *Config) EffectiveTimeout() time.Duration {
	d, err := c.timeout()
	if err != nil || d == 0 {
		return parser.DefaultTimeout
	}
	return d
}

// EffectiveMaxModuleLines returns the configured module size threshold, or
// rules.DefaultMaxModuleLines if not set.
func (c *Config) EffectiveMaxModuleLines() int {
	if m := c.Rules.LargeModule.MaxLines; m != nil && *m > 0 {
		return *m
	}
	return rules.DefaultMaxModuleLines
}

// EffectiveFallback returns whether tree-sitter highlighting is enabled,
// default true.
func (c *Config) EffectiveFallback() bool {
	if c.Highlight.Fallback != nil {
		return *c.Highlight.Fallback
	}
	return true
}

// RuleOptions converts the rules section.
func (c *Config) RuleOptions() rules.Options {
	return rules.Options{
		MaxModuleLines: c.EffectiveMaxModuleLines(),
		Disabled:       c.Rules.Disabled,
	}
}

// ParserOptions converts the translator section.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		Executable: c.Translator.Executable,
		ScriptPath: c.resolve(c.Translator.Script),
		Timeout:    c.EffectiveTimeout(),
	}
}

// CachePath returns the parse cache location, or "" when caching is off.
func (c *Config) CachePath() string {
	return c.resolve(c.Cache.Path)
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// PipelineOptions converts the rules, discover and highlight sections.
// workers <= 0 selects one worker per CPU.
func (c *Config) PipelineOptions(workers int) pipeline.Options {
	return pipeline.Options{
		Workers:  workers,
		Rules:    c.RuleOptions(),
		Exclude:  c.Discover.Exclude,
		Fallback: c.EffectiveFallback(),
	}
}
