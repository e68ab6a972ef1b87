package lang

// Language represents a supported source language.
type Language string

const (
	Elixir Language = "elixir"
)

// AllLanguages returns all supported languages.
func AllLanguages() []Language {
	return []Language{Elixir}
}

// LanguageSpec describes how files of a language are recognized and which
// translator-side node kinds matter to the analyzer.
type LanguageSpec struct {
	Language       Language
	FileExtensions []string

	// LineCommentPrefix starts a single-line comment (size metrics).
	LineCommentPrefix string
	// ModuleNodeTypes lists node kinds that define a module.
	ModuleNodeTypes []string
	// TestModuleSuffix marks modules that hold tests rather than code.
	TestModuleSuffix string
	// DebugCallModule and DebugCallFunction name the debugging helper
	// that should not be left in committed code.
	DebugCallModule   string
	DebugCallFunction string
	// IgnoreDirs lists build-output and dependency directories.
	IgnoreDirs []string
}

// registry maps file extensions to language specs.
var registry = map[string]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".ex").
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language.
func ForLanguage(lang Language) *LanguageSpec {
	for _, spec := range registry {
		if spec.Language == lang {
			return spec
		}
	}
	return nil
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}
