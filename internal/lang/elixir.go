package lang

func init() {
	Register(&LanguageSpec{
		Language:          Elixir,
		FileExtensions:    []string{".ex", ".exs"},
		LineCommentPrefix: "#",
		// Everything is a macro call in quoted form; defmodule is the only
		// module-defining form the rules care about.
		ModuleNodeTypes:   []string{"defmodule"},
		TestModuleSuffix:  "Test",
		DebugCallModule:   "IO",
		DebugCallFunction: "inspect",
		IgnoreDirs:        []string{"_build", "deps", ".elixir_ls", ".lexical", "cover", ".fetch"},
	})
}
