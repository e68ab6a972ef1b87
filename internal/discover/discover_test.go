package discover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DeusData/elixir-analyzer/internal/lang"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverBasic(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "lib", "app.ex"), "defmodule App do\nend\n")
	writeFile(t, filepath.Join(dir, "test", "app_test.exs"), "defmodule AppTest do\nend\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# app\n")

	files, err := Discover(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].RelPath != "lib/app.ex" || files[1].RelPath != "test/app_test.exs" {
		t.Fatalf("unexpected order: %s, %s", files[0].RelPath, files[1].RelPath)
	}
	for _, f := range files {
		if f.Path == "" {
			t.Error("expected non-empty Path")
		}
		if f.Language != lang.Elixir {
			t.Errorf("Language = %q, want elixir", f.Language)
		}
	}
}

func TestDiscoverSkipsBuildAndDeps(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "lib", "app.ex"), "")
	writeFile(t, filepath.Join(dir, "_build", "dev", "lib", "gen.ex"), "")
	writeFile(t, filepath.Join(dir, "deps", "jason", "lib", "jason.ex"), "")
	writeFile(t, filepath.Join(dir, ".elixir_ls", "x.ex"), "")

	files, err := Discover(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "lib/app.ex" {
		t.Fatalf("expected only lib/app.ex, got %v", files)
	}
}

func TestDiscoverIgnoreFileAndExclude(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "lib", "app.ex"), "")
	writeFile(t, filepath.Join(dir, "lib", "generated", "schema.ex"), "")
	writeFile(t, filepath.Join(dir, "priv", "repo", "seeds.exs"), "")
	writeFile(t, filepath.Join(dir, IgnoreFileName), "# comment\ngenerated\n")

	files, err := Discover(context.Background(), dir, &Options{Exclude: []string{"*.exs"}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "lib/app.ex" {
		t.Fatalf("expected only lib/app.ex, got %v", files)
	}
}

func TestDiscoverCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.ex"), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // pre-cancel

	_, err := Discover(ctx, dir, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	ex := filepath.Join(dir, "lib", "a.ex")
	writeFile(t, ex, "")

	files, err := Files(dir, []string{ex, filepath.Join(dir, "notes.txt")})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].RelPath != "lib/a.ex" {
		t.Errorf("RelPath = %q, want lib/a.ex", files[0].RelPath)
	}
}
