package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveWebDir_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	if got := resolveWebDir(dir); got != dir {
		t.Errorf("expected %s, got %s", dir, got)
	}
}

func TestResolveWebDir_MissingExplicitPath(t *testing.T) {
	if got := resolveWebDir(filepath.Join(t.TempDir(), "nope")); got != "" {
		t.Errorf("expected empty result, got %s", got)
	}
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	if !dirExists(dir) {
		t.Error("expected true for a directory")
	}

	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if dirExists(file) {
		t.Error("expected false for a regular file")
	}
	if dirExists(filepath.Join(dir, "missing")) {
		t.Error("expected false for a missing path")
	}
}
