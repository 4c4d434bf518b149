package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// Real FS Tests
//
// These tests verify our Real implementation's helper methods work correctly.
// We're NOT testing os.ReadFile, os.ReadDir etc (that's Go's job).
// We ARE testing WriteFileAtomic(), our atomic write wrapper.
// =============================================================================

// TestReal_WriteFileAtomic_FailsWhenParentMissing verifies that the atomic
// write does not create directories on its own; callers go through MkdirAll.
func TestReal_WriteFileAtomic_FailsWhenParentMissing(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "missing", "out.html")

	err := fs.WriteFileAtomic(path, []byte("<html/>"), 0o600)
	if err == nil {
		t.Fatal("err=nil, want error for missing parent")
	}

	if _, statErr := os.Stat(filepath.Dir(path)); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("parent stat err=%v, want not exist", statErr)
	}
}

// TestReal_WriteFileAtomic_ReplacesExistingContent verifies that a second
// write leaves only the new content behind, never an accumulation.
func TestReal_WriteFileAtomic_ReplacesExistingContent(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "output.html")

	if err := os.WriteFile(path, []byte("previous run with a much longer body"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fs.WriteFileAtomic(path, []byte("fresh"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(got) != "fresh" {
		t.Fatalf("content=%q, want %q", got, "fresh")
	}
}

// TestReal_MkdirAll_Then_WriteFileAtomic_AppliesPerm verifies that an output
// path inside a freshly created directory gets the requested mode.
func TestReal_MkdirAll_Then_WriteFileAtomic_AppliesPerm(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "reports", "nested", "out.svg")

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := fs.WriteFileAtomic(path, []byte("<svg/>"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o600); got != want {
		t.Fatalf("perm=%v, want=%v", got, want)
	}
}
