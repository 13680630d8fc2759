package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestScratchDirLifecycle(t *testing.T) {
	base := filepath.Join(t.TempDir(), "scratch")

	dir, err := NewScratchDir(base, "synth")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "work.wav"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	RemoveScratch(dir)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("scratch dir survived removal: %v", err)
	}

	// Removing twice or removing the empty path must be harmless.
	RemoveScratch(dir)
	RemoveScratch("")
}
