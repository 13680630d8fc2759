package deps

import (
	"os"
	"path/filepath"
	"testing"

	"dubline/internal/config"
)

func TestCheckResolvesPathAndName(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	results := Check([]Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: ""},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Available {
		t.Fatalf("path-resolved binary should be available: %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("missing binary misreported: %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unset command misreported: %#v", results[2])
	}
}

func TestForCoversToolchain(t *testing.T) {
	cfg := config.Default()
	reqs := For(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected ffmpeg and ffprobe, got %d requirements", len(reqs))
	}
	for _, req := range reqs {
		if req.Command == "" {
			t.Errorf("requirement %s has no command", req.Name)
		}
		if req.Optional {
			t.Errorf("requirement %s should be mandatory", req.Name)
		}
	}
}
