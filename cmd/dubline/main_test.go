package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubline/internal/owners"
)

func TestParseOwnerRef(t *testing.T) {
	cases := []struct {
		in      string
		want    owners.Ref
		wantErr bool
	}{
		{in: "3", want: owners.Ref{Kind: "media", ID: 3}},
		{in: "media:12", want: owners.Ref{Kind: "media", ID: 12}},
		{in: "episode:7", want: owners.Ref{Kind: "episode", ID: 7}},
		{in: "media:", wantErr: true},
		{in: ":4", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "media:-1", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseOwnerRef(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseOwnerRef(%q) accepted", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseOwnerRef(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseOwnerRef(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestFormatMillis(t *testing.T) {
	if got := formatMillis(0); got != "-" {
		t.Errorf("formatMillis(0) = %q", got)
	}
	if got := formatMillis(61500); got != "61.500s" {
		t.Errorf("formatMillis(61500) = %q", got)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample missing paths section:\n%s", data)
	}

	// Second run without --overwrite refuses.
	cmd = newConfigInitCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	rendered := renderTable([]string{"A", "B"}, [][]string{{"only"}})
	if !strings.Contains(rendered, "only") {
		t.Fatalf("row missing:\n%s", rendered)
	}
}
