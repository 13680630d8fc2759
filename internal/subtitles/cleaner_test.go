package subtitles

import "testing"

func TestCleanCuesDropsAdvertisements(t *testing.T) {
	cues := []Cue{
		{StartMS: 0, EndMS: 2000, Text: "Subtitles by SomeGroup"},
		{StartMS: 2000, EndMS: 4000, Text: "A normal line of dialogue."},
		{StartMS: 4000, EndMS: 6000, Text: "Visit www.example.com for more"},
		{StartMS: 6000, EndMS: 8000, Text: "Downloaded from OpenSubtitles.org"},
		{StartMS: 8000, EndMS: 10000, Text: "Another real line."},
	}
	cleaned, stats := CleanCues(cues)
	if stats.RemovedCues != 3 {
		t.Fatalf("removed %d cues, want 3", stats.RemovedCues)
	}
	if len(cleaned) != 2 {
		t.Fatalf("kept %d cues, want 2", len(cleaned))
	}
	if cleaned[0].Text != "A normal line of dialogue." {
		t.Errorf("unexpected first kept cue %q", cleaned[0].Text)
	}
}

func TestCleanCuesNormalizesWhitespace(t *testing.T) {
	cleaned, _ := CleanCues([]Cue{{StartMS: 0, EndMS: 1000, Text: "  spaced \t out\n text  "}})
	if len(cleaned) != 1 {
		t.Fatalf("kept %d cues, want 1", len(cleaned))
	}
	if cleaned[0].Text != "spaced out text" {
		t.Errorf("normalized text = %q", cleaned[0].Text)
	}
}

func TestCleanCuesKeepsEmptyCues(t *testing.T) {
	// Empty cues are harmless here; the renderer skips them later.
	cleaned, stats := CleanCues([]Cue{{StartMS: 0, EndMS: 1000, Text: "   "}})
	if stats.RemovedCues != 0 || len(cleaned) != 1 {
		t.Fatalf("empty cue mishandled: removed=%d kept=%d", stats.RemovedCues, len(cleaned))
	}
}
