package transcripts_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"dubline/internal/media/audio"
	"dubline/internal/services/stt"
	"dubline/internal/store"
	"dubline/internal/testsupport"
	"dubline/internal/transcripts"

	"dubline/internal/logging"
)

type fakeTranscriber struct {
	calls  int
	result *stt.Result
	err    error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (*stt.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeCleaner struct {
	calls    int
	response string
}

func (f *fakeCleaner) Humanize(_ context.Context, text, _, _ string) (string, error) {
	f.calls++
	if f.response != "" {
		return f.response, nil
	}
	return text, nil
}

// fakeToolchain returns a toolchain whose runner creates the output file
// instead of invoking ffmpeg. ffmpeg writes its last argument.
func fakeToolchain(t *testing.T) *audio.Toolchain {
	t.Helper()
	tc := audio.NewToolchain("ffmpeg", "ffprobe")
	tc.WithCommandRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		if len(args) > 0 {
			testsupport.WriteFile(t, args[len(args)-1], 64)
		}
		return nil, nil
	})
	return tc
}

func TestExecuteTranscribesAndFansOut(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSubtitleLanguages("es", "pt"))
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	source := filepath.Join(testsupport.BaseDir(cfg), "input.mkv")
	testsupport.WriteFile(t, source, 256)
	tr := testsupport.NewTranscript(t, st, "media", 1, source)

	transcriber := &fakeTranscriber{result: &stt.Result{
		Language: "English",
		Text:     "Hello there. General greeting.",
		Segments: []stt.Segment{
			{StartMS: 0, EndMS: 1500, Text: "Hello there."},
			{StartMS: 1600, EndMS: 3000, Text: "General greeting."},
		},
	}}

	stage := transcripts.NewStage(cfg, st, transcriber, nil, fakeToolchain(t), logging.NewNop())
	if err := stage.Execute(ctx, tr.ID); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	updated, err := st.GetTranscript(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if updated.Status != store.StatusDone {
		t.Fatalf("expected done, got %s (%s)", updated.Status, updated.ErrorMessage)
	}
	if updated.Language != "en" {
		t.Fatalf("expected normalized language en, got %q", updated.Language)
	}
	if !strings.Contains(updated.AudioPath, "audio") {
		t.Fatalf("expected stored artifact path, got %q", updated.AudioPath)
	}
	if updated.ToneJSON == "" {
		t.Fatal("expected tone profile to be recorded")
	}

	segs, err := st.SegmentsByTranscript(ctx, tr.ID)
	if err != nil {
		t.Fatalf("SegmentsByTranscript failed: %v", err)
	}
	if len(segs) != 2 || segs[0].Text != "Hello there." {
		t.Fatalf("unexpected segments: %#v", segs)
	}

	tracks, err := st.SubtitleTracksByTranscript(ctx, tr.ID)
	if err != nil {
		t.Fatalf("SubtitleTracksByTranscript failed: %v", err)
	}
	langs := make(map[string]bool, len(tracks))
	for _, track := range tracks {
		langs[track.Language] = true
		if track.Status != store.StatusPending {
			t.Fatalf("expected pending fan-out track, got %s", track.Status)
		}
	}
	for _, want := range []string{"en", "es", "pt"} {
		if !langs[want] {
			t.Fatalf("expected subtitle track for %s, got %v", want, langs)
		}
	}
}

func TestExecuteSkipsDoneTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tr := testsupport.NewTranscript(t, st, "media", 2, "/nonexistent.mkv")
	tr.Status = store.StatusDone
	if err := st.UpdateTranscript(ctx, tr); err != nil {
		t.Fatalf("UpdateTranscript failed: %v", err)
	}

	transcriber := &fakeTranscriber{}
	stage := transcripts.NewStage(cfg, st, transcriber, nil, fakeToolchain(t), logging.NewNop())
	if err := stage.Execute(ctx, tr.ID); err != nil {
		t.Fatalf("Execute on done transcript failed: %v", err)
	}
	if transcriber.calls != 0 {
		t.Fatalf("expected no provider calls for done transcript, got %d", transcriber.calls)
	}
}

func TestSegmentCleanupLineMismatchKeepsRaw(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	source := filepath.Join(testsupport.BaseDir(cfg), "input.mkv")
	testsupport.WriteFile(t, source, 256)
	tr := testsupport.NewTranscript(t, st, "media", 3, source)

	transcriber := &fakeTranscriber{result: &stt.Result{
		Language: "en",
		Text:     "one two",
		Segments: []stt.Segment{
			{StartMS: 0, EndMS: 1000, Text: "one"},
			{StartMS: 1000, EndMS: 2000, Text: "two"},
		},
	}}
	// Cleaner collapses two lines into one, which must be rejected.
	cleaner := &fakeCleaner{response: "one two merged"}

	stage := transcripts.NewStage(cfg, st, transcriber, cleaner, fakeToolchain(t), logging.NewNop())
	if err := stage.Execute(ctx, tr.ID); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	segs, err := st.SegmentsByTranscript(ctx, tr.ID)
	if err != nil {
		t.Fatalf("SegmentsByTranscript failed: %v", err)
	}
	if len(segs) != 2 || segs[0].Text != "one" || segs[1].Text != "two" {
		t.Fatalf("expected raw segment text to survive mismatch, got %#v", segs)
	}
}
