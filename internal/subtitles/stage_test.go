package subtitles_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"dubline/internal/config"
	"dubline/internal/logging"
	"dubline/internal/media"
	"dubline/internal/services"
	"dubline/internal/store"
	"dubline/internal/subtitles"
	"dubline/internal/testsupport"
)

type fanOutRecorder struct {
	tracks []*store.SubtitleTrack
}

func (r *fanOutRecorder) OnSubtitleDone(_ context.Context, track *store.SubtitleTrack) error {
	r.tracks = append(r.tracks, track)
	return nil
}

func stageFixture(t *testing.T, humanizer subtitles.Humanizer) (*subtitles.Stage, *store.Store, *config.Config, *fakeTranslator, *fanOutRecorder, *store.Transcript) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tr := testsupport.NewTranscript(t, st, "media", 7, "/tmp/in.wav")
	tr.Language = "en"
	tr.Status = store.StatusDone
	if err := st.UpdateTranscript(ctx, tr); err != nil {
		t.Fatalf("UpdateTranscript failed: %v", err)
	}
	segments := []store.Segment{
		{Idx: 0, StartMS: 0, EndMS: 2000, Text: "Good morning everyone."},
		{Idx: 1, StartMS: 2500, EndMS: 5000, Text: "Welcome to the show."},
	}
	if err := st.ReplaceSegments(ctx, tr.ID, segments); err != nil {
		t.Fatalf("ReplaceSegments failed: %v", err)
	}

	translator := &fakeTranslator{}
	svc := subtitles.NewTranslationService(st, translator, humanizer, "openai", logging.NewNop())
	fanOut := &fanOutRecorder{}
	stg := subtitles.NewStage(cfg, st, svc, fanOut, logging.NewNop())
	return stg, st, cfg, translator, fanOut, tr
}

func TestExecuteSameLanguageCopiesWithoutTranslating(t *testing.T) {
	stg, st, cfg, translator, fanOut, tr := stageFixture(t, &fakeHumanizer{version: 1})
	ctx := context.Background()

	track, err := st.EnsureSubtitleTrack(ctx, tr.ID, "en", "srt")
	if err != nil {
		t.Fatalf("EnsureSubtitleTrack failed: %v", err)
	}
	if err := stg.Execute(ctx, track.ID); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if translator.calls != 0 {
		t.Fatalf("same-language track made %d translation calls", translator.calls)
	}
	track, err = st.GetSubtitleTrack(ctx, track.ID)
	if err != nil {
		t.Fatalf("GetSubtitleTrack failed: %v", err)
	}
	if track.Status != store.StatusDone {
		t.Fatalf("status = %q, want done", track.Status)
	}
	if !strings.Contains(track.Content, "Good morning everyone.") {
		t.Fatalf("content missing source text:\n%s", track.Content)
	}
	if track.Humanized {
		t.Fatal("same-language copy must not carry humanize metadata")
	}

	filePath := media.SubtitlePath(cfg.Paths.MediaDir, tr.OwnerKind, tr.OwnerID, "en", "srt")
	onDisk, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("subtitle file not written: %v", err)
	}
	if string(onDisk) != track.Content {
		t.Fatal("file content diverges from stored content")
	}
	if len(fanOut.tracks) != 1 || fanOut.tracks[0].ID != track.ID {
		t.Fatalf("fan-out not invoked for the finished track: %+v", fanOut.tracks)
	}
}

func TestExecuteTranslatedTrackRecordsHumanizeMetadata(t *testing.T) {
	stg, st, _, translator, _, tr := stageFixture(t, &fakeHumanizer{version: 2})
	ctx := context.Background()

	track, err := st.EnsureSubtitleTrack(ctx, tr.ID, "es", "srt")
	if err != nil {
		t.Fatalf("EnsureSubtitleTrack failed: %v", err)
	}
	if err := stg.Execute(ctx, track.ID); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if translator.calls != 2 {
		t.Fatalf("expected one translation per segment, got %d", translator.calls)
	}
	track, err = st.GetSubtitleTrack(ctx, track.ID)
	if err != nil {
		t.Fatalf("GetSubtitleTrack failed: %v", err)
	}
	if !strings.Contains(track.Content, "[es] Good morning everyone.") {
		t.Fatalf("content not translated:\n%s", track.Content)
	}
	if !track.Humanized || track.PromptVersion != 2 || track.HumanizeModel != "gpt-4o" {
		t.Fatalf("humanize metadata missing: %+v", track)
	}
}

func TestExecuteRequiresDoneTranscript(t *testing.T) {
	stg, st, _, _, _, tr := stageFixture(t, nil)
	ctx := context.Background()

	tr.Status = store.StatusRunning
	if err := st.UpdateTranscript(ctx, tr); err != nil {
		t.Fatalf("UpdateTranscript failed: %v", err)
	}
	track, err := st.EnsureSubtitleTrack(ctx, tr.ID, "es", "srt")
	if err != nil {
		t.Fatalf("EnsureSubtitleTrack failed: %v", err)
	}
	err = stg.Execute(ctx, track.ID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteSkipsFinishedTrack(t *testing.T) {
	stg, st, _, translator, fanOut, tr := stageFixture(t, nil)
	ctx := context.Background()

	track, err := st.EnsureSubtitleTrack(ctx, tr.ID, "es", "srt")
	if err != nil {
		t.Fatalf("EnsureSubtitleTrack failed: %v", err)
	}
	track.Status = store.StatusDone
	track.Content = "1\n00:00:00,000 --> 00:00:01,000\nya hecho\n"
	if err := st.UpdateSubtitleTrack(ctx, track); err != nil {
		t.Fatalf("UpdateSubtitleTrack failed: %v", err)
	}

	if err := stg.Execute(ctx, track.ID); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if translator.calls != 0 {
		t.Fatalf("finished track re-translated %d times", translator.calls)
	}
	if len(fanOut.tracks) != 0 {
		t.Fatal("finished track must not fan out again")
	}
}
