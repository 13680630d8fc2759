package store_test

import (
	"context"
	"testing"
	"time"

	"dubline/internal/store"
	"dubline/internal/testsupport"
)

func TestEnsureTranscriptIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, err := st.EnsureTranscript(ctx, "episode", 42, "/media/ep42/audio/source.wav")
	if err != nil {
		t.Fatalf("EnsureTranscript failed: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected transcript ID to be assigned")
	}
	if first.Status != store.StatusPending {
		t.Fatalf("expected pending status, got %s", first.Status)
	}

	second, err := st.EnsureTranscript(ctx, "episode", 42, "/media/ep42/audio/source.wav")
	if err != nil {
		t.Fatalf("second EnsureTranscript failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, got %d and %d", first.ID, second.ID)
	}
}

func TestReplaceSegmentsIsAtomic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tr := testsupport.NewTranscript(t, st, "episode", 1, "")
	good := []store.Segment{
		{StartMS: 0, EndMS: 900, Text: "hello"},
		{StartMS: 1000, EndMS: 2200, Text: "world"},
	}
	if err := st.ReplaceSegments(ctx, tr.ID, good); err != nil {
		t.Fatalf("ReplaceSegments failed: %v", err)
	}

	bad := []store.Segment{
		{StartMS: 0, EndMS: 500, Text: "ok"},
		{StartMS: 600, EndMS: 600, Text: "zero width"},
	}
	if err := st.ReplaceSegments(ctx, tr.ID, bad); err == nil {
		t.Fatal("expected error for zero width segment")
	}

	segs, err := st.SegmentsByTranscript(ctx, tr.ID)
	if err != nil {
		t.Fatalf("SegmentsByTranscript failed: %v", err)
	}
	if len(segs) != 2 || segs[0].Text != "hello" || segs[1].Text != "world" {
		t.Fatalf("expected original segments to survive failed replace, got %#v", segs)
	}
}

func TestClaimPendingTranscriptGuardsStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tr := testsupport.NewTranscript(t, st, "episode", 7, "")

	claimed, err := st.ClaimPendingTranscript(ctx)
	if err != nil {
		t.Fatalf("ClaimPendingTranscript failed: %v", err)
	}
	if claimed == nil || claimed.ID != tr.ID {
		t.Fatalf("expected to claim transcript %d, got %#v", tr.ID, claimed)
	}
	if claimed.Status != store.StatusRunning {
		t.Fatalf("expected running status, got %s", claimed.Status)
	}

	again, err := st.ClaimPendingTranscript(ctx)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if again != nil {
		t.Fatalf("expected empty queue after claim, got %#v", again)
	}
}

func TestReclaimStaleResetsRunningRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tr := testsupport.NewTranscript(t, st, "episode", 9, "")
	claimed, err := st.ClaimPendingTranscript(ctx)
	if err != nil || claimed == nil {
		t.Fatalf("claim failed: %v", err)
	}

	// Fresh heartbeat keeps the row alone.
	n, err := st.ReclaimStale(ctx, time.Hour)
	if err != nil {
		t.Fatalf("ReclaimStale failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no reclaims for fresh heartbeat, got %d", n)
	}

	n, err = st.ReclaimStale(ctx, -time.Second)
	if err != nil {
		t.Fatalf("ReclaimStale failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one reclaim, got %d", n)
	}

	fresh, err := st.GetTranscript(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if fresh.Status != store.StatusPending {
		t.Fatalf("expected pending after reclaim, got %s", fresh.Status)
	}
}

func TestVoiceTrackIdentityPinnedAtCreation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tr := testsupport.NewTranscript(t, st, "episode", 11, "")
	sub, err := st.EnsureSubtitleTrack(ctx, tr.ID, "es", "srt")
	if err != nil {
		t.Fatalf("EnsureSubtitleTrack failed: %v", err)
	}

	vt, err := st.EnsureVoiceTrack(ctx, sub.ID, "es", "female", "openai", "nova")
	if err != nil {
		t.Fatalf("EnsureVoiceTrack failed: %v", err)
	}
	if vt.VoiceIdentity != "nova" {
		t.Fatalf("expected pinned identity nova, got %q", vt.VoiceIdentity)
	}

	// A second ensure with a different identity must not overwrite the pin.
	again, err := st.EnsureVoiceTrack(ctx, sub.ID, "es", "male", "openai", "onyx")
	if err != nil {
		t.Fatalf("second EnsureVoiceTrack failed: %v", err)
	}
	if again.ID != vt.ID || again.VoiceIdentity != "nova" {
		t.Fatalf("expected existing pinned row, got %#v", again)
	}

	vt.Status = store.StatusDone
	vt.AudioPath = "/media/ep11/voice/es-nova.mp3"
	vt.DurationMS = 1234
	if err := st.UpdateVoiceTrack(ctx, vt); err != nil {
		t.Fatalf("UpdateVoiceTrack failed: %v", err)
	}
	updated, err := st.GetVoiceTrack(ctx, vt.ID)
	if err != nil {
		t.Fatalf("GetVoiceTrack failed: %v", err)
	}
	if updated.VoiceIdentity != "nova" {
		t.Fatalf("identity changed across update: %q", updated.VoiceIdentity)
	}
	if updated.Status != store.StatusDone || updated.DurationMS != 1234 {
		t.Fatalf("unexpected updated row: %#v", updated)
	}
}

func TestTranslationCacheRoundTripAndUpgrade(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := &store.TranslationEntry{
		CacheKey:    "abc123",
		OwnerKind:   "episode",
		OwnerID:     3,
		Field:       "segment:0",
		Language:    "es",
		ContentHash: "deadbeef",
		Text:        "hola mundo",
		Engine:      "openai",
		Model:       "gpt-4o-mini",
	}
	if err := st.PutTranslation(ctx, entry); err != nil {
		t.Fatalf("PutTranslation failed: %v", err)
	}

	got, err := st.GetTranslation(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetTranslation failed: %v", err)
	}
	if got == nil || got.Text != "hola mundo" || got.Humanized {
		t.Fatalf("unexpected cached entry: %#v", got)
	}

	if err := st.UpgradeTranslationHumanized(ctx, "abc123", "hola, mundo", "openai", "gpt-4o-mini", 2); err != nil {
		t.Fatalf("UpgradeTranslationHumanized failed: %v", err)
	}
	got, err = st.GetTranslation(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetTranslation after upgrade failed: %v", err)
	}
	if !got.Humanized || got.Text != "hola, mundo" || got.PromptVersion != 2 {
		t.Fatalf("unexpected upgraded entry: %#v", got)
	}

	// A repeat at the same prompt version must not overwrite.
	if err := st.UpgradeTranslationHumanized(ctx, "abc123", "hola", "openai", "gpt-4o-mini", 2); err != nil {
		t.Fatalf("second upgrade failed: %v", err)
	}
	got, _ = st.GetTranslation(ctx, "abc123")
	if got.Text != "hola, mundo" {
		t.Fatalf("humanized entry was overwritten: %#v", got)
	}

	miss, err := st.GetTranslation(ctx, "missing")
	if err != nil {
		t.Fatalf("GetTranslation miss failed: %v", err)
	}
	if miss != nil {
		t.Fatalf("expected cache miss, got %#v", miss)
	}
}

func TestDeleteOwnerCascades(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tr := testsupport.NewTranscript(t, st, "episode", 5, "/media/ep5/audio/source.wav")
	if err := st.ReplaceSegments(ctx, tr.ID, []store.Segment{{StartMS: 0, EndMS: 1000, Text: "hi"}}); err != nil {
		t.Fatalf("ReplaceSegments failed: %v", err)
	}
	sub, err := st.EnsureSubtitleTrack(ctx, tr.ID, "es", "srt")
	if err != nil {
		t.Fatalf("EnsureSubtitleTrack failed: %v", err)
	}
	vt, err := st.EnsureVoiceTrack(ctx, sub.ID, "es", "", "openai", "nova")
	if err != nil {
		t.Fatalf("EnsureVoiceTrack failed: %v", err)
	}
	vt.AudioPath = "/media/ep5/voice/es-nova.mp3"
	if err := st.UpdateVoiceTrack(ctx, vt); err != nil {
		t.Fatalf("UpdateVoiceTrack failed: %v", err)
	}

	paths, err := st.DeleteOwner(ctx, "episode", 5)
	if err != nil {
		t.Fatalf("DeleteOwner failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected source and voice paths, got %v", paths)
	}

	gone, err := st.TranscriptByOwner(ctx, "episode", 5)
	if err != nil {
		t.Fatalf("TranscriptByOwner failed: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected transcript removed, got %#v", gone)
	}
	subGone, err := st.GetSubtitleTrack(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubtitleTrack failed: %v", err)
	}
	if subGone != nil {
		t.Fatalf("expected subtitle track removed via cascade, got %#v", subGone)
	}
}

func TestStatusCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewTranscript(t, st, "episode", 1, "")
	testsupport.NewTranscript(t, st, "episode", 2, "")
	if _, err := st.ClaimPendingTranscript(ctx); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	summary, err := st.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("StatusCounts failed: %v", err)
	}
	if summary.Transcripts[store.StatusPending] != 1 || summary.Transcripts[store.StatusRunning] != 1 {
		t.Fatalf("unexpected transcript counts: %#v", summary.Transcripts)
	}
}

func TestFailJobLeavesFinishedRowsUntouched(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tr := testsupport.NewTranscript(t, st, "episode", 1, "")
	tr.Status = store.StatusDone
	if err := st.UpdateTranscript(ctx, tr); err != nil {
		t.Fatalf("UpdateTranscript failed: %v", err)
	}

	if err := st.FailJob(ctx, "transcripts", tr.ID, "late failure", true); err != nil {
		t.Fatalf("FailJob failed: %v", err)
	}

	got, err := st.GetTranscript(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if got.Status != store.StatusDone {
		t.Fatalf("done row flipped to %q", got.Status)
	}
	if got.Attempts != 0 || got.ErrorMessage != "" {
		t.Fatalf("done row mutated: attempts=%d error=%q", got.Attempts, got.ErrorMessage)
	}
}

func TestListTranscriptsReturnsEveryRowInCreationOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewTranscript(t, st, "episode", 1, "")
	second := testsupport.NewTranscript(t, st, "episode", 2, "")

	transcripts, err := st.ListTranscripts(ctx)
	if err != nil {
		t.Fatalf("ListTranscripts failed: %v", err)
	}
	if len(transcripts) != 2 {
		t.Fatalf("expected 2 transcripts, got %d", len(transcripts))
	}
	if transcripts[0].ID != first.ID || transcripts[1].ID != second.ID {
		t.Fatalf("unexpected order: %d, %d", transcripts[0].ID, transcripts[1].ID)
	}
	if transcripts[1].OwnerKind != "episode" || transcripts[1].OwnerID != 2 {
		t.Fatalf("unexpected owner on listed row: %s:%d", transcripts[1].OwnerKind, transcripts[1].OwnerID)
	}
}
