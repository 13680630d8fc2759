package voice_test

import (
	"context"
	"testing"

	"dubline/internal/logging"
	"dubline/internal/owners"
	"dubline/internal/store"
	"dubline/internal/testsupport"
	"dubline/internal/voice"
)

type stubOwner struct {
	ref  owners.Ref
	hint string
}

func (o *stubOwner) Ref() owners.Ref           { return o.ref }
func (o *stubOwner) Title() string             { return "stub" }
func (o *stubOwner) SpeakerGenderHint() string { return o.hint }

type stubResolver struct {
	owner *stubOwner
}

func (r *stubResolver) Resolve(_ context.Context, id int64) (owners.Owner, error) {
	r.owner.ref = owners.Ref{Kind: "media", ID: id}
	return r.owner, nil
}

func orchestratorFixture(t *testing.T, voiceLangs ...string) (*voice.Orchestrator, *store.Store, *stubOwner, *store.Transcript) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithVoiceLanguages(voiceLangs...))
	st := testsupport.MustOpenStore(t, cfg)

	owner := &stubOwner{hint: "female"}
	registry := owners.NewRegistry()
	registry.Register("media", &stubResolver{owner: owner})

	tr := testsupport.NewTranscript(t, st, "media", 1, "/tmp/in.wav")
	tr.Language = "en"
	tr.Status = store.StatusDone
	if err := st.UpdateTranscript(context.Background(), tr); err != nil {
		t.Fatalf("UpdateTranscript failed: %v", err)
	}

	orch := voice.NewOrchestrator(cfg, st, registry, "openai", logging.NewNop())
	return orch, st, owner, tr
}

func subtitleTrack(t *testing.T, st *store.Store, transcriptID int64, lang string) *store.SubtitleTrack {
	t.Helper()
	track, err := st.EnsureSubtitleTrack(context.Background(), transcriptID, lang, "srt")
	if err != nil {
		t.Fatalf("EnsureSubtitleTrack failed: %v", err)
	}
	return track
}

func TestOnSubtitleDoneSkipsSourceLanguage(t *testing.T) {
	orch, st, _, tr := orchestratorFixture(t, "en", "es")
	ctx := context.Background()

	track := subtitleTrack(t, st, tr.ID, "en")
	if err := orch.OnSubtitleDone(ctx, track); err != nil {
		t.Fatalf("OnSubtitleDone failed: %v", err)
	}
	vt, err := st.VoiceTrackByKey(ctx, track.ID, "openai")
	if err != nil {
		t.Fatalf("VoiceTrackByKey failed: %v", err)
	}
	if vt != nil {
		t.Fatal("source-language subtitle must not spawn a voice track")
	}
}

func TestOnSubtitleDoneHonorsLanguageAllowlist(t *testing.T) {
	orch, st, _, tr := orchestratorFixture(t, "pt")
	ctx := context.Background()

	fr := subtitleTrack(t, st, tr.ID, "fr")
	if err := orch.OnSubtitleDone(ctx, fr); err != nil {
		t.Fatalf("OnSubtitleDone failed: %v", err)
	}
	if vt, _ := st.VoiceTrackByKey(ctx, fr.ID, "openai"); vt != nil {
		t.Fatal("disabled language must not spawn a voice track")
	}

	// Regional variants ride the base language's gate.
	ptBR := subtitleTrack(t, st, tr.ID, "pt-br")
	if err := orch.OnSubtitleDone(ctx, ptBR); err != nil {
		t.Fatalf("OnSubtitleDone failed: %v", err)
	}
	vt, err := st.VoiceTrackByKey(ctx, ptBR.ID, "openai")
	if err != nil {
		t.Fatalf("VoiceTrackByKey failed: %v", err)
	}
	if vt == nil {
		t.Fatal("pt-br should be enabled by the pt allowlist entry")
	}
	if vt.Status != store.StatusPending {
		t.Fatalf("new voice track status = %q, want pending", vt.Status)
	}
}

func TestOnSubtitleDonePinsIdentityAcrossRepeats(t *testing.T) {
	orch, st, owner, tr := orchestratorFixture(t, "es")
	ctx := context.Background()

	track := subtitleTrack(t, st, tr.ID, "es")
	if err := orch.OnSubtitleDone(ctx, track); err != nil {
		t.Fatalf("OnSubtitleDone failed: %v", err)
	}
	vt, err := st.VoiceTrackByKey(ctx, track.ID, "openai")
	if err != nil {
		t.Fatalf("VoiceTrackByKey failed: %v", err)
	}
	if vt == nil {
		t.Fatal("expected a voice track")
	}
	if vt.GenderHint != "female" {
		t.Fatalf("gender hint = %q, want female", vt.GenderHint)
	}
	first := vt.VoiceIdentity

	// The speaker profile changing later must never reassign the voice.
	owner.hint = "male"
	if err := orch.OnSubtitleDone(ctx, track); err != nil {
		t.Fatalf("repeat OnSubtitleDone failed: %v", err)
	}
	vt, err = st.VoiceTrackByKey(ctx, track.ID, "openai")
	if err != nil {
		t.Fatalf("VoiceTrackByKey failed: %v", err)
	}
	if vt.VoiceIdentity != first {
		t.Fatalf("identity changed %q -> %q on repeat", first, vt.VoiceIdentity)
	}
	if vt.GenderHint != "female" {
		t.Fatalf("gender hint overwritten to %q", vt.GenderHint)
	}
}

func TestOnSubtitleDoneBackfillsEmptyFieldsOnly(t *testing.T) {
	orch, st, owner, tr := orchestratorFixture(t, "es")
	ctx := context.Background()

	track := subtitleTrack(t, st, tr.ID, "es")
	// A row created before the speaker profile was known.
	vt, err := st.EnsureVoiceTrack(ctx, track.ID, "es", "", "openai", "")
	if err != nil {
		t.Fatalf("EnsureVoiceTrack failed: %v", err)
	}
	if vt.VoiceIdentity != "" || vt.GenderHint != "" {
		t.Fatalf("fixture row should start empty, got %q/%q", vt.VoiceIdentity, vt.GenderHint)
	}

	owner.hint = "male"
	if err := orch.OnSubtitleDone(ctx, track); err != nil {
		t.Fatalf("OnSubtitleDone failed: %v", err)
	}
	vt, err = st.VoiceTrackByKey(ctx, track.ID, "openai")
	if err != nil {
		t.Fatalf("VoiceTrackByKey failed: %v", err)
	}
	if vt.GenderHint != "male" {
		t.Fatalf("gender hint = %q, want backfilled male", vt.GenderHint)
	}
	want := voice.ResolveVoiceIdentity("es", "male", "")
	if vt.VoiceIdentity != want {
		t.Fatalf("identity = %q, want %q", vt.VoiceIdentity, want)
	}
}
