package voice

import (
	"context"
	"log/slog"

	"dubline/internal/config"
	"dubline/internal/language"
	"dubline/internal/logging"
	"dubline/internal/owners"
	"dubline/internal/store"
)

// Orchestrator creates voice tracks when subtitle tracks finish. Creation
// is the only path that chooses a voice identity.
type Orchestrator struct {
	cfg      *config.Config
	store    *store.Store
	registry *owners.Registry
	provider string
	logger   *slog.Logger
}

// NewOrchestrator wires voice track creation.
func NewOrchestrator(cfg *config.Config, st *store.Store, registry *owners.Registry, provider string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		store:    st,
		registry: registry,
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "voice-orchestrator"),
	}
}

// voiceEnabled checks the allowlist by canonical base language, so a
// regional variant rides its base language's gate.
func (o *Orchestrator) voiceEnabled(lang string) bool {
	base := language.BaseCode(language.Normalize(lang))
	for _, enabled := range o.cfg.Languages.VoiceEnabled {
		if language.BaseCode(language.Normalize(enabled)) == base {
			return true
		}
	}
	return false
}

// OnSubtitleDone applies the creation guards in order and, when they all
// pass, creates a pending voice track. The pending row is the enqueue: the
// voice lane polls for it, and it only exists after the subtitle track's
// done state was durably written.
func (o *Orchestrator) OnSubtitleDone(ctx context.Context, track *store.SubtitleTrack) error {
	logger := logging.WithContext(ctx, o.logger).With(
		logging.Int64(logging.FieldTrackID, track.ID),
		logging.String(logging.FieldLanguage, track.Language))

	tr, err := o.store.GetTranscript(ctx, track.TranscriptID)
	if err != nil {
		return err
	}
	if tr == nil {
		return nil
	}
	if track.Language == tr.Language {
		logger.Debug("skipping voice for source language")
		return nil
	}
	if !o.voiceEnabled(track.Language) {
		logger.Debug("skipping voice for disabled language")
		return nil
	}

	existing, err := o.store.VoiceTrackByKey(ctx, track.ID, o.provider)
	if err != nil {
		return err
	}
	if existing != nil {
		// Repair path: only fill fields that were never set. The identity
		// guard lives in the store so this can never reassign a voice.
		hint := existing.GenderHint
		if hint == "" {
			hint = o.registry.SpeakerGenderHint(ctx, owners.Ref{Kind: tr.OwnerKind, ID: tr.OwnerID})
		}
		identity := existing.VoiceIdentity
		if identity == "" {
			identity = ResolveVoiceIdentity(track.Language, hint, "")
		}
		return o.store.BackfillVoiceTrack(ctx, existing.ID, hint, identity)
	}

	hint := o.registry.SpeakerGenderHint(ctx, owners.Ref{Kind: tr.OwnerKind, ID: tr.OwnerID})
	identity := ResolveVoiceIdentity(track.Language, hint, "")
	created, err := o.store.EnsureVoiceTrack(ctx, track.ID, track.Language, hint, o.provider, identity)
	if err != nil {
		return err
	}
	logger.Info("voice track created",
		logging.Int64("voice_track_id", created.ID),
		logging.String("identity", created.VoiceIdentity),
		logging.String("gender_hint", created.GenderHint))
	return nil
}
