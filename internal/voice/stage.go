package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"dubline/internal/config"
	"dubline/internal/fileutil"
	"dubline/internal/logging"
	"dubline/internal/media"
	"dubline/internal/media/audio"
	"dubline/internal/services"
	"dubline/internal/stage"
	"dubline/internal/store"
	"dubline/internal/subtitles"
)

const stageName = "voice"

// Stage processes pending voice tracks.
type Stage struct {
	store  *store.Store
	cfg    *config.Config
	engine *Engine
	tools  *audio.Toolchain
	logger *slog.Logger
}

// NewStage wires the voice lane.
func NewStage(cfg *config.Config, st *store.Store, engine *Engine, tools *audio.Toolchain, logger *slog.Logger) *Stage {
	return &Stage{
		store:  st,
		cfg:    cfg,
		engine: engine,
		tools:  tools,
		logger: logging.NewComponentLogger(logger, stageName),
	}
}

func (s *Stage) Name() string  { return stageName }
func (s *Stage) Table() string { return "voice_tracks" }

// ClaimNext claims the oldest pending voice track.
func (s *Stage) ClaimNext(ctx context.Context) (int64, bool, error) {
	vt, err := s.store.ClaimPendingVoiceTrack(ctx)
	if err != nil || vt == nil {
		return 0, false, err
	}
	return vt.ID, true, nil
}

// HealthCheck verifies the TTS provider and audio toolchain are usable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(s.cfg.TTS.APIKey) == "" {
		return stage.Unhealthy(stageName, "tts api key not configured")
	}
	if err := s.tools.Available(); err != nil {
		return stage.Unhealthy(stageName, err.Error())
	}
	return stage.Healthy(stageName)
}

// Execute synthesizes one claimed voice track.
func (s *Stage) Execute(ctx context.Context, id int64) error {
	ctx = services.WithStage(ctx, stageName)
	vt, err := s.store.GetVoiceTrack(ctx, id)
	if err != nil {
		return err
	}
	if vt == nil {
		return services.Wrap(services.ErrNotFound, stageName, "load track", fmt.Sprintf("Voice track %d not found", id), nil)
	}
	logger := logging.WithContext(ctx, s.logger).With(
		logging.Int64(logging.FieldTrackID, vt.ID),
		logging.String(logging.FieldLanguage, vt.Language))

	if vt.Status == store.StatusDone && vt.AudioPath != "" {
		if _, statErr := os.Stat(vt.AudioPath); statErr == nil {
			logger.Info("voice track already done, skipping")
			return nil
		}
	}

	sub, err := s.store.GetSubtitleTrack(ctx, vt.SubtitleTrackID)
	if err != nil {
		return err
	}
	if sub == nil || sub.Status != store.StatusDone || strings.TrimSpace(sub.Content) == "" {
		return services.Wrap(services.ErrValidation, stageName, "check subtitle", "Voice synthesis requested before subtitle track is done", nil)
	}
	tr, err := s.store.GetTranscript(ctx, sub.TranscriptID)
	if err != nil {
		return err
	}
	if tr == nil {
		return services.Wrap(services.ErrValidation, stageName, "load transcript", "Subtitle track has no transcript", nil)
	}

	cues, err := subtitles.Parse(sub.Content)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "parse cues", "Subtitle content failed to parse", err)
	}
	if len(cues) == 0 {
		return services.Wrap(services.ErrValidation, stageName, "parse cues", "Subtitle track has no cues", nil)
	}

	identity := vt.VoiceIdentity
	if identity == "" {
		// A legacy row created without an identity gets one now, through
		// the guarded backfill path.
		identity = ResolveVoiceIdentity(vt.Language, vt.GenderHint, "")
		if err := s.store.BackfillVoiceTrack(ctx, vt.ID, vt.GenderHint, identity); err != nil {
			return err
		}
	}

	var tone store.ToneProfile
	if tr.ToneJSON != "" {
		if err := json.Unmarshal([]byte(tr.ToneJSON), &tone); err != nil {
			tone = store.ToneProfile{PaceMultiplier: 1.0}
		}
	} else {
		tone = store.ToneProfile{PaceMultiplier: 1.0}
	}

	scratch, err := fileutil.NewScratchDir(s.cfg.Paths.ScratchDir, "voice-")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "create scratch", "Unable to create scratch directory", err)
	}
	defer fileutil.RemoveScratch(scratch)

	outputPath := media.VoiceTrackPath(s.cfg.Paths.MediaDir, tr.OwnerKind, tr.OwnerID, vt.Language, identity)
	if err := audio.EnsureParentDir(outputPath); err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "create output dir", "Unable to create voice directory", err)
	}

	result, err := s.engine.BuildTrack(ctx, BuildRequest{
		Cues:       cues,
		Language:   vt.Language,
		Voice:      identity,
		GenderHint: vt.GenderHint,
		Tone:       tone,
		WorkDir:    scratch,
		OutputPath: outputPath,
	})
	if err != nil {
		return err
	}

	vt.AudioPath = outputPath
	vt.DurationMS = result.DurationMS
	vt.SpokenText = result.SpokenText
	vt.Status = store.StatusDone
	vt.ErrorMessage = ""
	if err := s.store.UpdateVoiceTrack(ctx, vt); err != nil {
		return err
	}
	logger.Info("voice track synthesized",
		logging.Int64("duration_ms", result.DurationMS),
		logging.String("identity", identity))
	return nil
}
