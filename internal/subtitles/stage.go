package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"dubline/internal/config"
	"dubline/internal/logging"
	"dubline/internal/media"
	"dubline/internal/media/audio"
	"dubline/internal/services"
	"dubline/internal/stage"
	"dubline/internal/store"
)

const stageName = "subtitle"

// VoiceFanOut is notified when a subtitle track reaches done so voice
// synthesis can be orchestrated. The call happens strictly after the track
// row is durable.
type VoiceFanOut interface {
	OnSubtitleDone(ctx context.Context, track *store.SubtitleTrack) error
}

// Stage processes pending subtitle tracks.
type Stage struct {
	store  *store.Store
	cfg    *config.Config
	svc    *TranslationService
	fanOut VoiceFanOut
	logger *slog.Logger
}

// NewStage wires the subtitle lane.
func NewStage(cfg *config.Config, st *store.Store, svc *TranslationService, fanOut VoiceFanOut, logger *slog.Logger) *Stage {
	return &Stage{
		store:  st,
		cfg:    cfg,
		svc:    svc,
		fanOut: fanOut,
		logger: logging.NewComponentLogger(logger, stageName),
	}
}

func (s *Stage) Name() string  { return stageName }
func (s *Stage) Table() string { return "subtitle_tracks" }

// ClaimNext claims the oldest pending subtitle track.
func (s *Stage) ClaimNext(ctx context.Context) (int64, bool, error) {
	track, err := s.store.ClaimPendingSubtitleTrack(ctx)
	if err != nil || track == nil {
		return 0, false, err
	}
	return track.ID, true, nil
}

// HealthCheck verifies the translation provider is configured.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(s.cfg.Translate.APIKey) == "" {
		return stage.Unhealthy(stageName, "translate api key not configured")
	}
	return stage.Healthy(stageName)
}

// Execute renders one claimed subtitle track.
func (s *Stage) Execute(ctx context.Context, id int64) error {
	ctx = services.WithStage(ctx, stageName)
	track, err := s.store.GetSubtitleTrack(ctx, id)
	if err != nil {
		return err
	}
	if track == nil {
		return services.Wrap(services.ErrNotFound, stageName, "load track", fmt.Sprintf("Subtitle track %d not found", id), nil)
	}
	logger := logging.WithContext(ctx, s.logger).With(
		logging.Int64(logging.FieldTrackID, track.ID),
		logging.String(logging.FieldLanguage, track.Language))

	if track.Status == store.StatusDone && strings.TrimSpace(track.Content) != "" {
		logger.Info("subtitle track already done, skipping")
		return nil
	}
	if !KnownFormat(track.Format) {
		return services.Wrap(services.ErrValidation, stageName, "check format", fmt.Sprintf("Unknown subtitle format %q", track.Format), nil)
	}

	tr, err := s.store.GetTranscript(ctx, track.TranscriptID)
	if err != nil {
		return err
	}
	if tr == nil || tr.Status != store.StatusDone {
		return services.Wrap(services.ErrValidation, stageName, "check transcript", "Subtitle render requested before transcript is done", nil)
	}

	segments, err := s.store.SegmentsByTranscript(ctx, tr.ID)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return services.Wrap(services.ErrValidation, stageName, "load segments", "Transcript has no segments", nil)
	}

	sameLanguage := track.Language == tr.Language
	cues := make([]Cue, 0, len(segments))
	for _, seg := range segments {
		text := seg.Text
		if !sameLanguage {
			text, err = s.svc.TranslateSegment(ctx, tr, seg, track.Language)
			if err != nil {
				return err
			}
		}
		cues = append(cues, Cue{StartMS: seg.StartMS, EndMS: seg.EndMS, Text: text})
	}

	cues, stats := CleanCues(cues)
	if stats.RemovedCues > 0 {
		logger.Info("removed advertisement cues", logging.Int("removed", stats.RemovedCues))
	}

	content, err := Render(cues, track.Format)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "render", "Subtitle rendering failed", err)
	}

	filePath := media.SubtitlePath(s.cfg.Paths.MediaDir, tr.OwnerKind, tr.OwnerID, track.Language, track.Format)
	if err := audio.EnsureParentDir(filePath); err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "store file", "Unable to create subtitle directory", err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "store file", "Unable to write subtitle file", err)
	}

	track.Content = content
	track.Status = store.StatusDone
	track.ErrorMessage = ""
	if !sameLanguage && s.svc.humanizer != nil {
		track.Humanized = true
		track.HumanizeEngine = s.svc.engine
		track.HumanizeModel = s.svc.humanizer.Model()
		track.PromptVersion = s.svc.humanizer.PromptVersion()
	}
	if err := s.store.UpdateSubtitleTrack(ctx, track); err != nil {
		return err
	}
	logger.Info("subtitle track rendered",
		logging.Int("cues", len(cues)),
		logging.String("format", track.Format))

	if s.fanOut != nil {
		return s.fanOut.OnSubtitleDone(ctx, track)
	}
	return nil
}
