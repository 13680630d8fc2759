package transcripts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dubline/internal/config"
	"dubline/internal/fileutil"
	"dubline/internal/language"
	"dubline/internal/logging"
	"dubline/internal/media"
	"dubline/internal/media/audio"
	"dubline/internal/services"
	"dubline/internal/services/stt"
	"dubline/internal/stage"
	"dubline/internal/store"
)

const stageName = "transcribe"

// Transcriber is the STT surface the stage depends on.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*stt.Result, error)
}

// Cleaner rewrites text conservatively. The stage treats it as fail-open:
// any error keeps the raw text.
type Cleaner interface {
	Humanize(ctx context.Context, text, lang, toneHint string) (string, error)
}

// Stage processes pending transcripts.
type Stage struct {
	store       *store.Store
	cfg         *config.Config
	transcriber Transcriber
	cleaner     Cleaner
	tools       *audio.Toolchain
	logger      *slog.Logger
}

// NewStage wires the transcription lane.
func NewStage(cfg *config.Config, st *store.Store, transcriber Transcriber, cleaner Cleaner, tools *audio.Toolchain, logger *slog.Logger) *Stage {
	return &Stage{
		store:       st,
		cfg:         cfg,
		transcriber: transcriber,
		cleaner:     cleaner,
		tools:       tools,
		logger:      logging.NewComponentLogger(logger, stageName),
	}
}

func (s *Stage) Name() string  { return stageName }
func (s *Stage) Table() string { return "transcripts" }

// ClaimNext claims the oldest pending transcript.
func (s *Stage) ClaimNext(ctx context.Context) (int64, bool, error) {
	tr, err := s.store.ClaimPendingTranscript(ctx)
	if err != nil || tr == nil {
		return 0, false, err
	}
	return tr.ID, true, nil
}

// HealthCheck verifies the STT provider and audio toolchain are usable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(s.cfg.STT.APIKey) == "" {
		return stage.Unhealthy(stageName, "stt api key not configured")
	}
	if err := s.tools.Available(); err != nil {
		return stage.Unhealthy(stageName, err.Error())
	}
	return stage.Healthy(stageName)
}

// Execute transcribes one claimed transcript end to end.
func (s *Stage) Execute(ctx context.Context, id int64) error {
	ctx = services.WithStage(ctx, stageName)
	tr, err := s.store.GetTranscript(ctx, id)
	if err != nil {
		return err
	}
	if tr == nil {
		return services.Wrap(services.ErrNotFound, stageName, "load transcript", fmt.Sprintf("Transcript %d not found", id), nil)
	}
	logger := logging.WithContext(ctx, s.logger).With(logging.Int64(logging.FieldTranscriptID, tr.ID))

	if tr.Status == store.StatusDone {
		logger.Info("transcript already done, skipping")
		return nil
	}
	sourcePath := strings.TrimSpace(tr.AudioPath)
	if sourcePath == "" {
		return services.Wrap(services.ErrValidation, stageName, "locate source", "Transcript has no source audio reference", nil)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return services.Wrap(services.ErrValidation, stageName, "locate source", fmt.Sprintf("Source media not found at %s", sourcePath), err)
	}

	scratch, err := fileutil.NewScratchDir(s.cfg.Paths.ScratchDir, "transcribe-")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "create scratch", "Unable to create scratch directory", err)
	}
	defer fileutil.RemoveScratch(scratch)

	wavPath := filepath.Join(scratch, "source.wav")
	if err := s.tools.ExtractAudio(ctx, sourcePath, wavPath); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "extract audio", "Audio extraction failed", err)
	}

	result, err := s.transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		return err
	}
	if len(result.Segments) == 0 {
		return services.Wrap(services.ErrExternalTool, stageName, "transcribe", "Transcription returned no segments", nil)
	}
	lang := language.Normalize(result.Language)
	if lang == "" {
		return services.Wrap(services.ErrExternalTool, stageName, "transcribe", fmt.Sprintf("Detected language %q is not recognized", result.Language), nil)
	}
	logger.Info("transcription complete",
		logging.String(logging.FieldLanguage, lang),
		logging.Int("segments", len(result.Segments)))

	fullText := s.cleanText(ctx, result.Text, lang)
	segments := s.cleanSegments(ctx, result.Segments, lang, logger)

	tone := deriveToneProfile(segments, lang)
	toneJSON, err := json.Marshal(tone)
	if err != nil {
		return fmt.Errorf("encode tone profile: %w", err)
	}

	artifactPath := media.SourceAudioPath(s.cfg.Paths.MediaDir, tr.OwnerKind, tr.OwnerID)
	if err := audio.EnsureParentDir(artifactPath); err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "store audio", "Unable to create artifact directory", err)
	}
	if err := fileutil.CopyFile(wavPath, artifactPath); err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "store audio", "Unable to store transcription audio", err)
	}

	rows := make([]store.Segment, len(segments))
	for i, seg := range segments {
		rows[i] = store.Segment{StartMS: seg.StartMS, EndMS: seg.EndMS, Text: seg.Text}
	}
	if err := s.store.ReplaceSegments(ctx, tr.ID, rows); err != nil {
		return err
	}

	tr.Language = lang
	tr.Text = fullText
	tr.ToneJSON = string(toneJSON)
	tr.AudioPath = artifactPath
	tr.Status = store.StatusDone
	tr.ErrorMessage = ""
	if err := s.store.UpdateTranscript(ctx, tr); err != nil {
		return err
	}

	// Fan out only after the transcript row is durable so the subtitle lane
	// never sees a track whose transcript is still in flight.
	return s.fanOutSubtitles(ctx, tr, logger)
}

// cleanText runs the conservative cleanup pass over the full transcript.
// Fail-open: the raw text survives any cleaner problem.
func (s *Stage) cleanText(ctx context.Context, text, lang string) string {
	text = strings.TrimSpace(text)
	if s.cleaner == nil || text == "" {
		return text
	}
	cleaned, err := s.cleaner.Humanize(ctx, text, lang, "")
	if err != nil || strings.TrimSpace(cleaned) == "" {
		return text
	}
	return strings.TrimSpace(cleaned)
}

// cleanSegments batches all segment texts through the cleanup pass in one
// call. The corrected output must keep exactly one line per segment; on any
// mismatch the raw texts are kept.
func (s *Stage) cleanSegments(ctx context.Context, segments []stt.Segment, lang string, logger *slog.Logger) []stt.Segment {
	if s.cleaner == nil || len(segments) == 0 {
		return segments
	}
	lines := make([]string, len(segments))
	for i, seg := range segments {
		lines[i] = strings.ReplaceAll(seg.Text, "\n", " ")
	}
	cleaned, err := s.cleaner.Humanize(ctx, strings.Join(lines, "\n"), lang, "")
	if err != nil || strings.TrimSpace(cleaned) == "" {
		return segments
	}
	cleanedLines := strings.Split(strings.TrimSpace(cleaned), "\n")
	if len(cleanedLines) != len(segments) {
		logger.Warn("segment cleanup line count mismatch, keeping raw text",
			logging.Int("expected", len(segments)),
			logging.Int("got", len(cleanedLines)))
		return segments
	}
	out := make([]stt.Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg
		if line := strings.TrimSpace(cleanedLines[i]); line != "" {
			out[i].Text = line
		}
	}
	return out
}

func (s *Stage) fanOutSubtitles(ctx context.Context, tr *store.Transcript, logger *slog.Logger) error {
	targets := []string{tr.Language}
	for _, code := range s.cfg.Languages.DefaultSubtitles {
		if normalized := language.Normalize(code); normalized != "" {
			targets = append(targets, normalized)
		}
	}
	seen := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		if _, err := s.store.EnsureSubtitleTrack(ctx, tr.ID, target, "srt"); err != nil {
			return err
		}
		logger.Info("subtitle track ensured", logging.String(logging.FieldLanguage, target))
	}
	return nil
}

// deriveToneProfile distills speaking-style heuristics from segment timing.
// The pace multiplier compares the measured character rate against the
// language's typical rate and is clamped so downstream budgets stay sane.
func deriveToneProfile(segments []stt.Segment, lang string) store.ToneProfile {
	profile := store.ToneProfile{PaceMultiplier: 1.0, Energy: "neutral", PauseStyle: "even"}
	if len(segments) == 0 {
		return profile
	}

	var chars int
	var spokenMS int64
	var gapMS int64
	for i, seg := range segments {
		chars += len([]rune(seg.Text))
		spokenMS += seg.EndMS - seg.StartMS
		if i > 0 {
			if gap := seg.StartMS - segments[i-1].EndMS; gap > 0 {
				gapMS += gap
			}
		}
	}
	if spokenMS <= 0 || chars == 0 {
		return profile
	}

	measured := float64(chars) / (float64(spokenMS) / 1000.0)
	ratio := measured / language.CharsPerSecond(lang)
	switch {
	case ratio < 0.75:
		ratio = 0.75
	case ratio > 1.25:
		ratio = 1.25
	}
	profile.PaceMultiplier = ratio
	switch {
	case ratio < 0.9:
		profile.Energy = "low"
	case ratio > 1.1:
		profile.Energy = "high"
	}

	if len(segments) > 1 {
		avgGap := gapMS / int64(len(segments)-1)
		switch {
		case avgGap > 600:
			profile.PauseStyle = "spacious"
		case avgGap < 150:
			profile.PauseStyle = "tight"
		}
	}
	return profile
}
