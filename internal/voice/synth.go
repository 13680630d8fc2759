package voice

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dubline/internal/config"
	"dubline/internal/fileutil"
	"dubline/internal/logging"
	"dubline/internal/media/audio"
	"dubline/internal/services"
	"dubline/internal/store"
	"dubline/internal/subtitles"
	"dubline/internal/textutil"
)

// retryBudgetRatio tightens the character budget on the single
// zero-duration retry.
const retryBudgetRatio = 0.8

// Synthesizer is the TTS surface the engine depends on.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, dst string) error
	ProviderName() string
}

// Rewriter shortens text while preserving meaning. Optional; the engine
// always applies the deterministic clamp afterwards.
type Rewriter interface {
	Humanize(ctx context.Context, text, lang, toneHint string) (string, error)
}

// Engine builds a complete voice track from subtitle cues.
type Engine struct {
	cfg      *config.Config
	store    *store.Store
	tts      Synthesizer
	rewriter Rewriter
	tools    *audio.Toolchain
	logger   *slog.Logger
}

// NewEngine wires the synthesis engine.
func NewEngine(cfg *config.Config, st *store.Store, tts Synthesizer, rewriter Rewriter, tools *audio.Toolchain, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    st,
		tts:      tts,
		rewriter: rewriter,
		tools:    tools,
		logger:   logging.NewComponentLogger(logger, "synth"),
	}
}

// BuildRequest carries everything needed to synthesize one track.
type BuildRequest struct {
	Cues       []subtitles.Cue
	Language   string
	Voice      string
	GenderHint string
	Tone       store.ToneProfile
	WorkDir    string
	OutputPath string
}

// BuildResult reports the finished track. DurationMS is probed from the
// encoded deliverable, not computed from the cue timeline.
type BuildResult struct {
	DurationMS int64
	SpokenText string
}

// BuildTrack walks the cue timeline sequentially. Each cue's gap silence
// depends on the cursor left by the previous cue, so the loop must not be
// parallelized.
func (e *Engine) BuildTrack(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	if len(req.Cues) == 0 {
		return nil, services.Wrap(services.ErrValidation, "synth", "check cues", "No cues to synthesize", nil)
	}
	cues := append([]subtitles.Cue(nil), req.Cues...)
	subtitles.SortCues(cues)

	var (
		cursor      int64
		finalCueEnd int64
		parts       []string
		spoken      []string
	)
	for _, cue := range cues {
		if cue.EndMS > finalCueEnd {
			finalCueEnd = cue.EndMS
		}
	}

	minSlot := int64(e.cfg.Synthesis.MinSlotMillis)
	for i, cue := range cues {
		slot := cue.EndMS - cue.StartMS
		if slot < minSlot {
			continue
		}

		if cue.StartMS > cursor {
			gapPath := filepath.Join(req.WorkDir, fmt.Sprintf("gap-%04d.wav", i))
			if err := e.tools.Silence(ctx, gapPath, cue.StartMS-cursor); err != nil {
				return nil, err
			}
			parts = append(parts, gapPath)
		}

		fitted, text, err := e.synthesizeCue(ctx, req, cue, slot, i)
		if err != nil {
			return nil, err
		}
		parts = append(parts, fitted)
		if text != "" {
			spoken = append(spoken, text)
		}
		cursor = cue.EndMS
	}

	if finalCueEnd > cursor {
		tailPath := filepath.Join(req.WorkDir, "tail.wav")
		if err := e.tools.Silence(ctx, tailPath, finalCueEnd-cursor); err != nil {
			return nil, err
		}
		parts = append(parts, tailPath)
	}
	if len(parts) == 0 {
		return nil, services.Wrap(services.ErrValidation, "synth", "assemble", "Every cue was below the minimum slot", nil)
	}

	assembled := filepath.Join(req.WorkDir, "assembled.wav")
	if err := e.tools.Concat(ctx, parts, assembled); err != nil {
		return nil, err
	}
	if err := e.tools.EncodeMP3(ctx, assembled, req.OutputPath); err != nil {
		return nil, err
	}
	measured, err := e.tools.DurationMillis(ctx, req.OutputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "synth", "probe output",
			"Encoded track has no measurable duration", err)
	}

	return &BuildResult{
		DurationMS: measured,
		SpokenText: strings.Join(spoken, " "),
	}, nil
}

// synthesizeCue produces the slot-fitted clip for one cue and returns its
// path plus the text actually spoken.
func (e *Engine) synthesizeCue(ctx context.Context, req BuildRequest, cue subtitles.Cue, slot int64, idx int) (string, string, error) {
	budget := CharBudget(slot, req.Language, req.Tone.PaceMultiplier)
	text := e.speakable(ctx, cue.Text, req.Language, budget, req.Tone)

	best, err := e.attempt(ctx, req, text, slot, idx, 0)
	if err != nil {
		return "", "", err
	}

	// One retry, and only for zero duration. Quality shortfalls are
	// accepted; cost control beats perfection.
	if Classify(best.durationMS, slot, e.cfg.Synthesis) == ClassZeroDuration {
		tighter := e.speakable(ctx, cue.Text, req.Language, int(float64(budget)*retryBudgetRatio), req.Tone)
		retry, err := e.attempt(ctx, req, tighter, slot, idx, 1)
		if err != nil {
			return "", "", err
		}
		if betterCandidate(retry, best, slot) {
			best = retry
		}
	}

	class := Classify(best.durationMS, slot, e.cfg.Synthesis)
	logger := logging.WithContext(ctx, e.logger)
	logger.Debug("cue classified",
		logging.Int("cue", idx),
		logging.Int64("slot_ms", slot),
		logging.Int64("duration_ms", best.durationMS),
		logging.String("class", string(class)))

	plan := PlanFit(best.durationMS, slot, e.cfg.Synthesis.SpeedupCeiling)
	fitted := filepath.Join(req.WorkDir, fmt.Sprintf("fitted-%04d.wav", idx))
	if err := e.applyPlan(ctx, plan, best.path, fitted); err != nil {
		return "", "", err
	}
	if plan.Action == ActionSilence {
		return fitted, "", nil
	}
	return fitted, best.text, nil
}

// attempt resolves one synthesis candidate through the cache or the
// provider.
func (e *Engine) attempt(ctx context.Context, req BuildRequest, text string, slot int64, idx, attemptNo int) (candidate, error) {
	cand := candidate{attempt: attemptNo, text: text}
	if strings.TrimSpace(text) == "" {
		return cand, nil
	}

	key := textutil.KeyHash(text, req.Language, req.Voice, req.GenderHint, strconv.FormatInt(slot, 10))
	cached, err := e.store.GetSynthesis(ctx, key)
	if err != nil {
		return cand, err
	}
	if cached != nil {
		if _, statErr := os.Stat(cached.AudioPath); statErr == nil {
			cand.path = cached.AudioPath
			cand.durationMS = cached.DurationMS
			return cand, nil
		}
		// Cache row outlived its file; fall through to resynthesis.
	}

	rawPath := filepath.Join(req.WorkDir, fmt.Sprintf("raw-%04d-%d.wav", idx, attemptNo))
	if err := e.tts.Synthesize(ctx, text, req.Voice, rawPath); err != nil {
		return cand, err
	}
	// Providers emit whatever stream parameters they like; everything past
	// this point works on the uniform format.
	workPath := filepath.Join(req.WorkDir, fmt.Sprintf("work-%04d-%d.wav", idx, attemptNo))
	if err := e.tools.ToWorkingFormat(ctx, rawPath, workPath); err != nil {
		return cand, err
	}
	duration, err := e.tools.DurationMillis(ctx, workPath)
	if err != nil {
		duration = 0
	}
	cand.path = workPath
	cand.durationMS = duration

	if duration > 0 {
		cachePath := filepath.Join(e.cfg.Paths.MediaDir, "synthcache", key[:16]+".wav")
		if err := audio.EnsureParentDir(cachePath); err == nil {
			if err := fileutil.CopyFile(workPath, cachePath); err == nil {
				_ = e.store.PutSynthesis(ctx, &store.SynthesisEntry{
					CacheKey:   key,
					AudioPath:  cachePath,
					DurationMS: duration,
				})
			}
		}
	}
	return cand, nil
}

// speakable reduces cue text to its budget, asking the rewriter to shorten
// first when the text is far over budget. The deterministic clamp always
// runs last so the budget holds even when the rewriter misbehaves.
func (e *Engine) speakable(ctx context.Context, text, lang string, budget int, tone store.ToneProfile) string {
	text = strings.TrimSpace(text)
	if budget <= 0 || text == "" {
		return SpeakableText(text, budget)
	}
	if e.rewriter != nil && len([]rune(text)) > budget {
		hint := fmt.Sprintf("%s energy, %s pauses, must fit %d characters", tone.Energy, tone.PauseStyle, budget)
		if shorter, err := e.rewriter.Humanize(ctx, text, lang, hint); err == nil && strings.TrimSpace(shorter) != "" {
			text = strings.TrimSpace(shorter)
		}
	}
	return SpeakableText(text, budget)
}

func (e *Engine) applyPlan(ctx context.Context, plan Plan, src, dst string) error {
	switch plan.Action {
	case ActionSilence:
		return e.tools.Silence(ctx, dst, plan.SlotMS)
	case ActionPad:
		return e.tools.PadToLength(ctx, src, dst, plan.SlotMS)
	case ActionSpeedTrim:
		sped := dst + ".sped.wav"
		if err := e.tools.Speedup(ctx, src, sped, plan.SpeedFactor); err != nil {
			return err
		}
		return e.tools.TrimWithFade(ctx, sped, dst, plan.SlotMS, 50)
	case ActionTrim:
		return e.tools.TrimWithFade(ctx, src, dst, plan.SlotMS, 50)
	}
	return fmt.Errorf("unknown fit action %q", plan.Action)
}
