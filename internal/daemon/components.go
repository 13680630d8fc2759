package daemon

import (
	"fmt"
	"log/slog"

	"dubline/internal/config"
	"dubline/internal/media/audio"
	"dubline/internal/owners"
	"dubline/internal/services/llm"
	"dubline/internal/services/stt"
	"dubline/internal/services/translate"
	"dubline/internal/services/tts"
	"dubline/internal/store"
	"dubline/internal/subtitles"
	"dubline/internal/transcripts"
	"dubline/internal/voice"
	"dubline/internal/workflow"
)

// Build wires a complete daemon from configuration: store, provider clients,
// audio toolchain, the three lane stages, and the workflow manager.
func Build(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}

	registry := owners.DefaultRegistry(st)
	tools := audio.NewToolchain(cfg.FFmpegBinary(), cfg.FFprobeBinary())

	var humanizer *llm.Client
	if cfg.Humanize.Enabled {
		humanizer = llm.NewClient(cfg.Humanize)
	}

	// The humanizer doubles as the transcript cleaner and the synthesis
	// rewriter; all three concerns run the same chat model.
	var cleaner transcripts.Cleaner
	var rewriter voice.Rewriter
	var svcHumanizer subtitles.Humanizer
	if humanizer != nil {
		cleaner = humanizer
		rewriter = humanizer
		svcHumanizer = humanizer
	}

	transcribeStage := transcripts.NewStage(cfg, st, stt.NewClient(cfg.STT), cleaner, tools, logger)

	ttsClient := tts.NewClient(cfg.TTS)
	translationSvc := subtitles.NewTranslationService(st, translate.NewClient(cfg.Translate), svcHumanizer, "openai", logger)
	orchestrator := voice.NewOrchestrator(cfg, st, registry, ttsClient.ProviderName(), logger)
	subtitleStage := subtitles.NewStage(cfg, st, translationSvc, orchestrator, logger)

	engine := voice.NewEngine(cfg, st, ttsClient, rewriter, tools, logger)
	voiceStage := voice.NewStage(cfg, st, engine, tools, logger)

	mgr := workflow.NewManager(cfg, st, logger, transcribeStage, subtitleStage, voiceStage)

	d, err := New(cfg, st, logger, mgr, registry)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return d, nil
}
