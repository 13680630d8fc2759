package testsupport

import (
	"path/filepath"
	"testing"

	"dubline/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.MediaDir = filepath.Join(base, "media")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.LogDir = cfgVal.Paths.LogDir
	cfgVal.STT.APIKey = "test"
	cfgVal.Translate.APIKey = "test"
	cfgVal.Humanize.APIKey = "test"
	cfgVal.TTS.APIKey = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithVoiceLanguages overrides the voice synthesis allowlist.
func WithVoiceLanguages(codes ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Languages.VoiceEnabled = codes
	}
}

// WithSubtitleLanguages overrides the default subtitle fan-out list.
func WithSubtitleLanguages(codes ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Languages.DefaultSubtitles = codes
	}
}

// WithHumanize enables the naturalness pass at the given prompt version.
func WithHumanize(promptVersion int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Humanize.Enabled = true
		b.cfg.Humanize.PromptVersion = promptVersion
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.MediaDir)
}
