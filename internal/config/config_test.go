package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dubline/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndEnsuresDirectories(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantMedia := filepath.Join(tempHome, ".local", "share", "dubline", "media")
	if cfg.Paths.MediaDir != wantMedia {
		t.Fatalf("unexpected media dir: got %q want %q", cfg.Paths.MediaDir, wantMedia)
	}
	if cfg.LogDir != cfg.Paths.LogDir {
		t.Fatalf("LogDir mirror out of sync: %q vs %q", cfg.LogDir, cfg.Paths.LogDir)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if !cfg.Humanize.Enabled {
		t.Fatal("expected humanization enabled by default")
	}
	if cfg.Humanize.PromptVersion != 1 {
		t.Fatalf("unexpected prompt version: %d", cfg.Humanize.PromptVersion)
	}
	if cfg.TTS.ProviderName != "openai" {
		t.Fatalf("unexpected tts provider: %q", cfg.TTS.ProviderName)
	}
	if cfg.Workflow.HeartbeatTimeout <= cfg.Workflow.HeartbeatInterval {
		t.Fatalf("heartbeat timeout %d must exceed interval %d",
			cfg.Workflow.HeartbeatTimeout, cfg.Workflow.HeartbeatInterval)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.MediaDir, cfg.Paths.LogDir, cfg.Paths.ScratchDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPathNormalizesValues(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dubline.toml")

	type payload struct {
		Paths struct {
			MediaDir   string `toml:"media_dir"`
			LogDir     string `toml:"log_dir"`
			ScratchDir string `toml:"scratch_dir"`
		} `toml:"paths"`
		Languages struct {
			VoiceEnabled []string `toml:"voice_enabled"`
		} `toml:"languages"`
		TTS struct {
			ProviderName string `toml:"provider_name"`
		} `toml:"tts"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.MediaDir = filepath.Join(tempDir, "media")
	custom.Paths.LogDir = filepath.Join(tempDir, "logs")
	custom.Paths.ScratchDir = filepath.Join(tempDir, "scratch")
	custom.Languages.VoiceEnabled = []string{" ES ", "pt-BR", "es", ""}
	custom.TTS.ProviderName = " ElevenLabs "
	custom.Logging.Format = "JSON"

	raw, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}

	want := []string{"es", "pt-br"}
	got := cfg.Languages.VoiceEnabled
	if len(got) != len(want) {
		t.Fatalf("unexpected voice languages: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected voice languages: %v", got)
		}
	}
	if cfg.TTS.ProviderName != "elevenlabs" {
		t.Fatalf("expected provider name lowercased, got %q", cfg.TTS.ProviderName)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected log format lowercased, got %q", cfg.Logging.Format)
	}
	if cfg.STT.Model != config.Default().STT.Model {
		t.Fatalf("expected default stt model, got %q", cfg.STT.Model)
	}
}

func TestProviderKeysComeFromEnvironment(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("DUBLINE_STT_API_KEY", " stt-secret ")
	t.Setenv("DUBLINE_TTS_API_KEY", "tts-secret")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.STT.APIKey != "stt-secret" {
		t.Fatalf("expected trimmed stt key from env, got %q", cfg.STT.APIKey)
	}
	if cfg.TTS.APIKey != "tts-secret" {
		t.Fatalf("expected tts key from env, got %q", cfg.TTS.APIKey)
	}
	if cfg.Translate.APIKey != "" {
		t.Fatalf("expected empty translate key, got %q", cfg.Translate.APIKey)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dubline.toml")
	content := strings.Join([]string{
		"[synthesis]",
		"overrun_tolerance = 1.30",
		"trimmable_ratio = 1.20",
	}, "\n")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "overrun_tolerance") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	tempDir := t.TempDir()
	samplePath := filepath.Join(tempDir, "nested", "config.toml")

	if err := config.CreateSample(samplePath); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(samplePath)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config failed validation: %v", err)
	}
}
