package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// MediaDir holds per-owner artifact directories (source audio, subtitle
	// files, voice tracks).
	MediaDir string `toml:"media_dir"`
	// LogDir holds the daemon log and the artifact database.
	LogDir string `toml:"log_dir"`
	// ScratchDir holds per-job temporary files; always cleaned per job.
	ScratchDir string `toml:"scratch_dir"`
}

// Languages controls which languages the pipeline produces.
type Languages struct {
	// DefaultSubtitles are rendered for every finished transcript, in
	// addition to the detected source language.
	DefaultSubtitles []string `toml:"default_subtitles"`
	// VoiceEnabled gates which subtitle languages fan out voice synthesis.
	// Regional variants are checked by base language.
	VoiceEnabled []string `toml:"voice_enabled"`
}

// Provider holds connection settings for one OpenAI-compatible endpoint.
type Provider struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Humanize configures the optional LLM naturalness pass.
type Humanize struct {
	Enabled bool `toml:"enabled"`
	Provider
	// PromptVersion is recorded as provenance on humanized artifacts; bumping
	// it re-humanizes cached translations on their next cache hit.
	PromptVersion int `toml:"prompt_version"`
}

// TTS configures speech synthesis.
type TTS struct {
	Provider
	// ProviderName is recorded on each voice track for idempotency keying.
	ProviderName string `toml:"provider_name"`
}

// Synthesis tunes the slot-fitting engine.
type Synthesis struct {
	// MinSlotMillis drops cues shorter than this; too short to voice.
	MinSlotMillis int `toml:"min_slot_millis"`
	// OverrunTolerance accepts synthesized audio up to slot*tolerance.
	OverrunTolerance float64 `toml:"overrun_tolerance"`
	// TrimmableRatio classifies audio up to slot*ratio as trimmable.
	TrimmableRatio float64 `toml:"trimmable_ratio"`
	// SpeedupCeiling bounds pitch-neutral speed change (1.08 = up to 8%).
	SpeedupCeiling float64 `toml:"speedup_ceiling"`
	// TooShortRatio classifies audio below slot*ratio as too short.
	TooShortRatio float64 `toml:"too_short_ratio"`
}

// Workflow contains daemon timing and retry configuration.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
	MaxJobAttempts     int `toml:"max_job_attempts"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubline.
//
// Configuration sections by subsystem:
//   - Paths: media, log, and scratch directories
//   - Languages: default subtitle fan-out and the voice allowlist
//   - STT: speech-to-text provider connection
//   - Translate: translation provider connection
//   - Humanize: optional LLM naturalness pass and prompt versioning
//   - TTS: speech synthesis provider connection
//   - Synthesis: slot-fitting thresholds
//   - Workflow: daemon polling intervals, heartbeats, retry budget
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Languages Languages `toml:"languages"`
	STT       Provider  `toml:"stt"`
	Translate Provider  `toml:"translate"`
	Humanize  Humanize  `toml:"humanize"`
	TTS       TTS       `toml:"tts"`
	Synthesis Synthesis `toml:"synthesis"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`

	// LogDir mirrors Paths.LogDir after normalization for convenience.
	LogDir string `toml:"-"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dubline/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dubline.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.MediaDir, c.Paths.LogDir, c.Paths.ScratchDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for audio editing.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
