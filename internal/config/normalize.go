package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLanguages()
	c.normalizeProviders()
	c.normalizeSynthesis()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	c.LogDir = c.Paths.LogDir
	return nil
}

func (c *Config) normalizeLanguages() {
	c.Languages.DefaultSubtitles = normalizeCodeList(c.Languages.DefaultSubtitles)
	c.Languages.VoiceEnabled = normalizeCodeList(c.Languages.VoiceEnabled)
}

func normalizeCodeList(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

func (c *Config) normalizeProviders() {
	normalizeProvider(&c.STT, "DUBLINE_STT_API_KEY")
	normalizeProvider(&c.Translate, "DUBLINE_TRANSLATE_API_KEY")
	normalizeProvider(&c.Humanize.Provider, "DUBLINE_LLM_API_KEY")
	normalizeProvider(&c.TTS.Provider, "DUBLINE_TTS_API_KEY")
	c.TTS.ProviderName = strings.ToLower(strings.TrimSpace(c.TTS.ProviderName))
	if c.TTS.ProviderName == "" {
		c.TTS.ProviderName = defaultTTSProvider
	}
	if c.Humanize.PromptVersion <= 0 {
		c.Humanize.PromptVersion = defaultHumanizePromptVersion
	}
}

func normalizeProvider(p *Provider, envKey string) {
	p.APIKey = strings.TrimSpace(p.APIKey)
	if p.APIKey == "" {
		if value, ok := os.LookupEnv(envKey); ok {
			p.APIKey = strings.TrimSpace(value)
		}
	}
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	p.Model = strings.TrimSpace(p.Model)
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = defaultProviderTimeoutSeconds
	}
}

func (c *Config) normalizeSynthesis() {
	if c.Synthesis.MinSlotMillis <= 0 {
		c.Synthesis.MinSlotMillis = defaultMinSlotMillis
	}
	if c.Synthesis.OverrunTolerance <= 1 {
		c.Synthesis.OverrunTolerance = defaultOverrunTolerance
	}
	if c.Synthesis.TrimmableRatio <= c.Synthesis.OverrunTolerance {
		c.Synthesis.TrimmableRatio = defaultTrimmableRatio
	}
	if c.Synthesis.SpeedupCeiling <= 1 {
		c.Synthesis.SpeedupCeiling = defaultSpeedupCeiling
	}
	if c.Synthesis.TooShortRatio <= 0 || c.Synthesis.TooShortRatio >= 1 {
		c.Synthesis.TooShortRatio = defaultTooShortRatio
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		c.Workflow.HeartbeatTimeout = defaultHeartbeatTimeout
	}
	if c.Workflow.MaxJobAttempts <= 0 {
		c.Workflow.MaxJobAttempts = defaultMaxJobAttempts
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
