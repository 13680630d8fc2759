package config

const (
	defaultMediaDir   = "~/.local/share/dubline/media"
	defaultLogDir     = "~/.local/share/dubline/logs"
	defaultScratchDir = "~/.local/share/dubline/scratch"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultProviderTimeoutSeconds = 120

	defaultSTTModel       = "whisper-1"
	defaultTranslateModel = "gpt-4o-mini"
	defaultHumanizeModel  = "gpt-4o-mini"
	defaultTTSModel       = "tts-1"
	defaultTTSProvider    = "openai"

	defaultMinSlotMillis    = 180
	defaultOverrunTolerance = 1.05
	defaultTrimmableRatio   = 1.25
	defaultSpeedupCeiling   = 1.08
	defaultTooShortRatio    = 0.45

	defaultQueuePollInterval  = 3
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 300
	defaultMaxJobAttempts     = 3

	defaultHumanizePromptVersion = 1
)

// defaultSubtitleLanguages is the curated fan-out list rendered for every
// finished transcript, over and above the detected source language.
var defaultSubtitleLanguages = []string{"en", "es", "pt", "fr", "de"}

// defaultVoiceLanguages gates which subtitle languages get a synthesized
// voice track.
var defaultVoiceLanguages = []string{"en", "es", "pt"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaDir:   defaultMediaDir,
			LogDir:     defaultLogDir,
			ScratchDir: defaultScratchDir,
		},
		Languages: Languages{
			DefaultSubtitles: append([]string(nil), defaultSubtitleLanguages...),
			VoiceEnabled:     append([]string(nil), defaultVoiceLanguages...),
		},
		STT: Provider{
			Model:          defaultSTTModel,
			TimeoutSeconds: defaultProviderTimeoutSeconds,
		},
		Translate: Provider{
			Model:          defaultTranslateModel,
			TimeoutSeconds: defaultProviderTimeoutSeconds,
		},
		Humanize: Humanize{
			Enabled: true,
			Provider: Provider{
				Model:          defaultHumanizeModel,
				TimeoutSeconds: defaultProviderTimeoutSeconds,
			},
			PromptVersion: defaultHumanizePromptVersion,
		},
		TTS: TTS{
			Provider: Provider{
				Model:          defaultTTSModel,
				TimeoutSeconds: defaultProviderTimeoutSeconds,
			},
			ProviderName: defaultTTSProvider,
		},
		Synthesis: Synthesis{
			MinSlotMillis:    defaultMinSlotMillis,
			OverrunTolerance: defaultOverrunTolerance,
			TrimmableRatio:   defaultTrimmableRatio,
			SpeedupCeiling:   defaultSpeedupCeiling,
			TooShortRatio:    defaultTooShortRatio,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			MaxJobAttempts:     defaultMaxJobAttempts,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
