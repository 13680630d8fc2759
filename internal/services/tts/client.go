package tts

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"dubline/internal/config"
	"dubline/internal/services"
)

// speechAPI is the slice of the OpenAI client the package needs.
type speechAPI interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Client calls a speech synthesis endpoint.
type Client struct {
	api          speechAPI
	model        string
	providerName string
	timeout      time.Duration
}

// NewClient builds a client from the TTS configuration.
func NewClient(cfg config.TTS) *Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	name := strings.TrimSpace(cfg.ProviderName)
	if name == "" {
		name = "openai"
	}
	return &Client{
		api:          openai.NewClientWithConfig(apiConfig),
		model:        cfg.Model,
		providerName: name,
		timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// WithAPI allows injecting a fake speech backend for tests.
func (c *Client) WithAPI(api speechAPI) {
	if c != nil && api != nil {
		c.api = api
	}
}

// ProviderName identifies the provider on voice track rows.
func (c *Client) ProviderName() string {
	return c.providerName
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Synthesize renders text with the given voice identity and writes the
// resulting audio to dst.
func (c *Client) Synthesize(ctx context.Context, text, voice, dst string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "synthesize", "create speech", "Speech synthesis request failed", err)
	}
	defer resp.Close()

	out, err := os.Create(dst)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "synthesize", "write audio", "Unable to create synthesis output file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp); err != nil {
		return services.Wrap(services.ErrExternalTool, "synthesize", "write audio", "Unable to write synthesis output", err)
	}
	return nil
}
