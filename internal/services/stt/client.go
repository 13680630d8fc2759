package stt

import (
	"context"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"dubline/internal/config"
	"dubline/internal/services"
)

// Segment is one timed span of transcribed speech.
type Segment struct {
	StartMS int64
	EndMS   int64
	Text    string
}

// Result is a completed transcription.
type Result struct {
	Language string
	Text     string
	Segments []Segment
}

// transcriptionAPI is the slice of the OpenAI client the package needs.
type transcriptionAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Client calls a Whisper-compatible transcription endpoint.
type Client struct {
	api     transcriptionAPI
	model   string
	timeout time.Duration
}

// NewClient builds a client from the provider configuration.
func NewClient(cfg config.Provider) *Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(apiConfig),
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// WithAPI allows injecting a fake transcription backend for tests.
func (c *Client) WithAPI(api transcriptionAPI) {
	if c != nil && api != nil {
		c.api = api
	}
}

// Transcribe sends the audio file and maps the verbose response into timed
// segments. Segment boundaries are rounded to milliseconds.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "create transcription", "Transcription request failed", err)
	}

	result := &Result{
		Language: strings.ToLower(strings.TrimSpace(resp.Language)),
		Text:     strings.TrimSpace(resp.Text),
	}
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		start := int64(math.Round(seg.Start * 1000))
		end := int64(math.Round(seg.End * 1000))
		if end <= start {
			continue
		}
		result.Segments = append(result.Segments, Segment{StartMS: start, EndMS: end, Text: text})
	}
	return result, nil
}
