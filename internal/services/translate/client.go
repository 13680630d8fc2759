package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"dubline/internal/config"
	"dubline/internal/language"
	"dubline/internal/services"
)

const systemPrompt = "You are a professional subtitle translator. Translate the user's text from %s to %s. Preserve meaning and tone. Keep the translation concise enough to be read in the same time as the original. Return only the translated text with no commentary."

// chatAPI is the slice of the OpenAI client the package needs.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client calls a chat-completion endpoint for translation.
type Client struct {
	api     chatAPI
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

// WithAPI allows injecting a fake chat backend for tests.
func (c *Client) WithAPI(api chatAPI) {
	if c != nil && api != nil {
		c.api = api
	}
}

// Model returns the configured model name, recorded as provenance on
// cached translations.
func (c *Client) Model() string {
	return c.model
}

// Translate renders text from the source language into the target language.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := fmt.Sprintf(systemPrompt, language.DisplayName(sourceLang), language.DisplayName(targetLang))
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "translate", "create chat completion", "Translation request failed", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", services.Wrap(services.ErrExternalTool, "translate", "create chat completion", "Translation returned an empty response", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
