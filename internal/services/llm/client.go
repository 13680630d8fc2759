package llm

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

// prompts maps prompt versions to their system prompt text. Adding a new
// version here and bumping the config invalidates cached humanizations on
// their next hit.
var prompts = map[int]string{
	1: "You are a dialogue editor for %s dubbing. Rewrite the given translation so it sounds like natural spoken %s. Keep the meaning exact and the length close to the original. Return only the rewritten text.",
	2: "You are a dialogue editor for %s dubbing. Rewrite the given translation so it sounds like natural spoken %s: contractions where natural, idiomatic word order, no stilted literalisms. Keep the meaning exact and the length no longer than the original. Return only the rewritten text.",
}

const latestPromptVersion = 2

// chatAPI is the slice of the OpenAI client the package needs.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client runs the naturalness pass against a chat-completion endpoint.
type Client struct {
	api           chatAPI
	model         string
	promptVersion int
	timeout       time.Duration
}

// NewClient builds a client from the humanize configuration.
func NewClient(cfg config.Humanize) *Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	version := cfg.PromptVersion
	if _, ok := prompts[version]; !ok {
		version = latestPromptVersion
	}
	return &Client{
		api:           openai.NewClientWithConfig(apiConfig),
		model:         cfg.Model,
		promptVersion: version,
		timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// WithAPI allows injecting a fake chat backend for tests.
func (c *Client) WithAPI(api chatAPI) {
	if c != nil && api != nil {
		c.api = api
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// PromptVersion returns the active prompt version, recorded as provenance
// on humanized artifacts.
func (c *Client) PromptVersion() int {
	return c.promptVersion
}

// Humanize rewrites a translation into natural spoken language. The tone
// hint, when present, describes the speaker's delivery and is folded into
// the instruction.
func (c *Client) Humanize(ctx context.Context, text, lang, toneHint string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	display := language.DisplayName(lang)
	prompt := fmt.Sprintf(prompts[c.promptVersion], display, display)
	if toneHint = strings.TrimSpace(toneHint); toneHint != "" {
		prompt += " The speaker's delivery: " + toneHint + "."
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "humanize", "create chat completion", "Humanize request failed", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", services.Wrap(services.ErrExternalTool, "humanize", "create chat completion", "Humanize returned an empty response", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
