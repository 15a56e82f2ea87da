// Package vision invokes multimodal chat-completion models over the
// OpenAI-compatible API surface.
package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aidpal-server-go/internal/domain/analysis"
	"aidpal-server-go/internal/platform/logging"

	"github.com/sashabaranov/go-openai"
)

// Config carries connection and sampling parameters. The model name is not
// part of the config: the orchestrator picks it per trial.
type Config struct {
	Type        string
	BaseURL     string
	APIKey      string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Provider is the OpenAI-compatible analysis.Invoker.
type Provider struct {
	config *Config
	logger *logging.Logger

	client *openai.Client
}

// NewProvider builds an uninitialised provider.
func NewProvider(config *Config, logger *logging.Logger) (*Provider, error) {
	if config == nil {
		return nil, fmt.Errorf("vision provider config is required")
	}
	return &Provider{
		config: config,
		logger: logger,
	}, nil
}

// Initialize creates the API client. Separate from construction so the
// bootstrap can build the object graph before touching credentials.
func (p *Provider) Initialize() error {
	switch strings.ToLower(p.config.Type) {
	case "", "openai":
		if p.config.APIKey == "" {
			return fmt.Errorf("vision API key is required")
		}
		clientConfig := openai.DefaultConfig(p.config.APIKey)
		if p.config.BaseURL != "" {
			clientConfig.BaseURL = p.config.BaseURL
		}
		p.client = openai.NewClientWithConfig(clientConfig)
	default:
		return fmt.Errorf("unsupported vision provider type: %s", p.config.Type)
	}

	p.logger.DebugTag("vision", "provider initialised: base_url=%s", p.config.BaseURL)
	return nil
}

// Cleanup releases resources.
func (p *Provider) Cleanup() error {
	return nil
}

// Invoke sends one prompt-plus-image completion request to the named model
// and returns the raw response text. Remote HTTP failures come back as
// *analysis.RemoteError so callers can read the status code.
func (p *Provider) Invoke(ctx context.Context, req analysis.InvokeRequest) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("vision provider not initialised")
	}

	message := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: req.Prompt,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", req.MediaType, req.ImagePayload),
				},
			},
		},
	}

	completion := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    []openai.ChatCompletionMessage{message},
		Temperature: float32(p.config.Temperature),
		TopP:        float32(p.config.TopP),
	}
	if p.config.MaxTokens > 0 {
		completion.MaxTokens = p.config.MaxTokens
	}
	if len(req.Schema) > 0 {
		completion.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "wound_analysis",
				Schema: req.Schema,
				Strict: true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, completion)
	if err != nil {
		return "", wrapRemoteError(req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", req.Model)
	}

	text := resp.Choices[0].Message.Content
	p.logger.DebugTag("vision", "model %s answered with %d bytes", req.Model, len(text))
	return text, nil
}

// wrapRemoteError surfaces the HTTP status of an API failure so the
// orchestrator's exhaustion classifier can see it.
func wrapRemoteError(model string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &analysis.RemoteError{
			Status: apiErr.HTTPStatusCode,
			Err:    fmt.Errorf("model %s: %w", model, err),
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &analysis.RemoteError{
			Status: reqErr.HTTPStatusCode,
			Err:    fmt.Errorf("model %s: %w", model, err),
		}
	}
	return fmt.Errorf("model %s: %w", model, err)
}
