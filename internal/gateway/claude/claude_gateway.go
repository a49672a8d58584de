package claude

import (
	"context"
	"errors"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"orthocode/internal/config"
	"orthocode/internal/gateway"
	"orthocode/internal/port"
)

const (
	providerName = "claude"
	defaultModel = "claude-sonnet-4-20250514"
)

func init() {
	gateway.RegisterProvider(providerName, func(cfg *config.GatewayConfig) (port.AIGateway, error) {
		return NewGateway(cfg), nil
	})
}

// Messager is the subset of the Anthropic client used by the gateway.
type Messager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Gateway implements port.AIGateway using the Anthropic Messages API.
type Gateway struct {
	messages    Messager
	model       string
	maxTokens   int64
	temperature float64
}

// NewGateway creates a Claude gateway from the gateway config. The SDK's built-in
// retries are disabled: every request makes exactly one upstream call.
func NewGateway(cfg *config.GatewayConfig) *Gateway {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	client := anthropic.NewClient(opts...)
	return NewGatewayWithMessager(cfg, &client.Messages)
}

// NewGatewayWithMessager creates a gateway around a custom Messager (for testing).
func NewGatewayWithMessager(cfg *config.GatewayConfig, messages Messager) *Gateway {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &Gateway{
		messages:    messages,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

func (g *Gateway) Provider() string { return providerName }

func (g *Gateway) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	resp, err := g.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   g.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: input.SystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(input.UserPrompt))},
		Temperature: anthropic.Float(g.temperature),
	})
	if err != nil {
		return nil, classify(err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	modelUsed := string(resp.Model)
	if modelUsed == "" {
		modelUsed = g.model
	}
	return &port.CompletionOutput{
		Text:       sb.String(),
		ModelUsed:  modelUsed,
		StopReason: string(resp.StopReason),
	}, nil
}

func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		retryAfter := ""
		if apiErr.Response != nil {
			retryAfter = apiErr.Response.Header.Get("Retry-After")
		}
		return gateway.NewAPIError(providerName, apiErr.StatusCode, apiErr.Error(), retryAfter)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &gateway.TransportError{Provider: providerName, Err: err}
}
