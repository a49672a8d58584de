package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"orthocode/internal/config"
	"orthocode/internal/gateway"
	"orthocode/internal/port"
)

const (
	providerName = "openai"
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o"
)

func init() {
	gateway.RegisterProvider(providerName, func(cfg *config.GatewayConfig) (port.AIGateway, error) {
		return NewGateway(cfg), nil
	})
}

// Gateway implements port.AIGateway using the OpenAI Chat Completions API.
// Any server speaking the same contract can be targeted through the endpoint setting.
type Gateway struct {
	apiKey      string
	model       string
	endpoint    string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewGateway creates an OpenAI-compatible gateway from the gateway config.
func NewGateway(cfg *config.GatewayConfig) *Gateway {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return NewGatewayWithEndpoint(cfg, endpoint)
}

// NewGatewayWithEndpoint creates a gateway pointing at a custom API endpoint (for testing).
func NewGatewayWithEndpoint(cfg *config.GatewayConfig, endpoint string) *Gateway {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &Gateway{
		apiKey:      cfg.APIKey,
		model:       model,
		endpoint:    endpoint,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: cfg.Timeout()},
	}
}

func (g *Gateway) Provider() string { return providerName }

func (g *Gateway) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	reqBody := map[string]interface{}{
		"model":       g.model,
		"max_tokens":  g.maxTokens,
		"temperature": g.temperature,
		"messages": []map[string]interface{}{
			{"role": "system", "content": input.SystemPrompt},
			{"role": "user", "content": input.UserPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &gateway.TransportError{Provider: providerName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &gateway.TransportError{Provider: providerName, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, gateway.NewAPIError(providerName, resp.StatusCode, string(respBody), resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, g.model)
}

// apiResponse models the Chat Completions response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.CompletionOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", gateway.ErrMalformedResponse, err, gateway.Truncate(string(body), 200))
	}

	out := &port.CompletionOutput{ModelUsed: model}
	if resp.Model != "" {
		out.ModelUsed = resp.Model
	}
	if len(resp.Choices) == 0 {
		return out, nil
	}

	out.Text = resp.Choices[0].Message.Content
	// Normalize to the stop reason vocabulary used across providers.
	switch resp.Choices[0].FinishReason {
	case "length":
		out.StopReason = "max_tokens"
	default:
		out.StopReason = resp.Choices[0].FinishReason
	}
	return out, nil
}
