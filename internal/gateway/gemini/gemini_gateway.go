package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"

	"orthocode/internal/config"
	"orthocode/internal/gateway"
	"orthocode/internal/port"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.0-flash"
)

func init() {
	gateway.RegisterProvider(providerName, func(cfg *config.GatewayConfig) (port.AIGateway, error) {
		return NewGateway(cfg)
	})
}

// generator is the part of *genai.GenerativeModel the gateway calls.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gateway implements port.AIGateway using Google's Gemini API.
type Gateway struct {
	client   *genai.Client
	model    string
	cfg      *config.GatewayConfig
	newModel func(systemPrompt string) generator
}

// NewGateway creates a Gemini gateway. The returned gateway owns a client
// connection and must be closed on shutdown.
func NewGateway(cfg *config.GatewayConfig) (*Gateway, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := genai.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	g := &Gateway{client: client, model: model, cfg: cfg}
	g.newModel = g.configureModel
	return g, nil
}

func (g *Gateway) configureModel(systemPrompt string) generator {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(float32(g.cfg.Temperature))
	maxTokens := g.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	m.SetMaxOutputTokens(int32(maxTokens))
	m.ResponseMIMEType = "application/json"
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	return m
}

func (g *Gateway) Provider() string { return providerName }

// Close releases the underlying client connection.
func (g *Gateway) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gateway) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout())
	defer cancel()

	resp, err := g.newModel(input.SystemPrompt).GenerateContent(ctx, genai.Text(input.UserPrompt))
	if err != nil {
		return nil, classify(err)
	}

	text, stopReason := firstText(resp)
	return &port.CompletionOutput{
		Text:       text,
		ModelUsed:  g.model,
		StopReason: stopReason,
	}, nil
}

func firstText(resp *genai.GenerateContentResponse) (string, string) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ""
	}
	c := resp.Candidates[0]
	stop := "stop"
	if c.FinishReason == genai.FinishReasonMaxTokens {
		stop = "max_tokens"
	}
	if c.Content == nil {
		return "", stop
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), stop
}

// grpcToHTTP maps the status codes the Gemini API reports over gRPC onto the HTTP
// statuses the shared error taxonomy is keyed on.
var grpcToHTTP = map[codes.Code]int{
	codes.ResourceExhausted: http.StatusTooManyRequests,
	codes.Unauthenticated:   http.StatusUnauthorized,
	codes.PermissionDenied:  http.StatusForbidden,
	codes.InvalidArgument:   http.StatusBadRequest,
	codes.NotFound:          http.StatusNotFound,
	codes.Unavailable:       http.StatusServiceUnavailable,
	codes.Internal:          http.StatusInternalServerError,
}

func classify(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return errors.Join(gateway.ErrContentBlocked, err)
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gateway.NewAPIError(providerName, gErr.Code, gErr.Error(), gErr.Header.Get("Retry-After"))
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			return gateway.NewAPIError(providerName, code, apiErr.Error(), "")
		}
		if st := apiErr.GRPCStatus(); st != nil {
			status, ok := grpcToHTTP[st.Code()]
			if !ok {
				status = http.StatusBadGateway
			}
			return gateway.NewAPIError(providerName, status, st.Message(), "")
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &gateway.TransportError{Provider: providerName, Err: err}
}
