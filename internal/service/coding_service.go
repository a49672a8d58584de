package service

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"orthocode/internal/domain"
	"orthocode/internal/gateway"
	"orthocode/internal/normalizer"
	"orthocode/internal/port"
	"orthocode/internal/validator"
)

// CodingService runs one clinical encounter through the coding pipeline.
type CodingService interface {
	// Generate returns either a normalized result or a *domain.CodingError, never both.
	Generate(ctx context.Context, body io.Reader) (*domain.CodingResult, error)
}

type codingService struct {
	limiter port.RateLimiter
	gateway port.AIGateway
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewCodingService creates a new CodingService. gw may be nil when no provider is
// configured; requests then fail with CONFIG_ERROR after validation.
func NewCodingService(limiter port.RateLimiter, gw port.AIGateway, logger zerolog.Logger, tracer trace.Tracer) CodingService {
	return &codingService{
		limiter: limiter,
		gateway: gw,
		logger:  logger,
		tracer:  tracer,
	}
}

func (s *codingService) Generate(ctx context.Context, body io.Reader) (result *domain.CodingResult, err error) {
	ctx, span := s.tracer.Start(ctx, "coding.generate")
	defer span.End()

	logger := s.loggerFor(ctx)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("codingService.Generate: panic recovered")
			result = nil
			err = domain.NewCodingError(domain.CodeInternalError, fmt.Sprintf("panic: %v", r))
		}
		if err != nil {
			ce := domain.AsCodingError(err)
			err = ce
			s.recordFailure(span, logger, ce, time.Since(start))
			return
		}
		span.SetAttributes(
			attribute.String("coding.outcome", "SUCCESS"),
			attribute.String("coding.primary_cpt", result.PrimaryCode.CPTCode),
		)
		logger.Info().
			Str("primary_cpt", result.PrimaryCode.CPTCode).
			Str("confidence", string(result.PrimaryCode.Confidence)).
			Bool("clean_claim_ready", result.CleanClaimReady).
			Dur("elapsed", time.Since(start)).
			Msg("coding request completed")
	}()

	admitted, err := s.limiter.Admit(ctx)
	if err != nil {
		return nil, domain.WrapCodingError(domain.CodeInternalError, "rate limiter unavailable", err)
	}
	if !admitted {
		return nil, domain.NewCodingError(domain.CodeRateLimited, "global request window is full")
	}

	req, err := validator.ReadCodingRequest(body)
	if err != nil {
		return nil, err
	}

	if s.gateway == nil {
		return nil, domain.WrapCodingError(domain.CodeConfigError, gateway.ErrNotConfigured.Error(), gateway.ErrNotConfigured)
	}

	out, err := s.complete(ctx, gateway.BuildPrompts(req))
	if err != nil {
		return nil, gateway.ToCodingError(err)
	}
	if out == nil || strings.TrimSpace(out.Text) == "" {
		return nil, domain.NewCodingError(domain.CodeAIEmptyResponse, "AI returned no text content")
	}
	if out.StopReason == "max_tokens" {
		logger.Warn().Str("model", out.ModelUsed).Msg("codingService.Generate: output hit the token limit, JSON may be truncated")
	}

	parsed := gateway.ExtractJSON(out.Text)
	if parsed == nil {
		logger.Debug().Int("response_chars", len(out.Text)).Msg("codingService.Generate: no JSON object in AI response")
		return nil, domain.NewCodingError(domain.CodeAIParseError, "could not extract a JSON object from AI response")
	}

	normalized := normalizer.Normalize(parsed)
	return &normalized, nil
}

func (s *codingService) complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	ctx, span := s.tracer.Start(ctx, "coding.gateway",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gateway.provider", s.gateway.Provider()),
			attribute.String("prompt.version", gateway.SystemPromptVersion),
		))
	defer span.End()

	out, err := s.gateway.Complete(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("gateway.model", out.ModelUsed),
		attribute.String("gateway.stop_reason", out.StopReason),
	)
	return out, nil
}

func (s *codingService) recordFailure(span trace.Span, logger *zerolog.Logger, ce *domain.CodingError, elapsed time.Duration) {
	span.SetAttributes(attribute.String("coding.outcome", string(ce.Code)))
	span.RecordError(ce)
	span.SetStatus(codes.Error, string(ce.Code))

	evt := logger.Warn()
	switch ce.Code {
	case domain.CodeConfigError, domain.CodeAIAuthError, domain.CodeInternalError:
		evt = logger.Error()
	}
	if ce.Err != nil {
		evt = evt.Err(ce.Err)
	}
	evt.
		Str("error_code", string(ce.Code)).
		Str("diagnostic", ce.Message).
		Dur("elapsed", elapsed).
		Msg("coding request failed")
}

// loggerFor prefers the request-scoped logger carried on ctx.
func (s *codingService) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}
