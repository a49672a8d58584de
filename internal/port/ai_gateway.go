package port

import "context"

// CompletionInput carries the rendered prompts for a single completion call.
type CompletionInput struct {
	SystemPrompt string
	UserPrompt   string
}

// CompletionOutput contains the raw text returned by the model.
type CompletionOutput struct {
	Text       string
	ModelUsed  string
	StopReason string
}

// AIGateway abstracts the external text-completion API. Implementations perform
// exactly one upstream call per Complete and never retry.
type AIGateway interface {
	Complete(ctx context.Context, input CompletionInput) (*CompletionOutput, error)
	Provider() string
}
