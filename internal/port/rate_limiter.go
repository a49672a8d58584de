package port

import "context"

// RateLimiter is a global admission gate in front of the AI gateway.
// Admit records the call when it returns true and records nothing when it returns false.
type RateLimiter interface {
	Admit(ctx context.Context) (bool, error)
}
