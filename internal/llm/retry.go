package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"grant-assistant/internal/contextutil"
)

// RetryingGenerator retries transient generation failures with jittered
// exponential backoff. Other errors are returned immediately.
type RetryingGenerator struct {
	next       Generator
	maxRetries int
	initial    time.Duration
}

// NewRetryingGenerator wraps next. maxRetries counts retries after the first
// attempt.
func NewRetryingGenerator(next Generator, maxRetries int, initial time.Duration) *RetryingGenerator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if initial <= 0 {
		initial = time.Second
	}
	return &RetryingGenerator{next: next, maxRetries: maxRetries, initial: initial}
}

// Generate calls the wrapped generator until it succeeds, fails permanently
// or the retry budget is spent.
func (g *RetryingGenerator) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var text string
	op := func() error {
		out, err := g.next.Generate(ctx, prompt, params)
		if err != nil {
			if !IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		text = out
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.initial
	b.MaxInterval = 30 * g.initial
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(g.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		logger.WarnContext(ctx, "generation failed, retrying", "error", err, "wait", wait, "rate_limited", IsRateLimited(err))
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", err
	}
	return text, nil
}
