// Package llm wraps the OpenAI-compatible chat-completion API behind a
// single-call capability interface so pipeline logic can be tested against a
// canned stub.
package llm

import (
	"context"
	"fmt"
)

// Client sends one single-turn prompt and returns the raw completion text.
// Implementations never retry and never return partial output.
type Client interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// ProviderError reports an upstream completion failure, either a non-2xx
// response (Status and Body set) or a transport error (Err set).
type ProviderError struct {
	Status int
	Body   string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion provider: %v", e.Err)
	}
	return fmt.Sprintf("completion provider: status=%d body=%s", e.Status, e.Body)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
