package ai

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by completers that have no live backend.
var ErrUnavailable = errors.New("language model unavailable")

// Completer produces a single completion for a system prompt and a user message.
// It is selected once at startup; callers never branch on configuration.
type Completer interface {
	Name() string
	Available() bool
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Disabled is the Completer used when no provider is configured.
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) Available() bool { return false }

func (Disabled) Complete(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}
