package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/config"
)

// New selects the Completer for cfg.Provider. Failures to build a live client
// are logged and degrade to Disabled so the service still starts.
func New(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) Completer {
	provider := ResolveProvider(cfg)

	completer, err := NewForProvider(ctx, cfg, provider, logger)
	if err != nil {
		logger.Warn("language model integration disabled",
			zap.String("provider", provider),
			zap.Error(err))
		return Disabled{}
	}
	return completer
}

// ResolveProvider maps "auto" to the first provider with credentials.
func ResolveProvider(cfg config.AIConfig) string {
	if cfg.Provider != "" && cfg.Provider != config.ProviderAuto {
		return cfg.Provider
	}

	switch {
	case cfg.OpenAI.Enabled():
		return config.ProviderOpenAI
	case cfg.Gemini.Enabled():
		return config.ProviderGemini
	case cfg.Ark.Enabled():
		return config.ProviderArk
	default:
		return config.ProviderNone
	}
}

// NewForProvider builds the Completer for one named provider.
func NewForProvider(ctx context.Context, cfg config.AIConfig, provider string, logger *zap.Logger) (Completer, error) {
	switch provider {
	case config.ProviderNone:
		return Disabled{}, nil
	case config.ProviderOpenAI:
		if !cfg.OpenAI.Enabled() {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return NewOpenAI(NewOpenAIClient(cfg.OpenAI), cfg.OpenAI, logger), nil
	case config.ProviderGemini:
		if !cfg.Gemini.Enabled() {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return NewGemini(ctx, cfg.Gemini, logger)
	case config.ProviderArk:
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return NewArk(ctx, chatModel, logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
