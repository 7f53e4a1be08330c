package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/config"
)

// Ark completes through an eino chain: chat template followed by the chat model.
type Ark struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger *zap.Logger
}

// NewArk compiles the prompt chain around chatModel.
func NewArk(ctx context.Context, chatModel model.BaseChatModel, logger *zap.Logger) (*Ark, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Ark{
		chain:  runnable,
		logger: logger.With(zap.String("component", "ai.ark")),
	}, nil
}

func (a *Ark) Name() string { return config.ProviderArk }

func (a *Ark) Available() bool { return true }

// Complete runs the chain once.
func (a *Ark) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	response, err := a.chain.Invoke(ctx, map[string]any{
		"system": systemPrompt,
		"query":  userMessage,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	a.logger.Debug("completion received", zap.Int("length", len(response.Content)))
	return response.Content, nil
}
