package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/config"
)

// ChatCompletionClient is the subset of *openai.Client used here; tests substitute it.
type ChatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI completes through the Chat Completions API.
type OpenAI struct {
	client      ChatCompletionClient
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewOpenAIClient creates the HTTP client for cfg.
func NewOpenAIClient(cfg config.OpenAIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewOpenAI wraps client with the model parameters from cfg.
func NewOpenAI(client ChatCompletionClient, cfg config.OpenAIConfig, logger *zap.Logger) *OpenAI {
	return &OpenAI{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger.With(zap.String("component", "ai.openai")),
	}
}

func (o *OpenAI) Name() string { return config.ProviderOpenAI }

func (o *OpenAI) Available() bool { return true }

// Complete sends the system prompt and user message and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userMessage})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices returned")
	}

	content := resp.Choices[0].Message.Content
	o.logger.Debug("completion received", zap.String("model", o.model), zap.Int("length", len(content)))
	return content, nil
}
