package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/portfolio-chat/backend/internal/config"
)

// Gemini completes through the Gemini generative API.
type Gemini struct {
	client *genai.Client
	cfg    config.GeminiConfig
	logger *zap.Logger
}

// NewGemini opens a client authenticated with cfg.APIKey.
func NewGemini(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "ai.gemini")),
	}, nil
}

func (g *Gemini) Name() string { return config.ProviderGemini }

func (g *Gemini) Available() bool { return true }

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Complete generates content with systemPrompt as the system instruction.
func (g *Gemini) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	// GenerativeModel carries per-request settings, so build one per call.
	m := g.client.GenerativeModel(g.cfg.Model)
	m.SetTemperature(g.cfg.Temperature)
	m.SetTopP(g.cfg.TopP)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userMessage))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", errors.New("Gemini API error: empty response")
	}

	g.logger.Debug("completion received", zap.String("model", g.cfg.Model), zap.Int("length", len(text)))
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		// Only the first candidate is used.
		break
	}
	return sb.String()
}
