package userstory

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/service/ai"
)

var ErrFeatureRequired = errors.New("no feature provided")

//go:embed prompt.md.tmpl
var promptText string

var promptTemplate = template.Must(template.New("userstory").Parse(promptText))

// Service 根据功能描述生成 Markdown 格式的用户故事。
type Service struct {
	completer ai.Completer
	logger    *zap.Logger
}

// NewService returns a generator backed by completer. A nil completer is treated as unavailable.
func NewService(completer ai.Completer, logger *zap.Logger) *Service {
	if completer == nil {
		completer = ai.Disabled{}
	}
	return &Service{
		completer: completer,
		logger:    logger.With(zap.String("component", "userstory")),
	}
}

// Available reports whether a live completer is configured.
func (s *Service) Available() bool {
	return s.completer.Available()
}

// Provider names the completer in use.
func (s *Service) Provider() string {
	return s.completer.Name()
}

// Generate renders the prompt for feature and returns the model output verbatim.
func (s *Service) Generate(ctx context.Context, feature string) (string, error) {
	if feature == "" {
		return "", ErrFeatureRequired
	}
	if !s.completer.Available() {
		return "", ai.ErrUnavailable
	}

	prompt, err := BuildPrompt(feature)
	if err != nil {
		return "", err
	}

	s.logger.Info("generating user story", zap.String("provider", s.completer.Name()), zap.Int("feature_length", len(feature)))

	story, err := s.completer.Complete(ctx, "", prompt)
	if err != nil {
		return "", fmt.Errorf("generate user story: %w", err)
	}
	return story, nil
}

// BuildPrompt renders the Product Owner prompt for feature.
func BuildPrompt(feature string) (string, error) {
	var sb strings.Builder
	if err := promptTemplate.Execute(&sb, struct{ Feature string }{Feature: feature}); err != nil {
		return "", fmt.Errorf("render user story prompt: %w", err)
	}
	return sb.String(), nil
}
