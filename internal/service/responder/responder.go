package responder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/model/knowledge"
	"github.com/portfolio-chat/backend/internal/model/profile"
	"github.com/portfolio-chat/backend/internal/service/ai"
)

// DefaultTimeout bounds the external completion when none is configured.
const DefaultTimeout = 20 * time.Second

// Responder turns a user message into a reply. It never fails.
type Responder struct {
	kb           *knowledge.Base
	owner        profile.Profile
	completer    ai.Completer
	timeout      time.Duration
	systemPrompt string
	logger       *zap.Logger
}

// New builds a Responder. A nil completer behaves like ai.Disabled.
func New(kb *knowledge.Base, owner profile.Profile, completer ai.Completer, timeout time.Duration, logger *zap.Logger) *Responder {
	if completer == nil {
		completer = ai.Disabled{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Responder{
		kb:           kb,
		owner:        owner,
		completer:    completer,
		timeout:      timeout,
		systemPrompt: ai.BuildSystemPrompt(owner, kb.Entries()),
		logger:       logger.With(zap.String("component", "responder")),
	}
}

// Respond applies, in order: knowledge-base match, greeting shortcut, external
// completion, default introduction.
func (r *Responder) Respond(ctx context.Context, userMessage string) string {
	if answer, ok := Match(r.kb.Entries(), userMessage); ok {
		return answer
	}

	if greeting, ok := Greeting(userMessage, r.owner.HelloGreeting, r.owner.HiGreeting); ok {
		return greeting
	}

	if r.completer.Available() {
		if reply, ok := r.complete(ctx, userMessage); ok {
			return reply
		}
	}

	return r.owner.DefaultIntro
}

func (r *Responder) complete(ctx context.Context, userMessage string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := r.completer.Complete(ctx, r.systemPrompt, userMessage)
	if err != nil {
		r.logger.Warn("external completion failed, using default reply",
			zap.String("provider", r.completer.Name()),
			zap.Error(err))
		return "", false
	}
	return reply, true
}
