package ai

import (
	"fmt"
	"strings"

	"github.com/portfolio-chat/backend/internal/model/knowledge"
	"github.com/portfolio-chat/backend/internal/model/profile"
)

// BuildSystemPrompt embeds every knowledge-base pair as a few-shot example and
// instructs the model to answer as the owner, declining unrelated questions.
func BuildSystemPrompt(owner profile.Profile, entries []knowledge.Entry) string {
	var examples strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&examples, "Q: %s\nA: %s\n\n", entry.Question, entry.Answer)
	}

	return fmt.Sprintf(`You are %s, a %s. Answer questions based on the following Q&A pairs. If the question is not related to my background, experience, or work, respond with: "%s"

%s

Respond in a friendly, professional manner. Keep responses concise but informative. Use the examples above as a guide for how to answer similar questions.`,
		owner.Name,
		owner.Role,
		owner.DeclineReply,
		examples.String(),
	)
}
