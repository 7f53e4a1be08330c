package chat

// Conversation is a named, ordered log of user/ai turns.
type Conversation struct {
	ID       string    `json:"conversationId"`
	Messages []Message `json:"messages"`
}
