package chat

import "time"

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// TimestampLayout renders UTC instants with millisecond precision and a Z suffix.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Message is one immutable turn entry of a conversation.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    Sender `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// FormatTimestamp returns t in the wire format used by Message.Timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
