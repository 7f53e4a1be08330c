package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/model/chat"
)

// Responder produces the reply for one user message.
type Responder interface {
	Respond(ctx context.Context, userMessage string) string
}

// Turn is the result of one exchange.
type Turn struct {
	ConversationID string         `json:"conversationId"`
	Messages       []chat.Message `json:"messages"`
	LastMessage    chat.Message   `json:"lastMessage"`
}

// Service encapsulates conversation state management.
type Service struct {
	store     Store
	responder Responder
	now       func() time.Time
	logger    *zap.Logger
}

// NewService wires the store and responder together.
func NewService(store Store, responder Responder, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		responder: responder,
		now:       time.Now,
		logger:    logger.With(zap.String("component", "chat")),
	}
}

// Send 处理一轮对话：记录用户消息、生成回复，并一次性追加两条消息。
func (s *Service) Send(ctx context.Context, conversationID, text string) (Turn, error) {
	if err := ctx.Err(); err != nil {
		return Turn{}, err
	}

	id, history := s.store.GetOrCreate(ctx, conversationID)

	userMessage := s.newMessage(text, chat.SenderUser)
	reply := s.responder.Respond(ctx, text)
	aiMessage := s.newMessage(reply, chat.SenderAI)

	messages, err := s.store.Append(ctx, id, userMessage, aiMessage)
	if errors.Is(err, ErrConversationNotFound) {
		// 回复期间会话被清除：删除生效，本轮只返回给调用方而不落库
		s.logger.Debug("conversation cleared during turn", zap.String("conversation_id", id))
		messages = append(history, userMessage, aiMessage)
	} else if err != nil {
		return Turn{}, err
	}

	s.logger.Debug("chat turn completed",
		zap.String("conversation_id", id),
		zap.Int("messages", len(messages)))

	return Turn{
		ConversationID: id,
		Messages:       messages,
		LastMessage:    aiMessage,
	}, nil
}

// History returns the stored messages for the conversation.
func (s *Service) History(ctx context.Context, conversationID string) ([]chat.Message, error) {
	return s.store.Get(ctx, conversationID)
}

// Clear deletes the conversation; clearing an unknown id succeeds.
func (s *Service) Clear(ctx context.Context, conversationID string) {
	s.store.Delete(ctx, conversationID)
}

// Conversations reports how many conversations are held.
func (s *Service) Conversations(ctx context.Context) int {
	return s.store.Len(ctx)
}

func (s *Service) newMessage(text string, sender chat.Sender) chat.Message {
	return chat.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: chat.FormatTimestamp(s.now()),
	}
}
