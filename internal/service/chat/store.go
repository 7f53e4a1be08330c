package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/portfolio-chat/backend/internal/model/chat"
)

// MaxMessages 单个会话保留的最大消息数，超出时从最旧的开始丢弃。
const MaxMessages = 50

var ErrConversationNotFound = errors.New("conversation not found")

// Store 会话存储接口。
type Store interface {
	GetOrCreate(ctx context.Context, id string) (string, []chat.Message)
	Append(ctx context.Context, id string, msgs ...chat.Message) ([]chat.Message, error)
	Get(ctx context.Context, id string) ([]chat.Message, error)
	Delete(ctx context.Context, id string)
	Len(ctx context.Context) int
}

// MemoryStore 进程内会话存储，重启即丢失。
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]chat.Message
	limit         int
}

// NewMemoryStore creates an empty store capped at MaxMessages per conversation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string][]chat.Message),
		limit:         MaxMessages,
	}
}

// GetOrCreate 返回已有会话；id 为空或未知时生成新的 UUID 并创建空会话。
func (s *MemoryStore) GetOrCreate(_ context.Context, id string) (string, []chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if messages, ok := s.conversations[id]; ok && id != "" {
		return id, clone(messages)
	}

	id = uuid.NewString()
	s.conversations[id] = make([]chat.Message, 0, 2)
	return id, nil
}

// Append pushes msgs in order and drops the oldest entries beyond the cap.
// 会话已被删除时不会重新创建，返回 ErrConversationNotFound。
func (s *MemoryStore) Append(_ context.Context, id string, msgs ...chat.Message) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}

	messages := append(existing, msgs...)
	if overflow := len(messages) - s.limit; overflow > 0 {
		messages = append([]chat.Message(nil), messages[overflow:]...)
	}
	s.conversations[id] = messages
	return clone(messages), nil
}

// Get 查询会话历史。
func (s *MemoryStore) Get(_ context.Context, id string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return clone(messages), nil
}

// Delete removes the conversation. Unknown ids are ignored.
func (s *MemoryStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.conversations, id)
	s.mu.Unlock()
}

func (s *MemoryStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

func clone(messages []chat.Message) []chat.Message {
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied
}
