package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/model/chat"
	chatService "github.com/portfolio-chat/backend/internal/service/chat"
	"github.com/portfolio-chat/backend/pkg/utils"
)

const (
	errMessageRequired      = "Message is required and must be a string"
	errConversationNotFound = "Conversation not found"
	errInternal             = "Internal server error"
	msgConversationCleared  = "Conversation cleared successfully"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc  *chatService.Service
	logger   *zap.Logger
	upgrader *websocket.Upgrader
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		logger:   logger.With(zap.String("component", "handler.chat")),
		upgrader: newUpgrader(),
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleSend)
	r.Get("/chat/ws", h.handleWebSocket)
	r.Get("/chat/{conversationId}", h.handleHistory)
	r.Delete("/chat/{conversationId}", h.handleClear)
}

// sendRequest 的字段保持原始 JSON，以便区分缺失、类型错误和空字符串。
type sendRequest struct {
	Message        json.RawMessage `json:"message"`
	ConversationID json.RawMessage `json:"conversationId"`
}

// parse returns the message text and the optional conversation id.
// ok is false when message is missing, not a string, or empty.
func (p sendRequest) parse() (message, conversationID string, ok bool) {
	if err := json.Unmarshal(p.Message, &message); err != nil || message == "" {
		return "", "", false
	}
	// 非字符串的 conversationId 视为未提供
	_ = json.Unmarshal(p.ConversationID, &conversationID)
	return message, conversationID, true
}

// handleSend 处理一轮对话
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload sendRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, errMessageRequired)
		return
	}

	message, conversationID, ok := payload.parse()
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, errMessageRequired)
		return
	}

	turn, err := h.chatSvc.Send(r.Context(), conversationID, message)
	if err != nil {
		h.logger.Error("send message failed", zap.String("conversation_id", conversationID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, errInternal)
		return
	}

	utils.RespondJSON(w, http.StatusOK, turn)
}

// handleHistory 查询会话历史
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationId")

	messages, err := h.chatSvc.History(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, chatService.ErrConversationNotFound) {
			utils.RespondError(w, http.StatusNotFound, errConversationNotFound)
			return
		}
		h.logger.Error("load conversation failed", zap.String("conversation_id", conversationID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, errInternal)
		return
	}

	utils.RespondJSON(w, http.StatusOK, chat.Conversation{
		ID:       conversationID,
		Messages: messages,
	})
}

// handleClear 清除会话，未知 id 同样返回成功
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.chatSvc.Clear(r.Context(), chi.URLParam(r, "conversationId"))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": msgConversationCleared})
}
