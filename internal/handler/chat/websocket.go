package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/pkg/utils"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 54 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsMaxFrameSize = 64 << 10
)

// Origin 已由 CORS 中间件校验
func newUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// handleWebSocket 在一条连接上处理多轮对话，每轮返回一帧，格式与 POST /chat 相同。
// 帧中未携带 conversationId 时沿用本连接上一轮的会话。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(wsMaxFrameSize)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	go pingLoop(ctx, conn)

	h.logger.Debug("websocket connected", zap.String("remote_addr", r.RemoteAddr))

	var current string
	for {
		var payload sendRequest
		if err := conn.ReadJSON(&payload); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if !h.write(conn, utils.ErrorBody{Error: errMessageRequired}) {
					return
				}
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		message, conversationID, ok := payload.parse()
		if !ok {
			h.write(conn, utils.ErrorBody{Error: errMessageRequired})
			continue
		}
		if conversationID == "" {
			conversationID = current
		}

		turn, err := h.chatSvc.Send(ctx, conversationID, message)
		if err != nil {
			h.logger.Error("websocket turn failed", zap.String("conversation_id", conversationID), zap.Error(err))
			h.write(conn, utils.ErrorBody{Error: errInternal})
			continue
		}
		current = turn.ConversationID

		if !h.write(conn, turn) {
			return
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, payload any) bool {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(payload); err != nil {
		h.logger.Warn("websocket write failed", zap.Error(err))
		return false
	}
	return true
}

// pingLoop 定期发送ping消息
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
