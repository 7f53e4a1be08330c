package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio-chat/backend/internal/model/knowledge"
	"github.com/portfolio-chat/backend/internal/model/profile"
	"github.com/portfolio-chat/backend/pkg/utils"
)

// Handler 作品集主人资料的HTTP处理器
type Handler struct {
	owner profile.Profile
	kb    *knowledge.Base
}

// New 创建资料处理器
func New(owner profile.Profile, kb *knowledge.Base) *Handler {
	return &Handler{
		owner: owner,
		kb:    kb,
	}
}

// RegisterRoutes 注册资料相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.handleProfile)
	r.Get("/questions", h.handleQuestions)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.owner)
}

// handleQuestions 返回知识库中的问题，供前端作为推荐问题展示
func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string][]string{"questions": h.kb.Questions()})
}
