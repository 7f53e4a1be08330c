package userstory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/service/ai"
	userstoryService "github.com/portfolio-chat/backend/internal/service/userstory"
	"github.com/portfolio-chat/backend/pkg/utils"
)

const (
	errFeatureRequired = "No feature provided"
	errUnavailable     = "User story generation is not configured"
	errGeneration      = "Failed to generate user story"
)

// Handler 用户故事生成的HTTP处理器
type Handler struct {
	svc    *userstoryService.Service
	logger *zap.Logger
}

func New(svc *userstoryService.Service, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With(zap.String("component", "handler.userstory")),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/user-story", h.handleGenerate)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Feature string `json:"feature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, errFeatureRequired)
		return
	}

	story, err := h.svc.Generate(r.Context(), payload.Feature)
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusOK, map[string]string{"userStory": story})
	case errors.Is(err, userstoryService.ErrFeatureRequired):
		utils.RespondError(w, http.StatusBadRequest, errFeatureRequired)
	case errors.Is(err, ai.ErrUnavailable):
		utils.RespondError(w, http.StatusServiceUnavailable, errUnavailable)
	default:
		h.logger.Error("user story generation failed", zap.String("provider", h.svc.Provider()), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, errGeneration)
	}
}
