package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/pkg/httpcontext"
	gamificationUC "github.com/fastygo/taskboard/usecase/gamification"
)

type GamificationHandler struct {
	baseHandler
	uc *gamificationUC.UseCase
}

func NewGamificationHandler(uc *gamificationUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *GamificationHandler {
	return &GamificationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Points, level and streak of the caller
// @Tags gamification
// @Router /api/v1/gamification/progress [get]
func (h *GamificationHandler) Progress(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	progress, _ := h.uc.Progress(userID)
	h.respondSuccess(ctx, http.StatusOK, progress)
}

// @Summary Achievement catalog with the caller's unlocks
// @Tags gamification
// @Router /api/v1/gamification/achievements [get]
func (h *GamificationHandler) Achievements(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	if string(ctx.QueryArgs().Peek("unlocked")) == "true" {
		h.respondSuccess(ctx, http.StatusOK, h.uc.UnlockedAchievements(userID))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.uc.Achievements(userID))
}

// @Summary Distance to the next level
// @Tags gamification
// @Router /api/v1/gamification/next-level [get]
func (h *GamificationHandler) NextLevel(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.uc.NextLevel(userID))
}
