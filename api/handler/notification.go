package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	notificationUC "github.com/fastygo/taskboard/usecase/notification"
)

type NotificationHandler struct {
	baseHandler
	uc *notificationUC.UseCase
}

func NewNotificationHandler(uc *notificationUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List notifications, newest first
// @Tags notifications
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	items := h.uc.List(userID)
	if items == nil {
		items = []domain.Notification{}
	}
	h.respondList(ctx, items, transport.ListMeta{Count: len(items)})
}

// @Summary Unread notification count
// @Tags notifications
// @Router /api/v1/notifications/unread [get]
func (h *NotificationHandler) Unread(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"unread": h.uc.UnreadCount(userID)})
}

// @Summary Mark a notification read
// @Tags notifications
// @Router /api/v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	if err := h.uc.MarkRead(userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Mark every notification read
// @Tags notifications
// @Router /api/v1/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	h.uc.MarkAllRead(userID)
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Delete a notification
// @Tags notifications
// @Router /api/v1/notifications/{id} [delete]
func (h *NotificationHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	if err := h.uc.Delete(userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Clear all notifications
// @Tags notifications
// @Router /api/v1/notifications [delete]
func (h *NotificationHandler) Clear(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	h.uc.Clear(userID)
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
