package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

// StatusReporter exposes the latest backend check results.
type StatusReporter interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusReporter
	storage string
}

// NewHealthHandler reports check results; storage names the active task store
// driver and is echoed in the report.
func NewHealthHandler(mon StatusReporter, storage string, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		storage:     storage,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	report := transport.HealthReport{
		Timestamp: status.LastCheck,
		Storage:   h.storage,
		Services:  make(map[string]transport.ServiceHealth, len(status.Backends)),
	}
	for name, backend := range status.Backends {
		report.Services[name] = transport.ServiceHealth{Online: backend.Online, Error: backend.Error}
	}

	if !status.Healthy {
		h.logger.Warn("health check degraded", zap.Any("services", report.Services))
		h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", report))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}
