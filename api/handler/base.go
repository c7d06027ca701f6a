package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondList(ctx *fasthttp.RequestCtx, data interface{}, meta transport.ListMeta) {
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(data, meta))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	h.respondJSON(ctx, status, transport.NewError(code, err.Error(), nil))
}

// respondFailure logs unexpected errors with request metadata before replying.
func (h baseHandler) respondFailure(stdCtx context.Context, ctx *fasthttp.RequestCtx, err error) {
	if status, _ := mapError(err); status >= http.StatusInternalServerError {
		fields := []zap.Field{zap.ByteString("path", ctx.Path()), zap.Error(err)}
		if client, ok := httpcontext.ClientFrom(stdCtx); ok {
			fields = append(fields, zap.String("remote_addr", client.RemoteAddr))
		}
		appLogger.WithContext(stdCtx, h.logger).Error("request failed", fields...)
	}
	h.respondError(ctx, err)
}

func (h baseHandler) badRequest(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), message, nil))
}

// requireUser returns the authenticated caller or writes a 401.
func (h baseHandler) requireUser(ctx *fasthttp.RequestCtx) string {
	userID := httpcontext.UserID(ctx)
	if userID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user id", nil))
	}
	return userID
}

// decode parses the JSON body into dst or writes a 400.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.badRequest(ctx, "invalid payload")
		return false
	}
	return true
}

// pathParam returns a router value or writes a 400 when it is missing.
func (h baseHandler) pathParam(ctx *fasthttp.RequestCtx, name string) (string, bool) {
	value, _ := ctx.UserValue(name).(string)
	if value == "" {
		h.badRequest(ctx, "missing "+name)
		return "", false
	}
	return value, true
}

var statusByCode = map[domain.ErrorCode]int{
	domain.ErrCodeUnauthorized: http.StatusUnauthorized,
	domain.ErrCodeForbidden:    http.StatusForbidden,
	domain.ErrCodeInvalid:      http.StatusBadRequest,
	domain.ErrCodeNotFound:     http.StatusNotFound,
	domain.ErrCodeConflict:     http.StatusConflict,
}

func mapError(err error) (int, string) {
	code := domain.CodeOf(err)
	if status, ok := statusByCode[code]; ok {
		return status, string(code)
	}
	return http.StatusInternalServerError, string(domain.ErrCodeInternal)
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
