package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

// Identity headers are written by the auth middleware after it validates the
// bearer token. Any client supplied values are stripped first.
const (
	HeaderUserID    = "X-User-ID"
	HeaderSessionID = "X-Session-ID"
	HeaderRequestID = "X-Request-ID"
)

const defaultRequestTimeout = 5 * time.Second

type ctxKey struct{}

var clientKey ctxKey

// Client describes the remote peer of a request.
type Client struct {
	RemoteAddr string
	UserAgent  string
}

// Adapter turns a fasthttp request into a deadline bound context for the use
// case layer.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Adapter{timeout: timeout}
}

// Attach returns a context carrying the request id, the caller and the peer.
// The request id is echoed on the response.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	ctx.Response.Header.Set(HeaderRequestID, reqID)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if userID := UserID(ctx); userID != "" {
		stdCtx = appLogger.ContextWithUserID(stdCtx, userID)
	}

	client := Client{UserAgent: string(ctx.Request.Header.UserAgent())}
	if addr := ctx.RemoteAddr(); addr != nil {
		client.RemoteAddr = addr.String()
	}
	return context.WithValue(stdCtx, clientKey, client), cancel
}

// ClientFrom returns the peer attached by Attach.
func ClientFrom(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(clientKey).(Client)
	return c, ok
}

// UserID is the caller resolved by the auth middleware.
func UserID(ctx *fasthttp.RequestCtx) string {
	return header(ctx, HeaderUserID)
}

// SessionID is the session resolved by the auth middleware.
func SessionID(ctx *fasthttp.RequestCtx) string {
	return header(ctx, HeaderSessionID)
}

func header(ctx *fasthttp.RequestCtx, name string) string {
	return strings.TrimSpace(string(ctx.Request.Header.Peek(name)))
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if id := header(ctx, HeaderRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}
