package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

// SessionLookup resolves a session id; revoked sessions must return an error.
type SessionLookup interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
}

// JWTAuth validates HS256 bearer tokens and forwards the user_id and
// session_id claims to handlers as X-User-ID and X-Session-ID. When sessions
// is non-nil the session must still be live.
func JWTAuth(secret string, sessions SessionLookup, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			// never trust identity headers supplied by the client
			ctx.Request.Header.Del(httpcontext.HeaderUserID)
			ctx.Request.Header.Del(httpcontext.HeaderSessionID)

			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing token")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(ctx, "invalid token")
				return
			}
			userID, _ := claims["user_id"].(string)
			sessionID, _ := claims["session_id"].(string)
			if userID == "" {
				unauthorized(ctx, "token has no subject")
				return
			}

			if sessions != nil {
				lookupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				session, err := sessions.Get(lookupCtx, sessionID)
				cancel()
				if err != nil || session.UserID != userID {
					logger.Debug("session rejected", zap.String("session_id", sessionID), zap.Error(err))
					unauthorized(ctx, "session expired")
					return
				}
			}

			ctx.Request.Header.Set(httpcontext.HeaderUserID, userID)
			if sessionID != "" {
				ctx.Request.Header.Set(httpcontext.HeaderSessionID, sessionID)
			}
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

func unauthorized(ctx *fasthttp.RequestCtx, reason string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBodyString(fmt.Sprintf(`{"status":"error","code":%q,"error":%q}`, domain.ErrCodeUnauthorized, reason))
}
