package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/complaintdesk/internal/common"
	"github.com/dmitrijs2005/complaintdesk/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxSessionKey = "session"
	ctxClaimsKey  = "claims"
)

// requestLogger tags the request context with a request id and logs one
// line per request.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)
		ctx := logging.ContextWithAttrs(c.Request.Context(), "request_id", requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		h.logger.Info(ctx, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// requireSession redirects to /login unless the sid cookie names a live
// session.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, _ := c.Cookie(common.SessionCookieName)

		s, err := h.auth.Authorize(c.Request.Context(), sid)
		if err != nil {
			if !isUnauthenticated(err) {
				h.logger.Error(c.Request.Context(), "session lookup failed", "error", err)
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(ctxSessionKey, s)
		c.Next()
	}
}

// requireToken accepts "Authorization: Bearer <jwt>" or the token cookie.
func (h *Handler) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(common.TokenCookieName)
		}

		claims, err := h.auth.AuthorizeToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ctxClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) > len(common.BearerPrefix) && strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return strings.TrimSpace(header[len(common.BearerPrefix):])
	}
	return ""
}

// noSniff stops browsers from reinterpreting uploaded files.
func noSniff() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}
