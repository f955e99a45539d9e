package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/policy"
)

const principalCtxKey = "principal"

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Debug().Msg("authorization header required")
		abort(c, newUnauthorizedError(messageUnauthenticated))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) || parts[1] == "" {
		h.logger.Debug().Msg("invalid authorization header")
		abort(c, newUnauthorizedError(messageUnauthenticated))
		return
	}

	principal, err := h.auth.Authenticate(c, parts[1])
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.Set(principalCtxKey, principal)
	c.Next()
}

// HandleRequireAdmin must run after HandleAuthMiddleware.
func (h *handlerImpl) HandleRequireAdmin(c *gin.Context) {
	principal := principalFromContext(c)
	if !policy.RequireRole(principal, models.RoleAdmin) {
		h.logger.Error().
			Int64("user_id", principal.ID).
			Str("role", principal.Role).
			Str("path", c.FullPath()).
			Msg("admin role required")
		abort(c, newForbiddenError())
		return
	}
	c.Next()
}

func principalFromContext(c *gin.Context) models.Principal {
	value, exists := c.Get(principalCtxKey)
	if !exists {
		return models.Principal{}
	}
	principal, _ := value.(models.Principal)
	return principal
}

// RequestLogger writes one access log line per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("size", c.Writer.Size()).
			Msg("handled request")
	}
}

// Recovery turns panics into a 500 envelope.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		abort(c, newStatusTextError(http.StatusInternalServerError))
	})
}
