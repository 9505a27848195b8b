package api

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/app/commands"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/policy"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// requestLogger writes one line per request through slog.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// authRequired resolves "Authorization: Bearer <token>" into a Principal.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			h.writeError(c, domainErr.ErrUnauthorized)
			return
		}

		principal, err := h.authenticate.Handle(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// adminRequired must run after authRequired.
func adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFrom(c)
		if principal == nil || !policy.CanReviewRequests(principal.Account.Role) {
			c.AbortWithStatusJSON(403, gin.H{"error": "administrator privileges required"})
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) *commands.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := v.(*commands.Principal)
	return principal
}
