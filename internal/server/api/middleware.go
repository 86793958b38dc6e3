package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"songmarket/internal/server/auth"

	"github.com/labstack/echo/v4"
)

// OriginGate rejects every request whose Origin header is not in allowed,
// including requests without one. Allowed origins are echoed back in
// Access-Control-Allow-Origin.
func OriginGate(allowed []string) echo.MiddlewareFunc {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		origins[o] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if _, ok := origins[origin]; !ok || origin == "" {
				slog.Warn("origin rejected", "origin", origin, "ip", c.RealIP())
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden"})
			}

			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, origin)
			h.Add(echo.HeaderVary, echo.HeaderOrigin)
			return next(c)
		}
	}
}

// RequireToken verifies the access token in the Authorization header and
// attaches the caller identity to the request context. A missing token is
// 401; an invalid or expired one is 403.
func RequireToken(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Missing authorization token"})
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				slog.Warn("token rejected", "error", err, "ip", c.RealIP(), "path", c.Request().URL.Path)
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Invalid token"})
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.ContextWithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}

// RequestLogger returns an echo middleware that logs requests using slog.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Render now so the logged status is the one sent.
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"bytes_out", res.Size,
			}
			if id, ok := auth.IdentityFromContext(req.Context()); ok {
				attrs = append(attrs, "user_id", id.UserID)
			}
			slog.Info("request", attrs...)

			return err
		}
	}
}
