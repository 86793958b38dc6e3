package api

import (
	"songmarket/internal/server/auth"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupRouter creates and configures the echo router with all routes and middleware.
func SetupRouter(handler *Handler, tokens *auth.TokenManager, allowedOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware; the origin gate runs ahead of every route.
	e.Use(middleware.Recover())
	e.Use(RequestLogger())
	e.Use(OriginGate(allowedOrigins))

	e.GET("/health", handler.HandleHealth)
	e.POST("/login", handler.HandleLogin)

	requireToken := RequireToken(tokens)

	handler.songs.Register(e.Group("/songs", requireToken))
	handler.banners.Register(e.Group("/banners", requireToken))

	e.POST("/uploadSong", handler.HandleUpload("song"), requireToken)
	e.POST("/uploadBanner", handler.HandleUpload("image"), requireToken)

	return e
}
