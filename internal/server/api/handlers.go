package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"songmarket/internal/server/auth"
	"songmarket/internal/server/database"
	"songmarket/internal/server/service"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains the HTTP handlers for the songmarket API.
type Handler struct {
	auth    *service.AuthService
	uploads *service.UploadService
	songs   *ResourceHandler[database.Song, database.SongFields]
	banners *ResourceHandler[database.Banner, database.BannerFields]
	health  HealthChecker
}

// NewHandler creates a new handler with the given service dependencies.
func NewHandler(
	authSvc *service.AuthService,
	uploads *service.UploadService,
	songs *service.ResourceService[database.Song, database.SongFields],
	banners *service.ResourceService[database.Banner, database.BannerFields],
	health HealthChecker,
) *Handler {
	return &Handler{
		auth:    authSvc,
		uploads: uploads,
		songs:   NewResourceHandler(songs),
		banners: NewResourceHandler(banners),
		health:  health,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	token, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return mapServiceError(c, err, "")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// HandleUpload returns the handler for a single-file upload under field.
func (h *Handler) HandleUpload(field string) echo.HandlerFunc {
	return func(c echo.Context) error {
		fileHeader, err := c.FormFile(field)
		if err != nil {
			return mapServiceError(c, service.ErrNoFile, "")
		}

		src, err := fileHeader.Open()
		if err != nil {
			return mapServiceError(c, fmt.Errorf("failed to read uploaded file: %w", err), "")
		}
		defer src.Close()

		meta, err := h.uploads.Upload(c.Request().Context(), &service.FileUpload{
			Field:       field,
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get(echo.HeaderContentType),
			Size:        fileHeader.Size,
			Data:        src,
		})
		if err != nil {
			return mapServiceError(c, err, "")
		}

		return c.JSON(http.StatusOK, meta)
	}
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "healthy"
	dbStatus := "connected"

	if err := h.health.HealthCheck(c.Request().Context()); err != nil {
		status = "degraded"
		dbStatus = fmt.Sprintf("error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   status,
		"database": dbStatus,
	})
}

// ResourceHandler serves the five CRUD routes of one resource kind.
type ResourceHandler[T, F any] struct {
	svc *service.ResourceService[T, F]
}

func NewResourceHandler[T, F any](svc *service.ResourceService[T, F]) *ResourceHandler[T, F] {
	return &ResourceHandler[T, F]{svc: svc}
}

// Register mounts the routes under g: POST and GET on "", GET, PUT and DELETE on "/:id".
func (h *ResourceHandler[T, F]) Register(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *ResourceHandler[T, F]) Create(c echo.Context) error {
	var fields F
	if err := c.Bind(&fields); err != nil {
		return err
	}

	rec, err := h.svc.Create(c.Request().Context(), fields)
	if err != nil {
		return mapServiceError(c, err, h.svc.Label())
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	slog.Info("resource created", "kind", h.svc.Label(), "user_id", id.UserID)

	return c.JSON(http.StatusCreated, rec)
}

func (h *ResourceHandler[T, F]) List(c echo.Context) error {
	recs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return mapServiceError(c, err, h.svc.Label())
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *ResourceHandler[T, F]) Get(c echo.Context) error {
	rec, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err, h.svc.Label())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *ResourceHandler[T, F]) Update(c echo.Context) error {
	var fields F
	if err := c.Bind(&fields); err != nil {
		return err
	}

	rec, err := h.svc.Update(c.Request().Context(), c.Param("id"), fields)
	if err != nil {
		return mapServiceError(c, err, h.svc.Label())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *ResourceHandler[T, F]) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return mapServiceError(c, err, h.svc.Label())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": h.svc.Label() + " deleted"})
}

// mapServiceError translates service-layer errors into HTTP responses.
// label names the resource kind for not-found messages.
func mapServiceError(c echo.Context, err error, label string) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": label + " not found"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	case errors.Is(err, service.ErrInvalidPassword):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid password"})
	case errors.Is(err, service.ErrNoFile):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Please upload a file"})
	default:
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}
}
