package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"report-service/internal/realtime"
	"report-service/internal/service"
)

// Services groups what the handlers call into.
type Services struct {
	Submission *service.SubmissionService
	Lookup     *service.LookupService
	Triage     *service.TriageService
	Auth       *service.AuthService
	Settings   *service.SettingsService
}

type Handler struct {
	submission *service.SubmissionService
	lookup     *service.LookupService
	triage     *service.TriageService
	auth       *service.AuthService
	settings   *service.SettingsService
	hub        *realtime.Hub
	health     func(ctx context.Context) error
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

func NewHandler(
	services Services,
	hub *realtime.Hub,
	health func(ctx context.Context) error,
	allowedOrigins []string,
	log zerolog.Logger,
) *Handler {
	registerValidators()
	return &Handler{
		submission: services.Submission,
		lookup:     services.Lookup,
		triage:     services.Triage,
		auth:       services.Auth,
		settings:   services.Settings,
		hub:        hub,
		health:     health,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

func (h *Handler) healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.log.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, fieldErrorResponse(vErr.Field, vErr.Message))
	case errors.Is(err, service.ErrConsentRequired):
		c.JSON(http.StatusBadRequest, fieldErrorResponse("consent", "persetujuan wajib diberikan"))
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		field, msg := bindingError(err)
		c.JSON(http.StatusBadRequest, fieldErrorResponse(field, msg))
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid report id"))
		return uuid.Nil, false
	}
	return id, true
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}

func fieldErrorResponse(field, msg string) gin.H {
	if field == "" {
		return errorResponse(msg)
	}
	return gin.H{"error": msg, "field": field}
}
