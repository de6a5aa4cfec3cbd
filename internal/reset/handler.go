package reset

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sitecrew/sitecrew/internal/platform/httpx"
	"github.com/sitecrew/sitecrew/internal/ratelimit"
)

// Handler wires the HTTP reset endpoints.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	requestLimit *ratelimit.DualLimiter
	consumeLimit *ratelimit.Limiter
	validator    *validator.Validate
}

// NewHandler constructs a Handler. The forgot-password endpoint carries a
// dual quota (origin plus target email); reset-password carries an
// origin-only quota.
func NewHandler(logger *slog.Logger, service *Service, requestLimit *ratelimit.DualLimiter, consumeLimit *ratelimit.Limiter) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		requestLimit: requestLimit,
		consumeLimit: consumeLimit,
		validator:    validator.New(),
	}
}

// MountRoutes registers reset routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/forgot-password", h.handleForgot)
	r.Post("/reset-password", h.handleReset)
}

type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

func (h *Handler) handleForgot(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		if !h.requestLimit.Allow(w, r, "") {
			return
		}
		httpx.Message(w, http.StatusOK, httpx.MsgResetRequested)
		return
	}

	if !h.requestLimit.Allow(w, r, req.Email) {
		return
	}

	if err := h.validator.Struct(req); err != nil {
		// Unparseable identifiers get the same acknowledgement as any
		// other; nothing here may hint at account existence.
		httpx.Message(w, http.StatusOK, httpx.MsgResetRequested)
		return
	}

	meta := RequestMeta{IP: r.RemoteAddr, UserAgent: r.UserAgent()}
	if err := h.service.Request(r.Context(), req.Email, meta); err != nil {
		h.logger.Error("reset request", slog.Any("error", err))
		httpx.Message(w, http.StatusInternalServerError, httpx.MsgServerError)
		return
	}

	httpx.Message(w, http.StatusOK, httpx.MsgResetRequested)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if !h.consumeLimit.AllowOrigin(w, r) {
		return
	}

	var req resetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, httpx.MsgResetInvalid)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Message(w, http.StatusBadRequest, httpx.MsgResetInvalid)
		return
	}

	if err := h.service.Consume(r.Context(), req.Token, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.Message(w, http.StatusOK, httpx.MsgResetDone)
}
