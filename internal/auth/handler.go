package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sitecrew/sitecrew/internal/platform/httpx"
	"github.com/sitecrew/sitecrew/internal/ratelimit"
)

// Handler wires the HTTP login endpoint.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	limiter   *ratelimit.DualLimiter
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, limiter *ratelimit.DualLimiter) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		limiter:   limiter,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginUser struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	RoleID int64  `json:"role_id"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		if !h.limiter.Allow(w, r, "") {
			return
		}
		// A body that cannot carry credentials reads the same as
		// credentials that match nothing.
		httpx.Message(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
		return
	}

	if !h.limiter.Allow(w, r, req.Email) {
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httpx.Message(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Token: session.Token,
		User: loginUser{
			ID:     session.UserID,
			Email:  session.Email,
			Role:   session.RoleName,
			RoleID: session.RoleID,
		},
	})
}
