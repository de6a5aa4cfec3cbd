package users

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sitecrew/sitecrew/internal/auth"
	"github.com/sitecrew/sitecrew/internal/platform/httpx"
)

// Handler wires user-management endpoints. Routes assume the bearer-token
// middleware already populated claims on the context.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Patch("/{id}/role", h.handleChangeRole)
	r.Post("/{id}/deactivate", h.handleDeactivate)
}

type userView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	RoleID    int64     `json:"role_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		httpx.Message(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
		return
	}
	list, err := h.service.List(r.Context(), claims.Role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]userView, 0, len(list))
	for _, u := range list {
		views = append(views, userView{
			ID: u.ID, Email: u.Email, Name: u.Name,
			Role: u.RoleName, RoleID: u.RoleID,
			IsActive: u.IsActive, CreatedAt: u.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": views})
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		httpx.Message(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
		return
	}
	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid user id.")
		return
	}
	var req changeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.service.ChangeRole(r.Context(), claims.Role, targetID, req.Role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("role changed", slog.String("actor", claims.Subject), slog.Int64("target", targetID), slog.String("role", req.Role))
	httpx.Message(w, http.StatusOK, "Role updated.")
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		httpx.Message(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
		return
	}
	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid user id.")
		return
	}
	if err := h.service.Deactivate(r.Context(), claims.Role, targetID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("user deactivated", slog.String("actor", claims.Subject), slog.Int64("target", targetID))
	httpx.Message(w, http.StatusOK, "User deactivated.")
}
