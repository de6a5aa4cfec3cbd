package tasks

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sitecrew/sitecrew/internal/auth"
	"github.com/sitecrew/sitecrew/internal/platform/httpx"
)

// Handler wires task endpoints. Routes assume the bearer-token middleware
// already populated claims on the context.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers task routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Patch("/{id}/status", h.handleUpdateStatus)
}

func actorFromRequest(r *http.Request) (Actor, bool) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return Actor{}, false
	}
	id, err := claims.UserID()
	if err != nil {
		return Actor{}, false
	}
	return Actor{UserID: id, Role: claims.Role}, true
}

type createRequest struct {
	Site       string `json:"site" validate:"required"`
	Title      string `json:"title" validate:"required"`
	AssigneeID int64  `json:"assignee_id" validate:"required"`
}

type taskView struct {
	ID        uuid.UUID `json:"id"`
	Site      string    `json:"site"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Assignee  int64     `json:"assignee_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Message(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	task, err := h.service.Create(r.Context(), actor, req.Site, req.Title, req.AssigneeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("task created", slog.Int64("creator", actor.UserID), slog.Int64("assignee", req.AssigneeID))
	httpx.JSON(w, http.StatusCreated, taskView{
		ID: task.ID, Site: task.Site, Title: task.Title,
		Status: string(task.Status), Assignee: task.AssigneeID, CreatedAt: task.CreatedAt,
	})
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=OPEN IN_PROGRESS DONE"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Message(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
		return
	}
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid task id.")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.service.UpdateStatus(r.Context(), actor, taskID, Status(req.Status)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Task updated.")
}
