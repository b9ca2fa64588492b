package handler

import (
	"net/http"

	"camphub-be/internal/domain"
	"camphub-be/internal/middleware"
	"camphub-be/internal/service"
	apperrors "camphub-be/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ApplicationHandler struct {
	applications *service.ApplicationService
	logger       *zap.Logger
}

func NewApplicationHandler(applications *service.ApplicationService, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, logger: logger}
}

type applyRequest struct {
	CampID      string                 `json:"campId"`
	InviteToken string                 `json:"inviteToken,omitempty"`
	Data        domain.ApplicationData `json:"applicationData"`
}

// Apply handles POST /api/applications/apply
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var req applyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.CampID == "" {
		respondError(w, r, h.logger, apperrors.NewValidationError("campId is required", nil))
		return
	}

	app, err := h.applications.Apply(r.Context(), principal, req.CampID, req.Data, req.InviteToken)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, app)
}

// CheckApplied handles GET /api/applications/check/{campId}
func (h *ApplicationHandler) CheckApplied(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	campID := chi.URLParam(r, "campId")

	app, err := h.applications.GetActive(r.Context(), principal.ID, campID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := map[string]any{"hasApplied": app != nil}
	if app != nil {
		resp["applicationId"] = app.ID
		resp["status"] = app.Status
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListMine handles GET /api/applications/mine
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	apps, err := h.applications.ListMine(r.Context(), principal)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

// ListByCamp handles GET /api/applications/camp/{campId}
func (h *ApplicationHandler) ListByCamp(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	campID := chi.URLParam(r, "campId")
	statusFilter := r.URL.Query().Get("status")

	apps, err := h.applications.ListByCamp(r.Context(), principal, campID, statusFilter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

type setStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// SetStatus handles PUT /api/applications/{id}/status
func (h *ApplicationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	applicationID := chi.URLParam(r, "id")

	var req setStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.Status == "" {
		respondError(w, r, h.logger, apperrors.NewValidationError("status is required", nil))
		return
	}

	app, err := h.applications.SetStatus(r.Context(), principal, applicationID, req.Status, req.Notes)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Type == apperrors.ErrorTypeDependency && app != nil {
			// The transition committed; report partial success with the warning.
			respondJSON(w, http.StatusOK, map[string]any{
				"application": app,
				"warning":     appErr.Message,
				"details":     appErr.Details,
			})
			return
		}
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

type messageRequest struct {
	Body string `json:"body"`
}

// AppendMessage handles POST /api/applications/{id}/message
func (h *ApplicationHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	applicationID := chi.URLParam(r, "id")

	var req messageRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	app, err := h.applications.AppendMessage(r.Context(), principal, applicationID, req.Body)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

// Reset handles PATCH /api/applications/reset/{applicantId}/{campId}
func (h *ApplicationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	applicantID := chi.URLParam(r, "applicantId")
	campID := chi.URLParam(r, "campId")

	count, err := h.applications.ResetToWithdrawn(r.Context(), principal, applicantID, campID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"withdrawn": count})
}
