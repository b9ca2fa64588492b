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

type InviteHandler struct {
	invites *service.InviteService
	logger  *zap.Logger
}

func NewInviteHandler(invites *service.InviteService, logger *zap.Logger) *InviteHandler {
	return &InviteHandler{invites: invites, logger: logger}
}

type issueInvitesRequest struct {
	CampID     string                    `json:"campId"`
	Recipients []service.InviteRecipient `json:"recipients"`
	Message    string                    `json:"message,omitempty"`
}

// Issue handles POST /api/invites
func (h *InviteHandler) Issue(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var req issueInvitesRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.CampID == "" {
		respondError(w, r, h.logger, apperrors.NewValidationError("campId is required", nil))
		return
	}

	results, err := h.invites.Issue(r.Context(), principal, req.CampID, req.Recipients, req.Message)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"results": results})
}

// ListByCamp handles GET /api/camps/{campId}/invites
func (h *InviteHandler) ListByCamp(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	campID := chi.URLParam(r, "campId")

	var status *domain.InviteStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.InviteStatus(s)
		switch st {
		case domain.InviteStatusPending, domain.InviteStatusSent,
			domain.InviteStatusApplied, domain.InviteStatusExpired:
			status = &st
		default:
			respondError(w, r, h.logger, apperrors.NewValidationError("unknown invite status", nil))
			return
		}
	}

	invites, err := h.invites.ListByCamp(r.Context(), principal, campID, status)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"invites": invites})
}
