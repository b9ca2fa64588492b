package handler

import (
	"fmt"
	"net/http"

	"camphub-be/internal/domain"
	"camphub-be/internal/middleware"
	"camphub-be/internal/service"
	apperrors "camphub-be/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RosterHandler struct {
	rosters    *service.RosterService
	membership *service.MembershipService
	logger     *zap.Logger
}

func NewRosterHandler(rosters *service.RosterService, membership *service.MembershipService, logger *zap.Logger) *RosterHandler {
	return &RosterHandler{rosters: rosters, membership: membership, logger: logger}
}

type createRosterRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Create handles POST /api/rosters
func (h *RosterHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var req createRosterRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	roster, err := h.rosters.Create(r.Context(), principal, req.Name, req.Description)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, roster)
}

// List handles GET /api/rosters
func (h *RosterHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	rosters, err := h.rosters.ListByCamp(r.Context(), principal)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rosters": rosters})
}

// GetActive handles GET /api/rosters/active
func (h *RosterHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	roster, err := h.rosters.GetActive(r.Context(), principal)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, roster)
}

// Get handles GET /api/rosters/{id}
func (h *RosterHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	rosterID := chi.URLParam(r, "id")

	view, err := h.rosters.GetWithMembers(r.Context(), principal, rosterID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Update handles PUT /api/rosters/{id}
func (h *RosterHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	rosterID := chi.URLParam(r, "id")

	var req createRosterRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	roster, err := h.rosters.Rename(r.Context(), principal, rosterID, req.Name, req.Description)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, roster)
}

// Archive handles PUT /api/rosters/{id}/archive
func (h *RosterHandler) Archive(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	rosterID := chi.URLParam(r, "id")

	if err := h.rosters.Archive(r.Context(), principal, rosterID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"archived": true})
}

// Export handles GET /api/rosters/{id}/export
func (h *RosterHandler) Export(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	rosterID := chi.URLParam(r, "id")

	data, err := h.rosters.ExportCSV(r.Context(), principal, rosterID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=roster-%s.csv", rosterID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// AddMember handles POST /api/rosters/{id}/members/{memberId}
func (h *RosterHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	rosterID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	if err := h.rosters.AddMember(r.Context(), principal, rosterID, memberID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"added": true})
}

// RemoveMember handles DELETE /api/rosters/members/{memberId}. Removal
// cascades: the member and their application reset to withdrawn so the
// person can apply again.
func (h *RosterHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	memberID := chi.URLParam(r, "memberId")

	if !principal.IsCampAccount() {
		respondError(w, r, h.logger, apperrors.NewAuthorizationError("only camp accounts manage rosters"))
		return
	}

	if err := h.membership.OnRemovedFromRoster(r.Context(), principal.ID, memberID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"removed": true})
}

// SetOverrides handles PUT /api/rosters/{id}/members/{memberId}/overrides
func (h *RosterHandler) SetOverrides(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	rosterID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	var patch domain.MemberOverrides
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.rosters.SetOverrides(r.Context(), principal, rosterID, memberID, patch); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"updated": true})
}

type setDuesRequest struct {
	DuesStatus string `json:"duesStatus"`
}

// SetDues handles PUT /api/rosters/{id}/members/{memberId}/dues
func (h *RosterHandler) SetDues(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	rosterID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	var req setDuesRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.rosters.SetDues(r.Context(), principal, rosterID, memberID, domain.DuesStatus(req.DuesStatus)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"updated": true})
}

// GrantCampLead handles POST /api/rosters/{id}/members/{memberId}/camp-lead
func (h *RosterHandler) GrantCampLead(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	rosterID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	if err := h.rosters.GrantCampLead(r.Context(), principal, rosterID, memberID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"campLead": true})
}

// RevokeCampLead handles DELETE /api/rosters/{id}/members/{memberId}/camp-lead
func (h *RosterHandler) RevokeCampLead(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	rosterID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	if err := h.rosters.RevokeCampLead(r.Context(), principal, rosterID, memberID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"campLead": false})
}
