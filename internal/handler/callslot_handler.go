package handler

import (
	"net/http"
	"time"

	"camphub-be/internal/middleware"
	"camphub-be/internal/service"
	apperrors "camphub-be/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CallSlotHandler struct {
	slots  *service.CallSlotService
	logger *zap.Logger
}

func NewCallSlotHandler(slots *service.CallSlotService, logger *zap.Logger) *CallSlotHandler {
	return &CallSlotHandler{slots: slots, logger: logger}
}

// ListByCamp handles GET /api/camps/{campId}/call-slots
func (h *CallSlotHandler) ListByCamp(w http.ResponseWriter, r *http.Request) {
	campID := chi.URLParam(r, "campId")

	slots, err := h.slots.ListByCamp(r.Context(), campID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"callSlots": slots})
}

// ListAvailable handles GET /api/camps/{campId}/call-slots/available
func (h *CallSlotHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	campID := chi.URLParam(r, "campId")

	var afterDate *time.Time
	if after := r.URL.Query().Get("after"); after != "" {
		parsed, err := time.Parse("2006-01-02", after)
		if err != nil {
			respondError(w, r, h.logger, apperrors.NewValidationError("after must be YYYY-MM-DD", nil))
			return
		}
		afterDate = &parsed
	}

	slots, err := h.slots.ListAvailable(r.Context(), campID, afterDate)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"callSlots": slots})
}

// Create handles POST /api/camps/{campId}/call-slots
func (h *CallSlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	campID := chi.URLParam(r, "campId")

	var req service.CreateSlotRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	slot, err := h.slots.Create(r.Context(), principal, campID, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, slot)
}

// Delete handles DELETE /api/call-slots/{id}
func (h *CallSlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	slotID := chi.URLParam(r, "id")

	if err := h.slots.Delete(r.Context(), principal, slotID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
