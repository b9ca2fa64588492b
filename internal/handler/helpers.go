package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"camphub-be/internal/domain"
	apperrors "camphub-be/pkg/errors"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError translates service errors into the wire taxonomy. Raw
// storage errors never reach the caller.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = translateSentinel(err)
	}
	if appErr == nil {
		logger.Error("unhandled error",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		appErr = apperrors.NewInternalError("internal server error", err)
	} else if appErr.Internal != nil {
		logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(appErr.Internal))
	}

	var resp apperrors.ErrorResponse
	resp.Error.Type = appErr.Type
	resp.Error.Message = appErr.Message
	resp.Error.Details = appErr.Details
	resp.Error.RequestID = middleware.GetReqID(r.Context())
	resp.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	respondJSON(w, appErr.StatusCode, resp)
}

func translateSentinel(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apperrors.NewNotFoundError("not found")
	case errors.Is(err, domain.ErrSlotFull):
		return apperrors.NewConflictError("call slot is full", nil)
	case errors.Is(err, domain.ErrSlotReserved):
		return apperrors.NewConflictError("already reserved this call slot", nil)
	case errors.Is(err, domain.ErrSlotInUse):
		return apperrors.NewConflictError("call slot is referenced by active applications", nil)
	case errors.Is(err, domain.ErrDuplicateActive):
		return apperrors.NewConflictError("an active application already exists", nil)
	case errors.Is(err, domain.ErrCampNotAccepting):
		return apperrors.NewConflictError("camp is not accepting members", nil)
	case errors.Is(err, domain.ErrTerminalStatus):
		return apperrors.NewConflictError("application is in a terminal status", nil)
	case errors.Is(err, domain.ErrInviteFinalized):
		return apperrors.NewConflictError("invite is already finalized", nil)
	case errors.Is(err, domain.ErrRosterArchived):
		return apperrors.NewConflictError("roster is archived", nil)
	case errors.Is(err, domain.ErrActiveRosterExists):
		return apperrors.NewConflictError("camp already has an active roster", nil)
	case errors.Is(err, domain.ErrNotApproved):
		return apperrors.NewConflictError("member is not approved", nil)
	case errors.Is(err, domain.ErrAlreadyCampLead):
		return apperrors.NewConflictError("member is already a camp lead", nil)
	case errors.Is(err, domain.ErrNotCampLead):
		return apperrors.NewConflictError("member is not a camp lead", nil)
	default:
		return nil
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	return nil
}
