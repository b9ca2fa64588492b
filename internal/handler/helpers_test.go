package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"camphub-be/internal/domain"
	apperrors "camphub-be/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRespondErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   apperrors.ErrorType
	}{
		{
			"validation error",
			apperrors.NewValidationError("bad input", nil),
			http.StatusBadRequest,
			apperrors.ErrorTypeValidation,
		},
		{
			"authorization error",
			apperrors.NewAuthorizationError("not yours"),
			http.StatusForbidden,
			apperrors.ErrorTypeAuthorization,
		},
		{
			"not found error",
			apperrors.NewNotFoundError("gone"),
			http.StatusNotFound,
			apperrors.ErrorTypeNotFound,
		},
		{
			"conflict error",
			apperrors.NewConflictError("taken", nil),
			http.StatusConflict,
			apperrors.ErrorTypeConflict,
		},
		{
			"slot full sentinel",
			domain.ErrSlotFull,
			http.StatusConflict,
			apperrors.ErrorTypeConflict,
		},
		{
			"already reserved sentinel",
			domain.ErrSlotReserved,
			http.StatusConflict,
			apperrors.ErrorTypeConflict,
		},
		{
			"not found sentinel",
			domain.ErrNotFound,
			http.StatusNotFound,
			apperrors.ErrorTypeNotFound,
		},
		{
			"camp not accepting sentinel",
			domain.ErrCampNotAccepting,
			http.StatusConflict,
			apperrors.ErrorTypeConflict,
		},
		{
			"terminal status sentinel",
			domain.ErrTerminalStatus,
			http.StatusConflict,
			apperrors.ErrorTypeConflict,
		},
		{
			"slot in use sentinel",
			domain.ErrSlotInUse,
			http.StatusConflict,
			apperrors.ErrorTypeConflict,
		},
		{
			"racing rotation sentinel",
			fmt.Errorf("failed to rotate roster: %w", domain.ErrActiveRosterExists),
			http.StatusConflict,
			apperrors.ErrorTypeConflict,
		},
		{
			"camp lead sentinels",
			domain.ErrAlreadyCampLead,
			http.StatusConflict,
			apperrors.ErrorTypeConflict,
		},
		{
			"wrapped sentinel",
			errors.Join(errors.New("failed to reserve"), domain.ErrSlotFull),
			http.StatusConflict,
			apperrors.ErrorTypeConflict,
		},
		{
			"unknown error hides internals",
			errors.New("pq: connection refused"),
			http.StatusInternalServerError,
			apperrors.ErrorTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)

			respondError(rec, req, zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp apperrors.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantType, resp.Error.Type)
			assert.NotEmpty(t, resp.Error.Timestamp)
			// Storage details never leak on internal errors.
			if tt.wantType == apperrors.ErrorTypeInternal {
				assert.NotContains(t, resp.Error.Message, "pq:")
			}
		})
	}
}

func TestRespondErrorKeepsDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/applications/apply", nil)

	err := apperrors.NewConflictError("an active application already exists",
		map[string]any{"existingApplicationId": "app-1", "status": "under-review"})
	respondError(rec, req, zap.NewNop(), err)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "app-1", resp.Error.Details["existingApplicationId"])
	assert.Equal(t, "under-review", resp.Error.Details["status"])
}

func TestDecodeBody(t *testing.T) {
	var dst struct {
		CampID string `json:"campId"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"campId":"c1"}`))
	require.NoError(t, decodeBody(req, &dst))
	assert.Equal(t, "c1", dst.CampID)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	err := decodeBody(req, &dst)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}
