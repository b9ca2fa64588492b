package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "camphub-be/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func withRouteParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestApplicationHandlerRequestValidation(t *testing.T) {
	// Requests that must be rejected before any service work happens.
	h := NewApplicationHandler(nil, zap.NewNop())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		path    string
		params  map[string]string
		body    string
		wantMsg string
	}{
		{
			"apply with invalid json",
			h.Apply,
			http.MethodPost,
			"/api/applications/apply",
			nil,
			`{not json`,
			"invalid request body",
		},
		{
			"apply without campId",
			h.Apply,
			http.MethodPost,
			"/api/applications/apply",
			nil,
			`{"applicationData":{}}`,
			"campId is required",
		},
		{
			"set status with invalid json",
			h.SetStatus,
			http.MethodPut,
			"/api/applications/app-1/status",
			map[string]string{"id": "app-1"},
			`not json at all`,
			"invalid request body",
		},
		{
			"set status without status",
			h.SetStatus,
			http.MethodPut,
			"/api/applications/app-1/status",
			map[string]string{"id": "app-1"},
			`{"notes":"no decision yet"}`,
			"status is required",
		},
		{
			"message with invalid json",
			h.AppendMessage,
			http.MethodPost,
			"/api/applications/app-1/message",
			map[string]string{"id": "app-1"},
			`{"body":`,
			"invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.params != nil {
				req = withRouteParams(req, tt.params)
			}
			rec := httptest.NewRecorder()

			tt.handler(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp apperrors.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, apperrors.ErrorTypeValidation, resp.Error.Type)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
		})
	}
}
