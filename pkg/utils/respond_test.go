package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRespondWithDomainError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody Response
	}{
		{
			name:         "insufficient balance",
			err:          fmt.Errorf("approve: %w", domain.ErrInsufficientBalance),
			expectedCode: http.StatusPaymentRequired,
			expectedBody: Response{Message: "insufficient balance", Code: "INSUFFICIENT_BALANCE"},
		},
		{
			name:         "validation",
			err:          domain.ErrReasonRequired,
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: Response{Message: "rejection reason is required", Code: "REASON_REQUIRED"},
		},
		{
			name:         "conflict",
			err:          domain.ErrAlreadyProcessed,
			expectedCode: http.StatusConflict,
			expectedBody: Response{Message: "request already processed", Code: "ALREADY_PROCESSED"},
		},
		{
			name:         "not found",
			err:          domain.ErrNotFound,
			expectedCode: http.StatusNotFound,
			expectedBody: Response{Message: "record not found", Code: "NOT_FOUND"},
		},
		{
			name:         "dependency",
			err:          domain.ErrGateway,
			expectedCode: http.StatusBadGateway,
			expectedBody: Response{Message: "payment gateway unavailable", Code: "GATEWAY_ERROR"},
		},
		{
			name:         "infrastructure error",
			err:          errors.New("connection reset"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: Response{Message: "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondWithDomainError(w, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			var body Response
			assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.expectedBody, body)
		})
	}
}

func TestIntParam(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{value: "42", want: 42},
		{value: "0", wantErr: true},
		{value: "-1", wantErr: true},
		{value: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.value)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

			got, err := IntParam(r, "id")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
