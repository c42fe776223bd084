package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/dto"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/userservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*UserHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func withAdmin(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.AdminIDKey, 1))
}

func TestCreate(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "User registered under sponsor",
			body: `{"name":"Amina","member_id":"DTEHM0042","sponsor_id":"DTEHM0001","is_dtehm_member":true}`,
			prepareMock: func() {
				service.EXPECT().Register(gomock.Any(), 1, userservice.NewUser{
					Name: "Amina", MemberID: "DTEHM0042", SponsorID: "DTEHM0001", IsMember: true,
				}).Return(&domain.User{ID: 42, Name: "Amina", MemberID: "DTEHM0042", Upline: domain.Upline{1}}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Unknown sponsor",
			body: `{"name":"Amina","member_id":"DTEHM0042","sponsor_id":"NOPE"}`,
			prepareMock: func() {
				service.EXPECT().Register(gomock.Any(), 1, gomock.Any()).
					Return(nil, fmt.Errorf("sponsor NOPE: %w", domain.ErrUnknownSponsor))
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "Bad email",
			body:         `{"name":"Amina","member_id":"DTEHM0042","email":"not-an-email"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Broken body",
			body:         `{`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			req := withAdmin(httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(tt.body)))
			rr := httptest.NewRecorder()

			handler.Create(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestGet(t *testing.T) {
	handler, service := NewMock(t)
	router := chi.NewRouter()
	router.Get("/api/users/{id}", handler.Get)

	service.EXPECT().Get(gomock.Any(), 42).Return(&domain.User{ID: 42, MemberID: "DTEHM0042", Upline: domain.Upline{1, 2}}, nil)
	service.EXPECT().Get(gomock.Any(), 43).Return(nil, domain.ErrNotFound)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/42", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.UserResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, []int{1, 2, 0, 0, 0, 0, 0, 0, 0, 0}, resp.Upline)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/43", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
