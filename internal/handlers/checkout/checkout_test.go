package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/dto"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/checkoutservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*MockService, chi.Router) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)

	router := chi.NewRouter()
	router.Get("/api/pesapal/ipn", handler.Notify)
	router.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), auth.AdminIDKey, 1)))
			})
		})
		r.Post("/api/multiple-orders", handler.Create)
		r.Get("/api/multiple-orders/{id}", handler.Get)
		r.Post("/api/multiple-orders/{id}/payment", handler.InitiatePayment)
		r.Post("/api/multiple-orders/{id}/mark-paid", handler.MarkPaid)
		r.Get("/api/multiple-orders/{id}/convert", handler.Convert)
	})
	return service, router
}

func serve(router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, bytes.NewBufferString(body)))
	return rr
}

func TestCreate(t *testing.T) {
	service, router := NewMock(t)

	service.EXPECT().Checkout(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in checkoutservice.NewMultipleOrder) (*domain.MultipleOrder, error) {
			assert.Equal(t, 42, in.UserID)
			assert.Equal(t, "DTEHM0001", in.SponsorID)
			require.Len(t, in.Lines, 1)
			assert.Equal(t, 2, in.Lines[0].Quantity)
			return &domain.MultipleOrder{
				ID: 18, UserID: 42, Items: in.Lines, Total: decimal.NewFromInt(105000),
				PaymentStatus: domain.PaymentPending, ConversionStatus: domain.ConversionPending,
			}, nil
		})

	rr := serve(router, http.MethodPost, "/api/multiple-orders",
		`{"user_id":42,"sponsor_id":"DTEHM0001","items":[{"product_id":3,"quantity":2}]}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var resp dto.MultipleOrderResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "PENDING", resp.PaymentStatus)

	rr = serve(router, http.MethodPost, "/api/multiple-orders", `{"user_id":42,"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(router, http.MethodPost, "/api/multiple-orders", `{"user_id":42,"items":[{"product_id":3,"quantity":0}]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInitiatePayment(t *testing.T) {
	tests := []struct {
		name         string
		prepareMock  func(service *MockService)
		expectedCode int
	}{
		{
			name: "Session opened",
			prepareMock: func(service *MockService) {
				service.EXPECT().InitiatePayment(gomock.Any(), 18).Return(&domain.MultipleOrder{ID: 18, TrackingID: "trk-9", RedirectURL: "https://pay.example/trk-9"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Gateway down",
			prepareMock: func(service *MockService) {
				service.EXPECT().InitiatePayment(gomock.Any(), 18).Return(nil, fmt.Errorf("%w: timeout", domain.ErrGateway))
			},
			expectedCode: http.StatusBadGateway,
		},
		{
			name: "Already paid",
			prepareMock: func(service *MockService) {
				service.EXPECT().InitiatePayment(gomock.Any(), 18).Return(nil, domain.ErrAlreadyPaid)
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, router := NewMock(t)
			tt.prepareMock(service)

			rr := serve(router, http.MethodPost, "/api/multiple-orders/18/payment", "")
			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestMarkPaid(t *testing.T) {
	service, router := NewMock(t)

	service.EXPECT().MarkPaidByAdmin(gomock.Any(), 1, 18, "cash").Return(&checkoutservice.PaymentOutcome{
		Order:      &domain.MultipleOrder{ID: 18, PaymentStatus: domain.PaymentCompleted, ConversionStatus: domain.ConversionCompleted, PaidByAdmin: true},
		Conversion: &checkoutservice.ConversionOutcome{MultipleOrderID: 18, ItemIDs: []int{101}},
	}, nil)
	service.EXPECT().MarkPaidByAdmin(gomock.Any(), 1, 18, "").Return(nil, domain.ErrNoteRequired)

	rr := serve(router, http.MethodPost, "/api/multiple-orders/18/mark-paid", `{"note":"cash"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.CartPaymentResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Order.PaidByAdmin)
	require.NotNil(t, resp.Conversion)
	assert.Equal(t, []int{101}, resp.Conversion.ItemIDs)

	rr = serve(router, http.MethodPost, "/api/multiple-orders/18/mark-paid", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name         string
		prepareMock  func(service *MockService)
		expectedCode int
		errorCode    string
	}{
		{
			name: "Converted",
			prepareMock: func(service *MockService) {
				service.EXPECT().Convert(gomock.Any(), 1, 18).Return(&checkoutservice.ConversionOutcome{MultipleOrderID: 18, ItemIDs: []int{101, 102}}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Payment pending",
			prepareMock: func(service *MockService) {
				service.EXPECT().Convert(gomock.Any(), 1, 18).Return(nil, domain.ErrPaymentNotCompleted)
			},
			expectedCode: http.StatusConflict,
			errorCode:    "PAYMENT_NOT_COMPLETED",
		},
		{
			name: "Database failure",
			prepareMock: func(service *MockService) {
				service.EXPECT().Convert(gomock.Any(), 1, 18).Return(nil, errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, router := NewMock(t)
			tt.prepareMock(service)

			rr := serve(router, http.MethodGet, "/api/multiple-orders/18/convert", "")
			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.errorCode != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.errorCode, resp.Code)
			}
		})
	}
}

func TestNotify(t *testing.T) {
	service, router := NewMock(t)

	service.EXPECT().HandleNotification(gomock.Any(), "trk-9", "17829849600000007").
		Return(&checkoutservice.PaymentOutcome{Order: &domain.MultipleOrder{ID: 18}}, nil)
	service.EXPECT().HandleNotification(gomock.Any(), "trk-0", "").Return(nil, domain.ErrNotFound)

	rr := serve(router, http.MethodGet, "/api/pesapal/ipn?OrderTrackingId=trk-9&OrderMerchantReference=17829849600000007&OrderNotificationType=IPNCHANGE", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.IPNResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, dto.IPNResponseDTO{NotificationType: "IPNCHANGE", TrackingID: "trk-9", MerchantReference: "17829849600000007", Status: 200}, resp)

	rr = serve(router, http.MethodGet, "/api/pesapal/ipn?OrderTrackingId=trk-0", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = serve(router, http.MethodGet, "/api/pesapal/ipn", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
