package check

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fanfindr/licensing/internal/models"
	services "github.com/fanfindr/licensing/internal/services/license"
)

// MockService реализует интерфейс check.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CheckEntitlement(ctx context.Context, username string) (models.EntitlementResult, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(models.EntitlementResult), args.Error(1)
}

func (m *MockService) GetCurrentPricing(ctx context.Context) models.PricingConfig {
	args := m.Called(ctx)
	return args.Get(0).(models.PricingConfig)
}

func (m *MockService) GetPaymentDetails(ctx context.Context) models.PaymentDetails {
	args := m.Called(ctx)
	return args.Get(0).(models.PaymentDetails)
}

func TestCheckHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "доступ выдан активной подписке",
			body: `{"username":"Alice"}`,
			setupMock: func(m *MockService) {
				m.On("CheckEntitlement", mock.Anything, "Alice").Return(models.EntitlementResult{
					Granted:       true,
					Tier:          models.TierPro,
					MaxFans:       -1,
					DaysRemaining: 12,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"granted":true`, `"tier":"pro"`, `"max_fans":-1`},
		},
		{
			name: "отказ дополняется платёжными реквизитами",
			body: `{"username":"bob"}`,
			setupMock: func(m *MockService) {
				m.On("CheckEntitlement", mock.Anything, "bob").Return(models.EntitlementResult{
					Granted: false,
					Reason:  models.ReasonNoSubscription,
				}, nil)
				m.On("GetCurrentPricing", mock.Anything).Return(models.PricingConfig{
					MonthlyPrice: 19.99,
					Currency:     "EUR",
					Source:       models.PricingSourceStore,
				})
				m.On("GetPaymentDetails", mock.Anything).Return(models.PaymentDetails{
					IBAN:        "DE89370400440532013000",
					BIC:         "COBADEFFXXX",
					Beneficiary: "FanFindr GmbH",
				})
			},
			expectedStatus: http.StatusOK,
			expectedBody: []string{
				`"granted":false`,
				`"reason":"no_subscription"`,
				`"payment_info"`,
				`"iban":"DE89370400440532013000"`,
				`"reference":"bob"`,
			},
		},
		{
			name:           "некорректный JSON",
			body:           `{"username":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`"status":"Error"`, `invalid request body`},
		},
		{
			name:           "пустое имя пользователя",
			body:           `{"username":""}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`"status":"Error"`, `Username`},
		},
		{
			name: "имя из одних пробелов отклоняется как ошибка валидации",
			body: `{"username":"   "}`,
			setupMock: func(m *MockService) {
				m.On("CheckEntitlement", mock.Anything, "   ").
					Return(models.EntitlementResult{}, services.ErrEmptyUsername)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`"status":"Error"`, `field Username is a required field`},
		},
		{
			name: "ошибка сервиса",
			body: `{"username":"carol"}`,
			setupMock: func(m *MockService) {
				m.On("CheckEntitlement", mock.Anything, "carol").
					Return(models.EntitlementResult{}, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`"status":"Error"`, `could not check subscription`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/check_subscription", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, want := range tt.expectedBody {
				assert.True(t, strings.Contains(w.Body.String(), want),
					"response body should contain %s, got %s", want, w.Body.String())
			}

			mockService.AssertExpectations(t)
		})
	}
}
