package subscriptionupsert

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fanfindr/licensing/internal/models"
)

// MockService реализует интерфейс subscriptionupsert.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ActivateSubscription(ctx context.Context, username, paymentReference string, tier models.Tier) error {
	args := m.Called(ctx, username, paymentReference, tier)
	return args.Error(0)
}

func TestUpsertHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		username       string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name:     "успешная ручная активация",
			username: "alice",
			body:     `{"tier":"pro","payment_reference":"BANK-42"}`,
			setupMock: func(m *MockService) {
				m.On("ActivateSubscription", mock.Anything, "alice", "BANK-42", models.TierPro).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"status":"OK"`, `"tier":"pro"`},
		},
		{
			name:     "ссылка на платёж подставляется по умолчанию",
			username: "Bob",
			body:     `{"tier":"basic"}`,
			setupMock: func(m *MockService) {
				m.On("ActivateSubscription", mock.Anything, "Bob", "MANUAL_bob", models.TierBasic).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"username":"bob"`},
		},
		{
			name:           "неизвестный тариф отклоняется валидацией",
			username:       "alice",
			body:           `{"tier":"platinum"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`"status":"Error"`, `Tier`},
		},
		{
			name:     "ошибка сервиса",
			username: "alice",
			body:     `{"tier":"basic"}`,
			setupMock: func(m *MockService) {
				m.On("ActivateSubscription", mock.Anything, "alice", "MANUAL_alice", models.TierBasic).
					Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`could not activate subscription`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/admin/subscriptions/"+tt.username, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("username", tt.username)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

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
