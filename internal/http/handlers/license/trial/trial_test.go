package trial

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fanfindr/licensing/internal/models"
	services "github.com/fanfindr/licensing/internal/services/license"
)

// MockService реализует интерфейс trial.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) GrantTrial(ctx context.Context, username string) (*models.TrialInfo, error) {
	args := m.Called(ctx, username)
	if res := args.Get(0); res != nil {
		return res.(*models.TrialInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestTrialHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "успешная выдача пробного периода",
			body: `{"username":"alice"}`,
			setupMock: func(m *MockService) {
				m.On("GrantTrial", mock.Anything, "alice").Return(&models.TrialInfo{
					Username: "alice",
					Tier:     models.TierBasic,
					TrialEnd: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"status":"OK"`, `"username":"alice"`, `"tier":"basic"`},
		},
		{
			name: "пробный период уже использован",
			body: `{"username":"bob"}`,
			setupMock: func(m *MockService) {
				m.On("GrantTrial", mock.Anything, "bob").Return(nil, services.ErrTrialUsed)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   []string{`"status":"Error"`, `trial already used`},
		},
		{
			name: "подписка уже активна",
			body: `{"username":"carol"}`,
			setupMock: func(m *MockService) {
				m.On("GrantTrial", mock.Anything, "carol").Return(nil, services.ErrAlreadyActive)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   []string{`"status":"Error"`, `subscription already active`},
		},
		{
			name: "имя из одних пробелов отклоняется как ошибка валидации",
			body: `{"username":"   "}`,
			setupMock: func(m *MockService) {
				m.On("GrantTrial", mock.Anything, "   ").Return(nil, services.ErrEmptyUsername)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`"status":"Error"`, `field Username is a required field`},
		},
		{
			name:           "некорректный JSON",
			body:           `{`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`invalid request body`},
		},
		{
			name: "ошибка сервиса",
			body: `{"username":"dave"}`,
			setupMock: func(m *MockService) {
				m.On("GrantTrial", mock.Anything, "dave").Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`could not activate trial`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/activate_trial", strings.NewReader(tt.body))
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
