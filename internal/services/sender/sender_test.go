package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fanfindr/licensing/internal/models"
)

type TransportMock struct{ mock.Mock }

func (m *TransportMock) Send(ctx context.Context, content string) error {
	return m.Called(ctx, content).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSendActivationNotification(t *testing.T) {
	event := models.ActivationEvent{
		EventID:       "evt-1",
		Username:      "dave",
		Tier:          models.TierBasic,
		Amount:        20,
		Currency:      "EUR",
		TransactionID: "tx-1",
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	tests := []struct {
		name      string
		body      []byte
		setupMock func(m *TransportMock)
		wantErr   bool
	}{
		{
			name: "успешная отправка",
			body: body,
			setupMock: func(m *TransportMock) {
				m.On("Send", mock.Anything, mock.MatchedBy(func(content string) bool {
					return strings.Contains(content, "dave") &&
						strings.Contains(content, "basic") &&
						strings.Contains(content, "tx-1")
				})).Return(nil).Once()
			},
		},
		{
			name:      "битый JSON",
			body:      []byte("{not json"),
			setupMock: func(_ *TransportMock) {},
			wantErr:   true,
		},
		{
			name: "ошибка транспорта",
			body: body,
			setupMock: func(m *TransportMock) {
				m.On("Send", mock.Anything, mock.Anything).Return(errors.New("webhook down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(TransportMock)
			tt.setupMock(transport)
			svc := NewSenderService(transport, newNoopLogger())

			err := svc.SendActivationNotification(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			transport.AssertExpectations(t)
		})
	}
}
