package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fanfindr/licensing/internal/lib/password"
	"github.com/fanfindr/licensing/internal/storage/repository"
)

type SettingsMock struct {
	mock.Mock
}

func (m *SettingsMock) GetAdminSecretHash(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *SettingsMock) SetAdminSecretHash(ctx context.Context, hash string) error {
	args := m.Called(ctx, hash)
	return args.Error(0)
}

type MakerMock struct {
	mock.Mock
}

func (m *MakerMock) GenerateToken(username, role string) (string, error) {
	args := m.Called(username, role)
	return args.String(0), args.Error(1)
}

func TestLogin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hash, err := password.GetHash("correct-secret")
	require.NoError(t, err)

	tests := []struct {
		name      string
		secret    string
		setupMock func(*SettingsMock, *MakerMock)
		wantToken string
		wantErr   error
	}{
		{
			name:   "успешный вход с верным секретом",
			secret: "correct-secret",
			setupMock: func(s *SettingsMock, mk *MakerMock) {
				s.On("GetAdminSecretHash", mock.Anything).Return(hash, nil)
				mk.On("GenerateToken", "root", "admin").Return("signed-token", nil)
			},
			wantToken: "signed-token",
		},
		{
			name:   "неверный секрет",
			secret: "wrong-secret",
			setupMock: func(s *SettingsMock, _ *MakerMock) {
				s.On("GetAdminSecretHash", mock.Anything).Return(hash, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:   "хэш секрета отсутствует в настройках",
			secret: "correct-secret",
			setupMock: func(s *SettingsMock, _ *MakerMock) {
				s.On("GetAdminSecretHash", mock.Anything).Return("", errors.New("setting not found"))
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := new(SettingsMock)
			maker := new(MakerMock)
			tt.setupMock(settings, maker)

			svc := NewAuthService(settings, maker, logger)
			token, err := svc.Login(context.Background(), "root", tt.secret)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantToken, token)

			settings.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

// seedableSettings хранит хэш в памяти: позволяет проверить полный путь
// "засеять секрет при старте, затем войти с ним".
type seedableSettings struct {
	hash string
}

func (s *seedableSettings) GetAdminSecretHash(_ context.Context) (string, error) {
	if s.hash == "" {
		return "", repository.ErrSettingNotFound
	}
	return s.hash, nil
}

func (s *seedableSettings) SetAdminSecretHash(_ context.Context, hash string) error {
	s.hash = hash
	return nil
}

func TestEnsureSecret_FreshDeployCanLogin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	settings := &seedableSettings{}

	maker := new(MakerMock)
	maker.On("GenerateToken", "root", "admin").Return("signed-token", nil)

	svc := NewAuthService(settings, maker, logger)
	require.NoError(t, svc.EnsureSecret(context.Background(), "initial-secret"))
	require.NotEmpty(t, settings.hash)

	token, err := svc.Login(context.Background(), "root", "initial-secret")
	require.NoError(t, err)
	require.Equal(t, "signed-token", token)
}

func TestEnsureSecret_DoesNotOverwriteExistingHash(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	existing, err := password.GetHash("old-secret")
	require.NoError(t, err)
	settings := &seedableSettings{hash: existing}

	svc := NewAuthService(settings, new(MakerMock), logger)
	require.NoError(t, svc.EnsureSecret(context.Background(), "new-secret"))
	require.Equal(t, existing, settings.hash)
}

func TestEnsureSecret_EmptySecretIsNoop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	settings := &seedableSettings{}

	svc := NewAuthService(settings, new(MakerMock), logger)
	require.NoError(t, svc.EnsureSecret(context.Background(), ""))
	require.Empty(t, settings.hash)
}

func TestSetSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	settings := new(SettingsMock)
	settings.On("SetAdminSecretHash", mock.Anything, mock.MatchedBy(func(hash string) bool {
		return password.CompareHash(hash, "new-secret") == nil
	})).Return(nil)

	svc := NewAuthService(settings, new(MakerMock), logger)
	require.NoError(t, svc.SetSecret(context.Background(), "new-secret"))
	settings.AssertExpectations(t)
}
