// Package auth содержит бизнес-логику административной аутентификации:
// проверку секрета по bcrypt-хэшу из настроек и выпуск JWT с ролью admin.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fanfindr/licensing/internal/lib/password"
	"github.com/fanfindr/licensing/internal/lib/sl"
	"github.com/fanfindr/licensing/internal/storage/repository"
)

// SettingsRepository определяет чтение и запись административного секрета.
type SettingsRepository interface {
	// GetAdminSecretHash читает bcrypt-хэш административного секрета.
	GetAdminSecretHash(ctx context.Context) (string, error)
	// SetAdminSecretHash сохраняет bcrypt-хэш административного секрета.
	SetAdminSecretHash(ctx context.Context, hash string) error
}

// TokenMaker выпускает подписанные JWT.
type TokenMaker interface {
	GenerateToken(username, role string) (string, error)
}

// ErrInvalidCredentials возвращается при неверном секрете или имени пользователя.
var ErrInvalidCredentials = errors.New("invalid credentials")

const adminRole = "admin"

// AuthService проверяет административный секрет и выпускает токены.
type AuthService struct {
	repo  SettingsRepository
	maker TokenMaker
	log   *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(repo SettingsRepository, maker TokenMaker, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:  repo,
		maker: maker,
		log:   log,
	}
}

// Login проверяет секрет администратора и возвращает JWT с ролью admin.
// Отсутствие сохранённого хэша трактуется как неверные учетные данные,
// чтобы не раскрывать состояние настроек наружу.
func (s *AuthService) Login(ctx context.Context, username, secret string) (string, error) {
	const op = "services.auth.Login"

	hash, err := s.repo.GetAdminSecretHash(ctx)
	if err != nil {
		s.log.Warn("admin secret hash is not available", sl.Err(err))
		return "", ErrInvalidCredentials
	}
	if err := password.CompareHash(hash, secret); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.maker.GenerateToken(username, adminRole)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// SetSecret хэширует и сохраняет новый административный секрет.
func (s *AuthService) SetSecret(ctx context.Context, secret string) error {
	const op = "services.auth.SetSecret"

	hash, err := password.GetHash(secret)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetAdminSecretHash(ctx, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EnsureSecret сохраняет начальный административный секрет, если хэш
// ещё не записан в настройки. Уже сохранённый хэш не перезаписывается:
// смена секрета выполняется только явным вызовом SetSecret.
// Пустой секрет не считается ошибкой — запуск без административного
// доступа допустим.
func (s *AuthService) EnsureSecret(ctx context.Context, secret string) error {
	const op = "services.auth.EnsureSecret"

	if secret == "" {
		return nil
	}

	_, err := s.repo.GetAdminSecretHash(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrSettingNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.SetSecret(ctx, secret); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("admin secret seeded")
	return nil
}
