// Package licensing собирает HTTP-приложение лицензирования: хранилище,
// миграции, кеш, бизнес-сервисы и маршруты, а также управляет жизненным
// циклом HTTP-сервера.
package licensing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/fanfindr/licensing/internal/cache"
	"github.com/fanfindr/licensing/internal/config"
	jwtlib "github.com/fanfindr/licensing/internal/lib/jwt"
	"github.com/fanfindr/licensing/internal/migrations"
	authservice "github.com/fanfindr/licensing/internal/services/auth"
	licenseservice "github.com/fanfindr/licensing/internal/services/license"
	"github.com/fanfindr/licensing/internal/storage/repository"
)

// App представляет HTTP-приложение лицензирования.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает приложение: подключает хранилище, накатывает миграции,
// инициализирует кеш и сервисы, регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	maker := jwtlib.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	licenseService := licenseservice.NewLicenseService(db, cacheRedis, logger)
	authService := authservice.NewAuthService(db, maker, logger)
	if err := authService.EnsureSecret(ctx, cfg.InitialSecret); err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, licenseService, authService, maker, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его корректно при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close storage", slog.Any("err", closeErr))
		}
		return err
	}
}
