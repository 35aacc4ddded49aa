// Package licensing предоставляет маршруты HTTP-приложения лицензирования.
package licensing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fanfindr/licensing/docs"
	adminlogin "github.com/fanfindr/licensing/internal/http/handlers/admin/login"
	"github.com/fanfindr/licensing/internal/http/handlers/admin/subscriptionlist"
	"github.com/fanfindr/licensing/internal/http/handlers/admin/subscriptionremove"
	"github.com/fanfindr/licensing/internal/http/handlers/admin/subscriptionupsert"
	"github.com/fanfindr/licensing/internal/http/handlers/admin/updatepaymentdetails"
	"github.com/fanfindr/licensing/internal/http/handlers/admin/updatepricing"
	"github.com/fanfindr/licensing/internal/http/handlers/license/check"
	"github.com/fanfindr/licensing/internal/http/handlers/license/health"
	"github.com/fanfindr/licensing/internal/http/handlers/license/paymentdetails"
	"github.com/fanfindr/licensing/internal/http/handlers/license/pricing"
	"github.com/fanfindr/licensing/internal/http/handlers/license/trial"
	"github.com/fanfindr/licensing/internal/http/middlewarectx"
	authservice "github.com/fanfindr/licensing/internal/services/auth"
	licenseservice "github.com/fanfindr/licensing/internal/services/license"
	"github.com/fanfindr/licensing/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, licenseService *licenseservice.LicenseService,
	authService *authservice.AuthService, parser middlewarectx.TokenParser, db *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки с ограничением частоты
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/check_subscription", check.New(logger, licenseService).ServeHTTP)
			r.Post("/activate_trial", trial.New(logger, licenseService).ServeHTTP)
			r.Get("/pricing", pricing.New(logger, licenseService).ServeHTTP)
			r.Get("/payment_details", paymentdetails.New(logger, licenseService).ServeHTTP)
		})

		r.Get("/health", health.New(logger, db).ServeHTTP)
		r.Post("/admin/login", adminlogin.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией и ролью admin
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AdminJWTMiddleware(parser, logger))
			r.Get("/admin/subscriptions", subscriptionlist.New(logger, licenseService).ServeHTTP)
			r.Post("/admin/subscriptions/{username}", subscriptionupsert.New(logger, licenseService).ServeHTTP)
			r.Put("/admin/subscriptions/{username}", subscriptionupsert.New(logger, licenseService).ServeHTTP)
			r.Delete("/admin/subscriptions/{username}", subscriptionremove.New(logger, licenseService).ServeHTTP)
			r.Post("/admin/pricing", updatepricing.New(logger, licenseService).ServeHTTP)
			r.Post("/admin/payment_details", updatepaymentdetails.New(logger, licenseService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/swagger.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.SwaggerJSON)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/swagger.json")))
}
