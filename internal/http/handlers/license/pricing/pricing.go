// Package pricing реализует HTTP-обработчик чтения текущей цены подписки.
package pricing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fanfindr/licensing/internal/http/response"
	"github.com/fanfindr/licensing/internal/models"
)

// Handler обрабатывает запросы на чтение цены подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения цены.
// Цена всегда доступна: при недоступности хранилища возвращаются значения по умолчанию.
type Service interface {
	GetCurrentPricing(ctx context.Context) models.PricingConfig
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущая цена подписки
// @Description Возвращает цену месячной подписки и валюту.
// @Tags License
// @Produce  json
// @Success 200 {object} map[string]any "Цена подписки"
// @Router /pricing [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.license.pricing"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	pricing := h.service.GetCurrentPricing(r.Context())

	log.Info("pricing returned", slog.String("source", pricing.Source))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"pricing": pricing,
	}))
}
