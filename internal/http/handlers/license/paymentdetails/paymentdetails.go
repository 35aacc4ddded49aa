// Package paymentdetails реализует HTTP-обработчик чтения платёжных реквизитов.
package paymentdetails

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fanfindr/licensing/internal/http/response"
	"github.com/fanfindr/licensing/internal/models"
)

// Handler обрабатывает запросы на чтение платёжных реквизитов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения реквизитов.
// Реквизиты всегда доступны: при недоступности хранилища возвращаются значения по умолчанию.
type Service interface {
	GetPaymentDetails(ctx context.Context) models.PaymentDetails
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Платёжные реквизиты
// @Description Возвращает банковские реквизиты для оплаты подписки переводом.
// @Tags License
// @Produce  json
// @Success 200 {object} map[string]any "Платёжные реквизиты"
// @Router /payment_details [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.license.paymentdetails"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	details := h.service.GetPaymentDetails(r.Context())

	log.Info("payment details returned", slog.String("source", details.Source))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"payment_details": details,
	}))
}
