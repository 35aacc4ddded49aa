// Package subscriptionlist реализует HTTP-обработчик списка всех подписок.
package subscriptionlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fanfindr/licensing/internal/http/response"
	"github.com/fanfindr/licensing/internal/lib/sl"
	"github.com/fanfindr/licensing/internal/models"
)

// Handler обрабатывает запросы на получение списка подписок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения списка подписок.
type Service interface {
	ListSubscriptions(ctx context.Context) ([]*models.SubscriptionRecord, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список подписок
// @Description Возвращает все записи подписок. Требует роль admin.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Список подписок"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.subscriptionlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subs, err := h.service.ListSubscriptions(r.Context())
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}

	log.Info("subscriptions listed", slog.Int("count", len(subs)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscriptions": subs,
		"count":         len(subs),
	}))
}
