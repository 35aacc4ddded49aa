// Package subscriptionremove реализует HTTP-обработчик удаления записи подписки.
package subscriptionremove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fanfindr/licensing/internal/http/response"
	"github.com/fanfindr/licensing/internal/lib/sl"
	"github.com/fanfindr/licensing/internal/models"
)

// Handler обрабатывает запросы на удаление подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления подписки.
type Service interface {
	DeleteSubscription(ctx context.Context, username string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить запись подписки
// @Description Удаляет запись подписки пользователя. Требует роль admin.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param username path string true "Имя пользователя"
// @Success 200 {object} map[string]any "Количество удалённых записей"
// @Failure 400 {object} response.ErrorResponse "Пустое имя пользователя"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/subscriptions/{username} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.subscriptionremove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username := chi.URLParam(r, "username")
	if models.NormalizeUsername(username) == "" {
		log.Error("empty username in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("username is required"))
		return
	}

	deleted, err := h.service.DeleteSubscription(r.Context(), username)
	if err != nil {
		log.Error("failed to delete subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete subscription"))
		return
	}
	if deleted == 0 {
		log.Info("subscription not found", slog.String("username", username))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("subscription not found"))
		return
	}

	log.Info("subscription deleted", slog.String("username", models.NormalizeUsername(username)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted": deleted,
	}))
}
