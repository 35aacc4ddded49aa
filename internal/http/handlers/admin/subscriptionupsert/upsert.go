// Package subscriptionupsert реализует HTTP-обработчик ручной активации подписки.
//
// Handler принимает имя пользователя из URL и тариф из тела запроса,
// после чего выдает подписку на стандартный срок через бизнес-логику.
// Используется администратором для активации без банковского платежа.
package subscriptionupsert

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/fanfindr/licensing/internal/http/response"
	"github.com/fanfindr/licensing/internal/lib/sl"
	"github.com/fanfindr/licensing/internal/models"
)

// Request — структура входных данных ручной активации.
type Request struct {
	Tier             string `json:"tier" validate:"required,oneof=basic pro premium enterprise"`
	PaymentReference string `json:"payment_reference"`
}

// Handler обрабатывает запросы ручной активации подписки.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики активации подписки
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики активации подписки.
type Service interface {
	ActivateSubscription(ctx context.Context, username, paymentReference string, tier models.Tier) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Ручная активация подписки
// @Description Выдает пользователю подписку указанного тарифа на стандартный срок. Требует роль admin.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param username path string true "Имя пользователя"
// @Param request body Request true "Тариф и ссылка на платёж"
// @Success 200 {object} map[string]any "Подписка активирована"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/subscriptions/{username} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.subscriptionupsert"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	reference := req.PaymentReference
	if reference == "" {
		reference = "MANUAL_" + models.NormalizeUsername(username)
	}

	err := h.service.ActivateSubscription(r.Context(), username, reference, models.Tier(req.Tier))
	if err != nil {
		log.Error("failed to activate subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not activate subscription"))
		return
	}

	log.Info("subscription activated manually",
		slog.String("username", models.NormalizeUsername(username)),
		slog.String("tier", req.Tier))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"username": models.NormalizeUsername(username),
		"tier":     req.Tier,
	}))
}
