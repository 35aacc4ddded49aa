// Package trial реализует HTTP-обработчик активации пробного периода.
//
// Handler принимает JSON-запрос с именем пользователя и выдает одноразовый
// пробный период через бизнес-логику. Повторная выдача и выдача поверх
// действующей подписки отклоняются со статусом 409.
package trial

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/fanfindr/licensing/internal/http/response"
	"github.com/fanfindr/licensing/internal/lib/sl"
	"github.com/fanfindr/licensing/internal/models"
	services "github.com/fanfindr/licensing/internal/services/license"
)

// Request — структура входных данных активации пробного периода.
type Request struct {
	Username string `json:"username" validate:"required"`
}

// Handler обрабатывает запросы на выдачу пробного периода.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики выдачи пробного периода
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики выдачи пробного периода.
type Service interface {
	GrantTrial(ctx context.Context, username string) (*models.TrialInfo, error)
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
// @Summary Активировать пробный период
// @Description Выдает одноразовый пробный период на 24 часа. Повторная выдача невозможна.
// @Tags License
// @Accept  json
// @Produce  json
// @Param request body Request true "Имя пользователя"
// @Success 200 {object} map[string]any "Пробный период выдан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Пробный период уже использован или подписка активна"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /activate_trial [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.license.trial"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	info, err := h.service.GrantTrial(r.Context(), req.Username)
	switch {
	case errors.Is(err, services.ErrEmptyUsername):
		log.Error("username is empty after normalization")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field Username is a required field"))
		return
	case errors.Is(err, services.ErrTrialUsed):
		log.Info("trial already used", slog.String("username", req.Username))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("trial already used"))
		return
	case errors.Is(err, services.ErrAlreadyActive):
		log.Info("subscription already active", slog.String("username", req.Username))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("subscription already active"))
		return
	case err != nil:
		log.Error("failed to grant trial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not activate trial"))
		return
	}

	log.Info("trial activated", slog.String("username", info.Username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"trial": info,
	}))
}
