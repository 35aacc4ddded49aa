// Package updatepricing реализует HTTP-обработчик изменения цены подписки.
package updatepricing

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/fanfindr/licensing/internal/http/response"
	"github.com/fanfindr/licensing/internal/lib/sl"
)

// Request — структура входных данных изменения цены.
type Request struct {
	MonthlyPrice float64 `json:"monthly_price" validate:"required,gt=0"`
	Currency     string  `json:"currency" validate:"required,len=3"`
}

// Handler обрабатывает запросы на изменение цены подписки.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики изменения цены
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики изменения цены.
type Service interface {
	UpdatePricing(ctx context.Context, monthlyPrice float64, currency string) error
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
// @Summary Изменить цену подписки
// @Description Сохраняет новую цену месячной подписки. Требует роль admin.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Новая цена и валюта"
// @Success 200 {object} map[string]any "Цена сохранена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/pricing [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updatepricing"
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

	if err := h.service.UpdatePricing(r.Context(), req.MonthlyPrice, req.Currency); err != nil {
		log.Error("failed to update pricing", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update pricing"))
		return
	}

	log.Info("pricing updated",
		slog.Float64("monthly_price", req.MonthlyPrice),
		slog.String("currency", req.Currency))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"monthly_price": req.MonthlyPrice,
		"currency":      req.Currency,
	}))
}
