// Package updatepaymentdetails реализует HTTP-обработчик изменения платёжных реквизитов.
package updatepaymentdetails

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

// Request — структура входных данных изменения реквизитов.
type Request struct {
	IBAN        string `json:"iban" validate:"required"`
	BIC         string `json:"bic" validate:"required"`
	Beneficiary string `json:"beneficiary" validate:"required"`
}

// Handler обрабатывает запросы на изменение платёжных реквизитов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики изменения реквизитов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики изменения реквизитов.
type Service interface {
	UpdatePaymentDetails(ctx context.Context, iban, bic, beneficiary string) error
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
// @Summary Изменить платёжные реквизиты
// @Description Сохраняет новые банковские реквизиты для приёма переводов. Требует роль admin.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Новые реквизиты"
// @Success 200 {object} map[string]any "Реквизиты сохранены"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/payment_details [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updatepaymentdetails"
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

	if err := h.service.UpdatePaymentDetails(r.Context(), req.IBAN, req.BIC, req.Beneficiary); err != nil {
		log.Error("failed to update payment details", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update payment details"))
		return
	}

	log.Info("payment details updated", slog.String("beneficiary", req.Beneficiary))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"iban":        req.IBAN,
		"bic":         req.BIC,
		"beneficiary": req.Beneficiary,
	}))
}
