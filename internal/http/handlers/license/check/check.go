// Package check реализует HTTP-обработчик проверки права на запуск поиска.
//
// Handler принимает JSON-запрос с именем пользователя, вызывает бизнес-логику
// проверки подписки и возвращает результат в JSON-формате. При отказе в доступе
// в ответ добавляются платёжные реквизиты для самостоятельной оплаты переводом.
package check

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

// Request — структура входных данных проверки подписки.
type Request struct {
	Username string `json:"username" validate:"required"`
}

// Handler обрабатывает запросы на проверку права доступа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики проверки подписки
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики проверки подписки.
type Service interface {
	CheckEntitlement(ctx context.Context, username string) (models.EntitlementResult, error)
	GetCurrentPricing(ctx context.Context) models.PricingConfig
	GetPaymentDetails(ctx context.Context) models.PaymentDetails
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
// @Summary Проверить право на запуск поиска
// @Description Проверяет подписку пользователя. При отказе возвращает причину и платёжные реквизиты.
// @Tags License
// @Accept  json
// @Produce  json
// @Param request body Request true "Имя пользователя"
// @Success 200 {object} map[string]any "Результат проверки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /check_subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.license.check"
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

	res, err := h.service.CheckEntitlement(r.Context(), req.Username)
	if errors.Is(err, services.ErrEmptyUsername) {
		log.Error("username is empty after normalization")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field Username is a required field"))
		return
	}
	if err != nil {
		log.Error("failed to check entitlement", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check subscription"))
		return
	}

	data := map[string]any{
		"entitlement": res,
	}
	if !res.Granted {
		pricing := h.service.GetCurrentPricing(r.Context())
		details := h.service.GetPaymentDetails(r.Context())
		data["payment_info"] = map[string]any{
			"price":       pricing.MonthlyPrice,
			"currency":    pricing.Currency,
			"iban":        details.IBAN,
			"bic":         details.BIC,
			"beneficiary": details.Beneficiary,
			"reference":   models.NormalizeUsername(req.Username),
		}
	}

	log.Info("entitlement checked",
		slog.String("username", models.NormalizeUsername(req.Username)),
		slog.Bool("granted", res.Granted))
	render.JSON(w, r, response.OKWithData(data))
}
