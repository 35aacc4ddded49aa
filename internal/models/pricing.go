package models

import "time"

// Источники значения цены в ответе GetCurrentPricing.
// Любой источник с префиксом fallback означает деградацию:
// хранилище настроек недоступно или пусто.
const (
	PricingSourceStore    = "store"
	PricingSourceFallback = "fallback_default"
)

// Значения цены по умолчанию, используемые при недоступности хранилища.
const (
	DefaultMonthlyPrice = 19.99
	DefaultCurrency     = "EUR"
)

// PricingConfig текущая цена месячной подписки. Единственная запись,
// читается и монитором платежей, и проверкой доступа.
type PricingConfig struct {
	MonthlyPrice float64 `json:"monthly_price"`
	Currency     string  `json:"currency"`
	Source       string  `json:"source,omitempty"`
}

// PaymentDetails реквизиты для приёма банковских переводов,
// отображаемые пользователю без активной подписки.
type PaymentDetails struct {
	IBAN        string `json:"iban"`
	BIC         string `json:"bic"`
	Beneficiary string `json:"beneficiary"`
	Source      string `json:"source,omitempty"`
}

// ActivationEvent событие активации подписки, публикуемое монитором
// платежей в очередь уведомлений.
type ActivationEvent struct {
	EventID       string    `json:"event_id"`
	Username      string    `json:"username"`
	Tier          Tier      `json:"tier"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	TransactionID string    `json:"transaction_id"`
	ActivatedAt   time.Time `json:"activated_at"`
}
