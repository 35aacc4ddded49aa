// Package models содержит доменные структуры лицензирования:
// запись подписки, тарифы с квотами, результат проверки доступа,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"strings"
	"time"
)

// Status описывает состояние подписки.
type Status string

const (
	// StatusActive — подписка действует.
	StatusActive Status = "active"
	// StatusInactive — подписка создана, но не действует.
	StatusInactive Status = "inactive"
	// StatusExpired — срок подписки истёк.
	StatusExpired Status = "expired"
)

// Tier описывает тарифный план подписки.
// Тариф определяет квоту, а не срок: любой платёж даёт фиксированное окно.
type Tier string

const (
	// TierBasic — базовый тариф с ограниченной квотой.
	TierBasic Tier = "basic"
	// TierPro — расширенный тариф без ограничения квоты.
	TierPro Tier = "pro"
	// TierPremium — синоним enterprise, оставлен для совместимости со старыми записями.
	TierPremium Tier = "premium"
	// TierEnterprise — максимальный тариф без ограничения квоты.
	TierEnterprise Tier = "enterprise"
)

// MaxFans возвращает квоту тарифа: максимум обнаруживаемых пользователей
// за одну сессию поиска. -1 означает отсутствие ограничения.
// Неизвестный тариф получает квоту базового.
func (t Tier) MaxFans() int {
	switch t {
	case TierPro, TierPremium, TierEnterprise:
		return -1
	default:
		return 25
	}
}

// GrantDuration возвращает срок подписки, выдаваемый при активации тарифа.
// Сейчас все тарифы дают 30 дней: тариф управляет квотой, а не сроком.
func (t Tier) GrantDuration() time.Duration {
	return 30 * 24 * time.Hour
}

// TrialDuration срок действия пробного периода.
const TrialDuration = 24 * time.Hour

// SubscriptionRecord основная модель подписки, ключ — нормализованное имя пользователя.
type SubscriptionRecord struct {
	Username          string     `json:"username"`
	Status            Status     `json:"status"`
	Tier              Tier       `json:"tier"`
	SubscriptionStart time.Time  `json:"subscription_start"`
	SubscriptionEnd   *time.Time `json:"subscription_end"` // nil означает повреждённую запись, доступ не выдаётся
	TrialUsed         bool       `json:"trial_used"`       // выставляется один раз и никогда не сбрасывается
	IsTrial           bool       `json:"is_trial"`
	PaymentReference  string     `json:"payment_reference"`
	LastPayment       *time.Time `json:"last_payment"`
	Price             float64    `json:"price"`
	Currency          string     `json:"currency"`
}

// Причины отказа в доступе. Для неактивной записи причиной служит
// строковое значение её статуса.
const (
	ReasonNoSubscription = "no_subscription"
	ReasonInvalidRecord  = "invalid_record"
	ReasonExpired        = "expired"
)

// EntitlementResult результат проверки права на запуск поиска.
type EntitlementResult struct {
	Granted       bool   `json:"granted"`
	Reason        string `json:"reason,omitempty"`
	Tier          Tier   `json:"tier,omitempty"`
	MaxFans       int    `json:"max_fans"`
	DaysRemaining int    `json:"days_remaining"`
}

// TrialInfo данные успешно выданного пробного периода.
type TrialInfo struct {
	Username string    `json:"username"`
	Tier     Tier      `json:"tier"`
	TrialEnd time.Time `json:"trial_end"`
}

// NormalizeUsername приводит имя пользователя к каноничной форме,
// используемой как первичный ключ хранилища.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
