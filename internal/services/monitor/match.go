package services

import (
	"math"
	"strings"

	"github.com/fanfindr/licensing/internal/models"
)

// Допуск в единицах валюты цены, поглощающий банковские комиссии.
const amountTolerance = 2.0

// Резервная полоса приёма платежей при недоступном хранилище цены.
const (
	fallbackCurrency  = "EUR"
	fallbackMinAmount = 18.0
	fallbackMaxAmount = 25.0
)

// Маркеры продукта в назначении платежа. Сопоставление — эвристика по
// подстроке без учёта регистра, а не криптографическое доказательство:
// ложные отрицания ожидаемы и логируются, автоматический повтор не выполняется.
var productMarkers = []string{"ff-", "fanfinder", "fan finder", "fan-finder"}

const maxReferenceUsernameLen = 50

// matchesProduct проверяет, содержит ли назначение платежа маркер продукта.
func matchesProduct(reference string) bool {
	lower := strings.ToLower(reference)
	for _, marker := range productMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// validAmount проверяет сумму транзакции против текущей цены.
// При цене из хранилища: валюта совпадает (без учёта регистра) и
// |amount - price| <= 2.0. При деградации цены — резервная полоса
// 18.0–25.0 EUR включительно.
func validAmount(pricing models.PricingConfig, amount float64, currency string) bool {
	if pricing.Source == models.PricingSourceFallback {
		return strings.EqualFold(currency, fallbackCurrency) &&
			amount >= fallbackMinAmount && amount <= fallbackMaxAmount
	}
	return strings.EqualFold(currency, pricing.Currency) &&
		math.Abs(amount-pricing.MonthlyPrice) <= amountTolerance
}

// extractUsername извлекает имя пользователя из назначения платежа.
// Стратегии пробуются по порядку; результат не сверяется со списком
// известных пользователей — это осознанно слабое место эвристики.
func extractUsername(reference string) string {
	trimmed := strings.TrimSpace(reference)

	if strings.HasPrefix(trimmed, "FF-") {
		parts := strings.Split(trimmed, "-")
		if len(parts) >= 2 && parts[1] != "" {
			return models.NormalizeUsername(parts[1])
		}
	}

	if strings.Contains(strings.ToLower(trimmed), "fanfinder") && strings.Contains(trimmed, "-") {
		parts := strings.Split(trimmed, "-")
		for i, part := range parts {
			if strings.Contains(strings.ToLower(part), "fanfinder") && i+1 < len(parts) && parts[i+1] != "" {
				return models.NormalizeUsername(parts[i+1])
			}
		}
	}

	if idx := strings.Index(trimmed, "@"); idx > 0 {
		return models.NormalizeUsername(trimmed[:idx])
	}

	if len(trimmed) > maxReferenceUsernameLen {
		trimmed = trimmed[:maxReferenceUsernameLen]
	}
	return models.NormalizeUsername(trimmed)
}

// determineTier определяет тариф по сумме платежа относительно текущей цены.
// Пороги считаются от живой цены на момент обработки: изменение цены
// задним числом меняет границы тарифов для последующих транзакций.
func determineTier(amount, monthlyPrice float64) models.Tier {
	if monthlyPrice <= 0 {
		return models.TierBasic
	}
	switch {
	case amount >= 10*monthlyPrice:
		return models.TierEnterprise
	case amount >= 5*monthlyPrice:
		return models.TierPro
	default:
		return models.TierBasic
	}
}
