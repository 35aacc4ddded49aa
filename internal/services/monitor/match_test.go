package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fanfindr/licensing/internal/models"
)

func TestMatchesProduct(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		want      bool
	}{
		{"префикс FF-", "FF-alice-20240101", true},
		{"fanfinder одним словом", "payment fanfinder march", true},
		{"fan finder с пробелом", "Fan Finder subscription", true},
		{"fan-finder через дефис", "my fan-finder payment", true},
		{"регистр не важен", "FANFINDER", true},
		{"посторонний платёж", "rent for march", false},
		{"пустое назначение", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesProduct(tt.reference))
		})
	}
}

func TestValidAmount(t *testing.T) {
	storePricing := models.PricingConfig{
		MonthlyPrice: 20,
		Currency:     "EUR",
		Source:       models.PricingSourceStore,
	}
	fallbackPricing := models.PricingConfig{
		MonthlyPrice: models.DefaultMonthlyPrice,
		Currency:     models.DefaultCurrency,
		Source:       models.PricingSourceFallback,
	}

	tests := []struct {
		name     string
		pricing  models.PricingConfig
		amount   float64
		currency string
		want     bool
	}{
		{"точная цена", storePricing, 20.0, "EUR", true},
		{"нижняя граница допуска", storePricing, 18.0, "EUR", true},
		{"верхняя граница допуска", storePricing, 22.0, "EUR", true},
		{"чуть ниже допуска", storePricing, 17.9, "EUR", false},
		{"чуть выше допуска", storePricing, 22.1, "EUR", false},
		{"валюта в другом регистре", storePricing, 20.0, "eur", true},
		{"чужая валюта", storePricing, 20.0, "USD", false},
		{"резервная полоса: нижняя граница", fallbackPricing, 18.0, "EUR", true},
		{"резервная полоса: верхняя граница", fallbackPricing, 25.0, "EUR", true},
		{"резервная полоса: вне полосы", fallbackPricing, 17.5, "EUR", false},
		{"резервная полоса: чужая валюта", fallbackPricing, 20.0, "USD", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validAmount(tt.pricing, tt.amount, tt.currency))
		})
	}
}

func TestExtractUsername(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		want      string
	}{
		{"формат FF-", "FF-alice-20240101-x9", "alice"},
		{"поле после fanfinder", "payment-fanfinder-bob", "bob"},
		{"email-адрес", "charlie@example.com", "charlie"},
		{"сырое назначение", "randomtext", "randomtext"},
		{"длинное назначение обрезается", strings.Repeat("a", 80), strings.Repeat("a", 50)},
		{"FF- приводит имя к нижнему регистру", "FF-Alice-1", "alice"},
		{"FF- без имени падает в следующие стратегии", "FF-", "ff-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUsername(tt.reference))
		})
	}
}

func TestDetermineTier(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		monthlyPrice float64
		want         models.Tier
	}{
		{"десятикратная цена — enterprise", 100, 10, models.TierEnterprise},
		{"между пятью и десятью — pro", 55, 10, models.TierPro},
		{"обычный платёж — basic", 15, 10, models.TierBasic},
		{"ровно пятикратная цена — pro, граница включительна", 50, 10, models.TierPro},
		{"ровно десятикратная цена — enterprise", 100, 10, models.TierEnterprise},
		{"нулевая цена — basic", 100, 0, models.TierBasic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineTier(tt.amount, tt.monthlyPrice))
		})
	}
}
