package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fanfindr/licensing/internal/models"
)

// Ключи таблицы настроек.
const (
	settingPricing         = "pricing"
	settingPaymentDetails  = "payment_details"
	settingAdminSecretHash = "admin_secret_hash"
)

// ErrSettingNotFound возвращается при чтении отсутствующего ключа настроек.
var ErrSettingNotFound = errors.New("setting not found")

func (s *Storage) getSetting(ctx context.Context, key string, out any) error {
	const op = "repository.getSetting"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var raw []byte
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrSettingNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) setSetting(ctx context.Context, key string, value any) error {
	const op = "repository.setSetting"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := s.DB.ExecContext(ctx, query, key, raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPricing читает текущую цену подписки. Отсутствие записи
// возвращается как ErrSettingNotFound, деградацию решает вызывающий.
func (s *Storage) GetPricing(ctx context.Context) (*models.PricingConfig, error) {
	var pricing models.PricingConfig
	if err := s.getSetting(ctx, settingPricing, &pricing); err != nil {
		return nil, err
	}
	return &pricing, nil
}

// SetPricing сохраняет цену подписки.
func (s *Storage) SetPricing(ctx context.Context, monthlyPrice float64, currency string) error {
	return s.setSetting(ctx, settingPricing, models.PricingConfig{
		MonthlyPrice: monthlyPrice,
		Currency:     currency,
	})
}

// GetPaymentDetails читает платёжные реквизиты для отображения пользователю.
func (s *Storage) GetPaymentDetails(ctx context.Context) (*models.PaymentDetails, error) {
	var details models.PaymentDetails
	if err := s.getSetting(ctx, settingPaymentDetails, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// SetPaymentDetails сохраняет платёжные реквизиты.
func (s *Storage) SetPaymentDetails(ctx context.Context, iban, bic, beneficiary string) error {
	return s.setSetting(ctx, settingPaymentDetails, models.PaymentDetails{
		IBAN:        iban,
		BIC:         bic,
		Beneficiary: beneficiary,
	})
}

// GetAdminSecretHash читает bcrypt-хэш административного секрета.
func (s *Storage) GetAdminSecretHash(ctx context.Context) (string, error) {
	var hash string
	if err := s.getSetting(ctx, settingAdminSecretHash, &hash); err != nil {
		return "", err
	}
	return hash, nil
}

// SetAdminSecretHash сохраняет bcrypt-хэш административного секрета.
func (s *Storage) SetAdminSecretHash(ctx context.Context, hash string) error {
	return s.setSetting(ctx, settingAdminSecretHash, hash)
}
