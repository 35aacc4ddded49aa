package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fanfindr/licensing/internal/models"
)

// UpsertSubscription вставляет или обновляет запись подписки по имени пользователя.
// Запись одна на пользователя: при конфликте все поля перезаписываются,
// кроме trial_used — однажды выставленный флаг никогда не сбрасывается.
func (s *Storage) UpsertSubscription(ctx context.Context, rec models.SubscriptionRecord) error {
	const op = "repository.UpsertSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (username, status, tier, subscription_start, subscription_end,
			      trial_used, is_trial, payment_reference, last_payment, price, currency, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
			  ON CONFLICT (username) DO UPDATE SET
			      status = EXCLUDED.status,
			      tier = EXCLUDED.tier,
			      subscription_start = EXCLUDED.subscription_start,
			      subscription_end = EXCLUDED.subscription_end,
			      trial_used = subscriptions.trial_used OR EXCLUDED.trial_used,
			      is_trial = EXCLUDED.is_trial,
			      payment_reference = EXCLUDED.payment_reference,
			      last_payment = EXCLUDED.last_payment,
			      price = EXCLUDED.price,
			      currency = EXCLUDED.currency,
			      updated_at = now()`
	_, err := s.DB.ExecContext(ctx, query,
		rec.Username, rec.Status, rec.Tier, nullTime(rec.SubscriptionStart), rec.SubscriptionEnd,
		rec.TrialUsed, rec.IsTrial, rec.PaymentReference, rec.LastPayment, rec.Price, rec.Currency)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadSubscription возвращает запись подписки по имени пользователя.
// Отсутствие записи не считается ошибкой: возвращается (nil, nil).
func (s *Storage) ReadSubscription(ctx context.Context, username string) (*models.SubscriptionRecord, error) {
	const op = "repository.ReadSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT username, status, tier, subscription_start, subscription_end,
				trial_used, is_trial, payment_reference, last_payment, price, currency
			  FROM subscriptions WHERE username = $1`
	row := s.DB.QueryRowContext(ctx, query, username)

	rec, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// DeleteSubscription удаляет запись подписки и возвращает количество удалённых строк.
func (s *Storage) DeleteSubscription(ctx context.Context, username string) (int, error) {
	const op = "repository.DeleteSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE username = $1`, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListSubscriptions возвращает все записи подписок для административной панели.
func (s *Storage) ListSubscriptions(ctx context.Context) ([]*models.SubscriptionRecord, error) {
	const op = "repository.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT username, status, tier, subscription_start, subscription_end,
				trial_used, is_trial, payment_reference, last_payment, price, currency
			  FROM subscriptions
			  ORDER BY username`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.SubscriptionRecord
	for rows.Next() {
		rec, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkExpired переводит запись в статус expired. Операция идемпотентна:
// повторный вызов для уже истёкшей записи не является ошибкой.
func (s *Storage) MarkExpired(ctx context.Context, username string) error {
	const op = "repository.MarkExpired"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET status = $1, updated_at = now()
			  WHERE username = $2 AND status <> $1`
	if _, err := s.DB.ExecContext(ctx, query, models.StatusExpired, username); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ExpireOverdue переводит в статус expired все активные записи,
// чей срок действия уже прошёл. Возвращает количество затронутых строк.
func (s *Storage) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	const op = "repository.ExpireOverdue"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET status = $1, updated_at = now()
			  WHERE status = $2 AND subscription_end IS NOT NULL AND subscription_end < $3`
	result, err := s.DB.ExecContext(ctx, query, models.StatusExpired, models.StatusActive, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// IsTransactionProcessed сообщает, была ли транзакция уже сверена ранее.
func (s *Storage) IsTransactionProcessed(ctx context.Context, transactionID string) (bool, error) {
	const op = "repository.IsTransactionProcessed"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM processed_transactions WHERE transaction_id = $1)`,
		transactionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ActivateFromPayment в одной транзакции выполняет upsert записи подписки
// и фиксирует идентификатор банковской транзакции как обработанный.
// Повторная доставка того же transaction_id приводит к тому же конечному
// состоянию: upsert просто перезапишет поля.
func (s *Storage) ActivateFromPayment(ctx context.Context, rec models.SubscriptionRecord, transactionID string) error {
	const op = "repository.ActivateFromPayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO subscriptions (username, status, tier, subscription_start, subscription_end,
			      trial_used, is_trial, payment_reference, last_payment, price, currency, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
			  ON CONFLICT (username) DO UPDATE SET
			      status = EXCLUDED.status,
			      tier = EXCLUDED.tier,
			      subscription_start = EXCLUDED.subscription_start,
			      subscription_end = EXCLUDED.subscription_end,
			      trial_used = subscriptions.trial_used OR EXCLUDED.trial_used,
			      is_trial = EXCLUDED.is_trial,
			      payment_reference = EXCLUDED.payment_reference,
			      last_payment = EXCLUDED.last_payment,
			      price = EXCLUDED.price,
			      currency = EXCLUDED.currency,
			      updated_at = now()`
	_, err = tx.ExecContext(ctx, query,
		rec.Username, rec.Status, rec.Tier, nullTime(rec.SubscriptionStart), rec.SubscriptionEnd,
		rec.TrialUsed, rec.IsTrial, rec.PaymentReference, rec.LastPayment, rec.Price, rec.Currency)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO processed_transactions (transaction_id, username)
		 VALUES ($1, $2)
		 ON CONFLICT (transaction_id) DO NOTHING`,
		transactionID, rec.Username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*models.SubscriptionRecord, error) {
	var rec models.SubscriptionRecord
	var start, end, lastPayment sql.NullTime
	if err := row.Scan(&rec.Username, &rec.Status, &rec.Tier, &start, &end,
		&rec.TrialUsed, &rec.IsTrial, &rec.PaymentReference, &lastPayment,
		&rec.Price, &rec.Currency); err != nil {
		return nil, err
	}
	if start.Valid {
		rec.SubscriptionStart = start.Time
	}
	if end.Valid {
		t := end.Time
		rec.SubscriptionEnd = &t
	}
	if lastPayment.Valid {
		t := lastPayment.Time
		rec.LastPayment = &t
	}
	return &rec, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
