// Package services реализует монитор платежей: периодическую сверку
// входящих банковских транзакций с аккаунтами пользователей и
// идемпотентную активацию подписок.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fanfindr/licensing/internal/bankapi"
	"github.com/fanfindr/licensing/internal/lib/sl"
	"github.com/fanfindr/licensing/internal/models"
)

// BankClient определяет методы банковского API, используемые монитором.
type BankClient interface {
	// Profiles возвращает список профилей, доступных токену.
	Profiles(ctx context.Context) ([]bankapi.Profile, error)
	// Balances возвращает балансы профиля по валютам.
	Balances(ctx context.Context, profileID int64) ([]bankapi.Balance, error)
	// BalanceStatement возвращает выписку по счёту за интервал времени.
	BalanceStatement(ctx context.Context, profileID, balanceID int64, start, end time.Time) (*bankapi.Statement, error)
}

// Repository определяет методы хранилища, используемые монитором.
type Repository interface {
	// GetPricing читает текущую цену подписки.
	GetPricing(ctx context.Context) (*models.PricingConfig, error)
	// IsTransactionProcessed сообщает, была ли транзакция уже сверена.
	IsTransactionProcessed(ctx context.Context, transactionID string) (bool, error)
	// ActivateFromPayment атомарно активирует подписку и помечает транзакцию обработанной.
	ActivateFromPayment(ctx context.Context, rec models.SubscriptionRecord, transactionID string) error
	// ExpireOverdue переводит просроченные активные записи в статус expired.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Notifier публикует событие активации. Ошибки публикации не откатывают
// активацию: уведомление выполняется по принципу fire-and-forget.
type Notifier interface {
	PublishActivation(event models.ActivationEvent) error
}

// Cache инвалидация закешированных записей подписок после активации.
type Cache interface {
	Invalidate(key string) error
}

// MonitorService опрашивает банковский API и активирует подписки
// по входящим платежам. Циклы выполняются строго последовательно:
// очередной тик пропускается, пока не завершится текущий цикл.
type MonitorService struct {
	bank     BankClient
	repo     Repository
	notifier Notifier
	cache    Cache
	log      *slog.Logger

	pollInterval time.Duration
	pumpInterval time.Duration

	profileID int64 // кешируется после первого успешного запроса

	// Контрольная точка. Инициализируется моментом "старт минус час":
	// транзакции старше не сверяются — принятая брешь холодного старта.
	lastCheckTime time.Time
	lastCycleTime time.Time
	lastSweepTime time.Time
}

// NewMonitorService создает новый экземпляр MonitorService.
func NewMonitorService(bank BankClient, repo Repository, notifier Notifier, cache Cache,
	log *slog.Logger, pollInterval, pumpInterval time.Duration) *MonitorService {
	now := time.Now().UTC()
	return &MonitorService{
		bank:          bank,
		repo:          repo,
		notifier:      notifier,
		cache:         cache,
		log:           log,
		pollInterval:  pollInterval,
		pumpInterval:  pumpInterval,
		lastCheckTime: now.Add(-time.Hour),
		lastSweepTime: now,
	}
}

// Run запускает цикл опроса. Мелкий тик раз в pumpInterval проверяет,
// не пора ли выполнить очередной цикл сверки; сам цикл выполняется
// синхронно внутри тика, поэтому два цикла не могут гоняться за
// контрольной точкой.
func (s *MonitorService) Run(ctx context.Context) {
	s.log.Info("payment monitor starting",
		slog.Duration("poll_interval", s.pollInterval),
		slog.Duration("pump_interval", s.pumpInterval))

	s.runCycle(ctx)
	s.lastCycleTime = time.Now().UTC()

	ticker := time.NewTicker(s.pumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("payment monitor stopped")
			return
		case <-ticker.C:
			now := time.Now().UTC()
			if now.Sub(s.lastCycleTime) >= s.pollInterval {
				s.runCycle(ctx)
				s.lastCycleTime = time.Now().UTC()
			}
			if now.Sub(s.lastSweepTime) >= 24*time.Hour {
				s.runExpirySweep(ctx)
				s.lastSweepTime = now
			}
		}
	}
}

// runCycle выполняет один цикл сверки. Ошибка запроса к банковскому API
// прерывает цикл без продвижения контрольной точки: следующий цикл
// повторит то же окно. Ошибки обработки отдельных транзакций логируются
// и не повторяются — набор обработанных идентификаторов защищает от
// двойной активации при повторной доставке.
func (s *MonitorService) runCycle(ctx context.Context) {
	now := time.Now().UTC()
	log := s.log.With(slog.Time("window_start", s.lastCheckTime), slog.Time("window_end", now))
	log.Info("starting payment reconciliation cycle")

	if s.profileID == 0 {
		profiles, err := s.bank.Profiles(ctx)
		if err != nil {
			log.Error("failed to fetch profiles", sl.Err(err))
			cyclesTotal.WithLabelValues("error").Inc()
			return
		}
		if len(profiles) == 0 {
			log.Error("no profiles available for token")
			cyclesTotal.WithLabelValues("error").Inc()
			return
		}
		s.profileID = profiles[0].ID
		log.Info("profile id resolved", slog.Int64("profile_id", s.profileID))
	}

	balances, err := s.bank.Balances(ctx, s.profileID)
	if err != nil {
		log.Error("failed to fetch balances", sl.Err(err))
		cyclesTotal.WithLabelValues("error").Inc()
		return
	}

	for _, balance := range balances {
		statement, err := s.bank.BalanceStatement(ctx, s.profileID, balance.ID, s.lastCheckTime, now)
		if err != nil {
			log.Error("failed to fetch statement",
				slog.String("currency", balance.Currency), sl.Err(err))
			cyclesTotal.WithLabelValues("error").Inc()
			return
		}
		for _, tx := range statement.Transactions {
			if tx.Type != bankapi.TransactionTypeCredit {
				continue
			}
			s.processTransaction(ctx, tx)
		}
	}

	s.lastCheckTime = now
	cyclesTotal.WithLabelValues("ok").Inc()
	log.Info("payment reconciliation cycle finished")
}

func (s *MonitorService) processTransaction(ctx context.Context, tx bankapi.Transaction) {
	log := s.log.With(
		slog.String("transaction_id", tx.TransactionID),
		slog.Float64("amount", tx.Amount),
		slog.String("currency", tx.Currency))

	if !matchesProduct(tx.Reference) {
		log.Info("transaction reference has no product marker, skipping",
			slog.String("reference", tx.Reference))
		skippedTransactionsTotal.WithLabelValues("no_marker").Inc()
		return
	}

	pricing := s.currentPricing(ctx)
	if !validAmount(pricing, tx.Amount, tx.Currency) {
		log.Info("transaction amount outside accepted band, skipping",
			slog.Float64("monthly_price", pricing.MonthlyPrice),
			slog.String("pricing_source", pricing.Source))
		skippedTransactionsTotal.WithLabelValues("amount").Inc()
		return
	}

	username := extractUsername(tx.Reference)
	if username == "" {
		log.Info("could not extract username from reference, skipping",
			slog.String("reference", tx.Reference))
		skippedTransactionsTotal.WithLabelValues("no_username").Inc()
		return
	}

	processed, err := s.repo.IsTransactionProcessed(ctx, tx.TransactionID)
	if err != nil {
		log.Error("failed to check processed set", sl.Err(err))
		return
	}
	if processed {
		log.Info("transaction already processed, skipping")
		skippedTransactionsTotal.WithLabelValues("duplicate").Inc()
		return
	}

	tier := determineTier(tx.Amount, pricing.MonthlyPrice)
	now := time.Now().UTC()
	end := now.Add(tier.GrantDuration())
	rec := models.SubscriptionRecord{
		Username:          username,
		Status:            models.StatusActive,
		Tier:              tier,
		SubscriptionStart: now,
		SubscriptionEnd:   &end,
		TrialUsed:         false,
		IsTrial:           false,
		PaymentReference:  tx.TransactionID,
		LastPayment:       &now,
		Price:             tx.Amount,
		Currency:          tx.Currency,
	}
	if err := s.repo.ActivateFromPayment(ctx, rec, tx.TransactionID); err != nil {
		log.Error("failed to activate subscription", slog.String("username", username), sl.Err(err))
		return
	}
	if err := s.cache.Invalidate("subscription:" + username); err != nil {
		log.Warn("failed to invalidate subscription cache", sl.Err(err))
	}
	activationsTotal.Inc()
	log.Info("subscription activated from payment",
		slog.String("username", username), slog.String("tier", string(tier)))

	event := models.ActivationEvent{
		EventID:       uuid.New().String(),
		Username:      username,
		Tier:          tier,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		TransactionID: tx.TransactionID,
		ActivatedAt:   now,
	}
	if err := s.notifier.PublishActivation(event); err != nil {
		log.Error("failed to publish activation event", sl.Err(err))
	}
}

// currentPricing читает живую цену; недоступное хранилище деградирует
// к значениям по умолчанию с пометкой источника, цикл не прерывается.
func (s *MonitorService) currentPricing(ctx context.Context) models.PricingConfig {
	pricing, err := s.repo.GetPricing(ctx)
	if err != nil {
		s.log.Error("failed to read pricing, using fallback band", sl.Err(err))
		return models.PricingConfig{
			MonthlyPrice: models.DefaultMonthlyPrice,
			Currency:     models.DefaultCurrency,
			Source:       models.PricingSourceFallback,
		}
	}
	pricing.Source = models.PricingSourceStore
	return *pricing
}

func (s *MonitorService) runExpirySweep(ctx context.Context) {
	count, err := s.repo.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("expiry sweep failed", sl.Err(err))
		return
	}
	if count > 0 {
		s.log.Info("expiry sweep finished", slog.Int64("expired", count))
	}
}
