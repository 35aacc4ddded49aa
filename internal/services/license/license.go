// Package services содержит бизнес-логику лицензирования: проверку права
// доступа, выдачу пробного периода, активацию подписки и чтение цены
// с деградацией к значениям по умолчанию.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fanfindr/licensing/internal/lib/sl"
	"github.com/fanfindr/licensing/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками и настройками в хранилище.
type SubscriptionRepository interface {
	// UpsertSubscription вставляет или обновляет запись подписки по имени пользователя.
	UpsertSubscription(ctx context.Context, rec models.SubscriptionRecord) error
	// ReadSubscription возвращает запись подписки, (nil, nil) при отсутствии.
	ReadSubscription(ctx context.Context, username string) (*models.SubscriptionRecord, error)
	// MarkExpired идемпотентно переводит запись в статус expired.
	MarkExpired(ctx context.Context, username string) error
	// DeleteSubscription удаляет запись и возвращает количество удалённых строк.
	DeleteSubscription(ctx context.Context, username string) (int, error)
	// ListSubscriptions возвращает все записи подписок.
	ListSubscriptions(ctx context.Context) ([]*models.SubscriptionRecord, error)
	// GetPricing читает текущую цену подписки.
	GetPricing(ctx context.Context) (*models.PricingConfig, error)
	// SetPricing сохраняет цену подписки.
	SetPricing(ctx context.Context, monthlyPrice float64, currency string) error
	// GetPaymentDetails читает платёжные реквизиты.
	GetPaymentDetails(ctx context.Context) (*models.PaymentDetails, error)
	// SetPaymentDetails сохраняет платёжные реквизиты.
	SetPaymentDetails(ctx context.Context, iban, bic, beneficiary string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Ошибки бизнес-логики, возвращаемые вызывающему как структурированный отказ.
var (
	// ErrEmptyUsername пустое имя пользователя.
	ErrEmptyUsername = errors.New("username is required")
	// ErrTrialUsed пробный период уже был использован.
	ErrTrialUsed = errors.New("trial already used")
	// ErrAlreadyActive подписка уже активна, пробный период поверх неё не выдаётся.
	ErrAlreadyActive = errors.New("subscription already active")
)

const subscriptionCacheTTL = 5 * time.Minute

// LicenseService реализует проверку прав и управление записями подписок.
type LicenseService struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
}

// NewLicenseService создает новый экземпляр LicenseService.
func NewLicenseService(repo SubscriptionRepository, cache Cache, log *slog.Logger) *LicenseService {
	return &LicenseService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Evaluate вычисляет право доступа по записи подписки и моменту времени.
// Чистая функция: весь ввод передаётся параметрами, часы внутри не читаются.
// Отказ всегда структурирован: отсутствие записи, неактивный статус,
// повреждённая запись без даты окончания, истёкший срок.
func Evaluate(rec *models.SubscriptionRecord, now time.Time) models.EntitlementResult {
	if rec == nil {
		return models.EntitlementResult{Granted: false, Reason: models.ReasonNoSubscription}
	}
	if rec.Status != models.StatusActive {
		return models.EntitlementResult{Granted: false, Reason: string(rec.Status)}
	}
	if rec.SubscriptionEnd == nil {
		// Активная запись без даты окончания — повреждение данных, доступ не выдаётся.
		return models.EntitlementResult{Granted: false, Reason: models.ReasonInvalidRecord}
	}
	if now.After(*rec.SubscriptionEnd) {
		return models.EntitlementResult{Granted: false, Reason: models.ReasonExpired}
	}

	days := int(rec.SubscriptionEnd.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return models.EntitlementResult{
		Granted:       true,
		Tier:          rec.Tier,
		MaxFans:       rec.Tier.MaxFans(),
		DaysRemaining: days,
	}
}

// CheckEntitlement проверяет право пользователя на запуск поиска.
// Истёкшая запись лениво переводится в статус expired; гонка двух
// одновременных проверок безопасна, перевод идемпотентен.
func (s *LicenseService) CheckEntitlement(ctx context.Context, username string) (models.EntitlementResult, error) {
	username = models.NormalizeUsername(username)
	if username == "" {
		return models.EntitlementResult{}, ErrEmptyUsername
	}

	rec, err := s.readSubscription(ctx, username)
	if err != nil {
		return models.EntitlementResult{}, err
	}

	result := Evaluate(rec, time.Now().UTC())
	if !result.Granted && result.Reason == models.ReasonExpired {
		if err := s.repo.MarkExpired(ctx, username); err != nil {
			s.log.Error("failed to mark subscription expired", slog.String("username", username), sl.Err(err))
		}
		s.invalidateSubscription(username)
	}
	return result, nil
}

// GrantTrial выдаёт одноразовый пробный период на 24 часа.
// Отказ: пробный период уже использовался, либо подписка сейчас активна.
func (s *LicenseService) GrantTrial(ctx context.Context, username string) (*models.TrialInfo, error) {
	const op = "services.license.GrantTrial"

	username = models.NormalizeUsername(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	rec, err := s.repo.ReadSubscription(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rec != nil {
		if rec.TrialUsed {
			return nil, ErrTrialUsed
		}
		// Отказ по статусу записи, а не по результату Evaluate: запись
		// со статусом active и прошедшей датой окончания тоже блокирует
		// выдачу, пока ленивый перевод в expired не выполнен.
		if rec.Status == models.StatusActive {
			return nil, ErrAlreadyActive
		}
	}

	now := time.Now().UTC()
	trialEnd := now.Add(models.TrialDuration)
	entry := models.SubscriptionRecord{
		Username:          username,
		Status:            models.StatusActive,
		Tier:              models.TierBasic,
		SubscriptionStart: now,
		SubscriptionEnd:   &trialEnd,
		TrialUsed:         true,
		IsTrial:           true,
		PaymentReference:  "TRIAL_" + username,
	}
	if err := s.repo.UpsertSubscription(ctx, entry); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateSubscription(username)

	s.log.Info("trial activated", slog.String("username", username))
	return &models.TrialInfo{
		Username: username,
		Tier:     models.TierBasic,
		TrialEnd: trialEnd,
	}, nil
}

// ActivateSubscription активирует подписку вручную (административный путь).
// Срок определяется тарифом, повторная активация освежает окно, а не складывает.
func (s *LicenseService) ActivateSubscription(ctx context.Context, username, paymentReference string, tier models.Tier) error {
	const op = "services.license.ActivateSubscription"

	username = models.NormalizeUsername(username)
	if username == "" {
		return ErrEmptyUsername
	}
	if tier == "" {
		tier = models.TierBasic
	}

	now := time.Now().UTC()
	end := now.Add(tier.GrantDuration())
	entry := models.SubscriptionRecord{
		Username:          username,
		Status:            models.StatusActive,
		Tier:              tier,
		SubscriptionStart: now,
		SubscriptionEnd:   &end,
		TrialUsed:         false,
		IsTrial:           false,
		PaymentReference:  paymentReference,
		LastPayment:       &now,
	}
	if err := s.repo.UpsertSubscription(ctx, entry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateSubscription(username)

	s.log.Info("subscription activated",
		slog.String("username", username),
		slog.String("tier", string(tier)),
		slog.String("payment_reference", paymentReference))
	return nil
}

// GetCurrentPricing возвращает текущую цену подписки. Недоступность хранилища
// не является ошибкой для вызывающего: возвращается значение по умолчанию,
// поле Source помечает деградацию.
func (s *LicenseService) GetCurrentPricing(ctx context.Context) models.PricingConfig {
	pricing, err := s.repo.GetPricing(ctx)
	if err != nil {
		s.log.Error("failed to read pricing, using fallback", sl.Err(err))
		return models.PricingConfig{
			MonthlyPrice: models.DefaultMonthlyPrice,
			Currency:     models.DefaultCurrency,
			Source:       models.PricingSourceFallback,
		}
	}
	pricing.Source = models.PricingSourceStore
	return *pricing
}

// GetPaymentDetails возвращает платёжные реквизиты для отображения.
// Ошибки чтения деградируют к пустым реквизитам c пометкой источника.
func (s *LicenseService) GetPaymentDetails(ctx context.Context) models.PaymentDetails {
	details, err := s.repo.GetPaymentDetails(ctx)
	if err != nil {
		s.log.Error("failed to read payment details, using fallback", sl.Err(err))
		return models.PaymentDetails{Source: models.PricingSourceFallback}
	}
	details.Source = models.PricingSourceStore
	return *details
}

// UpdatePricing сохраняет новую цену подписки.
func (s *LicenseService) UpdatePricing(ctx context.Context, monthlyPrice float64, currency string) error {
	const op = "services.license.UpdatePricing"
	if err := s.repo.SetPricing(ctx, monthlyPrice, currency); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("pricing updated", slog.Float64("monthly_price", monthlyPrice), slog.String("currency", currency))
	return nil
}

// UpdatePaymentDetails сохраняет новые платёжные реквизиты.
func (s *LicenseService) UpdatePaymentDetails(ctx context.Context, iban, bic, beneficiary string) error {
	const op = "services.license.UpdatePaymentDetails"
	if err := s.repo.SetPaymentDetails(ctx, iban, bic, beneficiary); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment details updated")
	return nil
}

// ListSubscriptions возвращает все записи подписок для административной панели.
func (s *LicenseService) ListSubscriptions(ctx context.Context) ([]*models.SubscriptionRecord, error) {
	return s.repo.ListSubscriptions(ctx)
}

// DeleteSubscription удаляет запись подписки (административный путь).
func (s *LicenseService) DeleteSubscription(ctx context.Context, username string) (int, error) {
	username = models.NormalizeUsername(username)
	if username == "" {
		return 0, ErrEmptyUsername
	}
	count, err := s.repo.DeleteSubscription(ctx, username)
	if err != nil {
		return 0, err
	}
	s.invalidateSubscription(username)
	return count, nil
}

func (s *LicenseService) readSubscription(ctx context.Context, username string) (*models.SubscriptionRecord, error) {
	cacheKey := "subscription:" + username

	var cached *models.SubscriptionRecord
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read subscription from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found && cached != nil {
		return cached, nil
	}

	rec, err := s.repo.ReadSubscription(ctx, username)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		if err := s.cache.Set(cacheKey, rec, subscriptionCacheTTL); err != nil {
			s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), sl.Err(err))
		}
	}
	return rec, nil
}

func (s *LicenseService) invalidateSubscription(username string) {
	cacheKey := "subscription:" + username
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), sl.Err(err))
	}
}
