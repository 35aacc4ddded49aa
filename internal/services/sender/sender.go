// Package services реализует отправку уведомлений об активациях подписок
// из очереди RabbitMQ в вебхук операторов.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fanfindr/licensing/internal/lib/sl"
	"github.com/fanfindr/licensing/internal/models"
)

// Transport описывает исходящий канал доставки уведомлений.
type Transport interface {
	Send(ctx context.Context, content string) error
}

// SenderService потребляет события активации и отправляет уведомления.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport Transport, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendActivationNotification обрабатывает сообщение очереди с событием
// активации и отправляет уведомление в вебхук.
func (s *SenderService) SendActivationNotification(body []byte) error {
	var event models.ActivationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	content := fmt.Sprintf("Subscription activated: %s (tier %s, %.2f %s, tx %s)",
		event.Username, event.Tier, event.Amount, event.Currency, event.TransactionID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.transport.Send(ctx, content); err != nil {
		s.log.Error("failed to send notification", sl.Err(err))
		return err
	}
	s.log.Info("activation notification sent", slog.String("username", event.Username))
	return nil
}
