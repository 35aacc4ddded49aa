// Package sender собирает приложение отправки уведомлений: соединение с
// RabbitMQ, вебхук-транспорт и потребитель очереди активаций.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/fanfindr/licensing/internal/config"
	"github.com/fanfindr/licensing/internal/lib/webhook"
	"github.com/fanfindr/licensing/internal/rabbitmq"
	senderservice "github.com/fanfindr/licensing/internal/services/sender"
)

// App представляет приложение отправки уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New создает новый экземпляр приложения отправки уведомлений.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := webhook.NewClient(cfg.WebhookURL)
	senderService := senderservice.NewSenderService(transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди активаций и корректно завершает работу
// при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "notifications.activations", a.senderService.SendActivationNotification)
	if err != nil {
		a.logger.Error("failed to start notifications.activations consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
