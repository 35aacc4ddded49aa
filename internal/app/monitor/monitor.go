// Package monitor собирает приложение сверки банковских платежей:
// клиент банковского API, хранилище, кеш, очередь уведомлений и сам
// цикл опроса выписки.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/fanfindr/licensing/internal/bankapi"
	"github.com/fanfindr/licensing/internal/cache"
	"github.com/fanfindr/licensing/internal/config"
	"github.com/fanfindr/licensing/internal/rabbitmq"
	monitorservice "github.com/fanfindr/licensing/internal/services/monitor"
	"github.com/fanfindr/licensing/internal/storage/repository"
)

// App представляет приложение монитора платежей.
type App struct {
	monitorService *monitorservice.MonitorService
	conn           *amqp.Connection
	ch             *amqp.Channel
	db             *repository.Storage
	logger         *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения монитора платежей.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	bankClient := bankapi.NewClient(cfg.BankAPI.APIURL, cfg.BankAPI.APIToken, cfg.BankAPI.RequestTimeout)
	notifier := monitorservice.NewAMQPNotifier(ch)

	monitorService := monitorservice.NewMonitorService(bankClient, db, notifier, cacheRedis,
		logger, cfg.PollInterval, cfg.PumpInterval)

	return &App{
		monitorService: monitorService,
		conn:           conn,
		ch:             ch,
		db:             db,
		logger:         logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает цикл сверки платежей и освобождает ресурсы при остановке.
func (a *App) Run(ctx context.Context) error {
	a.monitorService.Run(ctx)

	a.logger.Info("shutting down payment monitor")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close storage", slog.Any("err", err))
	}

	return nil
}
