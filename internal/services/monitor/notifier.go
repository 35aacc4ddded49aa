package services

import (
	"github.com/streadway/amqp"

	"github.com/fanfindr/licensing/internal/lib/rabbitmq"
	"github.com/fanfindr/licensing/internal/models"
)

// AMQPNotifier публикует события активации в обменник notifications.
type AMQPNotifier struct {
	ch *amqp.Channel
}

// NewAMQPNotifier создает новый AMQPNotifier поверх открытого канала.
func NewAMQPNotifier(ch *amqp.Channel) *AMQPNotifier {
	return &AMQPNotifier{ch: ch}
}

// PublishActivation публикует событие активации подписки.
func (n *AMQPNotifier) PublishActivation(event models.ActivationEvent) error {
	return rabbitmq.PublishMessage(n.ch, "notifications", "activation", event)
}
