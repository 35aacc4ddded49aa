package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации в обменнике notifications.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди уведомлений об активациях подписок.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.activations", RoutingKey: "activation"},
	}
}
