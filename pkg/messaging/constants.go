package messaging

const (
	ExchangeName     = "notifications"
	NotifyRoutingKey = "subscription.notify"
	NotifyQueueName  = "subscription_notify_queue"
)
