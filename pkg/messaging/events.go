package messaging

import "time"

// NotifyEvent asks a worker to run one delivery cycle for a subscription.
type NotifyEvent struct {
	SubscriptionID int64     `json:"subscription_id"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}
