package ports

import (
	"context"
	"freight-order-service/internal/domain"
)

// Delivers notifications to users. Implementations may persist, push or both.
type Notifier interface {
	Notify(ctx context.Context, n []domain.Notification) error
}

// OrderEvent is published after every successful order transition.
type OrderEvent struct {
	OrderID      int64               `json:"order_id"`
	Status       domain.AdminStatus  `json:"status"`
	ClientStatus domain.ClientStatus `json:"client_status"`
	ActorID      int64               `json:"actor_id"`
	At           string              `json:"at"`
}

// Publishes order events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, e OrderEvent) error
}

// Sends operational alerts to the back-office chat.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}
