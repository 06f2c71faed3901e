package domain

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
)

type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      NotificationType
	Read      bool
	CreatedAt time.Time
}

const cancelledTitle = "Заказ отменен"

// CancellationNotices builds the messages sent after a cancellation: one per
// administrator and one for the order owner.
func CancellationNotices(c Cancellation, adminIDs []int64) []Notification {
	out := make([]Notification, 0, len(adminIDs)+1)
	for _, id := range adminIDs {
		out = append(out, Notification{
			UserID:  id,
			Title:   cancelledTitle,
			Message: fmt.Sprintf("Заказ #%d был отменен. Штраф 10%%: %.2f ₽.", c.OrderID, c.Fee),
			Type:    NotifyWarning,
		})
	}
	out = append(out, Notification{
		UserID: c.UserID,
		Title:  cancelledTitle,
		Message: fmt.Sprintf(
			"Ваш заказ #%d был отменен. Удержан штраф 10%%: %.2f ₽. К возврату: %.2f ₽.",
			c.OrderID, c.Fee, c.Refund,
		),
		Type: NotifyWarning,
	})
	return out
}
