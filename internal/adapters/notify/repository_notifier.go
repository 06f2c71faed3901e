package notify

import (
	"context"
	"errors"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/ports"
)

// RepositoryNotifier stores notifications so users see them in the app.
type RepositoryNotifier struct {
	Repo ports.NotificationRepository
}

func NewRepositoryNotifier(repo ports.NotificationRepository) *RepositoryNotifier {
	return &RepositoryNotifier{Repo: repo}
}

// Notify persists every notification. It stops at the first failure.
func (n *RepositoryNotifier) Notify(ctx context.Context, ns []domain.Notification) error {
	if n.Repo == nil {
		return errors.New("repository notifier: repo is nil")
	}
	for i := range ns {
		if err := n.Repo.CreateNotification(ctx, &ns[i]); err != nil {
			return fmt.Errorf("notify user %d: %w", ns[i].UserID, err)
		}
	}
	return nil
}
