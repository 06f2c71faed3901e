package ports

import (
	"context"
	"freight-order-service/internal/domain"
)

// OrderFilter scopes order listings to a role's view.
type OrderFilter struct {
	UserID   *int64
	DriverID *int64
}

// Boundary for storing and loading orders.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]domain.Order, error)
	// Persist every mutable column of o.
	SaveOrder(ctx context.Context, o *domain.Order) error
}

// Boundary for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, u *domain.User, passwordHash string) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	// Look a user up by email or phone and return its password hash.
	FindByLogin(ctx context.Context, login string) (*domain.User, string, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	SetPassword(ctx context.Context, userID int64, passwordHash string) error
	SetDriverRole(ctx context.Context, userID int64, isDriver bool) error
	AdminIDs(ctx context.Context) ([]int64, error)
}

// Boundary for drivers and their applications.
type DriverRepository interface {
	CreateDriver(ctx context.Context, d *domain.Driver) error
	GetDriverByUser(ctx context.Context, userID int64) (*domain.Driver, error)
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
	SaveDriver(ctx context.Context, d *domain.Driver) error
	IncrementDeliveries(ctx context.Context, userID int64) error

	CreateApplication(ctx context.Context, a *domain.DriverApplication) error
	GetApplication(ctx context.Context, id int64) (*domain.DriverApplication, error)
	LatestApplication(ctx context.Context, userID int64) (*domain.DriverApplication, error)
	HasPendingApplication(ctx context.Context, userID int64) (bool, error)
	ListApplications(ctx context.Context) ([]domain.DriverApplication, error)
	SaveApplication(ctx context.Context, a *domain.DriverApplication) error
}

// Boundary for in-app notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotifications(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
}
