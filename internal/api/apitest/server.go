// Package apitest runs the full backend against a temporary SQLite file for
// tests of the API and its clients.
package apitest

import (
	"context"
	"freight-order-service/internal/adapters/distance"
	"freight-order-service/internal/adapters/notify"
	"freight-order-service/internal/adapters/repositories"
	"freight-order-service/internal/api"
	"freight-order-service/internal/auth"
	"freight-order-service/internal/platform/db"
	"freight-order-service/internal/pricing"
	"freight-order-service/internal/services"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

// Admin credentials seeded into every test server.
const (
	AdminLogin    = "admin@transportco.ru"
	AdminPassword = "admin123"
)

// NewServer starts a backend seeded with the default admin. It is closed
// when the test ends.
func NewServer(t testing.TB) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenSqlite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := repositories.InitSchema(ctx, conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	if err := repositories.SeedUsers(ctx, conn, []repositories.UserSeed{repositories.DefaultAdmin}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	users := repositories.NewSqliteUserRepository(conn)
	orders := repositories.NewSqliteOrderRepository(conn)
	drivers := repositories.NewSqliteDriverRepository(conn)
	inbox := repositories.NewSqliteNotificationRepository(conn)
	notifier := notify.NewRepositoryNotifier(inbox)
	resolver := distance.NewResolver(nil)

	orderSvc := &services.OrderService{
		Orders:     orders,
		Users:      users,
		Drivers:    drivers,
		Calculator: pricing.New(pricing.DefaultTariff()),
		Distances:  resolver,
		Notifier:   notifier,
	}
	sessions, err := auth.NewSessions("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}

	h := api.NewRouter(api.Deps{
		Accounts: &services.AccountService{Users: users, Orders: orders, Inbox: inbox},
		Orders:   orderSvc,
		Drivers: &services.DriverService{
			Drivers:      drivers,
			Users:        users,
			Orders:       orders,
			Notifier:     notifier,
			OrderService: orderSvc,
			Routes:       resolver,
			CityOf:       func(a string) string { return distance.NormalizeCity(distance.ExtractCity(a)) },
		},
		Sessions: sessions,
		Users:    users,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}
