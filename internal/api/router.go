package api

import (
	"freight-order-service/internal/api/handlers"
	"freight-order-service/internal/auth"
	"freight-order-service/internal/services"
	"net/http"
)

// Deps are the services the API is built from.
type Deps struct {
	Accounts *services.AccountService
	Orders   *services.OrderService
	Drivers  *services.DriverService
	Sessions *auth.Sessions
	Users    auth.UserLookup
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	acc := &handlers.AccountHandler{Accounts: d.Accounts, Sessions: d.Sessions}
	ord := &handlers.OrderHandler{Orders: d.Orders}
	drv := &handlers.DriverHandler{Drivers: d.Drivers}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/api/health", handlers.Health)

	mux.HandleFunc("POST /api/register", acc.Register)
	mux.HandleFunc("POST /api/login", acc.Login)
	mux.HandleFunc("POST /api/logout", acc.Logout)
	mux.HandleFunc("GET /api/current-user", acc.CurrentUser)
	mux.HandleFunc("GET /api/profile", acc.Profile)
	mux.HandleFunc("POST /api/profile", acc.UpdateProfile)
	mux.HandleFunc("POST /api/profile/password", acc.ChangePassword)
	mux.HandleFunc("GET /api/stats", acc.Stats)
	mux.HandleFunc("GET /api/notifications", acc.Notifications)
	mux.HandleFunc("POST /api/notifications/{id}/read", acc.MarkNotificationRead)

	mux.HandleFunc("GET /api/orders", ord.List)
	mux.HandleFunc("POST /api/orders", ord.Create)
	mux.HandleFunc("POST /api/orders/quote", ord.Quote)
	mux.HandleFunc("GET /api/orders/{id}", ord.Get)
	mux.HandleFunc("POST /api/orders/{id}/status", ord.UpdateStatus)
	mux.HandleFunc("POST /api/orders/{id}/cancel", ord.Cancel)
	mux.HandleFunc("POST /api/admin/orders/{id}/decision", ord.Decide)
	mux.HandleFunc("POST /api/admin/orders/{id}/assign", ord.Assign)
	mux.HandleFunc("POST /api/driver/orders/{id}/accept", ord.Accept)

	mux.HandleFunc("GET /api/driver/application", drv.Application)
	mux.HandleFunc("POST /api/driver/application", drv.Apply)
	mux.HandleFunc("GET /api/driver/info", drv.Info)
	mux.HandleFunc("GET /api/driver/trip", drv.Trip)
	mux.HandleFunc("POST /api/driver/work-status", drv.SetWorkStatus)
	mux.HandleFunc("GET /api/admin/driver_applications", drv.ListApplications)
	mux.HandleFunc("POST /api/admin/driver_application/{id}/approve", drv.Approve)
	mux.HandleFunc("POST /api/admin/driver_application/{id}/reject", drv.Reject)
	mux.HandleFunc("GET /api/admin/drivers", drv.List)
	mux.HandleFunc("POST /api/admin/drivers/{uid}/dismiss", drv.Dismiss)
	mux.HandleFunc("POST /api/admin/drivers/{uid}/restore", drv.Restore)

	var h http.Handler = mux
	h = auth.Middleware(d.Sessions, d.Users)(h)
	h = recoverMiddleware(h)
	return loggingMiddleware(h)
}
