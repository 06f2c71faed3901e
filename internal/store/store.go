// Package store keeps the last fetched view of the backend for one session.
// Reads never hit the network; every mutation goes to the server first and
// refreshes the view only after it succeeds.
package store

import (
	"context"
	"errors"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/platform/obs"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrNoSession is returned by Refresh when the backend has no logged-in user.
var ErrNoSession = errors.New("store: not logged in")

// API is the part of the backend client the store needs.
type API interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
	ListApplications(ctx context.Context) ([]domain.DriverApplication, error)

	SubmitOrder(ctx context.Context, r domain.OrderRequest) (*domain.Order, error)
	CancelOrder(ctx context.Context, id int64) (*domain.Cancellation, error)
	Decide(ctx context.Context, id int64, d domain.Decision, comment string) error
	AssignDriver(ctx context.Context, id, driverUserID int64) error
	UpdateStatus(ctx context.Context, id int64, status domain.AdminStatus, clientStatus domain.ClientStatus) error
	AcceptOrder(ctx context.Context, id int64) error
	ApproveApplication(ctx context.Context, id int64) error
	RejectApplication(ctx context.Context, id int64) error
	DismissDriver(ctx context.Context, driverUserID int64, reason, ordersAction string) error
	RestoreDriver(ctx context.Context, driverUserID int64) error
	SetWorkStatus(ctx context.Context, ws domain.WorkStatus) error
}

type Store struct {
	api API

	mu           sync.RWMutex
	user         *domain.User
	orders       []domain.Order
	drivers      []domain.Driver
	applications []domain.DriverApplication
	refreshedAt  time.Time
}

func New(api API) *Store {
	return &Store{api: api}
}

// Refresh refetches everything the current role may see. The view is
// replaced only when every fetch succeeds.
func (s *Store) Refresh(ctx context.Context) (err error) {
	defer obs.Time(ctx, "store.refresh")(&err)

	u, err := s.api.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("refresh: current user: %w", err)
	}
	if u == nil {
		s.mu.Lock()
		s.user, s.orders, s.drivers, s.applications = nil, nil, nil, nil
		s.mu.Unlock()
		return ErrNoSession
	}

	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("refresh: orders: %w", err)
	}

	var (
		drivers []domain.Driver
		apps    []domain.DriverApplication
	)
	if u.IsAdmin {
		if drivers, err = s.api.ListDrivers(ctx); err != nil {
			return fmt.Errorf("refresh: drivers: %w", err)
		}
		if apps, err = s.api.ListApplications(ctx); err != nil {
			return fmt.Errorf("refresh: applications: %w", err)
		}
	}

	s.mu.Lock()
	s.user, s.orders, s.drivers, s.applications = u, orders, drivers, apps
	s.refreshedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Watch refreshes on the cron schedule spec (for example "@every 30s")
// until ctx is done. Runs that would overlap are skipped.
func (s *Store) Watch(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(spec, func() {
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			obs.FromContext(ctx).Warn("store refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("watch %q: %w", spec, err)
	}

	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}

func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// RefreshedAt is the time of the last successful Refresh.
func (s *Store) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Order(nil), s.orders...)
}

// Order looks an order up in the current view.
func (s *Store) Order(id int64) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

func (s *Store) Drivers() []domain.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Driver(nil), s.drivers...)
}

func (s *Store) Applications() []domain.DriverApplication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DriverApplication(nil), s.applications...)
}

// AssignableDrivers lists drivers that are employed and on shift.
func (s *Store) AssignableDrivers() []domain.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.AssignableDrivers(s.drivers)
}

func (s *Store) Stats(userID int64) domain.OrderStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ClientStats(s.orders, userID)
}

func (s *Store) Earnings(driverUserID int64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Earnings(s.orders, driverUserID)
}

// after refreshes once a mutation has succeeded. A failed mutation leaves
// the view untouched.
func (s *Store) after(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *Store) SubmitOrder(ctx context.Context, r domain.OrderRequest) (*domain.Order, error) {
	o, err := s.api.SubmitOrder(ctx, r)
	if err := s.after(ctx, err); err != nil {
		return o, err
	}
	return o, nil
}

func (s *Store) Cancel(ctx context.Context, id int64) (*domain.Cancellation, error) {
	c, err := s.api.CancelOrder(ctx, id)
	if err := s.after(ctx, err); err != nil {
		return c, err
	}
	return c, nil
}

func (s *Store) Decide(ctx context.Context, id int64, d domain.Decision, comment string) error {
	return s.after(ctx, s.api.Decide(ctx, id, d, comment))
}

func (s *Store) Assign(ctx context.Context, id, driverUserID int64) error {
	return s.after(ctx, s.api.AssignDriver(ctx, id, driverUserID))
}

func (s *Store) Accept(ctx context.Context, id int64) error {
	return s.after(ctx, s.api.AcceptOrder(ctx, id))
}

func (s *Store) MarkInTransit(ctx context.Context, id int64) error {
	return s.after(ctx, s.api.UpdateStatus(ctx, id, domain.StatusInTransit, ""))
}

func (s *Store) MarkDelivered(ctx context.Context, id int64) error {
	return s.after(ctx, s.api.UpdateStatus(ctx, id, domain.StatusDelivered, ""))
}

func (s *Store) Approve(ctx context.Context, applicationID int64) error {
	return s.after(ctx, s.api.ApproveApplication(ctx, applicationID))
}

func (s *Store) Reject(ctx context.Context, applicationID int64) error {
	return s.after(ctx, s.api.RejectApplication(ctx, applicationID))
}

func (s *Store) Dismiss(ctx context.Context, driverUserID int64, reason, ordersAction string) error {
	return s.after(ctx, s.api.DismissDriver(ctx, driverUserID, reason, ordersAction))
}

func (s *Store) Restore(ctx context.Context, driverUserID int64) error {
	return s.after(ctx, s.api.RestoreDriver(ctx, driverUserID))
}

func (s *Store) SetWorkStatus(ctx context.Context, ws domain.WorkStatus) error {
	return s.after(ctx, s.api.SetWorkStatus(ctx, ws))
}
