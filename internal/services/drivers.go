package services

import (
	"context"
	"errors"
	"fmt"
	"freight-order-service/internal/auth"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/ports"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OrdersAction says what happens to a dismissed driver's unfinished orders.
type OrdersAction string

const (
	OrdersKeep     OrdersAction = "keep"
	OrdersCancel   OrdersAction = "cancel"
	OrdersUnassign OrdersAction = "unassign"
)

// ParseOrdersAction accepts the action names used by the admin panel.
// "reassign" is an alias of unassign; empty means keep.
func ParseOrdersAction(s string) (OrdersAction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return OrdersKeep, true
	case "cancel":
		return OrdersCancel, true
	case "unassign", "reassign":
		return OrdersUnassign, true
	}
	return "", false
}

// DriverService handles driver applications, the driver roster and the
// drivers' own availability.
type DriverService struct {
	Drivers  ports.DriverRepository
	Users    ports.UserRepository
	Orders   ports.OrderRepository
	Notifier ports.Notifier
	Alerter  ports.Alerter
	// Cancels orders when a dismissal asks for it.
	OrderService *OrderService
	// Routes answers trip legs; CityOf maps an address to its city.
	Routes ports.DistanceProvider
	CityOf func(address string) string
	Now    func() time.Time
}

func (s *DriverService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Application returns the caller's latest application, or nil.
func (s *DriverService) Application(ctx context.Context, p *auth.Principal) (*domain.DriverApplication, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	a, err := s.Drivers.LatestApplication(ctx, p.UserID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("driver application: %w", err)
	}
	return a, nil
}

// Apply files a driver application. Only one may be pending per user.
func (s *DriverService) Apply(ctx context.Context, p *auth.Principal, v domain.Vehicle) (*domain.DriverApplication, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if p.IsDriver() || p.IsAdmin() {
		return nil, forbidden(MsgForbidden)
	}

	v.LicenseNumber = strings.TrimSpace(v.LicenseNumber)
	v.CarModel = strings.TrimSpace(v.CarModel)
	v.CarNumber = strings.TrimSpace(v.CarNumber)
	if v.LicenseNumber == "" || v.CarModel == "" || v.CarNumber == "" || v.CarType == "" || v.MaxWeight <= 0 || v.Experience < 0 {
		return nil, invalid(MsgFillAllFields, nil)
	}

	pending, err := s.Drivers.HasPendingApplication(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}
	if pending {
		return nil, invalid(MsgActiveApplication, nil)
	}

	now := s.now()
	a := &domain.DriverApplication{UserID: p.UserID, Vehicle: v, Status: domain.ApplicationPending, AppliedAt: &now}
	if err := s.Drivers.CreateApplication(ctx, a); err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}

	s.alert(ctx, fmt.Sprintf("Новая заявка водителя #%d: %s %s, %s", a.ID, v.CarModel, v.CarNumber, domain.CarTypeName(v.CarType)))
	return a, nil
}

func (s *DriverService) ListApplications(ctx context.Context, p *auth.Principal) ([]domain.DriverApplication, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	apps, err := s.Drivers.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Review approves or rejects a pending application. Approval hires the
// applicant and grants the driver role.
func (s *DriverService) Review(ctx context.Context, p *auth.Principal, id int64, approve bool) (*domain.DriverApplication, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	a, err := s.Drivers.GetApplication(ctx, id)
	if err != nil {
		return nil, lookup(MsgAppNotFound, err)
	}

	now := s.now()
	if err := a.Review(approve, p.UserID, now); err != nil {
		return nil, transitionError(err)
	}

	if approve {
		if err := s.hire(ctx, a, now); err != nil {
			return nil, err
		}
	}

	if err := s.Drivers.SaveApplication(ctx, a); err != nil {
		return nil, fmt.Errorf("review application %d: %w", id, err)
	}

	n := domain.Notification{UserID: a.UserID, Title: "Заявка водителя"}
	if approve {
		n.Message, n.Type = "Ваша заявка одобрена. Добро пожаловать в команду!", domain.NotifySuccess
	} else {
		n.Message, n.Type = "Ваша заявка отклонена.", domain.NotifyError
	}
	s.notify(ctx, []domain.Notification{n})
	return a, nil
}

// hire creates the driver row, or reactivates an existing one for a
// returning driver, and sets the driver role.
func (s *DriverService) hire(ctx context.Context, a *domain.DriverApplication, now time.Time) error {
	d := domain.HireFrom(*a, now)
	err := s.Drivers.CreateDriver(ctx, &d)
	if errors.Is(err, ports.ErrConflict) {
		existing, gerr := s.Drivers.GetDriverByUser(ctx, a.UserID)
		if gerr != nil {
			return fmt.Errorf("hire: %w", gerr)
		}
		existing.Vehicle = a.Vehicle
		existing.Status = domain.DriverActive
		existing.WorkStatus = domain.WorkActive
		existing.DismissalReason = ""
		err = s.Drivers.SaveDriver(ctx, existing)
	}
	if err != nil {
		return fmt.Errorf("hire: %w", err)
	}

	if err := s.Users.SetDriverRole(ctx, a.UserID, true); err != nil {
		return fmt.Errorf("hire: grant role: %w", err)
	}
	return nil
}

func (s *DriverService) List(ctx context.Context, p *auth.Principal) ([]domain.Driver, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	ds, err := s.Drivers.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	return ds, nil
}

// DismissResult reports what happened to the driver's open orders.
type DismissResult struct {
	Driver     *domain.Driver
	Unassigned []int64
	Cancelled  []int64
	Kept       []int64
}

// Dismiss removes a driver from service. The row is kept for history and the
// driver role is revoked. Orders still confirmed are handled per action;
// orders already on the road stay with the driver.
func (s *DriverService) Dismiss(ctx context.Context, p *auth.Principal, driverUserID int64, reason string, action OrdersAction) (*DismissResult, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	d, err := s.Drivers.GetDriverByUser(ctx, driverUserID)
	if err != nil {
		return nil, lookup(MsgDriverNotFound, err)
	}

	d.Status = domain.DriverDismissed
	d.WorkStatus = domain.WorkInactive
	d.DismissalReason = strings.TrimSpace(reason)
	if err := s.Drivers.SaveDriver(ctx, d); err != nil {
		return nil, fmt.Errorf("dismiss driver %d: %w", driverUserID, err)
	}
	if err := s.Users.SetDriverRole(ctx, driverUserID, false); err != nil {
		return nil, fmt.Errorf("dismiss driver %d: revoke role: %w", driverUserID, err)
	}

	res := &DismissResult{Driver: d}
	orders, err := s.Orders.ListOrders(ctx, ports.OrderFilter{DriverID: &driverUserID})
	if err != nil {
		return nil, fmt.Errorf("dismiss driver %d: list orders: %w", driverUserID, err)
	}

	for i := range orders {
		o := &orders[i]
		if o.Status != domain.StatusConfirmed {
			if o.Status == domain.StatusInTransit {
				res.Kept = append(res.Kept, o.ID)
			}
			continue
		}

		switch action {
		case OrdersUnassign:
			if s.OrderService == nil {
				return nil, errors.New("dismiss driver: order service is not configured")
			}
			_, err := s.OrderService.Unassign(ctx, p, o.ID, driverUserID)
			switch {
			case err == nil:
				res.Unassigned = append(res.Unassigned, o.ID)
			case errors.Is(err, domain.ErrNotAssigned), errors.Is(err, domain.ErrTerminal):
				// Reassigned or closed since the list was read.
			case errors.Is(err, domain.ErrInvalidTransition):
				// The driver left with it since the list was read.
				res.Kept = append(res.Kept, o.ID)
			default:
				return nil, err
			}
		case OrdersCancel:
			if s.OrderService == nil {
				return nil, errors.New("dismiss driver: order service is not configured")
			}
			if _, _, err := s.OrderService.Cancel(ctx, p, o.ID); err != nil {
				return nil, err
			}
			res.Cancelled = append(res.Cancelled, o.ID)
		default:
			res.Kept = append(res.Kept, o.ID)
		}
	}

	obs.FromContext(ctx).Info("driver dismissed",
		zap.Int64("driver_id", driverUserID),
		zap.String("orders_action", string(action)),
		zap.Int("unassigned", len(res.Unassigned)),
		zap.Int("cancelled", len(res.Cancelled)))
	return res, nil
}

// Restore returns a dismissed driver to service.
func (s *DriverService) Restore(ctx context.Context, p *auth.Principal, driverUserID int64) (*domain.Driver, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	d, err := s.Drivers.GetDriverByUser(ctx, driverUserID)
	if err != nil {
		return nil, lookup(MsgDriverNotFound, err)
	}

	d.Status = domain.DriverActive
	d.DismissalReason = ""
	if err := s.Drivers.SaveDriver(ctx, d); err != nil {
		return nil, fmt.Errorf("restore driver %d: %w", driverUserID, err)
	}
	if err := s.Users.SetDriverRole(ctx, driverUserID, true); err != nil {
		return nil, fmt.Errorf("restore driver %d: grant role: %w", driverUserID, err)
	}
	return d, nil
}

// Info returns the caller's own driver record.
func (s *DriverService) Info(ctx context.Context, p *auth.Principal) (*domain.Driver, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	d, err := s.Drivers.GetDriverByUser(ctx, p.UserID)
	if err != nil {
		return nil, lookup(MsgDriverNotFound, err)
	}
	return d, nil
}

// Earnings returns the caller's share of delivered orders.
func (s *DriverService) Earnings(ctx context.Context, p *auth.Principal) (float64, error) {
	if err := requireUser(p); err != nil {
		return 0, err
	}
	orders, err := s.Orders.ListOrders(ctx, ports.OrderFilter{DriverID: &p.UserID})
	if err != nil {
		return 0, fmt.Errorf("earnings: %w", err)
	}
	return domain.Earnings(orders, p.UserID), nil
}

// SetWorkStatus toggles the caller's availability for new orders.
func (s *DriverService) SetWorkStatus(ctx context.Context, p *auth.Principal, ws domain.WorkStatus) (*domain.Driver, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if ws != domain.WorkActive && ws != domain.WorkInactive {
		return nil, invalid(MsgInvalidStatus, nil)
	}
	if !p.IsDriver() {
		return nil, forbidden(MsgDriversOnlyWork)
	}

	d, err := s.Drivers.GetDriverByUser(ctx, p.UserID)
	if err != nil {
		return nil, lookup(MsgDriverNotFound, err)
	}
	d.WorkStatus = ws
	if err := s.Drivers.SaveDriver(ctx, d); err != nil {
		return nil, fmt.Errorf("set work status: %w", err)
	}
	return d, nil
}

func (s *DriverService) notify(ctx context.Context, ns []domain.Notification) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, ns); err != nil {
		obs.FromContext(ctx).Warn("notify failed", zap.Error(err))
	}
}

func (s *DriverService) alert(ctx context.Context, text string) {
	if s.Alerter == nil {
		return
	}
	if err := s.Alerter.Alert(ctx, text); err != nil {
		obs.FromContext(ctx).Warn("alert failed", zap.Error(err))
	}
}

// ActiveOrders returns the caller's confirmed and in-transit orders.
func (s *DriverService) ActiveOrders(ctx context.Context, p *auth.Principal) ([]domain.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	orders, err := s.Orders.ListOrders(ctx, ports.OrderFilter{DriverID: &p.UserID})
	if err != nil {
		return nil, fmt.Errorf("active orders: %w", err)
	}
	return domain.ActiveOrders(orders, p.UserID), nil
}
