package services

import (
	"context"
	"errors"
	"fmt"
	"freight-order-service/internal/auth"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/ports"
	"freight-order-service/internal/pricing"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DistanceEstimator resolves the road distance between two addresses.
type DistanceEstimator interface {
	DistanceKm(ctx context.Context, pickup, delivery string) float64
}

// OrderService runs the order lifecycle on behalf of an authenticated caller.
// Notifier, Alerter and Events are optional.
type OrderService struct {
	Orders     ports.OrderRepository
	Users      ports.UserRepository
	Drivers    ports.DriverRepository
	Calculator *pricing.Calculator
	Distances  DistanceEstimator
	Notifier   ports.Notifier
	Alerter    ports.Alerter
	Events     ports.EventPublisher
	Now        func() time.Time

	// Serializes read-modify-write cycles on orders.
	mu sync.Mutex
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// List returns the orders visible to the caller: everything for admins, the
// assigned orders for drivers and the own orders for clients.
func (s *OrderService) List(ctx context.Context, p *auth.Principal) ([]domain.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}

	var f ports.OrderFilter
	switch {
	case p.IsAdmin():
	case p.IsDriver():
		f.DriverID = &p.UserID
	default:
		f.UserID = &p.UserID
	}

	orders, err := s.Orders.ListOrders(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns one order. Clients only see their own.
func (s *OrderService) Get(ctx context.Context, p *auth.Principal, id int64) (*domain.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	o, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		return nil, lookup(MsgOrderNotFound, err)
	}
	if !p.IsAdmin() && !p.IsDriver() && o.UserID != p.UserID {
		return nil, forbidden(MsgForbidden)
	}
	return o, nil
}

// Estimate prices a request without storing it. The distance is resolved
// from the addresses when the request does not carry one. Only the numeric
// fields are validated.
func (s *OrderService) Estimate(ctx context.Context, req domain.OrderRequest) (pricing.Quote, float64, error) {
	if err := req.ValidateCargo(); err != nil {
		return pricing.Quote{}, 0, validation(err)
	}
	dist := req.Distance
	if dist <= 0 && s.Distances != nil {
		dist = s.Distances.DistanceKm(ctx, req.PickupAddress, req.DeliveryAddress)
	}
	in := pricing.Input{
		WeightKg:   req.CargoWeight,
		VolumeM3:   req.CargoVolume,
		DistanceKm: dist,
		CargoType:  req.CargoType,
		Insurance:  req.Insurance,
		Packaging:  req.Packaging,
	}
	return s.Calculator.Quote(in), dist, nil
}

// Create validates, prices and stores a client's order.
func (s *OrderService) Create(ctx context.Context, p *auth.Principal, req domain.OrderRequest) (*domain.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if !p.IsClient() {
		return nil, forbidden(MsgClientsOnly)
	}

	if err := req.Validate(); err != nil {
		return nil, validation(err)
	}

	quote, dist, err := s.Estimate(ctx, req)
	if err != nil {
		return nil, err
	}
	req.Distance = dist

	o := req.NewOrder(p.UserID)
	price := float64(quote.Total)
	o.Price = &price
	o.CreatedAt = s.now()

	if err := s.Orders.CreateOrder(ctx, &o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.alert(ctx, fmt.Sprintf("Новый заказ #%d: %s → %s, %.0f км, %.0f ₽", o.ID, o.PickupAddress, o.DeliveryAddress, o.Distance, price))
	s.publish(ctx, &o, p.UserID)
	return &o, nil
}

// Decide confirms or rejects a new order.
func (s *OrderService) Decide(ctx context.Context, p *auth.Principal, id int64, d domain.Decision, comment string) (*domain.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if d != domain.DecisionConfirm && d != domain.DecisionReject {
		return nil, invalid(MsgInvalidDecision, domain.ErrInvalidDecision)
	}

	return s.mutate(ctx, p, id, func(o *domain.Order, now time.Time) error {
		return o.Decide(d, comment, now)
	})
}

// Assign attaches a driver to a confirmed order and tells the driver.
func (s *OrderService) Assign(ctx context.Context, p *auth.Principal, id, driverUserID int64) (*domain.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if driverUserID <= 0 {
		return nil, invalid(MsgDriverIDRequired, nil)
	}

	d, err := s.Drivers.GetDriverByUser(ctx, driverUserID)
	if err != nil {
		return nil, lookup(MsgDriverNotFound, err)
	}

	o, err := s.mutate(ctx, p, id, func(o *domain.Order, now time.Time) error {
		return o.AssignDriver(*d, now)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, []domain.Notification{{
		UserID:  driverUserID,
		Title:   "Новый заказ",
		Message: fmt.Sprintf("Вам назначен заказ #%d: %s → %s.", o.ID, o.PickupAddress, o.DeliveryAddress),
		Type:    domain.NotifyInfo,
	}})
	return o, nil
}

// Unassign takes a still confirmed order back from driverUserID. The order is
// re-read under the lock, so a driver who already left with it keeps it.
func (s *OrderService) Unassign(ctx context.Context, p *auth.Principal, id, driverUserID int64) (*domain.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	o, err := s.mutate(ctx, p, id, func(o *domain.Order, _ time.Time) error {
		if !o.AssignedTo(driverUserID) {
			return domain.ErrNotAssigned
		}
		return o.Unassign()
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, []domain.Notification{{
		UserID:  o.UserID,
		Title:   "Смена водителя",
		Message: fmt.Sprintf("Водитель снят с заказа #%d. Мы назначим нового водителя.", o.ID),
		Type:    domain.NotifyInfo,
	}})
	return o, nil
}

// UpdateStatus moves an order to the requested status. clientStatus is used
// when status is empty. Admins may set any status, drivers only move their
// own orders along the road, and clients may only cancel their own.
func (s *OrderService) UpdateStatus(
	ctx context.Context,
	p *auth.Principal,
	id int64,
	status domain.AdminStatus,
	clientStatus domain.ClientStatus,
) (*domain.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}

	to := status
	if to == "" && clientStatus != "" {
		to = domain.ToAdminStatus(clientStatus)
	}
	if !to.Valid() {
		return nil, invalid(MsgInvalidStatus, domain.ErrUnknownAdminStatus)
	}

	var cancellation *domain.Cancellation
	o, err := s.mutate(ctx, p, id, func(o *domain.Order, now time.Time) error {
		switch {
		case p.IsAdmin():
		case p.IsDriver() && o.AssignedTo(p.UserID):
			if to != domain.StatusInTransit && to != domain.StatusDelivered {
				return forbidden(MsgForbidden)
			}
		case o.UserID == p.UserID:
			if to != domain.StatusCancelledByClient {
				return forbidden(MsgForbidden)
			}
		default:
			return forbidden(MsgForbidden)
		}

		c, err := o.SetStatus(to, now)
		cancellation = c
		return err
	})
	if err != nil {
		return nil, err
	}

	if o.Status == domain.StatusDelivered && o.DriverID != nil && to == domain.StatusDelivered {
		if err := s.Drivers.IncrementDeliveries(ctx, *o.DriverID); err != nil && !errors.Is(err, ports.ErrNotFound) {
			obs.FromContext(ctx).Warn("increment deliveries failed", zap.Int64("driver_id", *o.DriverID), zap.Error(err))
		}
	}
	if cancellation != nil {
		s.cancelled(ctx, *cancellation)
	}
	return o, nil
}

// Accept lets the assigned driver take the order on the road.
func (s *OrderService) Accept(ctx context.Context, p *auth.Principal, id int64) (*domain.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if !p.IsDriver() {
		return nil, forbidden(MsgDriversOnlyAccept)
	}

	return s.mutate(ctx, p, id, func(o *domain.Order, now time.Time) error {
		return o.Accept(p.UserID, now)
	})
}

// Cancel applies the cancellation policy to an order of the caller, or any
// order for admins, and sends the resulting notices.
func (s *OrderService) Cancel(ctx context.Context, p *auth.Principal, id int64) (*domain.Order, *domain.Cancellation, error) {
	if err := requireUser(p); err != nil {
		return nil, nil, err
	}

	var c domain.Cancellation
	o, err := s.mutate(ctx, p, id, func(o *domain.Order, now time.Time) error {
		if !p.IsAdmin() && o.UserID != p.UserID {
			return forbidden(MsgForbidden)
		}
		var err error
		c, err = o.Cancel(now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.cancelled(ctx, c)
	return o, &c, nil
}

// mutate loads an order, applies fn and saves the result. Nothing is
// persisted when fn fails.
func (s *OrderService) mutate(
	ctx context.Context,
	p *auth.Principal,
	id int64,
	fn func(o *domain.Order, now time.Time) error,
) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		return nil, lookup(MsgOrderNotFound, err)
	}

	if err := fn(o, s.now()); err != nil {
		var se *Error
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, transitionError(err)
	}

	if err := s.Orders.SaveOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("save order %d: %w", id, err)
	}

	s.publish(ctx, o, p.UserID)
	return o, nil
}

func (s *OrderService) cancelled(ctx context.Context, c domain.Cancellation) {
	admins, err := s.Users.AdminIDs(ctx)
	if err != nil {
		obs.FromContext(ctx).Warn("load admins failed", zap.Error(err))
	}
	notices := domain.CancellationNotices(c, admins)
	s.notify(ctx, notices)
	s.alert(ctx, fmt.Sprintf("Заказ #%d был отменен. Штраф 10%%: %.2f ₽.", c.OrderID, c.Fee))
}

// notify, alert and publish are best effort: the order change is already
// stored, so failures are only logged.
func (s *OrderService) notify(ctx context.Context, ns []domain.Notification) {
	if s.Notifier == nil || len(ns) == 0 {
		return
	}
	if err := s.Notifier.Notify(ctx, ns); err != nil {
		obs.FromContext(ctx).Warn("notify failed", zap.Int("count", len(ns)), zap.Error(err))
	}
}

func (s *OrderService) alert(ctx context.Context, text string) {
	if s.Alerter == nil {
		return
	}
	if err := s.Alerter.Alert(ctx, text); err != nil {
		obs.FromContext(ctx).Warn("alert failed", zap.Error(err))
	}
}

func (s *OrderService) publish(ctx context.Context, o *domain.Order, actorID int64) {
	if s.Events == nil {
		return
	}
	e := ports.OrderEvent{
		OrderID:      o.ID,
		Status:       o.Status,
		ClientStatus: o.ClientStatus,
		ActorID:      actorID,
		At:           s.now().Format(time.RFC3339),
	}
	if err := s.Events.Publish(ctx, e); err != nil {
		obs.FromContext(ctx).Warn("publish order event failed", zap.Int64("order_id", o.ID), zap.Error(err))
	}
}
