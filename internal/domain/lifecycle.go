package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	// CancellationRate is the fixed share of the price withheld on cancellation.
	CancellationRate   = 0.10
	CancellationReason = "Отмена заказа (штраф 10%)"
)

var (
	ErrTerminal           = errors.New("order is closed")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrInvalidDecision    = errors.New("decision must be confirm or reject")
	ErrDriverUnavailable  = errors.New("driver is not available for assignment")
	ErrNotAssigned        = errors.New("order is not assigned to this driver")
	ErrDriverNotAssigned  = errors.New("order has no assigned driver")
	ErrUnknownAdminStatus = errors.New("unknown status")

	ErrApplicationProcessed = errors.New("application already processed")
)

// Decision is the admin verdict on a new order.
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionReject  Decision = "reject"
)

// Cancellation carries the money figures computed by Cancel.
type Cancellation struct {
	OrderID int64
	UserID  int64
	Fee     float64
	Refund  float64
}

// TransitionError records which transition was refused.
type TransitionError struct {
	From AdminStatus
	To   AdminStatus
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

func stamp(t **time.Time, now time.Time) {
	if *t == nil {
		v := now
		*t = &v
	}
}

func (o *Order) setStatus(s AdminStatus) {
	o.Status = s
	o.ClientStatus = ToClientStatus(s)
}

func (o *Order) refuse(to AdminStatus, err error) error {
	return &TransitionError{From: o.Status, To: to, Err: err}
}

// Decide applies the admin decision to a new order.
func (o *Order) Decide(d Decision, comment string, now time.Time) error {
	var to AdminStatus
	switch d {
	case DecisionConfirm:
		to = StatusConfirmed
	case DecisionReject:
		to = StatusRejected
	default:
		return ErrInvalidDecision
	}

	if o.Status.Terminal() {
		return o.refuse(to, ErrTerminal)
	}
	if o.Status != StatusNew {
		return o.refuse(to, ErrInvalidTransition)
	}

	o.setStatus(to)
	o.AdminComment = comment
	stamp(&o.ProcessedAt, now)
	return nil
}

// AssignDriver attaches an available driver to a confirmed order.
// The order status is left unchanged.
func (o *Order) AssignDriver(d Driver, now time.Time) error {
	if o.Status.Terminal() {
		return o.refuse(o.Status, ErrTerminal)
	}
	if o.Status != StatusConfirmed {
		return o.refuse(o.Status, ErrInvalidTransition)
	}
	if !d.Assignable() {
		return ErrDriverUnavailable
	}
	if o.DriverID != nil {
		if *o.DriverID == d.UserID {
			return nil
		}
		// Reassignment goes through Unassign first.
		return o.refuse(o.Status, ErrInvalidTransition)
	}

	id := d.UserID
	o.DriverID = &id
	stamp(&o.AssignedAt, now)
	return nil
}

// Unassign clears the driver of an order that has not left the warehouse.
// AssignedAt keeps the first assignment time.
func (o *Order) Unassign() error {
	if o.Status.Terminal() {
		return o.refuse(o.Status, ErrTerminal)
	}
	if o.Status != StatusConfirmed {
		return o.refuse(o.Status, ErrInvalidTransition)
	}
	o.DriverID = nil
	return nil
}

// Accept records that the assigned driver picked the order up.
func (o *Order) Accept(driverUserID int64, now time.Time) error {
	if o.Status.Terminal() {
		return o.refuse(StatusInTransit, ErrTerminal)
	}
	if !o.AssignedTo(driverUserID) {
		return ErrNotAssigned
	}
	if o.Status != StatusConfirmed {
		return o.refuse(StatusInTransit, ErrInvalidTransition)
	}

	o.setStatus(StatusInTransit)
	stamp(&o.AcceptedAt, now)
	stamp(&o.InTransitAt, now)
	return nil
}

// MarkInTransit moves a confirmed, assigned order onto the road.
func (o *Order) MarkInTransit(now time.Time) error {
	if o.Status.Terminal() {
		return o.refuse(StatusInTransit, ErrTerminal)
	}
	if o.Status != StatusConfirmed {
		return o.refuse(StatusInTransit, ErrInvalidTransition)
	}
	if o.DriverID == nil {
		return o.refuse(StatusInTransit, ErrDriverNotAssigned)
	}

	o.setStatus(StatusInTransit)
	stamp(&o.InTransitAt, now)
	return nil
}

// MarkDelivered closes an order that is in transit.
func (o *Order) MarkDelivered(now time.Time) error {
	if o.Status.Terminal() {
		return o.refuse(StatusDelivered, ErrTerminal)
	}
	if o.Status != StatusInTransit {
		return o.refuse(StatusDelivered, ErrInvalidTransition)
	}

	o.setStatus(StatusDelivered)
	stamp(&o.DeliveredAt, now)
	return nil
}

// Cancel applies the cancellation policy: a fixed 10% fee is withheld and
// the rest is refunded. A cancelled order accepts no further transition.
func (o *Order) Cancel(now time.Time) (Cancellation, error) {
	if o.ClientStatus.Terminal() || o.Status.Terminal() {
		return Cancellation{}, o.refuse(StatusCancelledByClient, ErrTerminal)
	}

	price := o.PriceValue()
	fee := price * CancellationRate
	refund := price - fee

	o.setStatus(StatusCancelledByClient)
	o.CancellationReason = CancellationReason
	o.CancellationFee = &fee
	o.RefundAmount = &refund
	stamp(&o.CancelledAt, now)

	return Cancellation{OrderID: o.ID, UserID: o.UserID, Fee: fee, Refund: refund}, nil
}

// SetStatus dispatches a requested admin status to the matching transition.
// Decisions and assignment have their own entry points and are not reachable
// from here except for confirm/reject of a new order.
func (o *Order) SetStatus(to AdminStatus, now time.Time) (*Cancellation, error) {
	switch to {
	case StatusConfirmed:
		return nil, o.Decide(DecisionConfirm, o.AdminComment, now)
	case StatusRejected:
		return nil, o.Decide(DecisionReject, o.AdminComment, now)
	case StatusInTransit:
		return nil, o.MarkInTransit(now)
	case StatusDelivered:
		return nil, o.MarkDelivered(now)
	case StatusCancelledByClient:
		c, err := o.Cancel(now)
		if err != nil {
			return nil, err
		}
		return &c, nil
	case StatusNew:
		return nil, o.refuse(to, ErrInvalidTransition)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAdminStatus, to)
	}
}
