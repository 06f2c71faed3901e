package services

import (
	"errors"
	"freight-order-service/internal/auth"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/ports"
)

// Kind classifies a refused request. The API maps it onto an HTTP status.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a request refused for a reason the caller can act on. Message is
// shown to end users verbatim.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

const (
	MsgAuthRequired      = "Требуется авторизация"
	MsgForbidden         = "Доступ запрещен"
	MsgOrderNotFound     = "Заказ не найден"
	MsgUserNotFound      = "Пользователь не найден"
	MsgDriverNotFound    = "Водитель не найден"
	MsgAppNotFound       = "Заявка не найдена"
	MsgFillAllFields     = "Заполните все поля"
	MsgInvalidDecision   = "Некорректное решение"
	MsgInvalidStatus     = "Некорректный статус"
	MsgDriverIDRequired  = "driverId обязателен"
	MsgAppProcessed      = "Заявка уже обработана"
	MsgActiveApplication = "У вас уже есть активная заявка"
	MsgClientsOnly       = "Заказ доступен только для обычных пользователей"
	MsgDriversOnlyAccept = "Только водители могут принимать заказы"
	MsgDriversOnlyWork   = "Только водители могут изменять статус работы"
	MsgNotAssignedToYou  = "Заказ не назначен вам"
)

func invalid(msg string, err error) error {
	return &Error{Kind: KindInvalid, Message: msg, Err: err}
}

func forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func notFound(msg string, err error) error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

func conflict(msg string, err error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// lookup turns a repository miss into a NotFound error with msg.
func lookup(msg string, err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return notFound(msg, err)
	}
	return err
}

func requireUser(p *auth.Principal) error {
	if p == nil {
		return &Error{Kind: KindUnauthorized, Message: MsgAuthRequired}
	}
	return nil
}

func requireAdmin(p *auth.Principal) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return forbidden(MsgForbidden)
	}
	return nil
}

// transitionError explains a refused lifecycle step in the user's language.
func transitionError(err error) error {
	kind, msg := KindConflict, ""
	switch {
	case errors.Is(err, domain.ErrTerminal):
		msg = "Заказ уже завершен или отменен"
	case errors.Is(err, domain.ErrInvalidDecision):
		kind, msg = KindInvalid, MsgInvalidDecision
	case errors.Is(err, domain.ErrUnknownAdminStatus):
		kind, msg = KindInvalid, MsgInvalidStatus
	case errors.Is(err, domain.ErrApplicationProcessed):
		kind, msg = KindInvalid, MsgAppProcessed
	case errors.Is(err, domain.ErrDriverUnavailable):
		msg = "Водитель недоступен для назначения"
	case errors.Is(err, domain.ErrDriverNotAssigned):
		msg = "Сначала назначьте водителя"
	case errors.Is(err, domain.ErrNotAssigned):
		kind, msg = KindForbidden, MsgNotAssignedToYou
	case errors.Is(err, domain.ErrInvalidTransition):
		msg = "Недопустимое изменение статуса"
	default:
		return err
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// ValidationError lists the request fields that were refused.
type ValidationError struct {
	Fields domain.FieldErrors
}

func (e *ValidationError) Error() string { return e.Fields.Error() }

func (e *ValidationError) Unwrap() error { return e.Fields }

// validation turns a failed domain.OrderRequest check into a ValidationError.
func validation(err error) error {
	var fe domain.FieldErrors
	if errors.As(err, &fe) {
		return &ValidationError{Fields: fe}
	}
	return invalid(MsgFillAllFields, err)
}
