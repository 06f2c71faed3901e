package services

import (
	"context"
	"errors"
	"fmt"
	"freight-order-service/internal/auth"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/ports"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// AccountService handles registration, login and profile edits.
type AccountService struct {
	Users  ports.UserRepository
	Orders ports.OrderRepository
	Inbox  ports.NotificationRepository
}

// Registration is the sign-up form.
type Registration struct {
	Email     string
	Phone     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a verified client account.
func (s *AccountService) Register(ctx context.Context, r Registration) (*domain.User, error) {
	u := &domain.User{
		Email:     strings.TrimSpace(r.Email),
		Phone:     strings.TrimSpace(r.Phone),
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Verified:  true,
	}
	if u.Email == "" || u.Phone == "" || r.Password == "" || u.FirstName == "" || u.LastName == "" {
		return nil, invalid(MsgFillAllFields, nil)
	}
	if len(r.Password) < minPasswordLen {
		return nil, invalid("Пароль должен быть не менее 6 символов", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	if err := s.Users.CreateUser(ctx, u, string(hash)); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, invalid("Пользователь с таким email или телефоном уже существует", err)
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return u, nil
}

// Login checks credentials given as email or phone.
func (s *AccountService) Login(ctx context.Context, login, password string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, invalid(MsgFillAllFields, nil)
	}

	badCredentials := &Error{Kind: KindUnauthorized, Message: "Неверный телефон/email или пароль"}

	u, hash, err := s.Users.FindByLogin(ctx, login)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, badCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, badCredentials
	}
	if !u.Verified {
		return nil, invalid("Аккаунт не подтвержден", nil)
	}
	return u, nil
}

// Profile returns the caller's account.
func (s *AccountService) Profile(ctx context.Context, p *auth.Principal) (*domain.User, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	u, err := s.Users.GetUser(ctx, p.UserID)
	if err != nil {
		return nil, lookup(MsgUserNotFound, err)
	}
	return u, nil
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
}

func (s *AccountService) UpdateProfile(ctx context.Context, p *auth.Principal, in ProfileUpdate) (*domain.User, error) {
	u, err := s.Profile(ctx, p)
	if err != nil {
		return nil, err
	}

	u.Email = strings.TrimSpace(in.Email)
	u.Phone = strings.TrimSpace(in.Phone)
	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	if u.Email == "" || u.Phone == "" || u.FirstName == "" || u.LastName == "" {
		return nil, invalid(MsgFillAllFields, nil)
	}

	if err := s.Users.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, invalid("Email или телефон уже используются", err)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AccountService) ChangePassword(ctx context.Context, p *auth.Principal, current, next string) error {
	u, err := s.Profile(ctx, p)
	if err != nil {
		return err
	}
	if next == "" {
		return invalid("Новый пароль обязателен", nil)
	}
	if len(next) < minPasswordLen {
		return invalid("Пароль должен быть не менее 6 символов", nil)
	}
	if current == "" {
		return invalid("Текущий пароль обязателен", nil)
	}

	_, hash, err := s.Users.FindByLogin(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return invalid("Текущий пароль указан неверно", nil)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	if err := s.Users.SetPassword(ctx, u.ID, string(newHash)); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// Stats summarizes the caller's own orders.
func (s *AccountService) Stats(ctx context.Context, p *auth.Principal) (domain.OrderStats, error) {
	if err := requireUser(p); err != nil {
		return domain.OrderStats{}, err
	}
	orders, err := s.Orders.ListOrders(ctx, ports.OrderFilter{UserID: &p.UserID})
	if err != nil {
		return domain.OrderStats{}, fmt.Errorf("stats: %w", err)
	}
	return domain.ClientStats(orders, p.UserID), nil
}

func (s *AccountService) Notifications(ctx context.Context, p *auth.Principal) ([]domain.Notification, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	ns, err := s.Inbox.ListNotifications(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	return ns, nil
}

func (s *AccountService) MarkNotificationRead(ctx context.Context, p *auth.Principal, id int64) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if err := s.Inbox.MarkRead(ctx, p.UserID, id); err != nil {
		return lookup("Уведомление не найдено", err)
	}
	return nil
}
