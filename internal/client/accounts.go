package client

import (
	"context"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/wire"
	"net/http"
)

type Registration struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ProfileUpdate struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func userFrom(env *wire.Envelope) (*domain.User, error) {
	m, err := env.Object("user")
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	u := wire.NormalizeUser(m)
	return &u, nil
}

// Login starts a session for an email or phone login.
func (c *Client) Login(ctx context.Context, login, password string) (*domain.User, error) {
	env, err := c.do(ctx, http.MethodPost, "/login", map[string]string{"login": login, "password": password})
	if err != nil {
		return nil, err
	}
	return userFrom(env)
}

// Register creates a client account and logs it in.
func (c *Client) Register(ctx context.Context, r Registration) (*domain.User, error) {
	env, err := c.do(ctx, http.MethodPost, "/register", r)
	if err != nil {
		return nil, err
	}
	return userFrom(env)
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", nil)
	return err
}

// CurrentUser returns the logged-in user, or nil without error when there
// is no session.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	env, _, err := c.call(ctx, http.MethodGet, "/current-user", nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, nil
	}
	return userFrom(env)
}

func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/profile", nil)
	if err != nil {
		return nil, err
	}
	return userFrom(env)
}

func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) (*domain.User, error) {
	env, err := c.do(ctx, http.MethodPost, "/profile", p)
	if err != nil {
		return nil, err
	}
	return userFrom(env)
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	_, err := c.do(ctx, http.MethodPost, "/profile/password", map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	})
	return err
}

func (c *Client) Notifications(ctx context.Context) ([]domain.Notification, error) {
	env, err := c.do(ctx, http.MethodGet, "/notifications", nil)
	if err != nil {
		return nil, err
	}
	rows, err := env.Objects("notifications")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(rows))
	for _, m := range rows {
		out = append(out, wire.NormalizeNotification(m))
	}
	return out, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/notifications/%d/read", id), nil)
	return err
}
