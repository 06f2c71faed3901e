package client

import (
	"context"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/wire"
	"net/http"
)

// DriverApplication returns the caller's latest application, or nil.
func (c *Client) DriverApplication(ctx context.Context) (*domain.DriverApplication, error) {
	env, err := c.do(ctx, http.MethodGet, "/driver/application", nil)
	if err != nil {
		return nil, err
	}
	m, err := env.Object("application")
	if err != nil || m == nil {
		return nil, err
	}
	a := wire.NormalizeApplication(m)
	return &a, nil
}

// SubmitApplication files a driver application and returns its id.
func (c *Client) SubmitApplication(ctx context.Context, v domain.Vehicle) (int64, error) {
	env, err := c.do(ctx, http.MethodPost, "/driver/application", map[string]any{
		"licenseNumber": v.LicenseNumber,
		"experience":    v.Experience,
		"carModel":      v.CarModel,
		"carNumber":     v.CarNumber,
		"maxWeight":     v.MaxWeight,
		"carType":       v.CarType,
	})
	if err != nil {
		return 0, err
	}
	var id int64
	if err := env.Decode("applicationId", &id); err != nil {
		return 0, &TransportError{Op: "POST /driver/application", Err: err}
	}
	return id, nil
}

func (c *Client) ListApplications(ctx context.Context) ([]domain.DriverApplication, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/driver_applications", nil)
	if err != nil {
		return nil, err
	}
	rows, err := env.Objects("applications")
	if err != nil {
		return nil, err
	}
	out := make([]domain.DriverApplication, 0, len(rows))
	for _, m := range rows {
		out = append(out, wire.NormalizeApplication(m))
	}
	return out, nil
}

func (c *Client) ApproveApplication(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/driver_application/%d/approve", id), nil)
	return err
}

func (c *Client) RejectApplication(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/driver_application/%d/reject", id), nil)
	return err
}

func (c *Client) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/drivers", nil)
	if err != nil {
		return nil, err
	}
	rows, err := env.Objects("drivers")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Driver, 0, len(rows))
	for _, m := range rows {
		out = append(out, wire.NormalizeDriver(m))
	}
	return out, nil
}

// DismissDriver removes a driver from service. ordersAction is keep, cancel
// or unassign; empty means keep.
func (c *Client) DismissDriver(ctx context.Context, driverUserID int64, reason, ordersAction string) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/drivers/%d/dismiss", driverUserID), map[string]string{
		"reason":       reason,
		"ordersAction": ordersAction,
	})
	return err
}

func (c *Client) RestoreDriver(ctx context.Context, driverUserID int64) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/drivers/%d/restore", driverUserID), nil)
	return err
}

// DriverInfo is the caller's driver record with earnings and open orders.
type DriverInfo struct {
	Driver       domain.Driver
	Earnings     float64
	ActiveOrders []domain.Order
}

func (c *Client) DriverInfo(ctx context.Context) (*DriverInfo, error) {
	env, err := c.do(ctx, http.MethodGet, "/driver/info", nil)
	if err != nil {
		return nil, err
	}
	m, err := env.Object("driver")
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &RejectedError{Status: http.StatusNotFound, Message: "Водитель не найден"}
	}

	info := &DriverInfo{Driver: wire.NormalizeDriver(m)}
	if v, ok := m["earnings"].(float64); ok {
		info.Earnings = v
	}
	if rows, ok := m["active_orders"].([]any); ok {
		for _, r := range rows {
			if om, ok := r.(map[string]any); ok {
				info.ActiveOrders = append(info.ActiveOrders, wire.NormalizeOrder(om))
			}
		}
	}
	return info, nil
}

func (c *Client) SetWorkStatus(ctx context.Context, ws domain.WorkStatus) error {
	_, err := c.do(ctx, http.MethodPost, "/driver/work-status", map[string]string{"workStatus": string(ws)})
	return err
}
