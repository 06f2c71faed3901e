package client

import (
	"context"
	"errors"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/wire"
	"net/http"
)

func ordersFrom(env *wire.Envelope, key string) ([]domain.Order, error) {
	rows, err := env.Objects(key)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, m := range rows {
		out = append(out, wire.NormalizeOrder(m))
	}
	return out, nil
}

// ListOrders returns the orders the current role may see.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	env, err := c.do(ctx, http.MethodGet, "/orders", nil)
	if err != nil {
		return nil, err
	}
	return ordersFrom(env, "orders")
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil)
	if err != nil {
		return nil, err
	}
	m, err := env.Object("order")
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &TransportError{Op: "GET /orders", Err: errors.New("reply has no order")}
	}
	o := wire.NormalizeOrder(m)
	return &o, nil
}

// orderForm is the JSON body the backend expects for a new order.
func orderForm(r domain.OrderRequest) map[string]any {
	return map[string]any{
		"senderName":       r.SenderName,
		"senderPhone":      r.SenderPhone,
		"senderEmail":      r.SenderEmail,
		"cargoDescription": r.CargoDescription,
		"productCategory":  r.ProductCategory,
		"cargoWeight":      r.CargoWeight,
		"cargoVolume":      r.CargoVolume,
		"cargoType":        string(r.CargoType),
		"shippingDate":     r.ShippingDate,
		"pickupAddress":    r.PickupAddress,
		"deliveryAddress":  r.DeliveryAddress,
		"distance":         r.Distance,
		"insurance":        r.Insurance,
		"packaging":        r.Packaging,
		"comments":         r.Comments,
	}
}

// SubmitOrder validates the form, fills in the distance and creates the
// order. The returned order carries the server's price.
func (c *Client) SubmitOrder(ctx context.Context, r domain.OrderRequest) (*domain.Order, error) {
	if err := r.Validate(); err != nil {
		return nil, formError(err)
	}
	if r.Distance <= 0 && c.distances != nil {
		r.Distance = c.distances.DistanceKm(ctx, r.PickupAddress, r.DeliveryAddress)
	}

	env, err := c.do(ctx, http.MethodPost, "/orders", orderForm(r))
	if err != nil {
		return nil, err
	}

	var created struct {
		ID       int64   `json:"id"`
		Price    float64 `json:"price"`
		Distance float64 `json:"distance"`
	}
	if err := env.Decode("order", &created); err != nil {
		return nil, &TransportError{Op: "POST /orders", Err: err}
	}
	if created.ID == 0 {
		return nil, &TransportError{Op: "POST /orders", Err: errors.New("reply has no order id")}
	}

	o, err := c.GetOrder(ctx, created.ID)
	if err != nil {
		// The order exists; fall back to what the create reply told us.
		local := r.NewOrder(0)
		local.ID, local.Distance = created.ID, created.Distance
		price := created.Price
		local.Price = &price
		return &local, nil
	}
	return o, nil
}

// Quote is the server-side estimate for a form. Nothing is stored.
type Quote struct {
	Distance     float64 `json:"distance"`
	DeliveryCost float64 `json:"deliveryCost"`
	Packaging    float64 `json:"packaging"`
	Insurance    float64 `json:"insurance"`
	Total        int64   `json:"total"`
}

func (c *Client) Quote(ctx context.Context, r domain.OrderRequest) (*Quote, error) {
	if err := r.ValidateCargo(); err != nil {
		return nil, formError(err)
	}
	env, err := c.do(ctx, http.MethodPost, "/orders/quote", orderForm(r))
	if err != nil {
		return nil, err
	}
	var q Quote
	if err := env.Decode("quote", &q); err != nil {
		return nil, &TransportError{Op: "POST /orders/quote", Err: err}
	}
	return &q, nil
}

func (c *Client) Decide(ctx context.Context, id int64, d domain.Decision, comment string) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/orders/%d/decision", id), map[string]string{
		"decision": string(d),
		"comment":  comment,
	})
	return err
}

func (c *Client) AssignDriver(ctx context.Context, id, driverUserID int64) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/orders/%d/assign", id), map[string]int64{"driverId": driverUserID})
	return err
}

// UpdateStatus sets either vocabulary; an empty value is left out.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status domain.AdminStatus, clientStatus domain.ClientStatus) error {
	body := map[string]string{}
	if status != "" {
		body["status"] = string(status)
	}
	if clientStatus != "" {
		body["clientStatus"] = string(clientStatus)
	}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/status", id), body)
	return err
}

func (c *Client) AcceptOrder(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/driver/orders/%d/accept", id), nil)
	return err
}

// CancelOrder applies the cancellation policy and returns the withheld fee
// and refund.
func (c *Client) CancelOrder(ctx context.Context, id int64) (*domain.Cancellation, error) {
	env, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", id), nil)
	if err != nil {
		return nil, err
	}
	var res struct {
		OrderID int64   `json:"orderId"`
		UserID  int64   `json:"userId"`
		Fee     float64 `json:"fee"`
		Refund  float64 `json:"refund"`
	}
	if err := env.Decode("cancellation", &res); err != nil {
		return nil, &TransportError{Op: "POST /orders/cancel", Err: err}
	}
	return &domain.Cancellation{OrderID: id, UserID: res.UserID, Fee: res.Fee, Refund: res.Refund}, nil
}
