package dto

import (
	"freight-order-service/internal/domain"
	"time"
)

// OrderResponse mirrors an orders row. Field names follow the table columns.
type OrderResponse struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	DriverID *int64 `json:"driver_id"`

	SenderName  string `json:"sender_name"`
	SenderPhone string `json:"sender_phone"`
	SenderEmail string `json:"sender_email"`

	CargoDescription string  `json:"cargo_description"`
	ProductCategory  string  `json:"product_category"`
	CargoWeight      float64 `json:"cargo_weight"`
	CargoVolume      float64 `json:"cargo_volume"`
	CargoType        string  `json:"cargo_type"`

	ShippingDate    string  `json:"shipping_date"`
	PickupAddress   string  `json:"pickup_address"`
	DeliveryAddress string  `json:"delivery_address"`
	Distance        float64 `json:"distance"`

	Price           *float64 `json:"price"`
	Insurance       bool     `json:"insurance"`
	Packaging       bool     `json:"packaging"`
	CancellationFee *float64 `json:"cancellation_fee"`
	RefundAmount    *float64 `json:"refund_amount"`

	Comments           string `json:"comments"`
	AdminComment       string `json:"admin_comment"`
	CancellationReason string `json:"cancellation_reason"`

	Status       string `json:"status"`
	ClientStatus string `json:"client_status"`

	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	AssignedAt  *time.Time `json:"assigned_at"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	InTransitAt *time.Time `json:"in_transit_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
}

func NewOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:                 o.ID,
		UserID:             o.UserID,
		DriverID:           o.DriverID,
		SenderName:         o.SenderName,
		SenderPhone:        o.SenderPhone,
		SenderEmail:        o.SenderEmail,
		CargoDescription:   o.CargoDescription,
		ProductCategory:    o.ProductCategory,
		CargoWeight:        o.CargoWeight,
		CargoVolume:        o.CargoVolume,
		CargoType:          string(o.CargoType),
		ShippingDate:       o.ShippingDate,
		PickupAddress:      o.PickupAddress,
		DeliveryAddress:    o.DeliveryAddress,
		Distance:           o.Distance,
		Price:              o.Price,
		Insurance:          o.Insurance,
		Packaging:          o.Packaging,
		CancellationFee:    o.CancellationFee,
		RefundAmount:       o.RefundAmount,
		Comments:           o.Comments,
		AdminComment:       o.AdminComment,
		CancellationReason: o.CancellationReason,
		Status:             string(o.Status),
		ClientStatus:       string(o.ClientStatus),
		CreatedAt:          o.CreatedAt,
		ProcessedAt:        o.ProcessedAt,
		AssignedAt:         o.AssignedAt,
		AcceptedAt:         o.AcceptedAt,
		InTransitAt:        o.InTransitAt,
		DeliveredAt:        o.DeliveredAt,
		CancelledAt:        o.CancelledAt,
	}
}

func NewOrderList(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}

// CreateOrderRequest is the order form as the web client submits it.
type CreateOrderRequest struct {
	SenderName       string   `json:"senderName"`
	SenderPhone      string   `json:"senderPhone"`
	SenderEmail      string   `json:"senderEmail"`
	CargoDescription string   `json:"cargoDescription"`
	ProductCategory  string   `json:"productCategory"`
	CargoWeight      float64  `json:"cargoWeight"`
	CargoVolume      float64  `json:"cargoVolume"`
	CargoType        string   `json:"cargoType"`
	ShippingDate     string   `json:"shippingDate"`
	PickupAddress    string   `json:"pickupAddress"`
	DeliveryAddress  string   `json:"deliveryAddress"`
	Distance         *float64 `json:"distance"`
	Insurance        bool     `json:"insurance"`
	Packaging        bool     `json:"packaging"`
	Comments         string   `json:"comments"`
}

func (r CreateOrderRequest) Domain() domain.OrderRequest {
	req := domain.OrderRequest{
		SenderName:       r.SenderName,
		SenderPhone:      r.SenderPhone,
		SenderEmail:      r.SenderEmail,
		CargoDescription: r.CargoDescription,
		ProductCategory:  r.ProductCategory,
		CargoWeight:      r.CargoWeight,
		CargoVolume:      r.CargoVolume,
		CargoType:        domain.CargoType(r.CargoType),
		ShippingDate:     r.ShippingDate,
		PickupAddress:    r.PickupAddress,
		DeliveryAddress:  r.DeliveryAddress,
		Insurance:        r.Insurance,
		Packaging:        r.Packaging,
		Comments:         r.Comments,
	}
	if r.Distance != nil {
		req.Distance = *r.Distance
	}
	return req
}

// CreatedOrder is the short reply to a new order.
type CreatedOrder struct {
	ID       int64   `json:"id"`
	Price    float64 `json:"price"`
	Distance float64 `json:"distance"`
}

type QuoteResponse struct {
	Distance     float64 `json:"distance"`
	DeliveryCost float64 `json:"deliveryCost"`
	Packaging    float64 `json:"packaging"`
	Insurance    float64 `json:"insurance"`
	Total        int64   `json:"total"`
}

type DecisionRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

type AssignRequest struct {
	DriverID int64 `json:"driverId"`
}

type StatusRequest struct {
	Status       string `json:"status"`
	ClientStatus string `json:"clientStatus"`
}

type CancellationResponse struct {
	OrderID int64   `json:"orderId"`
	UserID  int64   `json:"userId"`
	Fee     float64 `json:"fee"`
	Refund  float64 `json:"refund"`
}
