package handlers

import (
	"freight-order-service/internal/api/dto"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/services"
	"net/http"
)

// OrderHandler exposes the order lifecycle.
type OrderHandler struct {
	Orders *services.OrderService
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context(), principal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "", payload{"orders": dto.NewOrderList(orders)})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.Orders.Get(r.Context(), principal(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "", payload{"order": dto.NewOrderResponse(*o)})
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.Orders.Create(r.Context(), principal(r), req.Domain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Заказ успешно создан", payload{"order": dto.CreatedOrder{
		ID:       o.ID,
		Price:    o.PriceValue(),
		Distance: o.Distance,
	}})
}

// Quote prices an order form without storing it. No session is needed.
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	q, dist, err := h.Orders.Estimate(r.Context(), req.Domain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "", payload{"quote": dto.QuoteResponse{
		Distance:     dist,
		DeliveryCost: q.DeliveryCost,
		Packaging:    q.Packaging,
		Insurance:    q.Insurance,
		Total:        q.Total,
	}})
}

func (h *OrderHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.Orders.Decide(r.Context(), principal(r), id, domain.Decision(req.Decision), req.Comment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Решение применено", payload{"status": o.Status})
}

func (h *OrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.Orders.Assign(r.Context(), principal(r), id, req.DriverID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Водитель назначен", payload{"driverId": req.DriverID})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.Orders.UpdateStatus(r.Context(), principal(r), id,
		domain.AdminStatus(req.Status), domain.ClientStatus(req.ClientStatus))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Статус обновлен", payload{"status": o.Status, "clientStatus": o.ClientStatus})
}

func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.Orders.Accept(r.Context(), principal(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Заказ принят", nil)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	_, c, err := h.Orders.Cancel(r.Context(), principal(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, domain.CancellationReason, payload{"cancellation": dto.CancellationResponse{
		OrderID: c.OrderID,
		UserID:  c.UserID,
		Fee:     c.Fee,
		Refund:  c.Refund,
	}})
}
