package handlers

import (
	"freight-order-service/internal/api/dto"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/services"
	"net/http"
)

// DriverHandler serves driver applications, the roster and driver self-service.
type DriverHandler struct {
	Drivers *services.DriverService
}

func (h *DriverHandler) Application(w http.ResponseWriter, r *http.Request) {
	a, err := h.Drivers.Application(r.Context(), principal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if a == nil {
		writeOK(w, r, "", payload{"application": nil})
		return
	}
	writeOK(w, r, "", payload{"application": dto.NewApplicationResponse(*a)})
}

func (h *DriverHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req dto.ApplicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.Drivers.Apply(r.Context(), principal(r), req.Vehicle())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Заявка успешно отправлена", payload{"applicationId": a.ID})
}

func (h *DriverHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Drivers.ListApplications(r.Context(), principal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]dto.ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, dto.NewApplicationResponse(a))
	}
	writeOK(w, r, "", payload{"applications": out})
}

func (h *DriverHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, true, "Заявка одобрена")
}

func (h *DriverHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, false, "Заявка отклонена")
}

func (h *DriverHandler) review(w http.ResponseWriter, r *http.Request, approve bool, msg string) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.Drivers.Review(r.Context(), principal(r), id, approve); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, msg, nil)
}

func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Drivers.List(r.Context(), principal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]dto.DriverResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, dto.NewDriverResponse(d))
	}
	writeOK(w, r, "", payload{"drivers": out})
}

func (h *DriverHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathID(w, r, "uid")
	if !ok {
		return
	}
	var req dto.DismissRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	raw := req.OrdersAction
	if raw == "" {
		raw = req.Action
	}
	action, ok := services.ParseOrdersAction(raw)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Некорректное действие с заказами")
		return
	}

	res, err := h.Drivers.Dismiss(r.Context(), principal(r), uid, req.Reason, action)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Водитель успешно удален из системы", payload{
		"unassigned": nonNil(res.Unassigned),
		"cancelled":  nonNil(res.Cancelled),
		"kept":       nonNil(res.Kept),
	})
}

func (h *DriverHandler) Restore(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathID(w, r, "uid")
	if !ok {
		return
	}
	if _, err := h.Drivers.Restore(r.Context(), principal(r), uid); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Водитель восстановлен", nil)
}

func (h *DriverHandler) Info(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := principal(r)

	d, err := h.Drivers.Info(ctx, p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	earned, err := h.Drivers.Earnings(ctx, p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	active, err := h.Drivers.ActiveOrders(ctx, p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeOK(w, r, "", payload{"driver": dto.DriverInfoResponse{
		DriverResponse: dto.NewDriverResponse(*d),
		Earnings:       earned,
		ActiveOrders:   dto.NewOrderList(active),
	}})
}

func (h *DriverHandler) SetWorkStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.WorkStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.Drivers.SetWorkStatus(r.Context(), principal(r), domain.WorkStatus(req.WorkStatus)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Статус работы обновлен", nil)
}

// Trip suggests a delivery order for the driver's active orders.
// The optional ?start= query overrides the starting city.
func (h *DriverHandler) Trip(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Drivers.Trip(r.Context(), principal(r), r.URL.Query().Get("start"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	stops := make([]dto.TripStopResponse, 0, len(plan.Stops))
	for _, s := range plan.Stops {
		stops = append(stops, dto.TripStopResponse{City: s.City, ArriveAt: s.ArriveAt, OrderIDs: s.OrderIDs})
	}
	writeOK(w, r, "", payload{"trip": dto.TripResponse{
		DriverID:             plan.DriverID,
		Start:                plan.Start,
		DepartAt:             plan.DepartAt,
		TotalDistanceKm:      plan.TotalDistanceKm,
		TotalDurationSeconds: plan.TotalDurationSeconds,
		Stops:                stops,
	}})
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
