package wire

import (
	"encoding/json"
	"freight-order-service/internal/domain"
	"testing"
	"time"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestNormalizeOrderSnakeCase(t *testing.T) {
	m := decode(t, `{
		"id": "12", "user_id": 7, "driver_id": null,
		"pickup_address": "Москва", "deliveryAddress": "ignored", "delivery_address": "Ярославль",
		"cargo_weight": "100", "cargo_volume": 2, "distance": 274,
		"price": "22130", "insurance": 1, "packaging": "0",
		"status": "new", "created_at": "2026-03-01 09:00:00",
		"cancellation_fee": ""
	}`)
	o := NormalizeOrder(m)

	if o.ID != 12 || o.UserID != 7 || o.DriverID != nil {
		t.Fatalf("ids = %d/%d/%v", o.ID, o.UserID, o.DriverID)
	}
	if o.DeliveryAddress != "Ярославль" {
		t.Fatalf("snake_case must win: %q", o.DeliveryAddress)
	}
	if o.CargoWeight != 100 || o.Price == nil || *o.Price != 22130 {
		t.Fatalf("numbers = %v / %v", o.CargoWeight, o.Price)
	}
	if !o.Insurance || o.Packaging {
		t.Fatalf("booleans = %v/%v", o.Insurance, o.Packaging)
	}
	if o.CancellationFee != nil {
		t.Fatalf("empty fee should be nil, got %v", *o.CancellationFee)
	}
	if o.ClientStatus != domain.ClientProcessing {
		t.Fatalf("derived client status = %q", o.ClientStatus)
	}
	want := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if !o.CreatedAt.Equal(want) {
		t.Fatalf("created_at = %v", o.CreatedAt)
	}
}

func TestNormalizeOrderCamelCase(t *testing.T) {
	m := decode(t, `{"id": 3, "userId": "5", "driverId": "9", "clientStatus": "in_transit", "status": "in_transit", "price": null, "refundAmount": 450.5}`)
	o := NormalizeOrder(m)

	if o.UserID != 5 || o.DriverID == nil || *o.DriverID != 9 {
		t.Fatalf("ids = %d/%v", o.UserID, o.DriverID)
	}
	if o.Price != nil {
		t.Fatalf("null price should be nil")
	}
	if o.RefundAmount == nil || *o.RefundAmount != 450.5 {
		t.Fatalf("refund = %v", o.RefundAmount)
	}
	if o.ClientStatus != domain.ClientInTransit {
		t.Fatalf("client status = %q", o.ClientStatus)
	}
}

func TestClientStatusPrefersSnakeCase(t *testing.T) {
	o := NormalizeOrder(map[string]any{"status": "cancelled_by_client", "client_status": "cancelled", "clientStatus": "bogus"})
	if o.ClientStatus != domain.ClientCancelled {
		t.Fatalf("client status = %q", o.ClientStatus)
	}
}

func TestExplicitSnakeCaseNullWins(t *testing.T) {
	o := NormalizeOrder(decode(t, `{
		"id": 4, "driver_id": null, "driverId": 9,
		"cancellation_fee": null, "cancellationFee": 120,
		"refund_amount": 1080, "refundAmount": null
	}`))
	if o.DriverID != nil {
		t.Fatalf("driver = %d, want nil", *o.DriverID)
	}
	if o.CancellationFee != nil {
		t.Fatalf("fee = %v, want nil", *o.CancellationFee)
	}
	if o.RefundAmount == nil || *o.RefundAmount != 1080 {
		t.Fatalf("refund = %v", o.RefundAmount)
	}

	a := NormalizeApplication(decode(t, `{"id": 1, "processed_by": null, "processedBy": 2}`))
	if a.ProcessedBy != nil {
		t.Fatalf("processed by = %d, want nil", *a.ProcessedBy)
	}
}

func TestNormalizeDriverAndApplication(t *testing.T) {
	d := NormalizeDriver(decode(t, `{
		"id": 1, "user_id": 4, "car_model": "КамАЗ", "maxWeight": "20000",
		"work_status": "inactive", "status": "active", "completed_deliveries": "3",
		"first_name": "Пётр", "phone": "+7900"
	}`))
	if d.UserID != 4 || d.CarModel != "КамАЗ" || d.MaxWeight != 20000 || d.CompletedDeliveries != 3 {
		t.Fatalf("driver = %+v", d)
	}
	if d.WorkStatus != domain.WorkInactive || d.FirstName != "Пётр" {
		t.Fatalf("driver = %+v", d)
	}

	a := NormalizeApplication(decode(t, `{"id": 2, "userId": 4, "status": "pending", "applied_at": "2026-03-01T10:00:00Z", "processed_by": null}`))
	if a.ID != 2 || a.UserID != 4 || a.AppliedAt == nil || a.ProcessedBy != nil {
		t.Fatalf("application = %+v", a)
	}
}

func TestNormalizeUser(t *testing.T) {
	tests := []struct {
		in   string
		want domain.User
	}{
		{`{"id": 1, "firstName": "А", "isAdmin": true, "isDriver": false, "verified": true}`,
			domain.User{ID: 1, FirstName: "А", IsAdmin: true, Verified: true}},
		{`{"id": "2", "first_name": "Б", "is_admin": 0, "is_driver": 1, "verified": "1"}`,
			domain.User{ID: 2, FirstName: "Б", IsDriver: true, Verified: true}},
	}
	for _, tt := range tests {
		if got := NormalizeUser(decode(t, tt.in)); got != tt.want {
			t.Errorf("NormalizeUser(%s) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2026-03-01T09:00:00Z", "2026-03-01 09:00:00.123456", "2026-03-01"} {
		if _, ok := ParseTime(s); !ok {
			t.Errorf("ParseTime(%q) failed", s)
		}
	}
	if _, ok := ParseTime("yesterday"); ok {
		t.Errorf("ParseTime accepted garbage")
	}
}

func TestEnvelope(t *testing.T) {
	var e Envelope
	if err := json.Unmarshal([]byte(`{"success": true, "message": "ok", "orders": [{"id": 1}], "application": null}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !e.Success || e.Message != "ok" {
		t.Fatalf("envelope = %+v", e)
	}
	if e.Has("application") {
		t.Fatalf("null payload must not count as present")
	}
	orders, err := e.Objects("orders")
	if err != nil || len(orders) != 1 {
		t.Fatalf("orders = %v, err = %v", orders, err)
	}
	if _, ok := e.Payload["success"]; ok {
		t.Fatalf("success leaked into payload")
	}
}
