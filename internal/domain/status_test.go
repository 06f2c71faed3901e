package domain

import "testing"

func TestStatusMappingRoundTrip(t *testing.T) {
	for _, c := range ClientStatuses {
		if got := ToClientStatus(ToAdminStatus(c)); got != c {
			t.Fatalf("client %q round-trip = %q", c, got)
		}
	}
	for _, a := range AdminStatuses {
		if got := ToAdminStatus(ToClientStatus(a)); got != a {
			t.Fatalf("admin %q round-trip = %q", a, got)
		}
	}
}

func TestStatusMappingSpecialPairs(t *testing.T) {
	if got := ToClientStatus(StatusNew); got != ClientProcessing {
		t.Fatalf("new -> %q, want processing", got)
	}
	if got := ToClientStatus(StatusCancelledByClient); got != ClientCancelled {
		t.Fatalf("cancelled_by_client -> %q, want cancelled", got)
	}
	if got := ToAdminStatus(ClientProcessing); got != StatusNew {
		t.Fatalf("processing -> %q, want new", got)
	}
	if got := ToClientStatus("archived"); got != "archived" {
		t.Fatalf("unknown status should pass through, got %q", got)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status  string
		isAdmin bool
		want    string
	}{
		{"new", true, "Новый"},
		{"new", false, "В обработке"},
		{"processing", false, "В обработке"},
		{"cancelled_by_client", true, "Отменен клиентом"},
		{"cancelled_by_client", false, "Отменен"},
		{"cancelled", false, "Отменен"},
		{"in_transit", true, "В пути"},
		{"delivered", false, "Завершен"},
		{"rejected", true, "Отклонен"},
		{"lost_in_space", true, "lost_in_space"},
		{"lost_in_space", false, "lost_in_space"},
		{"", false, ""},
	}
	for _, tt := range tests {
		if got := StatusText(tt.status, tt.isAdmin); got != tt.want {
			t.Errorf("StatusText(%q, %v) = %q, want %q", tt.status, tt.isAdmin, got, tt.want)
		}
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[string]string{
		"new":                 "processing",
		"processing":          "processing",
		"confirmed":           "confirmed",
		"in_transit":          "in-transit",
		"delivered":           "delivered",
		"rejected":            "rejected",
		"cancelled":           "cancelled",
		"cancelled_by_client": "cancelled",
		"whatever":            "new",
	}
	for in, want := range tests {
		if got := StatusClass(in); got != want {
			t.Errorf("StatusClass(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []AdminStatus{StatusDelivered, StatusRejected, StatusCancelledByClient} {
		if !s.Terminal() {
			t.Fatalf("%q should be terminal", s)
		}
		if !ToClientStatus(s).Terminal() {
			t.Fatalf("client view of %q should be terminal", s)
		}
	}
	for _, s := range []AdminStatus{StatusNew, StatusConfirmed, StatusInTransit} {
		if s.Terminal() {
			t.Fatalf("%q should not be terminal", s)
		}
	}
}
