package client

import (
	"context"
	"errors"
	"freight-order-service/internal/adapters/distance"
	"freight-order-service/internal/api/apitest"
	"freight-order-service/internal/domain"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func form() domain.OrderRequest {
	return domain.OrderRequest{
		SenderName:       "Иван",
		SenderPhone:      "+79000000000",
		CargoDescription: "Станок",
		ProductCategory:  "industrial",
		CargoWeight:      100,
		CargoVolume:      2,
		CargoType:        domain.CargoGeneral,
		ShippingDate:     "2026-03-01",
		PickupAddress:    "Москва, ул. Ленина, 1",
		DeliveryAddress:  "Ярославль, ул. Свободы, 2",
	}
}

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(url, WithDistances(distance.NewResolver(nil)))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestSubmitOrderValidatesBeforeSending(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	bad := form()
	bad.CargoVolume = 0
	_, err := newClient(t, srv.URL).SubmitOrder(context.Background(), bad)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if _, ok := ve.Fields["cargoVolume"]; !ok {
		t.Fatalf("fields = %v", ve.Fields)
	}
	if calls != 0 {
		t.Fatalf("server was called %d times", calls)
	}
}

func TestQuoteValidatesCargoBeforeSending(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	bad := form()
	bad.CargoWeight = -1000
	bad.CargoVolume = 1e300
	_, err := newClient(t, srv.URL).Quote(context.Background(), bad)

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["cargoWeight"] == "" || ve.Fields["cargoVolume"] == "" {
		t.Fatalf("err = %v, want ValidationError on weight and volume", err)
	}
	if calls != 0 {
		t.Fatalf("server was called %d times", calls)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success": false, "message": "Требуется авторизация"}`))
		case "/api/admin/drivers":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		default:
			_, _ = w.Write([]byte(`{"success": false, "user": null}`))
		}
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)
	ctx := context.Background()

	_, err := c.ListOrders(ctx)
	var re *RejectedError
	if !errors.As(err, &re) || re.Message != "Требуется авторизация" || !IsUnauthorized(err) {
		t.Fatalf("rejected: err = %v", err)
	}

	_, err = c.ListDrivers(ctx)
	var te *TransportError
	if !errors.As(err, &te) || te.Status != http.StatusBadGateway {
		t.Fatalf("transport: err = %v", err)
	}

	u, err := c.CurrentUser(ctx)
	if err != nil || u != nil {
		t.Fatalf("anonymous current user = %v, err = %v", u, err)
	}

	srv.Close()
	_, err = c.ListOrders(ctx)
	if !errors.As(err, &te) {
		t.Fatalf("closed server: err = %v, want TransportError", err)
	}
}

func TestClientAgainstBackend(t *testing.T) {
	srv := apitest.NewServer(t)
	ctx := context.Background()

	client := newClient(t, srv.URL)
	admin := newClient(t, srv.URL)
	driver := newClient(t, srv.URL)

	if _, err := client.Register(ctx, Registration{
		Email: "client@example.com", Phone: "+79001112233", Password: "secret1", FirstName: "Иван", LastName: "Иванов",
	}); err != nil {
		t.Fatalf("register client: %v", err)
	}
	du, err := driver.Register(ctx, Registration{
		Email: "driver@example.com", Phone: "+79004445566", Password: "secret1", FirstName: "Пётр", LastName: "Петров",
	})
	if err != nil {
		t.Fatalf("register driver: %v", err)
	}
	if _, err := admin.Login(ctx, apitest.AdminLogin, apitest.AdminPassword); err != nil {
		t.Fatalf("admin login: %v", err)
	}

	o, err := client.SubmitOrder(ctx, form())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.Distance != 274 || o.PriceValue() != 22130 || o.ClientStatus != domain.ClientProcessing {
		t.Fatalf("order = %+v", o)
	}

	appID, err := driver.SubmitApplication(ctx, domain.Vehicle{
		LicenseNumber: "77 11 123456", Experience: 5, CarModel: "КамАЗ", CarNumber: "А123ВС77", MaxWeight: 20000, CarType: "tent",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	apps, err := admin.ListApplications(ctx)
	if err != nil || len(apps) != 1 || apps[0].Status != domain.ApplicationPending {
		t.Fatalf("applications = %+v, err = %v", apps, err)
	}
	if err := admin.ApproveApplication(ctx, appID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := admin.Decide(ctx, o.ID, domain.DecisionConfirm, ""); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if err := admin.AssignDriver(ctx, o.ID, du.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// The session predates approval; the role is read per request.
	if err := driver.AcceptOrder(ctx, o.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := driver.UpdateStatus(ctx, o.ID, domain.StatusDelivered, ""); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	info, err := driver.DriverInfo(ctx)
	if err != nil {
		t.Fatalf("driver info: %v", err)
	}
	if info.Driver.CompletedDeliveries != 1 || math.Abs(info.Earnings-15491) > 1e-6 {
		t.Fatalf("driver info = %+v", info)
	}

	got, err := client.GetOrder(ctx, o.ID)
	if err != nil || got.ClientStatus != domain.ClientDelivered || got.DriverID == nil || *got.DriverID != du.ID {
		t.Fatalf("order after delivery = %+v, err = %v", got, err)
	}

	_, err = client.CancelOrder(ctx, o.ID)
	var re *RejectedError
	if !errors.As(err, &re) || re.Status != http.StatusConflict {
		t.Fatalf("cancel delivered: err = %v", err)
	}
}

func TestCancelOrderReturnsFee(t *testing.T) {
	srv := apitest.NewServer(t)
	ctx := context.Background()
	c := newClient(t, srv.URL)
	u, err := c.Register(ctx, Registration{
		Email: "client@example.com", Phone: "+79001112233", Password: "secret1", FirstName: "Иван", LastName: "Иванов",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	req := form()
	req.Insurance = true
	o, err := c.SubmitOrder(ctx, req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	res, err := c.CancelOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if math.Abs(res.Fee-2235.1) > 1e-6 || math.Abs(res.Refund-20115.9) > 1e-6 {
		t.Fatalf("cancellation = %+v", res)
	}
	if res.OrderID != o.ID || res.UserID != u.ID || u.ID == 0 {
		t.Fatalf("cancellation = %+v, want order %d of user %d", res, o.ID, u.ID)
	}

	ns, err := c.Notifications(ctx)
	if err != nil || len(ns) != 1 || ns[0].Type != domain.NotifyWarning {
		t.Fatalf("notifications = %+v, err = %v", ns, err)
	}
}
