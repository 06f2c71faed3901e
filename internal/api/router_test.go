package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"freight-order-service/internal/api/apitest"
	"math"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
)

type apiClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newAPIClient(t *testing.T, srv *httptest.Server) *apiClient {
	jar, _ := cookiejar.New(nil)
	return &apiClient{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *apiClient) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func orderForm() map[string]any {
	return map[string]any{
		"senderName":       "Иван",
		"senderPhone":      "+79000000000",
		"cargoDescription": "Станок",
		"productCategory":  "industrial",
		"cargoWeight":      100,
		"cargoVolume":      2,
		"cargoType":        "general",
		"shippingDate":     "2026-03-01",
		"pickupAddress":    "Москва, ул. Ленина, 1",
		"deliveryAddress":  "Ярославль, ул. Свободы, 2",
	}
}

func TestHealth(t *testing.T) {
	srv := apitest.NewServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestSessionFlow(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newAPIClient(t, srv)

	status, body := c.do(http.MethodGet, "/api/current-user", nil)
	if status != http.StatusOK || body["success"] != false || body["user"] != nil {
		t.Fatalf("anonymous current-user = %d %v", status, body)
	}

	status, body = c.do(http.MethodPost, "/api/register", map[string]any{
		"email": "client@example.com", "phone": "+79001112233", "password": "secret1",
		"firstName": "Иван", "lastName": "Иванов",
	})
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("register = %d %v", status, body)
	}

	status, body = c.do(http.MethodGet, "/api/current-user", nil)
	user, _ := body["user"].(map[string]any)
	if status != http.StatusOK || user["email"] != "client@example.com" || user["isDriver"] != false {
		t.Fatalf("current-user = %d %v", status, body)
	}

	c.do(http.MethodPost, "/api/logout", nil)
	status, _ = c.do(http.MethodGet, "/api/orders", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("orders after logout = %d, want 401", status)
	}
}

func TestOrderEndpoints(t *testing.T) {
	srv := apitest.NewServer(t)
	client := newAPIClient(t, srv)
	admin := newAPIClient(t, srv)

	client.do(http.MethodPost, "/api/register", map[string]any{
		"email": "client@example.com", "phone": "+79001112233", "password": "secret1",
		"firstName": "Иван", "lastName": "Иванов",
	})
	status, body := admin.do(http.MethodPost, "/api/login", map[string]any{"login": "admin@transportco.ru", "password": "admin123"})
	if status != http.StatusOK {
		t.Fatalf("admin login = %d %v", status, body)
	}

	status, body = client.do(http.MethodPost, "/api/orders", orderForm())
	if status != http.StatusOK || body["message"] != "Заказ успешно создан" {
		t.Fatalf("create = %d %v", status, body)
	}
	created := body["order"].(map[string]any)
	if created["price"].(float64) != 22130 || created["distance"].(float64) != 274 {
		t.Fatalf("created = %v", created)
	}
	id := int64(created["id"].(float64))

	status, body = admin.do(http.MethodPost, "/api/orders", orderForm())
	if status != http.StatusForbidden || body["message"] != "Заказ доступен только для обычных пользователей" {
		t.Fatalf("admin create = %d %v", status, body)
	}

	path := func(format string) string { return fmt.Sprintf(format, id) }

	status, body = admin.do(http.MethodPost, path("/api/admin/orders/%d/decision"), map[string]any{"decision": "maybe"})
	if status != http.StatusBadRequest || body["message"] != "Некорректное решение" {
		t.Fatalf("bad decision = %d %v", status, body)
	}
	status, body = admin.do(http.MethodPost, path("/api/admin/orders/%d/decision"), map[string]any{"decision": "confirm"})
	if status != http.StatusOK || body["status"] != "confirmed" {
		t.Fatalf("decision = %d %v", status, body)
	}

	status, body = client.do(http.MethodGet, path("/api/orders/%d"), nil)
	order := body["order"].(map[string]any)
	if status != http.StatusOK || order["client_status"] != "confirmed" || order["status"] != "confirmed" {
		t.Fatalf("get = %d %v", status, body)
	}

	status, body = client.do(http.MethodPost, path("/api/orders/%d/cancel"), nil)
	if status != http.StatusOK {
		t.Fatalf("cancel = %d %v", status, body)
	}
	c := body["cancellation"].(map[string]any)
	if math.Abs(c["fee"].(float64)-2213) > 1e-6 || math.Abs(c["refund"].(float64)-19917) > 1e-6 {
		t.Fatalf("cancellation = %v", c)
	}

	status, _ = client.do(http.MethodPost, path("/api/orders/%d/cancel"), nil)
	if status != http.StatusConflict {
		t.Fatalf("second cancel = %d, want 409", status)
	}

	status, body = admin.do(http.MethodGet, "/api/orders/9999", nil)
	if status != http.StatusNotFound || body["message"] != "Заказ не найден" {
		t.Fatalf("missing order = %d %v", status, body)
	}
}

func TestQuoteAndBadBodies(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newAPIClient(t, srv)

	form := orderForm()
	form["insurance"] = true
	status, body := c.do(http.MethodPost, "/api/orders/quote", form)
	q, _ := body["quote"].(map[string]any)
	if status != http.StatusOK || q["total"].(float64) != 22351 {
		t.Fatalf("quote = %d %v", status, body)
	}

	for name, edit := range map[string]func(map[string]any){
		"negative":   func(f map[string]any) { f["cargoWeight"] = -1000; f["cargoVolume"] = -5 },
		"huge":       func(f map[string]any) { f["cargoWeight"] = 1e300 },
		"far":        func(f map[string]any) { f["distance"] = 1e12 },
		"zero-sized": func(f map[string]any) { f["cargoVolume"] = 0 },
	} {
		form := orderForm()
		edit(form)
		status, body := c.do(http.MethodPost, "/api/orders/quote", form)
		if _, ok := body["errors"].(map[string]any); status != http.StatusBadRequest || !ok || body["quote"] != nil {
			t.Fatalf("%s quote = %d %v", name, status, body)
		}
	}

	resp, err := http.Post(srv.URL+"/api/orders/quote", "application/json",
		strings.NewReader(`{"cargoWeight": NaN, "cargoVolume": 2}`))
	if err != nil {
		t.Fatalf("nan quote: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("nan quote = %d, want 400", resp.StatusCode)
	}

	status, body = c.do(http.MethodPost, "/api/login", map[string]any{"login": "x", "password": "y", "extra": 1})
	if status != http.StatusBadRequest || body["message"] != "invalid json body" {
		t.Fatalf("unknown field = %d %v", status, body)
	}

	status, _ = c.do(http.MethodPost, "/api/orders/abc/cancel", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad id = %d", status)
	}
}

func TestValidationErrorsListFields(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newAPIClient(t, srv)
	c.do(http.MethodPost, "/api/register", map[string]any{
		"email": "client@example.com", "phone": "+79001112233", "password": "secret1",
		"firstName": "Иван", "lastName": "Иванов",
	})

	form := orderForm()
	form["cargoWeight"] = 0
	status, body := c.do(http.MethodPost, "/api/orders", form)
	fields, _ := body["errors"].(map[string]any)
	if status != http.StatusBadRequest || fields["cargoWeight"] == nil {
		t.Fatalf("invalid order = %d %v", status, body)
	}

	form = orderForm()
	form["cargoWeight"] = 1e300
	form["cargoVolume"] = -5
	status, body = c.do(http.MethodPost, "/api/orders", form)
	fields, _ = body["errors"].(map[string]any)
	if status != http.StatusBadRequest || fields["cargoWeight"] == nil || fields["cargoVolume"] == nil {
		t.Fatalf("out of range order = %d %v", status, body)
	}

	status, body = c.do(http.MethodGet, "/api/orders", nil)
	if orders, _ := body["orders"].([]any); status != http.StatusOK || len(orders) != 0 {
		t.Fatalf("rejected orders were stored: %d %v", status, body)
	}
}

func TestDriverEndpoints(t *testing.T) {
	srv := apitest.NewServer(t)
	client := newAPIClient(t, srv)
	driver := newAPIClient(t, srv)
	admin := newAPIClient(t, srv)

	client.do(http.MethodPost, "/api/register", map[string]any{
		"email": "client@example.com", "phone": "+79001112233", "password": "secret1",
		"firstName": "Иван", "lastName": "Иванов",
	})
	_, body := driver.do(http.MethodPost, "/api/register", map[string]any{
		"email": "driver@example.com", "phone": "+79004445566", "password": "secret1",
		"firstName": "Пётр", "lastName": "Петров",
	})
	driverID := body["user"].(map[string]any)["id"].(float64)
	admin.do(http.MethodPost, "/api/login", map[string]any{"login": apitest.AdminLogin, "password": apitest.AdminPassword})

	_, body = client.do(http.MethodPost, "/api/orders", orderForm())
	orderID := body["order"].(map[string]any)["id"].(float64)

	status, body := driver.do(http.MethodGet, "/api/driver/trip", nil)
	if status != http.StatusForbidden {
		t.Fatalf("trip before hire = %d %v", status, body)
	}

	status, body = driver.do(http.MethodPost, "/api/driver/application", map[string]any{
		"licenseNumber": "77 11 123456", "experience": 5, "carModel": "КамАЗ",
		"carNumber": "А123ВС77", "maxWeight": 20000,
	})
	if status != http.StatusOK || body["message"] != "Заявка успешно отправлена" {
		t.Fatalf("apply = %d %v", status, body)
	}
	appID := body["applicationId"].(float64)

	_, body = driver.do(http.MethodGet, "/api/driver/application", nil)
	app := body["application"].(map[string]any)
	if app["status"] != "pending" || app["car_type"] != "tent" {
		t.Fatalf("own application = %v", app)
	}

	status, body = admin.do(http.MethodPost, fmt.Sprintf("/api/admin/driver_application/%d/approve", int64(appID)), nil)
	if status != http.StatusOK || body["message"] != "Заявка одобрена" {
		t.Fatalf("approve = %d %v", status, body)
	}

	admin.do(http.MethodPost, fmt.Sprintf("/api/admin/orders/%d/decision", int64(orderID)), map[string]any{"decision": "confirm"})
	status, body = admin.do(http.MethodPost, fmt.Sprintf("/api/admin/orders/%d/assign", int64(orderID)), map[string]any{"driverId": driverID})
	if status != http.StatusOK {
		t.Fatalf("assign = %d %v", status, body)
	}

	status, body = driver.do(http.MethodGet, "/api/driver/trip", nil)
	if status != http.StatusOK {
		t.Fatalf("trip = %d %v", status, body)
	}
	trip := body["trip"].(map[string]any)
	stops := trip["stops"].([]any)
	if trip["start"] != "Москва" || len(stops) != 1 || stops[0].(map[string]any)["city"] != "Ярославль" {
		t.Fatalf("trip = %v", trip)
	}
	if trip["total_distance_km"].(float64) != 274 {
		t.Fatalf("trip distance = %v", trip["total_distance_km"])
	}

	_, body = driver.do(http.MethodGet, "/api/driver/info", nil)
	info := body["driver"].(map[string]any)
	if len(info["active_orders"].([]any)) != 1 || info["work_status"] != "active" {
		t.Fatalf("driver info = %v", info)
	}

	dismiss := fmt.Sprintf("/api/admin/drivers/%d/dismiss", int64(driverID))
	status, body = admin.do(http.MethodPost, dismiss, map[string]any{"reason": "x", "ordersAction": "teleport"})
	if status != http.StatusBadRequest || body["message"] != "Некорректное действие с заказами" {
		t.Fatalf("bad dismiss = %d %v", status, body)
	}
	status, body = admin.do(http.MethodPost, dismiss, map[string]any{"reason": "Нарушение графика", "ordersAction": "unassign"})
	if status != http.StatusOK {
		t.Fatalf("dismiss = %d %v", status, body)
	}
	if un := body["unassigned"].([]any); len(un) != 1 || un[0].(float64) != orderID {
		t.Fatalf("unassigned = %v", body["unassigned"])
	}

	status, _ = driver.do(http.MethodGet, "/api/driver/trip", nil)
	if status != http.StatusForbidden {
		t.Fatalf("trip after dismissal = %d, want 403", status)
	}
}
