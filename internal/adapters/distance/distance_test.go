package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freight-order-service/internal/ports"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestExtractCity(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Москва, ул. Ленина, 1", "Москва"},
		{"  Санкт-Петербург , Невский 10", "Санкт-Петербург"},
		{"Кострома Советская 5", "Кострома"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := ExtractCity(tt.in); got != tt.want {
			t.Errorf("ExtractCity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"москва", "Москва"},
		{"г. Москва", "Москва"},
		{"ЯРОСЛАВЛЬ", "Ярославль"},
		{"Нижний Новгород", "Нижний Новгород"},
		{"Тверь", "Тверь"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCity(tt.in); got != tt.want {
			t.Errorf("NormalizeCity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTableIsSymmetric(t *testing.T) {
	p := NewTableProvider()
	for _, e := range cityTable {
		ab, ok1 := p.Lookup(e.a, e.b)
		ba, ok2 := p.Lookup(e.b, e.a)
		if !ok1 || !ok2 || ab != ba {
			t.Fatalf("%s-%s: %d/%v vs %d/%v", e.a, e.b, ab, ok1, ba, ok2)
		}
	}
	if km, _ := p.Lookup("Ярославль", "Москва"); km != 274 {
		t.Fatalf("Ярославль-Москва = %d, want 274", km)
	}

	_, err := p.GetDistance(context.Background(), "Тверь", "Москва")
	if !errors.Is(err, ports.ErrUnknownRoute) {
		t.Fatalf("unknown pair: err = %v", err)
	}
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(nil)

	tests := []struct {
		name             string
		pickup, delivery string
		want             int
		src              Source
	}{
		{"table", "Москва, ул. Ленина, 1", "Ярославль, ул. Свободы, 2", 274, SourceTable},
		{"reverse", "Ярославль, центр", "москва, склад", 274, SourceTable},
		{"same city", "Кострома, ул. Мира", "Кострома, ул. Войкова", SameCityKm, SourceSameCity},
		{"unknown", "Тверь, ул. Мира", "Омск, ул. Мира", FallbackKm, SourceFallback},
		{"empty", "", "Москва", FallbackKm, SourceFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, src := r.Resolve(ctx, tt.pickup, tt.delivery)
			if km != tt.want || src != tt.src {
				t.Fatalf("Resolve = %d/%s, want %d/%s", km, src, tt.want, tt.src)
			}
		})
	}

	if got := r.DistanceKm(ctx, "Москва", "Сочи"); got != 1584 {
		t.Fatalf("DistanceKm = %v", got)
	}
}

func TestResolverUsesRoutingForMissingPairs(t *testing.T) {
	ctx := context.Background()
	mock := NewMockDistanceProvider([]MockPair{{From: "Тверь", To: "Омск", Km: 2400}})
	r := NewResolver(mock)

	if km, src := r.Resolve(ctx, "Тверь, ул. Мира", "Омск"); km != 2400 || src != SourceRouting {
		t.Fatalf("routed = %d/%s", km, src)
	}
	if km, src := r.Resolve(ctx, "Тверь", "Пермь"); km != FallbackKm || src != SourceFallback {
		t.Fatalf("routing miss = %d/%s", km, src)
	}
	if _, src := r.Resolve(ctx, "Москва", "Казань"); src != SourceTable {
		t.Fatalf("table pair went to %s", src)
	}
	if mock.Calls() != 2 {
		t.Fatalf("routing calls = %d, want 2", mock.Calls())
	}
}

type matrixMock struct {
	*MockDistanceProvider
	batches int
}

func (m *matrixMock) GetDistances(ctx context.Context, origin string, dests []string) (map[string]ports.DistanceResult, error) {
	m.batches++
	out := map[string]ports.DistanceResult{}
	for _, d := range dests {
		if r, err := m.GetDistance(ctx, origin, d); err == nil {
			out[d] = r
		}
	}
	return out, nil
}

func TestResolverLegDurations(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(NewMockDistanceProvider([]MockPair{
		{From: "Тверь", To: "Омск", Km: 2400, Seconds: 100000},
		{From: "Тверь", To: "Пермь", Km: 1300},
	}))
	r.SpeedKmh = 80

	tests := []struct {
		to      string
		km, sec int
		src     Source
	}{
		{"Омск", 2400, 100000, SourceRouting},
		{"Пермь", 1300, 58500, SourceRouting},
		{"Тверь, ул. Советская", SameCityKm, 450, SourceSameCity},
		{"Мухосранск", FallbackKm, 4500, SourceFallback},
	}
	for _, tt := range tests {
		res, src := r.Leg(ctx, "Тверь", tt.to)
		if res.DistanceKm != tt.km || res.DurationSeconds != tt.sec || src != tt.src {
			t.Fatalf("Leg(Тверь, %s) = %+v/%s, want %d km %d s/%s", tt.to, res, src, tt.km, tt.sec, tt.src)
		}
	}

	res, err := NewResolver(nil).GetDistance(ctx, "Москва", "Ярославль")
	if err != nil || res.DistanceKm != 274 || res.DurationSeconds != 274*60 {
		t.Fatalf("GetDistance = %+v, %v", res, err)
	}
}

func TestResolverMatrixBatchesRoutedLegs(t *testing.T) {
	ctx := context.Background()
	m := &matrixMock{MockDistanceProvider: NewMockDistanceProvider([]MockPair{
		{From: "Москва", To: "Омск", Km: 2700, Seconds: 120000},
		{From: "Москва", To: "Тверь", Km: 180, Seconds: 9000},
	})}
	r := NewResolver(m)

	got, err := r.GetDistances(ctx, "Москва", []string{"Ярославль", "Омск", "Тверь", "Пермь"})
	if err != nil {
		t.Fatalf("GetDistances: %v", err)
	}
	if m.batches != 1 {
		t.Fatalf("matrix batches = %d, want 1", m.batches)
	}
	want := map[string]ports.DistanceResult{
		"Ярославль": {DistanceKm: 274, DurationSeconds: 274 * 60},
		"Омск":      {DistanceKm: 2700, DurationSeconds: 120000},
		"Тверь":     {DistanceKm: 180, DurationSeconds: 9000},
		"Пермь":     {DistanceKm: FallbackKm, DurationSeconds: FallbackKm * 60},
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s = %+v, want %+v", k, got[k], v)
		}
	}
}

type memDistanceCache struct {
	m map[string]ports.DistanceResult
}

func (c *memDistanceCache) GetMany(_ context.Context, origin string, dests []string) (map[string]ports.DistanceResult, error) {
	out := map[string]ports.DistanceResult{}
	for _, d := range dests {
		if r, ok := c.m[origin+"|"+d]; ok {
			out[d] = r
		}
	}
	return out, nil
}

func (c *memDistanceCache) PutMany(_ context.Context, origin string, rs map[string]ports.DistanceResult) error {
	for d, r := range rs {
		c.m[origin+"|"+d] = r
	}
	return nil
}

func fakeORS(t *testing.T, matrixCalls *int32, failFirst bool) *httptest.Server {
	t.Helper()
	var geocodeFailed int32
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("boundary.country") != "RU" || q.Get("layers") != geocodeLayers {
			t.Errorf("geocode query = %v", q)
		}
		if failFirst && atomic.CompareAndSwapInt32(&geocodeFailed, 0, 1) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		lon := 36.0
		if q.Get("text") == "омск" {
			lon = 73.4
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"features": []any{map[string]any{"geometry": map[string]any{"coordinates": []float64{lon, 56.8}}}},
		})
	})
	mux.HandleFunc("/v2/matrix/driving-hgv", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(matrixCalls, 1)
		if r.Header.Get("Authorization") != "key" {
			t.Errorf("missing api key header")
		}
		var req matrixRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Units != "km" {
			t.Errorf("matrix request = %+v, err = %v", req, err)
		}
		row := make([]float64, len(req.Destinations))
		secs := make([]float64, len(req.Destinations))
		for i := range row {
			row[i], secs[i] = 2400.4, 90000
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"distances": [][]float64{row},
			"durations": [][]float64{secs},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestORSProviderConvertsAndCaches(t *testing.T) {
	ctx := context.Background()
	var calls int32
	srv := fakeORS(t, &calls, true)

	dc := &memDistanceCache{m: map[string]ports.DistanceResult{}}
	p, err := NewORSDistanceProvider("key", dc, nil, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.GetDistance(ctx, "Тверь", "  Омск ")
	if err != nil {
		t.Fatalf("get distance: %v", err)
	}
	if got.DistanceKm != 2400 || got.DurationSeconds != 90000 {
		t.Fatalf("result = %+v", got)
	}

	if _, err := p.GetDistance(ctx, "тверь", "омск"); err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("matrix calls = %d, want 1 (second lookup cached)", calls)
	}
}

func TestORSProviderRejectsEmptyKey(t *testing.T) {
	if _, err := NewORSDistanceProvider("", nil, nil); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestORSProviderSplitsLargeMatrix(t *testing.T) {
	var calls int32
	srv := fakeORS(t, &calls, false)
	p, err := NewORSDistanceProvider("key", nil, nil, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	dests := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		dests = append(dests, fmt.Sprintf("Город%03d", i))
	}
	got, err := p.GetDistances(context.Background(), "Тверь", append(dests, "тверь", dests[0]))
	if err != nil {
		t.Fatalf("get distances: %v", err)
	}
	if len(got) != 120 {
		t.Fatalf("results = %d, want 120 (origin and duplicates dropped)", len(got))
	}
	// 120 destinations at 49 per request.
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("matrix calls = %d, want 3", n)
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		want  time.Duration
		retry bool
	}{
		{"rate limited", &orsStatusError{Code: http.StatusTooManyRequests, RetryAfter: 2 * time.Second}, 2 * time.Second, true},
		{"capped", &orsStatusError{Code: http.StatusTooManyRequests, RetryAfter: time.Hour}, orsMaxBackoff, true},
		{"server error", &orsStatusError{Code: http.StatusBadGateway}, time.Second, true},
		{"bad request", &orsStatusError{Code: http.StatusBadRequest}, 0, false},
		{"cancelled", context.Canceled, 0, false},
		{"plain", errors.New("boom"), time.Second, false},
	}
	for _, tt := range tests {
		d, ok := retryDelay(tt.err, time.Second)
		if ok != tt.retry || (ok && d != tt.want) {
			t.Errorf("%s: retryDelay = %v/%v, want %v/%v", tt.name, d, ok, tt.want, tt.retry)
		}
	}
	if parseRetryAfter("3") != 3*time.Second || parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT") != 0 {
		t.Fatalf("parseRetryAfter")
	}
}
