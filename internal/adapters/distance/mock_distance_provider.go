package distance

import (
	"context"
	"fmt"
	"freight-order-service/internal/ports"
	"sync"
)

type MockPair struct {
	From, To string
	Km       int
	Seconds  int
}

// MockDistanceProvider answers from a fixed list of pairs and counts calls.
type MockDistanceProvider struct {
	m map[string]ports.DistanceResult

	mu    sync.Mutex
	calls int
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = ports.DistanceResult{DistanceKm: p.Km, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	r, ok := p.m[origin+"|"+destination]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %q -> %q: %w", origin, destination, ports.ErrUnknownRoute)
	}

	return r, nil
}

func (p *MockDistanceProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
