package orders

import (
	"context"
	"sync"

	"github.com/fjod/fitlyf/pkg/contracts"
)

type mockPlacer struct {
	mu       sync.Mutex
	requests []contracts.OrderRequest
	id       string
	err      error
	block    chan struct{}
	// entered receives once per call, before block is waited on.
	entered chan struct{}
}

func (m *mockPlacer) PlaceOrder(_ context.Context, req contracts.OrderRequest) (string, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.id, m.err
}

type mockFetcher struct {
	mu     sync.Mutex
	calls  int
	orders []*contracts.Order
	err    error
	// failures are returned, one per call, before any order.
	failures []error
}

// GetOrder returns the queued failures first, then the queued orders in turn,
// repeating the last one.
func (m *mockFetcher) GetOrder(_ context.Context, orderID string) (*contracts.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.calls <= len(m.failures) {
		return nil, m.failures[m.calls-1]
	}
	i := m.calls - 1 - len(m.failures)
	if i >= len(m.orders) {
		i = len(m.orders) - 1
	}
	o := *m.orders[i]
	return &o, nil
}

func (m *mockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
