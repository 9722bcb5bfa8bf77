package service

import (
	"context"
	"sync"

	"github.com/fjod/fitlyf/orders-service/internal/domain"
	"github.com/fjod/fitlyf/orders-service/internal/repository"
	"github.com/fjod/fitlyf/pkg/contracts"
)

type MockRepository struct {
	mu        sync.Mutex
	Orders    map[string]*contracts.Order
	CreateErr error
	UpdateErr error
	Created   []*contracts.Order
}

func NewMockRepository() *MockRepository {
	return &MockRepository{Orders: map[string]*contracts.Order{}}
}

func (m *MockRepository) CreateOrder(_ context.Context, order *contracts.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.Orders[order.ID]; ok {
		return repository.ErrDuplicateOrder
	}
	cp := *order
	m.Orders[order.ID] = &cp
	m.Created = append(m.Created, order)
	return nil
}

func (m *MockRepository) GetOrderByID(_ context.Context, id string) (*contracts.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockRepository) ApplyStatusUpdate(_ context.Context, update domain.StatusUpdate) (*contracts.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	o, ok := m.Orders[update.OrderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if update.Status != "" && !domain.CanTransitionTo(o.Status, update.Status) {
		return nil, repository.ErrInvalidTransition
	}
	update.Apply(o, o.UpdatedAt)
	cp := *o
	return &cp, nil
}

func (m *MockRepository) RunMigrations(*repository.Credentials) error {
	return nil
}

func (m *MockRepository) Close() error {
	return nil
}
