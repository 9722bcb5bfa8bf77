package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fjod/fitlyf/orders-service/internal/domain"
	"github.com/fjod/fitlyf/pkg/contracts"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("order already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type OutboxEvent struct {
	ID          int64
	EventID     string
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

type OrderRepository interface {
	// CreateOrder stores the order together with its order.placed outbox event.
	CreateOrder(ctx context.Context, order *contracts.Order) error
	GetOrderByID(ctx context.Context, id string) (*contracts.Order, error)
	ApplyStatusUpdate(ctx context.Context, update domain.StatusUpdate) (*contracts.Order, error)
	RunMigrations(*Credentials) error
	Close() error
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}
