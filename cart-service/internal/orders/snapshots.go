package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fjod/fitlyf/cart-service/internal/storage"
	"github.com/fjod/fitlyf/pkg/contracts"
	"go.uber.org/zap"
)

// Snapshots keeps local copies of placed orders so confirmation and tracking
// pages work while the Order API is unreachable.
type Snapshots struct {
	storage storage.Storage
	log     *zap.Logger
}

func NewSnapshots(st storage.Storage, log *zap.Logger) *Snapshots {
	return &Snapshots{storage: st, log: log}
}

// Save stores o under its own key. Failures are logged.
func (s *Snapshots) Save(ctx context.Context, o *contracts.Order) {
	s.write(ctx, storage.OrderKey(o.ID), o)
}

// SaveAsLast stores o under its own key and as the most recent order.
func (s *Snapshots) SaveAsLast(ctx context.Context, o *contracts.Order) {
	s.Save(ctx, o)
	s.write(ctx, storage.LastOrderKey, o)
}

func (s *Snapshots) Get(ctx context.Context, orderID string) (*contracts.Order, error) {
	return s.read(ctx, storage.OrderKey(orderID))
}

func (s *Snapshots) Last(ctx context.Context) (*contracts.Order, error) {
	return s.read(ctx, storage.LastOrderKey)
}

func (s *Snapshots) write(ctx context.Context, key string, o *contracts.Order) {
	data, err := json.Marshal(o)
	if err != nil {
		s.log.Warn("order snapshot encode failed", zap.String("order_id", o.ID), zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, key, data); err != nil {
		s.log.Warn("order snapshot write failed", zap.String("key", key), zap.Error(err))
	}
}

// read returns ErrOrderNotFound for absent, unreadable and corrupt values.
func (s *Snapshots) read(ctx context.Context, key string) (*contracts.Order, error) {
	data, err := s.storage.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("order snapshot read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, ErrOrderNotFound
	}

	var o contracts.Order
	if err := json.Unmarshal(data, &o); err != nil || o.ID == "" {
		s.log.Warn("order snapshot is corrupt", zap.String("key", key), zap.Error(err))
		return nil, ErrOrderNotFound
	}
	o.Normalize()
	return &o, nil
}
