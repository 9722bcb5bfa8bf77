package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/fitlyf/cart-service/internal/clients"
	"github.com/fjod/fitlyf/pkg/contracts"
	"go.uber.org/zap"
)

const DefaultPollInterval = 30 * time.Second

type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID string) (*contracts.Order, error)
}

// Tracker reads order status from the Order API, falling back to the local
// snapshot when the API cannot answer.
type Tracker struct {
	api       OrderFetcher
	snapshots *Snapshots
	log       *zap.Logger
}

func NewTracker(api OrderFetcher, snapshots *Snapshots, log *zap.Logger) *Tracker {
	return &Tracker{api: api, snapshots: snapshots, log: log}
}

// Lookup returns the latest known state of an order. A successful API answer
// refreshes the snapshot. ErrOrderNotFound means the API does not know the id
// and there is no snapshot either; when the API is unreachable and there is no
// snapshot the API error is returned.
func (t *Tracker) Lookup(ctx context.Context, orderID string) (*contracts.Order, error) {
	order, err := t.api.GetOrder(ctx, orderID)
	if err == nil {
		t.snapshots.Save(ctx, order)
		return order, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	notFound := errors.Is(err, clients.ErrNotFound)
	if !notFound {
		t.log.Warn("order lookup failed, using local snapshot", zap.String("order_id", orderID), zap.Error(err))
	}

	snapshot, snapErr := t.snapshots.Get(ctx, orderID)
	switch {
	case snapErr == nil:
		return snapshot, nil
	case notFound:
		return nil, ErrOrderNotFound
	default:
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
}

// Poll looks the order up immediately and then every interval until ctx is
// done, the order is delivered, or the order turns out not to exist. fn
// receives every successful lookup.
func (t *Tracker) Poll(ctx context.Context, orderID string, interval time.Duration, fn func(*contracts.Order)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		order, err := t.Lookup(ctx, orderID)
		switch {
		case errors.Is(err, ErrOrderNotFound):
			return err
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.log.Warn("order poll failed", zap.String("order_id", orderID), zap.Error(err))
		default:
			fn(order)
			if order.Status == contracts.OrderStatusDelivered {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
