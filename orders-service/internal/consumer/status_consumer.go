package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/fitlyf/orders-service/internal/domain"
	"github.com/fjod/fitlyf/orders-service/internal/repository"
	"github.com/fjod/fitlyf/orders-service/internal/service"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type StatusUpdater interface {
	ApplyStatusUpdate(ctx context.Context, update domain.StatusUpdate) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer applies order-status messages published by fulfilment.
type Consumer struct {
	updater StatusUpdater
	reader  MessageReader
	log     *zap.Logger
}

func NewConsumer(updater StatusUpdater, log *zap.Logger, groupID string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    domain.TopicOrderStatus,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{updater: updater, reader: reader, log: log}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			c.log.Warn("error reading message", zap.Error(err))
			continue
		}
		if err := c.handle(ctx, m); err != nil {
			c.log.Warn("skipping status message",
				zap.Int64("offset", m.Offset),
				zap.String("key", string(m.Key)),
				zap.Error(err))
		}
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Warn("error closing kafka reader", zap.Error(err))
	}
}

// handle applies one message. Malformed messages, unknown orders and illegal
// transitions are reported and not retried.
func (c *Consumer) handle(ctx context.Context, m kafka.Message) error {
	var update domain.StatusUpdate
	if err := json.Unmarshal(m.Value, &update); err != nil {
		return fmt.Errorf("parse status message: %w", err)
	}
	if update.OrderID == "" {
		update.OrderID = string(m.Key)
	}

	err := c.updater.ApplyStatusUpdate(ctx, update)
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		return fmt.Errorf("order %s: %w", update.OrderID, err)
	case errors.Is(err, repository.ErrInvalidTransition):
		return fmt.Errorf("order %s: %w", update.OrderID, err)
	case err != nil:
		return fmt.Errorf("apply status update for order %s: %w", update.OrderID, err)
	}
	return nil
}
