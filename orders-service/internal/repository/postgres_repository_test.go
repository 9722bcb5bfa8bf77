package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fjod/fitlyf/orders-service/internal/domain"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/money"
	"github.com/fjod/fitlyf/pkg/pricing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func newTestOrder() *contracts.Order {
	items := []contracts.OrderItem{
		{ProductID: "p1", Name: "Whey Protein", Price: money.FromMajor(1000), Quantity: 2},
		{ProductID: "p2", Name: "Resistance Band", Price: money.FromMajor(500), Quantity: 1},
	}
	totals, _ := pricing.Compute(items, pricing.ShippingExpress, true)
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &contracts.Order{
		ID: uuid.NewString(),
		Customer: contracts.Customer{
			FirstName: "Asha", Email: "asha@example.com", Phone: "9876543210",
			Address: "12 MG Road", City: "Bengaluru", PostalCode: "560001", Country: "India",
		},
		Items:     items,
		Shipping:  contracts.Shipping{Method: pricing.ShippingExpress, Charge: totals.Shipping},
		Payment:   contracts.Payment{Method: contracts.PaymentCOD, Amount: totals.Total, Status: contracts.PaymentStatusPending},
		Totals:    totals,
		GiftWrap:  true,
		Notes:     "leave at the door",
		Status:    contracts.OrderStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateOrder_Success(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder()

	err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	fetched, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, order.Customer, fetched.Customer)
	assert.Equal(t, order.Items, fetched.Items)
	assert.Equal(t, order.Totals, fetched.Totals)
	assert.Equal(t, order.Payment, fetched.Payment)
	assert.Equal(t, order.Status, fetched.Status)
	assert.Equal(t, "leave at the door", fetched.Notes)
	assert.True(t, fetched.GiftWrap)
	assert.True(t, order.CreatedAt.Equal(fetched.CreatedAt))
}

func TestCreateOrder_WritesOutboxEvent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder()
	require.NoError(t, repo.CreateOrder(ctx, order))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, order.ID, events[0].AggregateID)
	assert.Equal(t, domain.EventTypeOrderPlaced, events[0].EventType)

	var payload domain.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, order.ID, payload.OrderID)
	assert.Equal(t, order.Totals.Total.String(), payload.Total)

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))
	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCreateOrder_Duplicate(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder()
	require.NoError(t, repo.CreateOrder(ctx, order))

	err := repo.CreateOrder(ctx, order)
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1, "a rejected order must not leave an outbox event behind")
}

func TestGetOrderByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetOrderByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestApplyStatusUpdate(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder()
	require.NoError(t, repo.CreateOrder(ctx, order))

	updated, err := repo.ApplyStatusUpdate(ctx, domain.StatusUpdate{
		OrderID:        order.ID,
		Status:         contracts.OrderStatusShipped,
		TrackingNumber: "TRK123",
		Courier:        "Delhivery",
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.OrderStatusShipped, updated.Status)

	fetched, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, contracts.OrderStatusShipped, fetched.Status)
	assert.Equal(t, "TRK123", fetched.Shipping.TrackingNumber)
	assert.Equal(t, "Delhivery", fetched.Shipping.Courier)
	assert.Equal(t, pricing.ShippingExpress, fetched.Shipping.Method)

	_, err = repo.ApplyStatusUpdate(ctx, domain.StatusUpdate{OrderID: order.ID, Status: contracts.OrderStatusConfirmed})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = repo.ApplyStatusUpdate(ctx, domain.StatusUpdate{OrderID: "missing", Status: contracts.OrderStatusShipped})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
