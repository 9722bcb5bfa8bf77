package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/fitlyf/orders-service/internal/domain"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	return &Repository{db: db, now: time.Now}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) CreateOrder(ctx context.Context, order *contracts.Order) error {
	row, err := marshalOrder(order)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(domain.NewOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO orders (id, status, customer, items, shipping, payment_method, payment_status,
	                              totals, total_paise, notes, gift_wrap, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, insertErr := tx.ExecContext(ctx, query,
		order.ID,
		order.Status,
		row.customer,
		row.items,
		row.shipping,
		order.Payment.Method,
		order.Payment.Status,
		row.totals,
		int64(order.Totals.Total),
		order.Notes,
		order.GiftWrap,
		order.CreatedAt,
		order.UpdatedAt)
	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox_events (event_id, aggregate_id, event_type, payload) VALUES ($1, $2, $3, $4)`,
		uuid.New(), order.ID, domain.EventTypeOrderPlaced, payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

const selectOrder = `SELECT id, status, customer, items, shipping, payment_method, payment_status,
                            totals, notes, gift_wrap, created_at, updated_at
                     FROM orders WHERE id = $1`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) GetOrderByID(ctx context.Context, id string) (*contracts.Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx, selectOrder, id))
}

// ApplyStatusUpdate locks the order row, checks the transition and writes
// the new status and tracking details.
func (r *Repository) ApplyStatusUpdate(ctx context.Context, update domain.StatusUpdate) (*contracts.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	order, err := scanOrder(tx.QueryRowContext(ctx, selectOrder+" FOR UPDATE", update.OrderID))
	if err != nil {
		return nil, err
	}
	if update.Status != "" && !domain.CanTransitionTo(order.Status, update.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, update.Status)
	}

	update.Apply(order, r.now())
	shipping, err := json.Marshal(order.Shipping)
	if err != nil {
		return nil, fmt.Errorf("marshal shipping: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, shipping = $3, payment_status = $4, updated_at = $5 WHERE id = $1`,
		order.ID, order.Status, shipping, order.Payment.Status, order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return order, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, aggregate_id, event_type, payload, created_at
		 FROM outbox_events WHERE processed_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event %d: %w", id, err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type orderRow struct {
	customer, items, shipping, totals []byte
}

func marshalOrder(o *contracts.Order) (orderRow, error) {
	var row orderRow
	var err error
	if row.customer, err = json.Marshal(o.Customer); err != nil {
		return row, fmt.Errorf("failed to marshal customer: %w", err)
	}
	if row.items, err = json.Marshal(o.Items); err != nil {
		return row, fmt.Errorf("failed to marshal order items: %w", err)
	}
	if row.shipping, err = json.Marshal(o.Shipping); err != nil {
		return row, fmt.Errorf("failed to marshal shipping: %w", err)
	}
	if row.totals, err = json.Marshal(o.Totals); err != nil {
		return row, fmt.Errorf("failed to marshal totals: %w", err)
	}
	return row, nil
}

func scanOrder(s rowScanner) (*contracts.Order, error) {
	var order contracts.Order
	var row orderRow
	err := s.Scan(
		&order.ID,
		&order.Status,
		&row.customer,
		&row.items,
		&row.shipping,
		&order.Payment.Method,
		&order.Payment.Status,
		&row.totals,
		&order.Notes,
		&order.GiftWrap,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	if err := json.Unmarshal(row.customer, &order.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(row.items, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(row.shipping, &order.Shipping); err != nil {
		return nil, fmt.Errorf("unmarshal shipping: %w", err)
	}
	if err := json.Unmarshal(row.totals, &order.Totals); err != nil {
		return nil, fmt.Errorf("unmarshal totals: %w", err)
	}
	order.Payment.Amount = order.Totals.Total
	return &order, nil
}
