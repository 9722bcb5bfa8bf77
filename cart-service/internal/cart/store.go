// Package cart holds the session's shopping cart and mirrors every change to
// durable storage.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/fjod/fitlyf/cart-service/internal/domain"
	"github.com/fjod/fitlyf/cart-service/internal/storage"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/money"
	"github.com/fjod/fitlyf/pkg/pricing"
	"go.uber.org/zap"
)

// Store is an ordered set of cart lines, at most one per product. Every
// mutation is written through to storage before it returns; storage failures
// are logged and do not undo the in-memory change.
type Store struct {
	mu      sync.Mutex
	lines   []domain.CartLine
	storage storage.Storage
	log     *zap.Logger
	now     func() time.Time
}

// Load restores the cart saved in st. A missing or unreadable value yields an
// empty cart.
func Load(ctx context.Context, st storage.Storage, log *zap.Logger) *Store {
	s := &Store{
		storage: st,
		log:     log,
		now:     time.Now,
	}

	data, err := st.Get(ctx, storage.CartKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s
	case err != nil:
		log.Warn("cart read failed, starting empty", zap.Error(err))
		return s
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		log.Warn("stored cart is corrupt, starting empty", zap.Error(err))
		return s
	}
	s.lines = normalize(lines)
	return s
}

// normalize drops lines with a negative quantity, treats a missing quantity
// as one unit and merges repeated products into their first line, keeping the
// earliest AddedAt.
func normalize(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	seen := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 0 {
			continue
		}
		if l.Quantity == 0 {
			l.Quantity = 1
		}
		if i, ok := seen[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			if l.AddedAt.Before(out[i].AddedAt) {
				out[i].AddedAt = l.AddedAt
			}
			continue
		}
		seen[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// AddItem adds one unit of p, creating the line if needed.
func (s *Store) AddItem(ctx context.Context, p contracts.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(p.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, domain.NewLine(p, s.now()))
	}
	s.persist(ctx)
}

// UpdateQuantity sets the quantity of a line. Quantities below one remove it.
// Unknown products are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity < 1 {
		s.RemoveItem(ctx, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.lines[i].Quantity = quantity
	}
	s.persist(ctx)
}

func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
	s.persist(ctx)
}

// Clear empties the cart and deletes its storage entry.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	if err := s.storage.Delete(ctx, storage.CartKey); err != nil {
		s.log.Warn("cart delete failed", zap.Error(err))
	}
}

// RemoveOrdered takes the ordered quantities out of the cart. Units added
// after the order was built stay. The storage entry is deleted once the cart
// is empty.
func (s *Store) RemoveOrdered(ctx context.Context, items []contracts.OrderItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range items {
		i := s.indexOf(it.ProductID)
		if i < 0 {
			continue
		}
		s.lines[i].Quantity -= it.Quantity
		if s.lines[i].Quantity < 1 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		}
	}

	if len(s.lines) > 0 {
		s.persist(ctx)
		return
	}
	s.lines = nil
	if err := s.storage.Delete(ctx, storage.CartKey); err != nil {
		s.log.Warn("cart delete failed", zap.Error(err))
	}
}

// Total is the sum of price × quantity over all lines.
func (s *Store) Total() money.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Subtotal(s.lines)
}

// Count is the number of units in the cart.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

func (s *Store) indexOf(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) {
	lines := s.lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		s.log.Warn("cart encode failed", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, storage.CartKey, data); err != nil {
		s.log.Warn("cart write failed", zap.Error(err), zap.Int("lines", len(lines)))
	}
}
