// Package session keeps the per-browser cart, checkout and order state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/fitlyf/cart-service/internal/cart"
	"github.com/fjod/fitlyf/cart-service/internal/checkout"
	"github.com/fjod/fitlyf/cart-service/internal/orders"
	"github.com/fjod/fitlyf/cart-service/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// IdleTTL is how long an untouched session stays in memory. Its cart and
	// order snapshots stay in storage and are reloaded on the next request.
	IdleTTL = 30 * time.Minute

	// CleanupInterval is how often idle sessions are evicted.
	CleanupInterval = time.Minute
)

type OrdersAPI interface {
	orders.OrderPlacer
	orders.OrderFetcher
}

type Session struct {
	ID        string
	Cart      *cart.Store
	Checkout  *checkout.Sequencer
	Submitter *orders.Submitter
	Tracker   *orders.Tracker
	Snapshots *orders.Snapshots

	lastSeen time.Time
}

// Registry hands out sessions by id, loading them from storage on first use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	loads    singleflight.Group

	storage storage.Storage
	api     OrdersAPI
	idleTTL time.Duration
	log     *zap.Logger
	now     func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewRegistry(st storage.Storage, api OrdersAPI, idleTTL time.Duration, log *zap.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = IdleTTL
	}
	return &Registry{
		sessions:    make(map[string]*Session),
		storage:     st,
		api:         api,
		idleTTL:     idleTTL,
		log:         log,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
}

// Get returns the session for id, loading it from storage on first use.
// Storage is read outside the registry lock; concurrent first requests for
// one id share a single load.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	if s := r.lookup(id); s != nil {
		return s
	}

	v, _, _ := r.loads.Do(id, func() (interface{}, error) {
		if s := r.lookup(id); s != nil {
			return s, nil
		}
		s := r.load(ctx, id)

		r.mu.Lock()
		defer r.mu.Unlock()
		if existing, ok := r.sessions[id]; ok {
			existing.lastSeen = r.now()
			return existing, nil
		}
		s.lastSeen = r.now()
		r.sessions[id] = s
		return s, nil
	})
	return v.(*Session)
}

func (r *Registry) lookup(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	s.lastSeen = r.now()
	return s
}

func (r *Registry) load(ctx context.Context, id string) *Session {
	log := r.log.With(zap.String("session_id", id))
	st := storage.Scoped(r.storage, id)
	c := cart.Load(ctx, st, log)
	snaps := orders.NewSnapshots(st, log)
	return &Session{
		ID:        id,
		Cart:      c,
		Checkout:  checkout.NewSequencer(),
		Submitter: orders.NewSubmitter(c, r.api, snaps, log),
		Tracker:   orders.NewTracker(r.api, snaps, log),
		Snapshots: snaps,
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Start runs the eviction loop until Close.
func (r *Registry) Start(interval time.Duration) {
	if interval <= 0 {
		interval = CleanupInterval
	}
	r.wg.Add(1)
	go r.cleanupLoop(interval)
}

func (r *Registry) cleanupLoop(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle drops sessions idle for longer than the TTL. Sessions with a
// submission in flight are kept.
func (r *Registry) evictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	evicted := 0
	for id, s := range r.sessions {
		if s.lastSeen.After(cutoff) || s.Submitter.State() == orders.StateSubmitting {
			continue
		}
		delete(r.sessions, id)
		evicted++
	}
	if evicted > 0 {
		r.log.Debug("evicted idle sessions", zap.Int("count", evicted), zap.Int("remaining", len(r.sessions)))
	}
	return evicted
}

// Close stops the eviction loop and waits for it to finish.
func (r *Registry) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()
	return nil
}
