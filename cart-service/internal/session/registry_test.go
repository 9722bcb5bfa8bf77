package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/fitlyf/cart-service/internal/storage"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAPI struct{}

func (stubAPI) PlaceOrder(context.Context, contracts.OrderRequest) (string, error) {
	return "o-1", nil
}

func (stubAPI) GetOrder(context.Context, string) (*contracts.Order, error) {
	return nil, nil
}

var whey = contracts.Product{ID: "p1", Name: "Whey", Price: money.FromMajor(1000)}

func TestGet_ReturnsSameSession(t *testing.T) {
	r := NewRegistry(storage.NewMemoryStorage(), stubAPI{}, time.Minute, zap.NewNop())
	ctx := context.Background()

	a := r.Get(ctx, "s1")
	b := r.Get(ctx, "s1")
	c := r.Get(ctx, "s2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
}

func TestGet_SessionsAreIsolated(t *testing.T) {
	r := NewRegistry(storage.NewMemoryStorage(), stubAPI{}, time.Minute, zap.NewNop())
	ctx := context.Background()

	r.Get(ctx, "s1").Cart.AddItem(ctx, whey)

	assert.Equal(t, 1, r.Get(ctx, "s1").Cart.Count())
	assert.Equal(t, 0, r.Get(ctx, "s2").Cart.Count())
}

// slowStorage blocks reads of the "slow" session until release is closed.
type slowStorage struct {
	*storage.MemoryStorage
	release chan struct{}
	reads   atomic.Int32
}

func (s *slowStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if strings.HasPrefix(key, "slow:") {
		s.reads.Add(1)
		<-s.release
	}
	return s.MemoryStorage.Get(ctx, key)
}

func TestGet_SlowLoadDoesNotBlockOtherSessions(t *testing.T) {
	st := &slowStorage{MemoryStorage: storage.NewMemoryStorage(), release: make(chan struct{})}
	r := NewRegistry(st, stubAPI{}, time.Minute, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	got := make([]*Session, 2)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = r.Get(ctx, "slow")
		}(i)
	}
	require.Eventually(t, func() bool { return st.reads.Load() == 1 }, time.Second, 5*time.Millisecond)

	fast := make(chan *Session, 1)
	go func() { fast <- r.Get(ctx, "fast") }()
	select {
	case s := <-fast:
		assert.Equal(t, "fast", s.ID)
	case <-time.After(time.Second):
		t.Fatal("session fast waited for session slow to load")
	}

	close(st.release)
	wg.Wait()
	assert.Same(t, got[0], got[1])
	assert.Equal(t, 2, r.Len())
}

func TestEvictIdle_ReloadsFromStorage(t *testing.T) {
	r := NewRegistry(storage.NewMemoryStorage(), stubAPI{}, time.Minute, zap.NewNop())
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	first := r.Get(ctx, "s1")
	first.Cart.AddItem(ctx, whey)
	first.Cart.AddItem(ctx, whey)
	r.Get(ctx, "s2")

	now = now.Add(45 * time.Second)
	r.Get(ctx, "s2")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, r.evictIdle())
	assert.Equal(t, 1, r.Len())

	reloaded := r.Get(ctx, "s1")
	assert.NotSame(t, first, reloaded)
	assert.Equal(t, 2, reloaded.Cart.Count())
}

func TestStartAndClose(t *testing.T) {
	r := NewRegistry(storage.NewMemoryStorage(), stubAPI{}, time.Millisecond, zap.NewNop())
	r.Get(context.Background(), "s1")

	r.Start(5 * time.Millisecond)
	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, r.Close())
}
