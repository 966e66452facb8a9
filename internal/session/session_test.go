package session_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"shoplite/internal/models"
	"shoplite/internal/services"
	"shoplite/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStore_GetOrCreate(t *testing.T) {
	store := session.NewStore(time.Hour, zap.NewNop())

	s, created := store.GetOrCreate("")
	assert.True(t, created)
	assert.NotEmpty(t, s.ID)

	again, created := store.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := store.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, store.Len())
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	store := session.NewStore(time.Hour, zap.NewNop())
	orderService := services.NewOrderService(nil, zap.NewNop())
	customer := models.Customer{Name: "A", Email: "a@example.com", Address: "Paris"}
	catalog := services.Generate(10)

	const shoppers = 8
	sessions := make([]*session.Session, shoppers)
	for i := range sessions {
		sessions[i] = store.Create()
	}

	var wg sync.WaitGroup
	for i, s := range sessions {
		wg.Add(1)
		go func(i int, s *session.Session) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				_ = s.Do(func(st *session.State) error {
					services.AddToCart(st.Cart, catalog[i], 1)
					return nil
				})
			}
			if i%2 == 0 {
				_ = s.Do(func(st *session.State) error {
					_, err := orderService.Checkout(st.Cart, st.Orders, customer, true)
					return err
				})
			}
		}(i, s)
	}
	wg.Wait()

	for i, s := range sessions {
		err := s.Do(func(st *session.State) error {
			if i%2 == 0 {
				assert.True(t, st.Cart.IsEmpty(), "session %d", i)
				assert.Equal(t, 1, st.Orders.Len(), "session %d", i)
				orders, err := st.Orders.GetAll()
				require.NoError(t, err)
				assert.Equal(t, []models.CartLine{{ProductID: catalog[i].ID, Title: catalog[i].Title, Price: catalog[i].Price, Qty: 50}}, orders[0].Items)
				return nil
			}
			assert.Equal(t, []models.CartLine{{ProductID: catalog[i].ID, Title: catalog[i].Title, Price: catalog[i].Price, Qty: 50}}, st.Cart.Lines(), "session %d", i)
			assert.Zero(t, st.Orders.Len(), "session %d", i)
			return nil
		})
		require.NoError(t, err)
	}
}

func TestSession_DoSerializesActions(t *testing.T) {
	store := session.NewStore(0, zap.NewNop())
	s := store.Create()
	product := models.Product{ID: 1, Title: "Widget", Price: 1}

	var wg sync.WaitGroup
	for g := 0; g < 20; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 25; n++ {
				_ = s.Do(func(st *session.State) error {
					services.AddToCart(st.Cart, product, 1)
					return nil
				})
			}
		}()
	}
	wg.Wait()

	_ = s.Do(func(st *session.State) error {
		line, ok := st.Cart.Get(1)
		assert.True(t, ok)
		assert.Equal(t, 500, line.Qty)
		return nil
	})
}

func TestSession_DoReturnsActionError(t *testing.T) {
	s := session.NewStore(0, zap.NewNop()).Create()
	err := s.Do(func(st *session.State) error { return fmt.Errorf("boom") })
	assert.EqualError(t, err, "boom")
}

func TestStore_Sweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := session.NewStore(30*time.Minute, zap.NewNop()).WithClock(func() time.Time { return now })

	stale := store.Create()
	now = now.Add(20 * time.Minute)
	fresh := store.Create()

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	_, ok := store.Get(stale.ID)
	assert.False(t, ok)
	_, ok = store.Get(fresh.ID)
	assert.True(t, ok)

	assert.Zero(t, session.NewStore(0, zap.NewNop()).Sweep(), "zero ttl never expires")
}

func TestStore_GetKeepsSessionAliveDuringSweep(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	store := session.NewStore(time.Minute, zap.NewNop()).WithClock(func() time.Time { return now })

	const n = 200
	ids := make([]string, n)
	for i := range ids {
		ids[i] = store.Create().ID
	}
	// Every session is now idle past the ttl; only a Get can save it.
	now = start.Add(2 * time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			store.Sweep()
		}
	}()

	var handedOut []string
	for _, id := range ids {
		if _, ok := store.Get(id); ok {
			handedOut = append(handedOut, id)
		}
	}
	<-done

	store.Sweep()
	for _, id := range handedOut {
		_, ok := store.Get(id)
		assert.True(t, ok, "session %s was returned by Get and then evicted", id)
	}
}
