package store

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerone-labs/storefront/internal/auth"
	"github.com/zerone-labs/storefront/internal/models"
)

type memPersister struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemPersister() *memPersister {
	return &memPersister{data: make(map[string][]byte)}
}

func (m *memPersister) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return data, ok, nil
}

func (m *memPersister) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(context.Background(), Deps{
		Persister: newMemPersister(),
		Creds:     auth.Static{Passcode: "admin123"},
		Now:       func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) },
	})
}

func TestNewSeedsCatalogWhenEmpty(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	products := s.Products()
	require.Len(t, products, 3)
	assert.Equal(t, "1", products[0].ID)
	assert.Equal(t, "Neural Link Hub", products[0].Name)
	assert.Empty(t, s.Orders())
	assert.Empty(t, s.Cart())
	assert.False(t, s.IsAdmin())
	assert.Equal(t, ViewBuyer, s.ActiveView())
}

func TestNewFallsBackOnCorruptSnapshots(t *testing.T) {
	t.Parallel()

	p := newMemPersister()
	p.data[KeyProducts] = []byte("{not json")
	p.data[KeyOrders] = []byte("also not json")

	s := New(context.Background(), Deps{Persister: p, Creds: auth.Static{Passcode: "admin123"}})
	assert.Len(t, s.Products(), 3)
	assert.Empty(t, s.Orders())
}

func TestAddToCartAggregatesLines(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	p, ok := s.ProductByID("1")
	require.True(t, ok)

	for i := 0; i < 5; i++ {
		s.AddToCart(p)
	}

	cart := s.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, "1", cart[0].ID)
	assert.Equal(t, 5, cart[0].Quantity)
}

func TestAddToCartIgnoresStock(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s.AddProduct(context.Background(), models.Product{ID: "gone", Name: "Sold Out", Stock: 0, Price: 10})

	p, ok := s.ProductByID("gone")
	require.True(t, ok)

	// The stock guard belongs to the caller; the store takes anything.
	s.AddToCart(p)
	require.Len(t, s.Cart(), 1)
}

func TestCartSnapshotSurvivesProductEdit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	p, _ := s.ProductByID("3")
	s.AddToCart(p)

	p.Price = 9999
	p.Name = "Renamed"
	require.NoError(t, s.UpdateProduct(ctx, p))

	cart := s.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, float64(299), cart[0].Price)
	assert.Equal(t, "Void-Sound Earbuds", cart[0].Name)
}

func TestRemoveFromCartDropsWholeLine(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	p, _ := s.ProductByID("1")
	s.AddToCart(p)
	s.AddToCart(p)

	require.NoError(t, s.RemoveFromCart("1"))
	assert.Empty(t, s.Cart())

	err := s.RemoveFromCart("1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceOrderScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	p1, _ := s.ProductByID("1")
	p2, _ := s.ProductByID("2")
	s.AddToCart(p1)
	s.AddToCart(p1)
	s.AddToCart(p2)

	cart := s.Cart()
	require.Len(t, cart, 2)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, 1, cart[1].Quantity)

	order, err := s.PlaceOrder(ctx, "Ada Lovelace")
	require.NoError(t, err)

	assert.Equal(t, float64(3497), order.Total) // 2x1299 + 899
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "Ada Lovelace", order.CustomerName)
	assert.Equal(t, "2026-08-27T12:00:00Z", order.Date)
	assert.Empty(t, s.Cart())

	orders := s.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestPlaceOrderPrependsMostRecentFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	p, _ := s.ProductByID("1")

	s.AddToCart(p)
	first, err := s.PlaceOrder(ctx, "First")
	require.NoError(t, err)

	s.AddToCart(p)
	second, err := s.PlaceOrder(ctx, "Second")
	require.NoError(t, err)

	orders := s.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestPlaceOrderRejectsEmptyName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	p, _ := s.ProductByID("1")
	s.AddToCart(p)

	for _, name := range []string{"", "   "} {
		order, err := s.PlaceOrder(ctx, name)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, order)
	}

	// Failed checkout leaves the cart alone.
	assert.Len(t, s.Cart(), 1)
}

func TestPlaceOrderEmptyCartProducesZeroTotal(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	order, err := s.PlaceOrder(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Zero(t, order.Total)
	assert.Empty(t, order.Items)
}

func TestPlaceOrderDoesNotTouchStock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	p, _ := s.ProductByID("1")
	s.AddToCart(p)

	_, err := s.PlaceOrder(ctx, "Ada Lovelace")
	require.NoError(t, err)

	// Documented current behavior: checkout does not decrement inventory.
	after, _ := s.ProductByID("1")
	assert.Equal(t, 15, after.Stock)
}

func TestPlaceOrderTotalFrozenAgainstPriceChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	p, _ := s.ProductByID("2")
	s.AddToCart(p)

	order, err := s.PlaceOrder(ctx, "Ada Lovelace")
	require.NoError(t, err)
	require.Equal(t, float64(899), order.Total)

	p.Price = 1
	require.NoError(t, s.UpdateProduct(ctx, p))

	orders := s.Orders()
	assert.Equal(t, float64(899), orders[0].Total)
	assert.Equal(t, float64(899), orders[0].Items[0].Price)
}

func TestOrderIDFormat(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^ORD-[A-Z0-9]{8}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, pattern, NewOrderID())
	}
}

func TestPlaceOrderRetriesCollidingIDs(t *testing.T) {
	t.Parallel()

	ids := []string{"ORD-AAAAAAAA", "ORD-AAAAAAAA", "ORD-BBBBBBBB"}
	var calls int
	s := New(context.Background(), Deps{
		Persister: newMemPersister(),
		Creds:     auth.Static{Passcode: "admin123"},
		OrderID: func() string {
			id := ids[calls]
			calls++
			return id
		},
	})

	ctx := context.Background()
	first, err := s.PlaceOrder(ctx, "One")
	require.NoError(t, err)
	require.Equal(t, "ORD-AAAAAAAA", first.ID)

	second, err := s.PlaceOrder(ctx, "Two")
	require.NoError(t, err)
	assert.Equal(t, "ORD-BBBBBBBB", second.ID)
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	order, err := s.PlaceOrder(ctx, "Ada Lovelace")
	require.NoError(t, err)

	require.NoError(t, s.UpdateOrderStatus(ctx, order.ID, models.StatusShipped))
	assert.Equal(t, models.StatusShipped, s.Orders()[0].Status)

	// Idempotent: same status twice is the same as once.
	require.NoError(t, s.UpdateOrderStatus(ctx, order.ID, models.StatusShipped))
	assert.Equal(t, models.StatusShipped, s.Orders()[0].Status)

	// Transitions are unconstrained, including "backwards".
	require.NoError(t, s.UpdateOrderStatus(ctx, order.ID, models.StatusCancelled))
	require.NoError(t, s.UpdateOrderStatus(ctx, order.ID, models.StatusPending))
	assert.Equal(t, models.StatusPending, s.Orders()[0].Status)
}

func TestUpdateOrderStatusErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	order, err := s.PlaceOrder(ctx, "Ada Lovelace")
	require.NoError(t, err)

	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, "ORD-MISSING1", models.StatusShipped), ErrNotFound)
	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, order.ID, models.OrderStatus("Teleported")), ErrValidation)
}

func TestDeleteProductKeepsOrderSnapshots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	p, _ := s.ProductByID("1")
	s.AddToCart(p)
	order, err := s.PlaceOrder(ctx, "Ada Lovelace")
	require.NoError(t, err)

	require.NoError(t, s.DeleteProduct(ctx, "1"))

	_, ok := s.ProductByID("1")
	assert.False(t, ok)
	for _, listed := range s.Products() {
		assert.NotEqual(t, "1", listed.ID)
	}

	orders := s.Orders()
	require.Len(t, orders, 1)
	require.Equal(t, order.ID, orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "1", orders[0].Items[0].ID)
	assert.Equal(t, float64(1299), orders[0].Items[0].Price)
}

func TestDeleteProductNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	assert.ErrorIs(t, s.DeleteProduct(context.Background(), "nope"), ErrNotFound)
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	p, _ := s.ProductByID("2")
	p.Price = 799
	require.NoError(t, s.UpdateProduct(ctx, p))

	got, ok := s.ProductByID("2")
	require.True(t, ok)
	assert.Equal(t, float64(799), got.Price)

	assert.ErrorIs(t, s.UpdateProduct(ctx, models.Product{ID: "nope"}), ErrNotFound)
}

func TestAddProductDuplicateIDShadows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	s.AddProduct(ctx, models.Product{ID: "1", Name: "Impostor", Price: 5})

	// Documented current behavior: no uniqueness check, first match wins
	// on read, and both rows stay in the listing.
	require.Len(t, s.Products(), 4)
	got, ok := s.ProductByID("1")
	require.True(t, ok)
	assert.Equal(t, "Neural Link Hub", got.Name)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "exact passphrase", password: "admin123", want: true},
		{name: "wrong", password: "wrong", want: false},
		{name: "empty", password: "", want: false},
		{name: "case variant", password: "Admin123", want: false},
		{name: "trailing space", password: "admin123 ", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestStore(t)
			assert.Equal(t, tt.want, s.Authenticate(tt.password))
			assert.Equal(t, tt.want, s.IsAdmin())
		})
	}
}

func TestDeauthenticateForcesBuyerView(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.True(t, s.Authenticate("admin123"))
	require.NoError(t, s.SetActiveView(ViewAdmin))

	s.Deauthenticate()
	assert.False(t, s.IsAdmin())
	assert.Equal(t, ViewBuyer, s.ActiveView())
}

func TestSetActiveView(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	// The store does not guard the admin view; that is the UI's job.
	require.NoError(t, s.SetActiveView(ViewAdmin))
	assert.Equal(t, ViewAdmin, s.ActiveView())

	assert.ErrorIs(t, s.SetActiveView(View("kiosk")), ErrValidation)
}

func TestPersistenceRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := newMemPersister()
	deps := Deps{Persister: p, Creds: auth.Static{Passcode: "admin123"}}

	s1 := New(ctx, deps)
	s1.AddProduct(ctx, models.Product{ID: "42", Name: "Photon Sling", Price: 149.5, Stock: 7, Category: "Toys"})
	item, _ := s1.ProductByID("42")
	s1.AddToCart(item)
	order, err := s1.PlaceOrder(ctx, "Grace Hopper")
	require.NoError(t, err)
	require.NoError(t, s1.UpdateOrderStatus(ctx, order.ID, models.StatusShipped))

	s2 := New(ctx, deps)
	assert.Equal(t, s1.Products(), s2.Products())
	assert.Equal(t, s1.Orders(), s2.Orders())

	// Cart and session flags never persist.
	s1.Authenticate("admin123")
	assert.Empty(t, s2.Cart())
	assert.False(t, s2.IsAdmin())
}

func TestMutationsEmitEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := &recordingSink{}
	s := New(ctx, Deps{
		Persister: newMemPersister(),
		Creds:     auth.Static{Passcode: "admin123"},
		Sink:      sink,
	})

	s.AddProduct(ctx, models.Product{ID: "9", Name: "Thing"})
	p, _ := s.ProductByID("9")
	p.Name = "Thing v2"
	require.NoError(t, s.UpdateProduct(ctx, p))
	s.AddToCart(p)
	order, err := s.PlaceOrder(ctx, "Ada Lovelace")
	require.NoError(t, err)
	require.NoError(t, s.UpdateOrderStatus(ctx, order.ID, models.StatusCompleted))
	require.NoError(t, s.DeleteProduct(ctx, "9"))

	assert.Equal(t, []string{
		EventProductCreated,
		EventProductUpdated,
		EventOrderPlaced,
		EventOrderStatusChanged,
		EventProductDeleted,
	}, sink.types())
}
