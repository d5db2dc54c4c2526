package store

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/zerone-labs/storefront/internal/auth"
	"github.com/zerone-labs/storefront/internal/models"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
)

// View selects which portal the session is looking at. The store keeps the
// flag but enforces nothing: access control is the transport layer's job.
type View string

const (
	ViewBuyer View = "buyer"
	ViewAdmin View = "admin"
)

// Persister stores the serialized product/order snapshots. The store owns
// the JSON encoding; the persister only sees opaque bytes under a key.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte) error
}

const (
	KeyProducts = "products"
	KeyOrders   = "orders"
)

const (
	EventProductCreated     = "product_created"
	EventProductUpdated     = "product_updated"
	EventProductDeleted     = "product_deleted"
	EventOrderPlaced        = "order_placed"
	EventOrderStatusChanged = "order_status_changed"
)

// Event describes a single committed mutation. Sinks (kafka feed, search
// index, dashboard hub) receive it after the state change is already
// persisted; delivery is best effort.
type Event struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Product *models.Product `json:"product,omitempty"`
	Order   *models.Order   `json:"order,omitempty"`
}

type Sink interface {
	Publish(ctx context.Context, ev Event)
}

// Store is the single source of truth for products, orders, the cart and
// the session flags. Every mutation goes through here; after each one the
// product and order collections are re-persisted in full.
type Store struct {
	mu       sync.Mutex
	products []models.Product
	orders   []models.Order // most recent first
	cart     []models.CartItem
	isAdmin  bool
	view     View

	persist Persister
	creds   auth.Checker
	sink    Sink
	log     *slog.Logger
	now     func() time.Time
	orderID func() string
}

type Deps struct {
	Persister Persister
	Creds     auth.Checker
	Sink      Sink
	Logger    *slog.Logger

	// Test seams; nil means real clock and random ids.
	Now     func() time.Time
	OrderID func() string
}

// New rehydrates persisted products/orders, seeding the demo catalog when
// nothing (or nothing readable) is stored. Malformed snapshots are dropped
// in favor of defaults: a demo should come back up, not refuse to start.
func New(ctx context.Context, d Deps) *Store {
	s := &Store{
		view:    ViewBuyer,
		persist: d.Persister,
		creds:   d.Creds,
		sink:    d.Sink,
		log:     d.Logger,
		now:     d.Now,
		orderID: d.OrderID,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.orderID == nil {
		s.orderID = NewOrderID
	}

	s.products = Seed()
	s.orders = nil
	if s.persist != nil {
		if data, ok := s.loadKey(ctx, KeyProducts); ok {
			var products []models.Product
			if err := json.Unmarshal(data, &products); err != nil {
				s.log.Warn("discarding corrupt snapshot", "key", KeyProducts, "error", err)
			} else {
				s.products = products
			}
		}
		if data, ok := s.loadKey(ctx, KeyOrders); ok {
			var orders []models.Order
			if err := json.Unmarshal(data, &orders); err != nil {
				s.log.Warn("discarding corrupt snapshot", "key", KeyOrders, "error", err)
			} else {
				s.orders = orders
			}
		}
	}
	return s
}

func (s *Store) loadKey(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := s.persist.Load(ctx, key)
	if err != nil {
		s.log.Warn("snapshot load failed", "key", key, "error", err)
		return nil, false
	}
	return data, ok
}

// Session ---------------------------------------------------------------

func (s *Store) Authenticate(password string) bool {
	if !s.creds.Check(password) {
		return false
	}
	s.mu.Lock()
	s.isAdmin = true
	s.mu.Unlock()
	return true
}

func (s *Store) Deauthenticate() {
	s.mu.Lock()
	s.isAdmin = false
	s.view = ViewBuyer
	s.mu.Unlock()
}

func (s *Store) SetActiveView(v View) error {
	if v != ViewBuyer && v != ViewAdmin {
		return fmt.Errorf("%w: unknown view %q", ErrValidation, v)
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	return nil
}

func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAdmin
}

func (s *Store) ActiveView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Reads -----------------------------------------------------------------

func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

// ProductByID returns the first product with the given id. Duplicate ids
// are not rejected on insert, so "first" is the operative word.
func (s *Store) ProductByID(id string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.orders)
}

func (s *Store) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

// Products --------------------------------------------------------------

// AddProduct appends the product as given. The caller supplies the id; the
// store does not generate one and does not check uniqueness, so a
// duplicate id shadows the older product on lookup.
func (s *Store) AddProduct(ctx context.Context, p models.Product) {
	s.mu.Lock()
	s.products = append(s.products, p)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snap, Event{Type: EventProductCreated, ID: p.ID, Product: &p})
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.products, func(x models.Product) bool { return x.ID == p.ID })
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: product %s", ErrNotFound, p.ID)
	}
	s.products[idx] = p
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snap, Event{Type: EventProductUpdated, ID: p.ID, Product: &p})
	return nil
}

// DeleteProduct removes the product. Cart lines and order items keep their
// snapshots; nothing cascades.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.products, func(x models.Product) bool { return x.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	s.products = slices.Delete(s.products, idx, idx+1)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snap, Event{Type: EventProductDeleted, ID: id})
	return nil
}

// Cart ------------------------------------------------------------------

// AddToCart increments the existing line for this product id or opens a
// new one at quantity 1, snapshotting the product's current fields. Stock
// is deliberately not consulted here; that guard belongs to the caller.
func (s *Store) AddToCart(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].ID == p.ID {
			s.cart[i].Quantity++
			return
		}
	}
	s.cart = append(s.cart, models.CartItem{Product: p, Quantity: 1})
}

// RemoveFromCart drops the whole line; there is no partial decrement.
func (s *Store) RemoveFromCart(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.cart, func(x models.CartItem) bool { return x.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: cart line %s", ErrNotFound, id)
	}
	s.cart = slices.Delete(s.cart, idx, idx+1)
	return nil
}

// Orders ----------------------------------------------------------------

// PlaceOrder freezes the current cart into a new Pending order, prepends
// it to the order history and clears the cart. The total is computed once,
// here, and never changes afterwards. Product stock is not decremented.
func (s *Store) PlaceOrder(ctx context.Context, customerName string) (*models.Order, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, fmt.Errorf("%w: customer name required", ErrValidation)
	}

	s.mu.Lock()
	var total float64
	for _, item := range s.cart {
		total += item.Price * float64(item.Quantity)
	}
	order := models.Order{
		ID:           s.freshOrderIDLocked(),
		Items:        slices.Clone(s.cart),
		Total:        total,
		Status:       models.StatusPending,
		CustomerName: customerName,
		Date:         s.now().UTC().Format(time.RFC3339),
	}
	s.orders = append([]models.Order{order}, s.orders...)
	s.cart = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snap, Event{Type: EventOrderPlaced, ID: order.ID, Order: &order})
	return &order, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	s.mu.Lock()
	idx := slices.IndexFunc(s.orders, func(o models.Order) bool { return o.ID == orderID })
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	// Any status may move to any other; there is no transition table.
	s.orders[idx].Status = status
	order := s.orders[idx]
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snap, Event{Type: EventOrderStatusChanged, ID: orderID, Order: &order})
	return nil
}

// freshOrderIDLocked retries until the id is unused. Collisions are
// vanishingly rare at demo volumes, but the retry is cheap.
func (s *Store) freshOrderIDLocked() string {
	for {
		id := s.orderID()
		if !slices.ContainsFunc(s.orders, func(o models.Order) bool { return o.ID == id }) {
			return id
		}
	}
}

// Persistence -----------------------------------------------------------

type snapshot struct {
	products []byte
	orders   []byte
}

func (s *Store) snapshotLocked() snapshot {
	products, err := json.Marshal(s.products)
	if err != nil {
		s.log.Error("snapshot marshal failed", "key", KeyProducts, "error", err)
	}
	orders, err := json.Marshal(s.orders)
	if err != nil {
		s.log.Error("snapshot marshal failed", "key", KeyOrders, "error", err)
	}
	return snapshot{products: products, orders: orders}
}

// commit writes both collections and then notifies the sink. A persist
// failure is logged but does not undo the in-memory mutation.
func (s *Store) commit(ctx context.Context, snap snapshot, ev Event) {
	if s.persist != nil {
		if err := s.persist.Save(ctx, KeyProducts, snap.products); err != nil {
			s.log.Error("snapshot save failed", "key", KeyProducts, "error", err)
		}
		if err := s.persist.Save(ctx, KeyOrders, snap.orders); err != nil {
			s.log.Error("snapshot save failed", "key", KeyOrders, "error", err)
		}
	}
	if s.sink != nil {
		s.sink.Publish(ctx, ev)
	}
}

const orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOrderID returns an id like ORD-7K2M9QX4.
func NewOrderID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand does not fail on supported platforms
	}
	for i, b := range buf {
		buf[i] = orderIDAlphabet[int(b)%len(orderIDAlphabet)]
	}
	return "ORD-" + string(buf)
}
