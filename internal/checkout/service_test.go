package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/gostorefront/shop-api/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockStore implements Store and TxStore in memory and records every write so
// tests can assert on side effects and rollback behavior.
type mockStore struct {
	snapshot    *CartSnapshot
	snapshotErr error

	// stock per product backs DecrementStock with real conditional semantics
	stock map[string]int

	decrements    []string
	insertedOrder *orders.Order
	deletedCart   string
	committed     bool
	rolledBack    bool
}

func intPtr(v int) *int { return &v }

func (m *mockStore) WithinTx(ctx context.Context, fn func(tx TxStore) error) error {
	// snapshot state so a failed fn leaves the visible store untouched
	before := make(map[string]int, len(m.stock))
	for k, v := range m.stock {
		before[k] = v
	}
	if err := fn(m); err != nil {
		m.stock = before
		m.decrements = nil
		m.insertedOrder = nil
		m.deletedCart = ""
		m.rolledBack = true
		return err
	}
	m.committed = true
	return nil
}

func (m *mockStore) CartSnapshot(ctx context.Context, userID string) (*CartSnapshot, error) {
	return m.snapshot, m.snapshotErr
}

func (m *mockStore) DecrementStock(ctx context.Context, productID string, qty int) (int64, error) {
	cur, ok := m.stock[productID]
	if !ok || cur < qty {
		return 0, nil
	}
	m.stock[productID] = cur - qty
	m.decrements = append(m.decrements, productID)
	return 1, nil
}

func (m *mockStore) InsertOrder(ctx context.Context, userID string, totalCents int, lines []OrderLine) (*orders.Order, error) {
	o := &orders.Order{ID: "order-1", UserID: userID, TotalCents: totalCents}
	for _, l := range lines {
		o.Items = append(o.Items, orders.OrderItem{
			OrderID: o.ID, ProductID: l.ProductID, Qty: l.Qty, PriceCents: l.PriceCents,
		})
	}
	m.insertedOrder = o
	return o, nil
}

func (m *mockStore) DeleteCartItems(ctx context.Context, cartID string) error {
	m.deletedCart = cartID
	return nil
}

func newTestService(store Store) *Service {
	return NewService(store, zap.NewNop())
}

func TestCheckout_Success(t *testing.T) {
	store := &mockStore{
		snapshot: &CartSnapshot{
			CartID: "cart-1",
			Lines: []CartLine{
				{ProductID: "p1", Name: "Jeans", Qty: 2, PriceCents: 1200, Stock: intPtr(5)},
				{ProductID: "p2", Name: "Shirt", Qty: 1, PriceCents: 1000, Stock: intPtr(3)},
			},
		},
		stock: map[string]int{"p1": 5, "p2": 3},
	}

	order, err := newTestService(store).Checkout(context.Background(), "user-1")

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, 2*1200+1000, order.TotalCents)
	assert.Len(t, order.Items, 2)
	assert.True(t, store.committed)
	assert.Equal(t, 3, store.stock["p1"])
	assert.Equal(t, 2, store.stock["p2"])
	assert.Equal(t, "cart-1", store.deletedCart)
}

func TestCheckout_EmptyCart(t *testing.T) {
	for name, snap := range map[string]*CartSnapshot{
		"no cart":    nil,
		"zero items": {CartID: "cart-1"},
	} {
		t.Run(name, func(t *testing.T) {
			store := &mockStore{snapshot: snap, stock: map[string]int{}}

			order, err := newTestService(store).Checkout(context.Background(), "user-1")

			require.ErrorIs(t, err, ErrEmptyCart)
			assert.Nil(t, order)
			assert.False(t, store.committed)
			assert.Empty(t, store.decrements)
		})
	}
}

func TestCheckout_EmptyCartIsRepeatable(t *testing.T) {
	store := &mockStore{snapshot: nil, stock: map[string]int{"p1": 5}}
	svc := newTestService(store)

	_, err1 := svc.Checkout(context.Background(), "user-1")
	_, err2 := svc.Checkout(context.Background(), "user-1")

	require.ErrorIs(t, err1, ErrEmptyCart)
	require.ErrorIs(t, err2, ErrEmptyCart)
	assert.Equal(t, 5, store.stock["p1"])
}

func TestCheckout_InventoryMissing(t *testing.T) {
	store := &mockStore{
		snapshot: &CartSnapshot{
			CartID: "cart-1",
			Lines: []CartLine{
				{ProductID: "p1", Qty: 1, PriceCents: 1200, Stock: intPtr(5)},
				{ProductID: "p2", Qty: 1, PriceCents: 1000, Stock: nil},
			},
		},
		stock: map[string]int{"p1": 5},
	}

	_, err := newTestService(store).Checkout(context.Background(), "user-1")

	var inv *InventoryMissingError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "p2", inv.ProductID)
	assert.False(t, store.committed)
	assert.Equal(t, 5, store.stock["p1"], "validation must not write")
}

func TestCheckout_InsufficientStock(t *testing.T) {
	store := &mockStore{
		snapshot: &CartSnapshot{
			CartID: "cart-1",
			Lines: []CartLine{
				{ProductID: "p1", Qty: 10, PriceCents: 1200, Stock: intPtr(5)},
			},
		},
		stock: map[string]int{"p1": 5},
	}

	_, err := newTestService(store).Checkout(context.Background(), "user-1")

	var ins *InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, "p1", ins.ProductID)
	assert.Equal(t, 10, ins.Requested)
	assert.Equal(t, 5, ins.Available)
	assert.Equal(t, 5, store.stock["p1"])
	assert.Nil(t, store.insertedOrder)
}

func TestCheckout_StockConflictRollsBackPriorDecrements(t *testing.T) {
	// Snapshot said p2 had stock, but by decrement time it is gone: the
	// conditional update affects zero rows and the p1 decrement must be
	// rolled back with it.
	store := &mockStore{
		snapshot: &CartSnapshot{
			CartID: "cart-1",
			Lines: []CartLine{
				{ProductID: "p1", Qty: 2, PriceCents: 1200, Stock: intPtr(5)},
				{ProductID: "p2", Qty: 3, PriceCents: 1000, Stock: intPtr(3)},
			},
		},
		stock: map[string]int{"p1": 5, "p2": 1},
	}

	_, err := newTestService(store).Checkout(context.Background(), "user-1")

	var cf *StockConflictError
	require.ErrorAs(t, err, &cf)
	assert.Equal(t, "p2", cf.ProductID)
	assert.True(t, store.rolledBack)
	assert.Equal(t, 5, store.stock["p1"], "p1 decrement rolled back")
	assert.Equal(t, 1, store.stock["p2"])
	assert.Nil(t, store.insertedOrder)
	assert.Empty(t, store.deletedCart)
}

func TestCheckout_SnapshotErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	store := &mockStore{snapshotErr: boom, stock: map[string]int{}}

	_, err := newTestService(store).Checkout(context.Background(), "user-1")

	require.ErrorIs(t, err, boom)
	assert.False(t, store.committed)
}
