package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/cache"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/features/inventory"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/features/product"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog backs both the product finder and the inventory ledger with
// one quantity map, the way the products table does in production. The
// mutex makes Reserve an atomic conditional decrement.
type fakeCatalog struct {
	mu          sync.Mutex
	products    map[uuid.UUID]*product.Product
	failRelease bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: make(map[uuid.UUID]*product.Product)}
}

func (f *fakeCatalog) add(name string, price string, quantity uint) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	productID := uuid.New()
	f.products[productID] = &product.Product{
		ProductID: productID,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Quantity:  quantity,
	}

	return productID
}

func (f *fakeCatalog) quantityOf(productID uuid.UUID) uint {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.products[productID].Quantity
}

func (f *fakeCatalog) setPrice(productID uuid.UUID, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.products[productID].Price = decimal.RequireFromString(price)
}

func (f *fakeCatalog) FindByID(_ context.Context, productID uuid.UUID) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	foundProduct, ok := f.products[productID]
	if !ok {
		return nil, servererrors.ErrProductNotFound
	}

	copied := *foundProduct
	return &copied, nil
}

func (f *fakeCatalog) Reserve(_ context.Context, productID uuid.UUID, quantity uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	foundProduct, ok := f.products[productID]
	if !ok {
		return servererrors.ErrProductNotFound
	}

	if foundProduct.Quantity < quantity {
		return &inventory.InsufficientInventoryError{
			ProductID:   productID,
			ProductName: foundProduct.Name,
		}
	}

	foundProduct.Quantity -= quantity

	return nil
}

func (f *fakeCatalog) Release(_ context.Context, productID uuid.UUID, quantity uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failRelease {
		return errors.New("release failed")
	}

	foundProduct, ok := f.products[productID]
	if !ok {
		return servererrors.ErrProductNotFound
	}

	foundProduct.Quantity += quantity

	return nil
}

type fakeOrderStore struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]*Order
	failCreate bool
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uuid.UUID]*Order)}
}

func (f *fakeOrderStore) createOne(_ context.Context, newOrder *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreate {
		return errors.New("insert failed")
	}

	newOrder.OrderID = uuid.New()
	newOrder.CreatedAt = time.Now().UTC()
	newOrder.UpdatedAt = newOrder.CreatedAt

	copied := *newOrder
	f.orders[newOrder.OrderID] = &copied

	return nil
}

func (f *fakeOrderStore) findByID(_ context.Context, orderID uuid.UUID) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	foundOrder, ok := f.orders[orderID]
	if !ok {
		return nil, servererrors.ErrOrderNotFound
	}

	copied := *foundOrder
	return &copied, nil
}

func (f *fakeOrderStore) findAllByUserID(_ context.Context, userID uuid.UUID) ([]*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var orders []*Order
	for _, o := range f.orders {
		if o.UserID == userID {
			copied := *o
			orders = append(orders, &copied)
		}
	}

	return orders, nil
}

func (f *fakeOrderStore) findAll(_ context.Context) ([]*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	orders := make([]*Order, 0, len(f.orders))
	for _, o := range f.orders {
		copied := *o
		orders = append(orders, &copied)
	}

	return orders, nil
}

func (f *fakeOrderStore) updateStatus(_ context.Context, orderID uuid.UUID, status Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	foundOrder, ok := f.orders[orderID]
	if !ok {
		return servererrors.ErrOrderNotFound
	}

	foundOrder.Status = status
	foundOrder.UpdatedAt = time.Now().UTC()

	return nil
}

func (f *fakeOrderStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.orders)
}

// fakeCache mirrors the redis cache in memory.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}

	return value, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[key] = value

	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, key := range keys {
		delete(f.entries, key)
	}

	return nil
}

func (f *fakeCache) DeleteByPrefix(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}

	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.entries[key]
	return ok
}

func (f *fakeCache) put(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[key] = []byte(`"warm"`)
}

type workflowFixture struct {
	catalog    *fakeCatalog
	orderStore *fakeOrderStore
	orderCache *fakeCache
	svc        *service
}

func newWorkflowFixture() *workflowFixture {
	catalog := newFakeCatalog()
	orderStore := newFakeOrderStore()
	orderCache := newFakeCache()

	return &workflowFixture{
		catalog:    catalog,
		orderStore: orderStore,
		orderCache: orderCache,
		svc: NewService(
			orderStore,
			catalog,
			catalog,
			orderCache,
			time.Minute,
			nil,
		),
	}
}

func placeRequest(items ...PlaceOrderItemRequest) *PlaceOrderRequest {
	return &PlaceOrderRequest{
		Items:           items,
		ShippingAddress: "1 Harbor Lane, Port Town",
		PaymentMethod:   "card",
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	fx := newWorkflowFixture()
	ctx := context.Background()
	userID := uuid.New()

	tableID := fx.catalog.add("oak table", "249.99", 10)
	chairID := fx.catalog.add("oak chair", "79.50", 5)

	// warm the caller's order-list cache so invalidation is observable
	fx.orderCache.put(cache.UserOrdersKey(userID))

	placedOrder, err := fx.svc.placeOrder(ctx, userID, placeRequest(
		PlaceOrderItemRequest{ProductID: tableID, Quantity: 2},
		PlaceOrderItemRequest{ProductID: chairID, Quantity: 5},
	))
	require.NoError(t, err)

	assert.Equal(t, StatusPending, placedOrder.Status)
	assert.Equal(t, userID, placedOrder.UserID)
	require.Len(t, placedOrder.Items, 2)

	// total = 2*249.99 + 5*79.50
	assert.True(
		t,
		placedOrder.TotalAmount.Equal(decimal.RequireFromString("897.48")),
		"got total %s",
		placedOrder.TotalAmount,
	)

	assert.Equal(t, uint(8), fx.catalog.quantityOf(tableID))
	assert.Equal(t, uint(0), fx.catalog.quantityOf(chairID))

	assert.False(t, fx.orderCache.has(cache.UserOrdersKey(userID)))
	assert.Equal(t, 1, fx.orderStore.count())
}

func TestPlaceOrderInsufficientInventoryRestoresEarlierLines(t *testing.T) {
	fx := newWorkflowFixture()
	ctx := context.Background()

	tableID := fx.catalog.add("oak table", "249.99", 10)
	chairID := fx.catalog.add("oak chair", "79.50", 3)

	_, err := fx.svc.placeOrder(ctx, uuid.New(), placeRequest(
		PlaceOrderItemRequest{ProductID: tableID, Quantity: 2},
		PlaceOrderItemRequest{ProductID: chairID, Quantity: 6},
	))
	require.ErrorIs(t, err, servererrors.ErrInsufficientInventory)
	assert.Contains(t, err.Error(), "oak chair")

	// no order, and the table reservation was compensated in full
	assert.Equal(t, 0, fx.orderStore.count())
	assert.Equal(t, uint(10), fx.catalog.quantityOf(tableID))
	assert.Equal(t, uint(3), fx.catalog.quantityOf(chairID))
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	fx := newWorkflowFixture()
	ctx := context.Background()

	tableID := fx.catalog.add("oak table", "249.99", 10)
	missingID := uuid.New()

	_, err := fx.svc.placeOrder(ctx, uuid.New(), placeRequest(
		PlaceOrderItemRequest{ProductID: tableID, Quantity: 1},
		PlaceOrderItemRequest{ProductID: missingID, Quantity: 1},
	))
	require.ErrorIs(t, err, servererrors.ErrProductNotFound)
	assert.Contains(t, err.Error(), missingID.String())

	assert.Equal(t, 0, fx.orderStore.count())
	assert.Equal(t, uint(10), fx.catalog.quantityOf(tableID))
}

func TestPlaceOrderStoreFailureCompensates(t *testing.T) {
	fx := newWorkflowFixture()
	ctx := context.Background()

	tableID := fx.catalog.add("oak table", "249.99", 10)
	fx.orderStore.failCreate = true

	_, err := fx.svc.placeOrder(ctx, uuid.New(), placeRequest(
		PlaceOrderItemRequest{ProductID: tableID, Quantity: 4},
	))
	require.Error(t, err)

	assert.Equal(t, 0, fx.orderStore.count())
	assert.Equal(t, uint(10), fx.catalog.quantityOf(tableID))
}

func TestPlaceOrderCompensationFailureSurfaces(t *testing.T) {
	fx := newWorkflowFixture()
	ctx := context.Background()

	tableID := fx.catalog.add("oak table", "249.99", 10)
	chairID := fx.catalog.add("oak chair", "79.50", 3)
	fx.catalog.failRelease = true

	_, err := fx.svc.placeOrder(ctx, uuid.New(), placeRequest(
		PlaceOrderItemRequest{ProductID: tableID, Quantity: 2},
		PlaceOrderItemRequest{ProductID: chairID, Quantity: 6},
	))

	// both the compensation failure and the original cause are reported
	require.ErrorIs(t, err, servererrors.ErrCompensationFailed)
	require.ErrorIs(t, err, servererrors.ErrInsufficientInventory)
}

func TestPriceAtPurchaseIsSnapshotted(t *testing.T) {
	fx := newWorkflowFixture()
	ctx := context.Background()

	tableID := fx.catalog.add("oak table", "249.99", 10)

	placedOrder, err := fx.svc.placeOrder(ctx, uuid.New(), placeRequest(
		PlaceOrderItemRequest{ProductID: tableID, Quantity: 1},
	))
	require.NoError(t, err)

	fx.catalog.setPrice(tableID, "999.99")

	stored, err := fx.orderStore.findByID(ctx, placedOrder.OrderID)
	require.NoError(t, err)

	assert.True(t, stored.Items[0].PriceAtPurchase.Equal(decimal.RequireFromString("249.99")))
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("249.99")))
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	fx := newWorkflowFixture()
	ctx := context.Background()

	tableID := fx.catalog.add("oak table", "249.99", 10)

	errCh := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.svc.placeOrder(ctx, uuid.New(), placeRequest(
				PlaceOrderItemRequest{ProductID: tableID, Quantity: 6},
			))
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var failures, successes int
	for err := range errCh {
		if err != nil {
			assert.ErrorIs(t, err, servererrors.ErrInsufficientInventory)
			failures++
		} else {
			successes++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)
	assert.Equal(t, uint(4), fx.catalog.quantityOf(tableID))
	assert.Equal(t, 1, fx.orderStore.count())
}

func TestUpdateStatusWorkflow(t *testing.T) {
	fx := newWorkflowFixture()
	ctx := context.Background()
	userID := uuid.New()

	tableID := fx.catalog.add("oak table", "249.99", 10)

	placedOrder, err := fx.svc.placeOrder(ctx, userID, placeRequest(
		PlaceOrderItemRequest{ProductID: tableID, Quantity: 1},
	))
	require.NoError(t, err)

	// warm every cache scope touched by status changes
	fx.orderCache.put(cache.OrderKey(placedOrder.OrderID))
	fx.orderCache.put(cache.UserOrdersKey(userID))
	fx.orderCache.put(cache.AllOrdersKey)

	updatedOrder, err := fx.svc.updateStatus(ctx, placedOrder.OrderID, &UpdateOrderStatusRequest{
		Status: "processing",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updatedOrder.Status)

	assert.False(t, fx.orderCache.has(cache.OrderKey(placedOrder.OrderID)))
	assert.False(t, fx.orderCache.has(cache.UserOrdersKey(userID)))
	// the global list entry only falls on cancellation
	assert.True(t, fx.orderCache.has(cache.AllOrdersKey))

	_, err = fx.svc.updateStatus(ctx, placedOrder.OrderID, &UpdateOrderStatusRequest{
		Status: "cancelled",
	})
	require.NoError(t, err)
	assert.False(t, fx.orderCache.has(cache.AllOrdersKey))

	// cancelled is sticky
	_, err = fx.svc.updateStatus(ctx, placedOrder.OrderID, &UpdateOrderStatusRequest{
		Status: "processing",
	})
	assert.ErrorIs(t, err, servererrors.ErrInvalidTransition)

	// but re-cancelling is an idempotent accept
	_, err = fx.svc.updateStatus(ctx, placedOrder.OrderID, &UpdateOrderStatusRequest{
		Status: "cancelled",
	})
	assert.NoError(t, err)

	_, err = fx.svc.updateStatus(ctx, placedOrder.OrderID, &UpdateOrderStatusRequest{
		Status: "banana",
	})
	assert.ErrorIs(t, err, servererrors.ErrInvalidStatus)

	_, err = fx.svc.updateStatus(ctx, uuid.New(), &UpdateOrderStatusRequest{
		Status: "processing",
	})
	assert.ErrorIs(t, err, servererrors.ErrOrderNotFound)
}

func TestGetOrderReadThrough(t *testing.T) {
	fx := newWorkflowFixture()
	ctx := context.Background()
	userID := uuid.New()

	tableID := fx.catalog.add("oak table", "249.99", 10)

	placedOrder, err := fx.svc.placeOrder(ctx, userID, placeRequest(
		PlaceOrderItemRequest{ProductID: tableID, Quantity: 1},
	))
	require.NoError(t, err)

	first, err := fx.svc.getOrder(ctx, placedOrder.OrderID)
	require.NoError(t, err)
	assert.True(t, fx.orderCache.has(cache.OrderKey(placedOrder.OrderID)))

	second, err := fx.svc.getOrder(ctx, placedOrder.OrderID)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))

	mine, err := fx.svc.getUserOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, fx.orderCache.has(cache.UserOrdersKey(userID)))

	all, err := fx.svc.getAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, fx.orderCache.has(cache.AllOrdersKey))
}
