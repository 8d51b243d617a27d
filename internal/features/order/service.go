package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/cache"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/eventengine"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/eventengine/event"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/features/inventory"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/features/product"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Storer interface {
	createOne(ctx context.Context, newOrder *Order) error
	findByID(ctx context.Context, orderID uuid.UUID) (*Order, error)
	findAllByUserID(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	findAll(ctx context.Context) ([]*Order, error)
	updateStatus(ctx context.Context, orderID uuid.UUID, status Status) error
}

// ledger is the inventory capability the workflow reserves and restores
// stock through. Reserve is atomic and conditional at the store level.
type ledger interface {
	Reserve(ctx context.Context, productID uuid.UUID, quantity uint) error
	Release(ctx context.Context, productID uuid.UUID, quantity uint) error
}

type productFinder interface {
	FindByID(ctx context.Context, productID uuid.UUID) (*product.Product, error)
}

type service struct {
	store       Storer
	ledger      ledger
	products    productFinder
	cache       cache.Cache
	cacheTTL    time.Duration
	eventEngine eventengine.RegisterPublisher
}

func NewService(
	store Storer,
	inventoryLedger ledger,
	products productFinder,
	orderCache cache.Cache,
	cacheTTL time.Duration,
	eventEngine eventengine.RegisterPublisher,
) *service {
	s := &service{
		store:       store,
		ledger:      inventoryLedger,
		products:    products,
		cache:       orderCache,
		cacheTTL:    cacheTTL,
		eventEngine: eventEngine,
	}

	if eventEngine != nil {
		eventEngine.RegisterEvents(event.OrderPlacedEventName)
	}

	return s
}

// placeOrder runs the placement workflow: each line item is validated and
// reserved sequentially in request order, prices are snapshotted, then the
// order is persisted and the caller's order-list cache entry is dropped.
//
// There is no multi-document transaction around the reservations, so a
// failure part way through compensates every line already reserved before
// reporting the original error. If a compensating increment itself fails the
// inventory is genuinely inconsistent; that is logged loudly and surfaced as
// a compensation failure joined with the original cause.
func (s *service) placeOrder(ctx context.Context, userID uuid.UUID, req *PlaceOrderRequest) (*Order, error) {
	items := make([]OrderLineItem, 0, len(req.Items))
	reserved := make([]PlaceOrderItemRequest, 0, len(req.Items))
	totalAmount := decimal.Zero

	for _, line := range req.Items {
		foundProduct, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, servererrors.ErrProductNotFound) {
				err = fmt.Errorf(
					"product %s not found: %w",
					line.ProductID,
					servererrors.ErrProductNotFound,
				)
			}

			return nil, s.abortPlacement(ctx, reserved, err)
		}

		// advisory early check; the ledger's atomic decrement below is the
		// final authority under concurrency
		if line.Quantity > foundProduct.Quantity {
			return nil, s.abortPlacement(
				ctx,
				reserved,
				&inventory.InsufficientInventoryError{
					ProductID:   foundProduct.ProductID,
					ProductName: foundProduct.Name,
				},
			)
		}

		if err := s.ledger.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, s.abortPlacement(ctx, reserved, err)
		}
		reserved = append(reserved, line)

		items = append(items, OrderLineItem{
			ProductID:       foundProduct.ProductID,
			ProductName:     foundProduct.Name,
			Quantity:        line.Quantity,
			PriceAtPurchase: foundProduct.Price,
		})

		lineTotal := foundProduct.Price.Mul(
			decimal.NewFromInt(int64(line.Quantity)),
		)
		totalAmount = totalAmount.Add(lineTotal)
	}

	newOrder := &Order{
		UserID:          userID,
		Items:           items,
		TotalAmount:     totalAmount,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          StatusPending,
	}

	if err := s.store.createOne(ctx, newOrder); err != nil {
		return nil, s.abortPlacement(ctx, reserved, err)
	}

	// awaited before the response so the caller's next read cannot see a
	// pre-placement order list
	s.invalidate(ctx, cache.UserOrdersKey(userID))

	s.publishOrderPlaced(newOrder)

	return newOrder, nil
}

// abortPlacement issues compensating increments for every line reserved
// before the failure and hands back the error to report. A failed
// compensation is a real inventory inconsistency that needs manual
// reconciliation, so it is logged at high severity and joined to the cause.
func (s *service) abortPlacement(ctx context.Context, reserved []PlaceOrderItemRequest, cause error) error {
	if len(reserved) == 0 {
		return cause
	}

	// compensation must run even when the request context is already
	// cancelled or past its deadline
	ctx, cancel := context.WithTimeout(
		context.WithoutCancel(ctx),
		(10 * time.Second),
	)
	defer cancel()

	var compensationFailed bool
	for _, line := range reserved {
		if err := s.ledger.Release(ctx, line.ProductID, line.Quantity); err != nil {
			compensationFailed = true
			log.Printf(
				"SEVERE: inventory inconsistency: failed to restore %d units of product %s after aborted order: %v\n",
				line.Quantity,
				line.ProductID,
				err,
			)
		}
	}

	if compensationFailed {
		return errors.Join(servererrors.ErrCompensationFailed, cause)
	}

	return cause
}

// updateStatus validates the transition against the state machine, persists
// it and invalidates every cache entry the change makes stale. The global
// order-list entry is only dropped when an order lands on cancelled.
func (s *service) updateStatus(ctx context.Context, orderID uuid.UUID, req *UpdateOrderStatusRequest) (*Order, error) {
	next := Status(req.Status)

	if !next.IsValid() {
		return nil, &InvalidStatusError{Status: next}
	}

	foundOrder, err := s.store.findByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := ValidateTransition(foundOrder.Status, next); err != nil {
		return nil, err
	}

	if err := s.store.updateStatus(ctx, orderID, next); err != nil {
		return nil, err
	}

	foundOrder.Status = next
	foundOrder.UpdatedAt = time.Now().UTC()

	staleKeys := []string{
		cache.OrderKey(orderID),
		cache.UserOrdersKey(foundOrder.UserID),
	}
	if next == StatusCancelled {
		staleKeys = append(staleKeys, cache.AllOrdersKey)
	}
	s.invalidate(ctx, staleKeys...)

	return foundOrder, nil
}

func (s *service) getOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	key := cache.OrderKey(orderID)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		foundOrder := new(Order)
		if err := json.Unmarshal(cached, foundOrder); err == nil {
			return foundOrder, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Println("order cache read failed:", err)
	}

	foundOrder, err := s.store.findByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.populate(ctx, key, foundOrder)

	return foundOrder, nil
}

func (s *service) getUserOrders(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return s.getOrderList(
		ctx,
		cache.UserOrdersKey(userID),
		func(ctx context.Context) ([]*Order, error) {
			return s.store.findAllByUserID(ctx, userID)
		},
	)
}

func (s *service) getAllOrders(ctx context.Context) ([]*Order, error) {
	return s.getOrderList(
		ctx,
		cache.AllOrdersKey,
		s.store.findAll,
	)
}

func (s *service) getOrderList(
	ctx context.Context,
	key string,
	load func(ctx context.Context) ([]*Order, error),
) ([]*Order, error) {
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var orders []*Order
		if err := json.Unmarshal(cached, &orders); err == nil {
			return orders, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Println("order list cache read failed:", err)
	}

	orders, err := load(ctx)
	if err != nil {
		return nil, err
	}

	s.populate(ctx, key, orders)

	return orders, nil
}

func (s *service) publishOrderPlaced(placedOrder *Order) {
	if s.eventEngine == nil {
		return
	}

	placedItems := make([]event.PlacedLineItem, len(placedOrder.Items))
	for i, item := range placedOrder.Items {
		placedItems[i] = event.PlacedLineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	placed := &event.OrderPlacedEvent{
		OrderID: placedOrder.OrderID,
		UserID:  placedOrder.UserID,
		Items:   placedItems,
	}

	if err := s.eventEngine.Publish(
		&event.Event{
			Name:    placed.GetEventName(),
			Payload: placed,
		},
	); err != nil {
		log.Println("failed to publish order placed event:", err)
	}
}

func (s *service) populate(ctx context.Context, key string, value any) {
	serialized, err := json.Marshal(value)
	if err != nil {
		log.Println("failed to marshal value for cache:", err)
		return
	}

	if err := s.cache.Set(ctx, key, serialized, s.cacheTTL); err != nil {
		log.Println("failed to populate cache:", err)
	}
}

func (s *service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		// the TTL still bounds staleness, but this must not be silent
		log.Println("failed to invalidate order cache entries:", err)
	}
}
