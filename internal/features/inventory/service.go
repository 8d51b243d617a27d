package inventory

import (
	"context"
	"fmt"
	"log"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/eventengine"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/eventengine/event"
	"github.com/google/uuid"
)

type storer interface {
	reserveStock(ctx context.Context, productID uuid.UUID, quantity uint) error
	releaseStock(ctx context.Context, productID uuid.UUID, quantity uint) error
	getStockLevel(ctx context.Context, productID uuid.UUID) (*stockLevel, error)
}

// service is the inventory ledger. All quantity mutations flow through it;
// the quantity column never goes negative because every decrement is
// conditional at the store level.
type service struct {
	store       storer
	eventEngine eventengine.RegisterPublisher
}

func NewService(store storer, eventEngine eventengine.RegisterPublisher) *service {
	s := &service{
		store:       store,
		eventEngine: eventEngine,
	}

	if eventEngine != nil {
		eventEngine.RegisterEvents(event.StockDepletedEventName)
	}

	return s
}

// Reserve atomically decrements the product's quantity if enough stock
// remains.
func (s *service) Reserve(ctx context.Context, productID uuid.UUID, quantity uint) error {
	if quantity == 0 {
		return fmt.Errorf("reserve quantity must be greater than zero")
	}

	return s.store.reserveStock(ctx, productID, quantity)
}

// Release restores previously reserved quantity. Used by the order workflow
// to compensate earlier reservations when a later line item fails.
func (s *service) Release(ctx context.Context, productID uuid.UUID, quantity uint) error {
	if quantity == 0 {
		return nil
	}

	return s.store.releaseStock(ctx, productID, quantity)
}

// checkRestockLevel publishes a depletion event when the product's quantity
// has fallen to or below its restock threshold. Called after order
// placements commit, not per reservation, so aborted orders never alert.
func (s *service) checkRestockLevel(ctx context.Context, productID uuid.UUID) error {
	level, err := s.store.getStockLevel(ctx, productID)
	if err != nil {
		return err
	}

	if level.quantity > level.restockThreshold {
		return nil
	}

	depleted := &event.StockDepletedEvent{
		ProductID: productID,
		Name:      level.productName,
		Remaining: level.quantity,
	}

	if s.eventEngine == nil {
		return nil
	}

	if err := s.eventEngine.Publish(
		&event.Event{
			Name:    depleted.GetEventName(),
			Payload: depleted,
		},
	); err != nil {
		log.Println("failed to publish stock depleted event:", err)
	}

	return nil
}
