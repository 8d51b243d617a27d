package event

import "github.com/google/uuid"

const StockDepletedEventName EventName = "stock.depleted"

// StockDepletedEvent is published when a product's quantity falls to or below
// its restock threshold after a reservation.
type StockDepletedEvent struct {
	ProductID uuid.UUID
	Name      string
	Remaining uint
}

func (e *StockDepletedEvent) GetEventName() EventName {
	return StockDepletedEventName
}
