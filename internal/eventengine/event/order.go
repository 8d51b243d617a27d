package event

import "github.com/google/uuid"

const OrderPlacedEventName EventName = "order.placed"

type PlacedLineItem struct {
	ProductID uuid.UUID
	Quantity  uint
}

// OrderPlacedEvent is published by the order feature after a placement
// committed. Subscribers must not assume the products still hold the
// quantities they reserved.
type OrderPlacedEvent struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
	Items   []PlacedLineItem
}

func (e *OrderPlacedEvent) GetEventName() EventName {
	return OrderPlacedEventName
}
