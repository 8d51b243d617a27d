package order

import "github.com/google/uuid"

// Requests

type PlaceOrderItemRequest struct {
	ProductID uuid.UUID `json:"productID" validate:"required"`
	Quantity  uint      `json:"quantity" validate:"required,gt=0"`
}

type PlaceOrderRequest struct {
	Items           []PlaceOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string                  `json:"shippingAddress" validate:"required,min=5,max=300"`
	PaymentMethod   string                  `json:"paymentMethod" validate:"required,oneof=card cash_on_delivery bank_transfer"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
