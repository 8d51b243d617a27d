package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem snapshots the product's price at order-creation time.
// PriceAtPurchase never changes again, no matter what happens to the product.
type OrderLineItem struct {
	ProductID       uuid.UUID       `json:"productID"`
	ProductName     string          `json:"productName"`
	Quantity        uint            `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
}

// Order is immutable after creation except for Status, which only moves
// through the transitions the state machine in status.go allows.
type Order struct {
	OrderID         uuid.UUID       `json:"orderID"`
	UserID          uuid.UUID       `json:"userID"`
	Items           []OrderLineItem `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
