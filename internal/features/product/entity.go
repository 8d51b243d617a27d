package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ProductID        uuid.UUID       `json:"productID"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Quantity         uint            `json:"quantity"`
	Image            string          `json:"image"`
	RestockThreshold uint            `json:"-"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"-"`
}
