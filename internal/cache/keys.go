package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Cache keys are namespaced by entity type and scope so that invalidation can
// target exactly the entries a mutation makes stale.

const ProductListPrefix = "products:page:"

func ProductKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s", productID)
}

func ProductListKey(page, limit uint64) string {
	return fmt.Sprintf("%s%d:limit:%d", ProductListPrefix, page, limit)
}

func OrderKey(orderID uuid.UUID) string {
	return fmt.Sprintf("order:%s", orderID)
}

func UserOrdersKey(userID uuid.UUID) string {
	return fmt.Sprintf("orders:user:%s", userID)
}

const AllOrdersKey = "orders:all"
