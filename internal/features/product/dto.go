package product

// Requests

type CreateProductRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=120"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity uint    `json:"quantity"`
	Image    string  `json:"image" validate:"omitempty,url"`
}

// UpdateProductRequest carries the only fields an admin may change. Absent
// fields are left untouched.
type UpdateProductRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Quantity *uint    `json:"quantity"`
	Image    *string  `json:"image" validate:"omitempty,url"`
}

type PageOpts struct {
	Page  uint64 `json:"page" validate:"min=1"`
	Limit uint64 `json:"limit" validate:"min=1,max=100"`
}

// Responses

type Pagination struct {
	CurrentPage     uint64 `json:"currentPage"`
	TotalPages      uint64 `json:"totalPages"`
	TotalProducts   uint64 `json:"totalProducts"`
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
}

type GetAllProductsResponse struct {
	Products   []*Product `json:"products"`
	Pagination Pagination `json:"pagination"`
}
