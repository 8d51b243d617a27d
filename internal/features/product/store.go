package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *store {
	return &store{
		db: db,
	}
}

func (s *store) createOne(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	query := `INSERT INTO products(name, price, quantity, image)
		VALUES($1, $2, $3, $4)
		RETURNING product_id, name, price, quantity, image, restock_threshold, created_at, updated_at`

	newProduct := new(Product)
	err := s.db.QueryRowContext(
		ctx,
		query,
		req.Name,
		decimal.NewFromFloat(req.Price),
		req.Quantity,
		req.Image,
	).Scan(
		&newProduct.ProductID,
		&newProduct.Name,
		&newProduct.Price,
		&newProduct.Quantity,
		&newProduct.Image,
		&newProduct.RestockThreshold,
		&newProduct.CreatedAt,
		&newProduct.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, servererrors.ErrProductAlreadyExists
		}

		return nil, fmt.Errorf(
			"failed to insert new product in product store: %w",
			err,
		)
	}

	return newProduct, nil
}

func (s *store) findAll(ctx context.Context, pageOpts *PageOpts) (products []*Product, count uint64, err error) {
	err = s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM products`,
	).Scan(&count)
	if err != nil {
		return nil, 0, fmt.Errorf(
			"failed to get all products count from product store: %w",
			err,
		)
	}

	query := `SELECT product_id, name, price, quantity, image, restock_threshold, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(
		ctx,
		query,
		pageOpts.Limit,
		(pageOpts.Page-1)*pageOpts.Limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf(
			"failed to get all products from product store: %w",
			err,
		)
	}
	defer rows.Close()

	for rows.Next() {
		foundProduct := new(Product)
		if err := scanRowIntoProduct(rows, foundProduct); err != nil {
			return nil, 0, fmt.Errorf(
				"failed to scan product from product store: %w",
				err,
			)
		}
		products = append(products, foundProduct)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

func (s *store) findByID(ctx context.Context, productID uuid.UUID) (*Product, error) {
	query := `SELECT product_id, name, price, quantity, image, restock_threshold, created_at, updated_at
		FROM products WHERE product_id = $1`

	foundProduct := new(Product)
	err := s.db.QueryRowContext(ctx, query, productID).Scan(
		&foundProduct.ProductID,
		&foundProduct.Name,
		&foundProduct.Price,
		&foundProduct.Quantity,
		&foundProduct.Image,
		&foundProduct.RestockThreshold,
		&foundProduct.CreatedAt,
		&foundProduct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, servererrors.ErrProductNotFound
		}

		return nil, fmt.Errorf(
			"failed to scan product from product store: %w",
			err,
		)
	}

	return foundProduct, nil
}

// updateOne applies only the fields present in the request.
func (s *store) updateOne(ctx context.Context, productID uuid.UUID, req *UpdateProductRequest) (*Product, error) {
	setClauses := []string{}
	queryParams := []any{productID}

	addClause := func(column string, value any) {
		queryParams = append(queryParams, value)
		setClauses = append(
			setClauses,
			fmt.Sprintf("%s = $%d", column, len(queryParams)),
		)
	}

	if req.Name != nil {
		addClause("name", *req.Name)
	}

	if req.Price != nil {
		addClause("price", decimal.NewFromFloat(*req.Price))
	}

	if req.Quantity != nil {
		addClause("quantity", *req.Quantity)
	}

	if req.Image != nil {
		addClause("image", *req.Image)
	}

	if len(setClauses) == 0 {
		return s.findByID(ctx, productID)
	}

	query := fmt.Sprintf(
		`UPDATE products SET %s, updated_at = NOW() WHERE product_id = $1
			RETURNING product_id, name, price, quantity, image, restock_threshold, created_at, updated_at`,
		strings.Join(setClauses, ", "),
	)

	updatedProduct := new(Product)
	err := s.db.QueryRowContext(ctx, query, queryParams...).Scan(
		&updatedProduct.ProductID,
		&updatedProduct.Name,
		&updatedProduct.Price,
		&updatedProduct.Quantity,
		&updatedProduct.Image,
		&updatedProduct.RestockThreshold,
		&updatedProduct.CreatedAt,
		&updatedProduct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, servererrors.ErrProductNotFound
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, servererrors.ErrProductAlreadyExists
		}

		return nil, fmt.Errorf(
			"failed to update product in product store: %w",
			err,
		)
	}

	return updatedProduct, nil
}

func (s *store) deleteOne(ctx context.Context, productID uuid.UUID) error {
	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM products WHERE product_id = $1`,
		productID,
	)
	if err != nil {
		return fmt.Errorf(
			"failed to delete product from product store: %w",
			err,
		)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return servererrors.ErrProductNotFound
	}

	return nil
}

func scanRowIntoProduct(rows *sql.Rows, foundProduct *Product) error {
	return rows.Scan(
		&foundProduct.ProductID,
		&foundProduct.Name,
		&foundProduct.Price,
		&foundProduct.Quantity,
		&foundProduct.Image,
		&foundProduct.RestockThreshold,
		&foundProduct.CreatedAt,
		&foundProduct.UpdatedAt,
	)
}
