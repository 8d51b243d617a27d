package product

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/cache"
	"github.com/google/uuid"
)

type Storer interface {
	createOne(ctx context.Context, req *CreateProductRequest) (*Product, error)
	findAll(ctx context.Context, pageOpts *PageOpts) ([]*Product, uint64, error)
	findByID(ctx context.Context, productID uuid.UUID) (*Product, error)
	updateOne(ctx context.Context, productID uuid.UUID, req *UpdateProductRequest) (*Product, error)
	deleteOne(ctx context.Context, productID uuid.UUID) error
}

type service struct {
	store    Storer
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewService(store Storer, productCache cache.Cache, cacheTTL time.Duration) *service {
	return &service{
		store:    store,
		cache:    productCache,
		cacheTTL: cacheTTL,
	}
}

func (s *service) createProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	req.Name = strings.TrimSpace(req.Name)

	newProduct, err := s.store.createOne(ctx, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, "", true)

	return newProduct, nil
}

func (s *service) getAllProducts(ctx context.Context, pageOpts *PageOpts) (*GetAllProductsResponse, error) {
	key := cache.ProductListKey(pageOpts.Page, pageOpts.Limit)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		response := new(GetAllProductsResponse)
		if err := json.Unmarshal(cached, response); err == nil {
			return response, nil
		}
		// corrupt entry; fall through and rebuild from the store
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Println("product list cache read failed:", err)
	}

	products, totalCount, err := s.store.findAll(ctx, pageOpts)
	if err != nil {
		return nil, err
	}

	totalPages := (totalCount + pageOpts.Limit - 1) / pageOpts.Limit

	response := &GetAllProductsResponse{
		Products: products,
		Pagination: Pagination{
			CurrentPage:     pageOpts.Page,
			TotalPages:      totalPages,
			TotalProducts:   totalCount,
			HasNextPage:     pageOpts.Page < totalPages,
			HasPreviousPage: pageOpts.Page > 1,
		},
	}

	s.populate(ctx, key, response)

	return response, nil
}

func (s *service) getProduct(ctx context.Context, productID uuid.UUID) (*Product, error) {
	key := cache.ProductKey(productID)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		foundProduct := new(Product)
		if err := json.Unmarshal(cached, foundProduct); err == nil {
			return foundProduct, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Println("product cache read failed:", err)
	}

	foundProduct, err := s.store.findByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.populate(ctx, key, foundProduct)

	return foundProduct, nil
}

func (s *service) updateProduct(ctx context.Context, productID uuid.UUID, req *UpdateProductRequest) (*Product, error) {
	updatedProduct, err := s.store.updateOne(ctx, productID, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.ProductKey(productID), true)

	return updatedProduct, nil
}

func (s *service) deleteProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.store.deleteOne(ctx, productID); err != nil {
		return err
	}

	s.invalidate(ctx, cache.ProductKey(productID), true)

	return nil
}

// FindByID reads the product straight from the store, bypassing the cache.
// The order workflow uses it for price snapshots and stock checks, where a
// stale cached quantity must not be trusted.
func (s *service) FindByID(ctx context.Context, productID uuid.UUID) (*Product, error) {
	return s.store.findByID(ctx, productID)
}

// InvalidateCachedProduct drops the cached entries for one product. Wired to
// stock depletion events so a near-sold-out product stops serving its stale
// cached quantity before the TTL runs out.
func (s *service) InvalidateCachedProduct(ctx context.Context, productID uuid.UUID) {
	s.invalidate(ctx, cache.ProductKey(productID), true)
}

func (s *service) populate(ctx context.Context, key string, value any) {
	serialized, err := json.Marshal(value)
	if err != nil {
		log.Println("failed to marshal value for cache:", err)
		return
	}

	// concurrent readers may race to populate the same key; last writer wins
	// and the TTL bounds any staleness
	if err := s.cache.Set(ctx, key, serialized, s.cacheTTL); err != nil {
		log.Println("failed to populate cache:", err)
	}
}

// invalidate drops the given product key (when set) and, optionally, every
// cached listing page. Failures are logged, not returned: the cache is never
// authoritative and the TTL still bounds staleness.
func (s *service) invalidate(ctx context.Context, productKey string, listings bool) {
	if productKey != "" {
		if err := s.cache.Delete(ctx, productKey); err != nil {
			log.Println("failed to invalidate product cache entry:", err)
		}
	}

	if listings {
		if err := s.cache.DeleteByPrefix(ctx, cache.ProductListPrefix); err != nil {
			log.Println("failed to invalidate product listing cache:", err)
		}
	}
}
