package service

import (
	"context"
	"fmt"
	"time"

	"bihar-bazaar/internal/cache"
	"bihar-bazaar/internal/model"

	"github.com/rs/zerolog"
)

// productService implements ProductService on top of the backend catalogue.
type productService struct {
	backend  CatalogBackend
	products *cache.TTL[string, model.Product]
	pages    *cache.TTL[model.ProductFilter, []model.Product]
	logger   zerolog.Logger
}

// NewProductService creates a new product service. Responses are cached for ttl.
func NewProductService(backend CatalogBackend, ttl time.Duration, logger zerolog.Logger) ProductService {
	return &productService{
		backend:  backend,
		products: cache.NewTTL[string, model.Product](ttl),
		pages:    cache.NewTTL[model.ProductFilter, []model.Product](ttl),
		logger:   logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves a page of products.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if products, ok := s.pages.Get(filter); ok {
		return products, nil
	}

	products, err := s.backend.ListProducts(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Str("category", filter.Category).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.pages.Set(filter, products)
	for _, p := range products {
		s.products.Set(p.ID, p)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Str("category", filter.Category).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	if p, ok := s.products.Get(id); ok {
		return &p, nil
	}

	product, err := s.backend.GetProduct(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	s.products.Set(id, *product)
	return product, nil
}
