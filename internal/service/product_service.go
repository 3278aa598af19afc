package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"checkout-service/internal/apperr"
	"checkout-service/internal/models"
	"checkout-service/internal/redisclient"
	"checkout-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// AllProductsCacheKey holds the JSON-encoded product listing
	AllProductsCacheKey = "all_products"

	// DefaultProductCacheTTL is how long a cached listing is served
	DefaultProductCacheTTL = 3600 * time.Second

	cacheWriteTimeout = 5 * time.Second
)

// ProductService serves the catalog: cache-aside listing, write-through creation
type ProductService struct {
	store  ProductStore
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewProductService creates a new product service. A non-positive ttl selects
// DefaultProductCacheTTL.
func NewProductService(store ProductStore, cache Cache, ttl time.Duration) *ProductService {
	if ttl <= 0 {
		ttl = DefaultProductCacheTTL
	}
	return &ProductService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required,gt=0"`
	StockLevel  *int            `json:"stockLevel" binding:"required,gte=0"`
}

// GetAllProducts returns every product, from the cache when possible
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.GetAllProducts")
	defer span.End()

	if products, ok := s.cachedProducts(ctx); ok {
		return products, nil
	}

	done := observeStore("get_products")
	products, err := s.store.GetProducts(ctx)
	done()
	if err != nil {
		return nil, apperr.Internal("failed to load products", err)
	}

	s.cacheProductsAsync(products)
	return products, nil
}

// cachedProducts reads the listing from the cache. Any failure, including a
// corrupt entry, is reported as a miss so the caller falls back to the store.
func (s *ProductService) cachedProducts(ctx context.Context) ([]models.Product, bool) {
	cached, err := s.cache.Get(ctx, AllProductsCacheKey)
	if err != nil {
		if errors.Is(err, redisclient.ErrCacheMiss) {
			util.ProductCacheRequestsTotal.WithLabelValues("miss").Inc()
		} else {
			util.ProductCacheRequestsTotal.WithLabelValues("error").Inc()
			s.logger.Warn("Product cache unavailable, reading from store", zap.Error(err))
		}
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(cached), &products); err != nil {
		util.ProductCacheRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}

	util.ProductCacheRequestsTotal.WithLabelValues("hit").Inc()
	return products, true
}

// cacheProductsAsync writes the listing without holding up the response.
// The payload is encoded before returning so later changes to products do not leak in.
func (s *ProductService) cacheProductsAsync(products []models.Product) {
	payload, err := json.Marshal(products)
	if err != nil {
		util.ProductCacheWriteFailuresTotal.Inc()
		s.logger.Warn("Failed to marshal product list for cache", zap.Error(err))
		return
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := s.cache.Set(bgCtx, AllProductsCacheKey, string(payload), s.ttl); err != nil {
			util.ProductCacheWriteFailuresTotal.Inc()
			s.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// CreateProduct persists a new product. The cached listing is left as is and
// may lag behind for up to the cache TTL.
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.CreateProduct")
	defer span.End()

	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		StockLevel:  *req.StockLevel,
	}

	done := observeStore("create_product")
	err := s.store.CreateProduct(ctx, product)
	done()
	if err != nil {
		return nil, apperr.Internal("failed to create product", err)
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created", zap.Int64("product_id", product.ID))
	return product, nil
}

func validateProduct(req *CreateProductRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return apperr.Validation("Name is required")
	case strings.TrimSpace(req.Description) == "":
		return apperr.Validation("Description is required")
	case req.StockLevel == nil || *req.StockLevel < 0:
		return apperr.Validation("Stock level must be a non-negative integer")
	}
	return checkMoney("Price", req.Price)
}
