package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"bonneaffaire/internal/catalog"
	"bonneaffaire/internal/models"
	"bonneaffaire/internal/redis"
	"bonneaffaire/internal/repository"
	"bonneaffaire/internal/validation"
	"bonneaffaire/pkg/apperrors"
)

// FeaturedLimit caps the featured list served to the storefront.
const FeaturedLimit = 12

// ProductCache is the subset of redis.Client the catalog uses.
type ProductCache interface {
	GetCache(ctx context.Context, key string, dest interface{}) error
	SetCache(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidateCache(ctx context.Context, keys ...string) error
}

type ProductQuery struct {
	Category models.ProductCategory
	Featured bool
	Search   string
}

type ProductService interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id string, changes *models.Product) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	// ViewProduct returns an active product and counts the view.
	ViewProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, query ProductQuery) ([]models.Product, error)
	RecordAddToCart(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error)
	DeactivateProduct(ctx context.Context, id string) error
}

type productService struct {
	productRepo repository.ProductRepository
	cache       ProductCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewProductService builds the catalog service. cache may be nil.
func NewProductService(productRepo repository.ProductRepository, cache ProductCache, cacheTTL time.Duration, logger *zap.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func (s *productService) CreateProduct(ctx context.Context, product *models.Product) error {
	catalog.NormalizeProduct(product, true)
	if err := validation.Struct(product); err != nil {
		return err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}

	s.logger.Info("product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	s.invalidate(ctx)
	return nil
}

// UpdateProduct replaces the editable fields of a product. Analytics are kept, and
// so is the slug when changes carries none.
func (s *productService) UpdateProduct(ctx context.Context, id string, changes *models.Product) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	nameChanged := strings.TrimSpace(changes.Name) != product.Name
	slug := product.SEO.Slug
	if changes.SEO.Slug != nil {
		slug = changes.SEO.Slug
	}

	product.Name = changes.Name
	product.Description = changes.Description
	product.Category = changes.Category
	product.Price = changes.Price
	product.OldPrice = changes.OldPrice
	product.Images = changes.Images
	product.Specifications = changes.Specifications
	product.Stock = changes.Stock
	product.IsActive = changes.IsActive
	product.Featured = changes.Featured
	product.Tags = changes.Tags
	product.SEO = changes.SEO
	product.SEO.Slug = slug

	catalog.NormalizeProduct(product, nameChanged)
	if err := validation.Struct(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product updated", zap.String("product_id", product.ID.String()))
	s.invalidate(ctx)
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, productID)
}

func (s *productService) ViewProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, &apperrors.NotFoundError{Resource: "product", ID: id}
	}

	if err := s.productRepo.IncrementViews(ctx, product.ID); err != nil {
		s.logger.Warn("failed to count product view", zap.String("product_id", id), zap.Error(err))
	} else {
		product.Analytics.Views++
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, query ProductQuery) ([]models.Product, error) {
	query.Category = models.ProductCategory(strings.ToLower(strings.TrimSpace(string(query.Category))))
	query.Search = strings.TrimSpace(query.Search)

	switch {
	case query.Search != "":
		return s.productRepo.Search(ctx, query.Search)
	case query.Category != "":
		if !query.Category.IsValid() {
			return nil, apperrors.NewValidationError([]apperrors.FieldError{{
				Field:   "category",
				Message: "category: invalid value \"" + string(query.Category) + "\"",
			}})
		}
		return s.productRepo.ListByCategory(ctx, query.Category)
	case query.Featured:
		return s.featured(ctx)
	}
	return s.productRepo.ListActive(ctx)
}

func (s *productService) RecordAddToCart(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.productRepo.IncrementAddedToCart(ctx, productID)
}

func (s *productService) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.UpdateStock(ctx, productID, delta); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.productRepo.GetByID(ctx, productID)
}

func (s *productService) DeactivateProduct(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Deactivate(ctx, productID); err != nil {
		return err
	}
	s.logger.Info("product deactivated", zap.String("product_id", id))
	s.invalidate(ctx)
	return nil
}

func (s *productService) featured(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		var cached []models.Product
		err := s.cache.GetCache(ctx, redis.FeaturedProductsKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("featured cache read failed", zap.Error(err))
		}
	}

	products, err := s.productRepo.ListFeatured(ctx, FeaturedLimit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCache(ctx, redis.FeaturedProductsKey, products, s.cacheTTL); err != nil {
			s.logger.Warn("featured cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

func (s *productService) invalidate(ctx context.Context) {
	invalidateFeatured(ctx, s.cache, s.logger)
}

// invalidateFeatured drops the cached featured list. cache may be nil.
func invalidateFeatured(ctx context.Context, cache ProductCache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateCache(ctx, redis.FeaturedProductsKey); err != nil {
		logger.Warn("featured cache invalidation failed", zap.Error(err))
	}
}
