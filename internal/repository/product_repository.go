package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bonneaffaire/internal/models"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category models.ProductCategory) ([]models.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Product, error)
	Search(ctx context.Context, text string) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)

	IncrementViews(ctx context.Context, id uuid.UUID) error
	IncrementAddedToCart(ctx context.Context, id uuid.UUID) error
	IncrementPurchased(ctx context.Context, id uuid.UUID, qty int) error
	UpdateStock(ctx context.Context, id uuid.UUID, delta int) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return translateError(r.db.WithContext(ctx).Create(product).Error, "product", product.Name)
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return translateError(r.db.WithContext(ctx).Save(product).Error, "product", product.ID.String())
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "product", id.String())
	}
	return &product, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("seo_slug = ?", slug).First(&product).Error; err != nil {
		return nil, translateError(err, "product", slug)
	}
	return &product, nil
}

func (r *productRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.active(ctx).Order("created_at DESC").Find(&products).Error
	return products, translateError(err, "products", "")
}

// ListByCategory returns active products of a category, featured first then newest.
func (r *productRepository) ListByCategory(ctx context.Context, category models.ProductCategory) ([]models.Product, error) {
	var products []models.Product
	err := r.active(ctx).
		Where("category = ?", category).
		Order("featured DESC").Order("created_at DESC").
		Find(&products).Error
	return products, translateError(err, "products", "")
}

func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	query := r.active(ctx).Where("featured = ?", true).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var products []models.Product
	err := query.Find(&products).Error
	return products, translateError(err, "products", "")
}

// Search matches name, description and tags, case-insensitively.
func (r *productRepository) Search(ctx context.Context, text string) ([]models.Product, error) {
	pattern := "%" + text + "%"

	var products []models.Product
	err := r.active(ctx).
		Where("name ILIKE ? OR description ILIKE ? OR tags::text ILIKE ?", pattern, pattern, pattern).
		Order("featured DESC").Order("created_at DESC").
		Find(&products).Error
	return products, translateError(err, "products", "")
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, translateError(err, "products", "")
}

func (r *productRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.increment(ctx, id, "analytics_views", 1)
}

func (r *productRepository) IncrementAddedToCart(ctx context.Context, id uuid.UUID) error {
	return r.increment(ctx, id, "analytics_added_to_cart", 1)
}

func (r *productRepository) IncrementPurchased(ctx context.Context, id uuid.UUID, qty int) error {
	return r.increment(ctx, id, "analytics_purchased", qty)
}

// UpdateStock adds delta to the stock, flooring at zero.
func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("GREATEST(0, stock + ?)", delta))
	return r.affected(result, id)
}

func (r *productRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	return r.affected(result, id)
}

func (r *productRepository) increment(ctx context.Context, id uuid.UUID, column string, by int) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", by))
	return r.affected(result, id)
}

func (r *productRepository) affected(result *gorm.DB, id uuid.UUID) error {
	if result.Error != nil {
		return translateError(result.Error, "product", id.String())
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "product", id.String())
	}
	return nil
}

func (r *productRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("is_active = ?", true)
}
