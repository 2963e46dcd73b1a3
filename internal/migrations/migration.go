package migrations

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bonneaffaire/internal/catalog"
	"bonneaffaire/internal/config"
	"bonneaffaire/internal/models"
	"bonneaffaire/internal/repository"
	"bonneaffaire/internal/services"
)

// RunMigrations creates or updates the schema, then the default data.
func RunMigrations(ctx context.Context, db *gorm.DB, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.ShopSetting{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.TimelineEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := createDefaultData(ctx, db, cfg, logger); err != nil {
		logger.Warn("Failed to create default data", zap.Error(err))
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createDefaultData creates the admin user, the pricing settings and,
// on an empty catalog, the demo products.
func createDefaultData(ctx context.Context, db *gorm.DB, cfg *config.Config, logger *zap.Logger) error {
	userService := services.NewUserService(repository.NewUserRepository(db), logger)
	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	settingsService := services.NewSettingsService(repository.NewSettingsRepository(db))
	if err := settingsService.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to create default settings: %w", err)
	}

	if !cfg.SeedDemoCatalog {
		return nil
	}
	productRepo := repository.NewProductRepository(db)
	return SeedDemoCatalog(ctx, productRepo, services.NewProductService(productRepo, nil, 0, logger), logger)
}

// SeedDemoCatalog inserts the demo products when the catalog is empty.
func SeedDemoCatalog(ctx context.Context, productRepo repository.ProductRepository, productService services.ProductService, logger *zap.Logger) error {
	count, err := productRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := catalog.DemoProducts()
	for i := range products {
		if err := productService.CreateProduct(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed %q: %w", products[i].Name, err)
		}
	}
	logger.Info("Demo catalog seeded", zap.Int("products", len(products)))
	return nil
}
