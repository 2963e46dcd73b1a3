package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bonneaffaire/internal/models"
)

type SettingsRepository interface {
	GetSetting(ctx context.Context, settingName string) (*models.ShopSetting, error)
	ListActive(ctx context.Context) ([]models.ShopSetting, error)
	// Upsert creates the setting or overwrites the one with the same name.
	Upsert(ctx context.Context, setting *models.ShopSetting) error
	// CreateIfMissing leaves an existing setting untouched.
	CreateIfMissing(ctx context.Context, setting *models.ShopSetting) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetSetting(ctx context.Context, settingName string) (*models.ShopSetting, error) {
	var setting models.ShopSetting
	err := r.db.WithContext(ctx).
		Where("setting_name = ? AND is_active = ?", settingName, true).
		First(&setting).Error
	if err != nil {
		return nil, translateError(err, "setting", settingName)
	}
	return &setting, nil
}

func (r *settingsRepository) ListActive(ctx context.Context) ([]models.ShopSetting, error) {
	var settings []models.ShopSetting
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("setting_name").Find(&settings).Error
	return settings, translateError(err, "settings", "")
}

func (r *settingsRepository) Upsert(ctx context.Context, setting *models.ShopSetting) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "is_percentage", "is_active", "updated_at"}),
	}).Create(setting).Error
	return translateError(err, "setting", setting.SettingName)
}

func (r *settingsRepository) CreateIfMissing(ctx context.Context, setting *models.ShopSetting) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_name"}},
		DoNothing: true,
	}).Create(setting).Error
	return translateError(err, "setting", setting.SettingName)
}
