package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"bonneaffaire/internal/models"
	"bonneaffaire/internal/repository"
	"bonneaffaire/pkg/apperrors"
)

// DefaultSettings applies whenever a setting is missing from the database.
// Standard delivery is free and prices include VAT, so a standard order costs its cart total.
var DefaultSettings = []models.ShopSetting{
	{SettingName: models.ShippingSettingName(models.DeliveryStandard), Value: 0, IsActive: true},
	{SettingName: models.ShippingSettingName(models.DeliveryExpress), Value: 29.90, IsActive: true},
	{SettingName: models.ShippingSettingName(models.DeliveryPickup), Value: 0, IsActive: true},
	{SettingName: models.ShippingSettingName(models.DeliveryAppointment), Value: 49.90, IsActive: true},
	{SettingName: models.SettingTaxRate, Value: 0, IsPercentage: true, IsActive: true},
}

type SettingsService interface {
	// ShippingAndTax prices delivery for method and the tax on subtotal.
	ShippingAndTax(ctx context.Context, method models.DeliveryMethod, subtotal float64) (shipping, tax float64, err error)
	List(ctx context.Context) ([]models.ShopSetting, error)
	Set(ctx context.Context, name string, value float64, isPercentage bool) error
	EnsureDefaults(ctx context.Context) error
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(settingsRepo repository.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

func (s *settingsService) ShippingAndTax(ctx context.Context, method models.DeliveryMethod, subtotal float64) (float64, float64, error) {
	shipping, err := s.value(ctx, models.ShippingSettingName(method))
	if err != nil {
		return 0, 0, err
	}
	rate, err := s.value(ctx, models.SettingTaxRate)
	if err != nil {
		return 0, 0, err
	}

	tax := decimal.NewFromFloat(subtotal).
		Mul(decimal.NewFromFloat(rate)).
		Div(decimal.NewFromInt(100)).
		Round(2)
	return shipping, tax.InexactFloat64(), nil
}

func (s *settingsService) List(ctx context.Context) ([]models.ShopSetting, error) {
	return s.settingsRepo.ListActive(ctx)
}

func (s *settingsService) Set(ctx context.Context, name string, value float64, isPercentage bool) error {
	if value < 0 {
		return apperrors.NewValidationError([]apperrors.FieldError{{
			Field:   "value",
			Message: "value must be at least 0",
		}})
	}
	return s.settingsRepo.Upsert(ctx, &models.ShopSetting{
		SettingName:  name,
		Value:        value,
		IsPercentage: isPercentage,
		IsActive:     true,
	})
}

func (s *settingsService) EnsureDefaults(ctx context.Context) error {
	for _, def := range DefaultSettings {
		setting := def
		if err := s.settingsRepo.CreateIfMissing(ctx, &setting); err != nil {
			return fmt.Errorf("failed to create setting %s: %w", def.SettingName, err)
		}
	}
	return nil
}

func (s *settingsService) value(ctx context.Context, name string) (float64, error) {
	setting, err := s.settingsRepo.GetSetting(ctx, name)
	if err == nil {
		return setting.Value, nil
	}
	if !apperrors.IsNotFound(err) {
		return 0, err
	}
	for _, def := range DefaultSettings {
		if def.SettingName == name {
			return def.Value, nil
		}
	}
	return 0, nil
}
