package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bonneaffaire/internal/models"
	"bonneaffaire/pkg/apperrors"
)

func TestShippingAndTax_Defaults(t *testing.T) {
	svc := NewSettingsService(newFakeSettingsRepo())
	ctx := context.Background()

	shipping, tax, err := svc.ShippingAndTax(ctx, models.DeliveryStandard, 250)
	require.NoError(t, err)
	assert.Zero(t, shipping)
	assert.Zero(t, tax)

	shipping, _, err = svc.ShippingAndTax(ctx, models.DeliveryExpress, 250)
	require.NoError(t, err)
	assert.Equal(t, 29.9, shipping)
}

func TestShippingAndTax_StoredSettings(t *testing.T) {
	repo := newFakeSettingsRepo(
		models.ShopSetting{SettingName: "shipping_standard", Value: 9.9, IsActive: true},
		models.ShopSetting{SettingName: "tax_rate", Value: 5.5, IsPercentage: true, IsActive: true},
	)
	svc := NewSettingsService(repo)

	shipping, tax, err := svc.ShippingAndTax(context.Background(), models.DeliveryStandard, 99.99)
	require.NoError(t, err)
	assert.Equal(t, 9.9, shipping)
	assert.Equal(t, 5.5, tax)
}

func TestShippingAndTax_RepositoryError(t *testing.T) {
	repo := newFakeSettingsRepo()
	repo.err = errors.New("db down")

	_, _, err := NewSettingsService(repo).ShippingAndTax(context.Background(), models.DeliveryStandard, 10)
	assert.EqualError(t, err, "db down")
}

func TestSettings_SetAndEnsureDefaults(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "shipping_express", 19.9, false))
	require.NoError(t, svc.EnsureDefaults(ctx))
	require.NoError(t, svc.EnsureDefaults(ctx))

	settings, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, len(DefaultSettings))
	assert.Equal(t, 19.9, repo.settings["shipping_express"].Value)

	assert.True(t, apperrors.IsValidation(svc.Set(ctx, "tax_rate", -1, true)))
}

func TestUserService(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "contact@bonneaffaire78.fr", "admin123"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "contact@bonneaffaire78.fr", "other-password"))
	assert.Len(t, repo.users, 1)
	assert.NotEqual(t, "admin123", repo.users["admin"].PasswordHash)

	user, err := svc.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, string(models.SuperAdmin), user.Role)

	_, err = svc.Authenticate(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	repo.users["admin"].IsActive = false
	_, err = svc.Authenticate(ctx, "admin", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.CreateUser(ctx, "", "nope", "short", models.Admin)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}
