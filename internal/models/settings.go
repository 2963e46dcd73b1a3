package models

import (
	"time"
)

// ShopSetting is a named numeric knob used when pricing an order.
type ShopSetting struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SettingName  string    `json:"setting_name" gorm:"uniqueIndex;not null"` // shipping_standard, shipping_express, tax_rate, ...
	Value        float64   `json:"value"`
	IsPercentage bool      `json:"is_percentage" gorm:"not null"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	SettingTaxRate = "tax_rate"
	// shipping_<delivery method>
	SettingShippingPrefix = "shipping_"
)

func ShippingSettingName(method DeliveryMethod) string {
	return SettingShippingPrefix + string(method)
}
