package models

import (
	"github.com/google/uuid"
)

type OrderItem struct {
	ID        uint       `json:"-" gorm:"primaryKey"`
	OrderID   uuid.UUID  `json:"-" gorm:"type:uuid;index;not null"`
	Position  int        `json:"-" gorm:"not null;default:0"`
	ProductID *uuid.UUID `json:"productId,omitempty" gorm:"type:uuid;index"`
	Name      string     `json:"name" gorm:"not null" validate:"required,max=200"`
	Price     float64    `json:"price" gorm:"not null" validate:"gte=0"`
	Quantity  int        `json:"quantity" gorm:"not null" validate:"gte=1,lte=100"`
	Subtotal  float64    `json:"subtotal" gorm:"not null" validate:"gte=0"`
}
