package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderNumber string          `json:"orderNumber" gorm:"uniqueIndex;not null"`
	Customer    Customer        `json:"customer" gorm:"embedded;embeddedPrefix:customer_"`
	Items       []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" validate:"required,min=1,dive"`
	Totals      Totals          `json:"totals" gorm:"embedded;embeddedPrefix:totals_"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending';index" validate:"oneof=pending confirmed preparing shipped delivered cancelled refunded"`
	Payment     Payment         `json:"payment" gorm:"embedded;embeddedPrefix:payment_"`
	Delivery    Delivery        `json:"delivery" gorm:"embedded;embeddedPrefix:delivery_"`
	Notes       Notes           `json:"notes" gorm:"embedded;embeddedPrefix:notes_"`
	Timeline    []TimelineEntry `json:"timeline" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type Customer struct {
	FirstName string  `json:"firstName" validate:"required,max=50"`
	LastName  string  `json:"lastName" validate:"required,max=50"`
	Email     string  `json:"email" gorm:"index" validate:"required,looseemail"`
	Phone     string  `json:"phone" validate:"required,loosephone"`
	Address   Address `json:"address" gorm:"embedded;embeddedPrefix:address_"`
}

type Address struct {
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,postalcode5"`
	Country    string `json:"country" validate:"max=50"`
}

type Totals struct {
	Subtotal float64 `json:"subtotal" validate:"gte=0"`
	Shipping float64 `json:"shipping" validate:"gte=0"`
	Tax      float64 `json:"tax" validate:"gte=0"`
	Discount float64 `json:"discount" validate:"gte=0"`
	Total    float64 `json:"total" validate:"gte=0"`
}

type Payment struct {
	Method        PaymentMethod `json:"method" gorm:"type:varchar(20)" validate:"required,oneof=card paypal bank_transfer 3x_payment cash"`
	Status        PaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending'" validate:"oneof=pending processing paid failed cancelled refunded"`
	TransactionID string        `json:"transactionId,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
	Amount        *float64      `json:"amount,omitempty"`
}

type Delivery struct {
	Method         DeliveryMethod  `json:"method" gorm:"type:varchar(20);default:'standard'" validate:"oneof=standard express pickup appointment"`
	EstimatedDate  *time.Time      `json:"estimatedDate,omitempty"`
	ActualDate     *time.Time      `json:"actualDate,omitempty"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	Carrier        string          `json:"carrier,omitempty"`
	Address        DeliveryAddress `json:"address" gorm:"embedded;embeddedPrefix:address_"`
}

type DeliveryAddress struct {
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type Notes struct {
	Customer string `json:"customer,omitempty" validate:"max=500"`
	Internal string `json:"internal,omitempty" validate:"max=1000"`
}

// TimelineEntry is one append-only audit record of a status change.
type TimelineEntry struct {
	ID      uint        `json:"-" gorm:"primaryKey"`
	OrderID uuid.UUID   `json:"-" gorm:"type:uuid;index;not null"`
	Status  OrderStatus `json:"status" gorm:"type:varchar(20)"`
	Date    time.Time   `json:"date"`
	Note    string      `json:"note"`
	User    string      `json:"user,omitempty"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentPaypal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentInstallments PaymentMethod = "3x_payment"
	PaymentCash         PaymentMethod = "cash"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

type DeliveryMethod string

const (
	DeliveryStandard    DeliveryMethod = "standard"
	DeliveryExpress     DeliveryMethod = "express"
	DeliveryPickup      DeliveryMethod = "pickup"
	DeliveryAppointment DeliveryMethod = "appointment"
)

func (o *Order) IsDelivered() bool {
	return o.Status == OrderDelivered
}

func (o *Order) IsPaid() bool {
	return o.Payment.Status == PaymentPaid
}

func (o *Order) CustomerFullName() string {
	return o.Customer.FirstName + " " + o.Customer.LastName
}

// ItemCount is the number of units across all lines.
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// MarshalJSON adds the derived accessors to the persisted fields.
func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	return json.Marshal(struct {
		order
		IsDelivered      bool   `json:"isDelivered"`
		IsPaid           bool   `json:"isPaid"`
		CustomerFullName string `json:"customerFullName"`
		ItemCount        int    `json:"itemCount"`
	}{
		order:            order(o),
		IsDelivered:      o.IsDelivered(),
		IsPaid:           o.IsPaid(),
		CustomerFullName: o.CustomerFullName(),
		ItemCount:        o.ItemCount(),
	})
}
