package shopapi

import (
	"encoding/json"
	"time"
)

// Envelope wraps every API answer.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	Customer CustomerPayload  `json:"customer"`
	Items    []ItemPayload    `json:"items"`
	Payment  PaymentPayload   `json:"payment"`
	Delivery *DeliveryPayload `json:"delivery,omitempty"`
	Notes    string           `json:"notes,omitempty"`
}

type CustomerPayload struct {
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   AddressPayload `json:"address"`
}

type AddressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type ItemPayload struct {
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type PaymentPayload struct {
	Method string `json:"method"`
}

type DeliveryPayload struct {
	Method       string `json:"method,omitempty"`
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Order is the part of a stored order the storefront reads back.
type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	Totals      struct {
		Subtotal float64 `json:"subtotal"`
		Shipping float64 `json:"shipping"`
		Total    float64 `json:"total"`
	} `json:"totals"`
	Delivery struct {
		Method        string     `json:"method"`
		EstimatedDate *time.Time `json:"estimatedDate,omitempty"`
	} `json:"delivery"`
}

// Product is a catalog entry as listed by GET /api/products.
type Product struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Price              float64  `json:"price"`
	OldPrice           *float64 `json:"oldPrice,omitempty"`
	DiscountPercentage int      `json:"discountPercentage"`
	Stock              int      `json:"stock"`
	Featured           bool     `json:"featured"`
}
