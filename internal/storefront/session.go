package storefront

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bonneaffaire/internal/catalog"
	"bonneaffaire/internal/validation"
	"bonneaffaire/pkg/apperrors"
	"bonneaffaire/pkg/shopapi"
)

const (
	// AllCategories disables the catalog filter.
	AllCategories = "all"

	defaultCountry       = "France"
	defaultPaymentMethod = "card"
	demoOrderPrefix      = "BA78-DEMO-"
	demoDeliveryDelay    = 3 * 24 * time.Hour
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrUnknownProduct     = errors.New("unknown product")
)

// API is the part of the shop API the storefront talks to.
type API interface {
	ListProducts(ctx context.Context, featured bool) ([]shopapi.Product, error)
	RecordAddToCart(ctx context.Context, productID string) error
	CreateOrder(ctx context.Context, req *shopapi.CreateOrderRequest) (*shopapi.Order, error)
}

// CustomerInfo is what the shopper types at checkout.
type CustomerInfo struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,looseemail"`
	Phone      string `json:"phone" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

// ParseCustomerLine reads "Prénom,Nom,Email,Téléphone,Adresse,Ville,Code Postal".
// Missing parts are left empty and caught by Validate.
func ParseCustomerLine(line string) CustomerInfo {
	parts := strings.Split(line, ",")
	field := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	return CustomerInfo{
		FirstName:  field(0),
		LastName:   field(1),
		Email:      field(2),
		Phone:      field(3),
		Street:     field(4),
		City:       field(5),
		PostalCode: field(6),
	}
}

func (c CustomerInfo) Validate() error {
	return validation.Struct(c)
}

// Confirmation is shown to the shopper after checkout. Demo confirmations
// were synthesized locally and no order exists on the server.
type Confirmation struct {
	OrderNumber       string
	Total             float64
	EstimatedDelivery *time.Time
	Demo              bool
}

// Session is one shopper's view of the shop: catalog, cart and checkout.
type Session struct {
	api     API
	storage Storage
	logger  *zap.Logger
	now     func() time.Time

	cart     *Cart
	products []shopapi.Product
	fallback bool

	checkingOut atomic.Bool
}

// NewSession restores the stored cart. It never fails: a bad stored cart starts empty.
func NewSession(api API, storage Storage, logger *zap.Logger) *Session {
	return &Session{
		api:     api,
		storage: storage,
		logger:  logger,
		now:     time.Now,
		cart:    LoadCart(storage, logger),
	}
}

// Cart returns a copy of the current cart.
func (s *Session) Cart() *Cart {
	return s.cart.clone()
}

// Fallback reports whether the session runs on the demo catalog without the API.
func (s *Session) Fallback() bool {
	return s.fallback
}

func (s *Session) Products() []shopapi.Product {
	return s.products
}

// LoadProducts fetches the featured catalog. When the API fails or has
// nothing to show, the session switches to fallback mode with the demo products.
func (s *Session) LoadProducts(ctx context.Context) []shopapi.Product {
	products, err := s.api.ListProducts(ctx, true)
	switch {
	case err != nil:
		s.logger.Warn("Catalog unavailable, using demo products", zap.Error(err))
	case len(products) == 0:
		s.logger.Warn("Catalog is empty, using demo products")
	default:
		s.products = products
		s.fallback = false
		return s.products
	}

	s.products = FallbackProducts()
	s.fallback = true
	return s.products
}

// Filter returns the loaded products of category, or all of them for AllCategories.
func (s *Session) Filter(category string) []shopapi.Product {
	if category == "" || category == AllCategories {
		return s.products
	}
	var out []shopapi.Product
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// AddToCart adds one unit of a loaded product and stores the cart.
func (s *Session) AddToCart(ctx context.Context, productID string) (Item, error) {
	product, ok := s.product(productID)
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}

	item := s.cart.Add(product.ID, product.Name, product.Price)
	s.persist()

	if !s.fallback {
		if err := s.api.RecordAddToCart(ctx, product.ID); err != nil {
			s.logger.Debug("Failed to record add-to-cart", zap.String("product_id", product.ID), zap.Error(err))
		}
	}
	return item, nil
}

// RemoveFromCart drops the line at index and stores the cart.
func (s *Session) RemoveFromCart(index int) (Item, error) {
	item, err := s.cart.Remove(index)
	if err != nil {
		return Item{}, err
	}
	s.persist()
	return item, nil
}

// Checkout submits the cart as an order. The cart is cleared only once a
// confirmation exists; every error leaves it as it was. When the API cannot
// be reached the confirmation is a demo one.
func (s *Session) Checkout(ctx context.Context, info CustomerInfo) (*Confirmation, error) {
	if !s.checkingOut.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInProgress
	}
	defer s.checkingOut.Store(false)

	if s.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	var confirmation *Confirmation
	if s.fallback {
		confirmation = s.demoConfirmation()
	} else {
		order, err := s.api.CreateOrder(ctx, s.orderRequest(info))
		switch {
		case errors.Is(err, apperrors.ErrUnavailable):
			s.logger.Warn("Order API unreachable, confirming in demo mode", zap.Error(err))
			s.fallback = true
			confirmation = s.demoConfirmation()
		case err != nil:
			return nil, err
		default:
			confirmation = &Confirmation{
				OrderNumber:       order.OrderNumber,
				Total:             order.Totals.Total,
				EstimatedDelivery: order.Delivery.EstimatedDate,
			}
		}
	}

	s.logger.Info("Checkout completed",
		zap.String("order_number", confirmation.OrderNumber),
		zap.Float64("total", confirmation.Total),
		zap.Bool("demo", confirmation.Demo),
	)
	s.cart.Clear()
	s.persist()
	return confirmation, nil
}

func (s *Session) orderRequest(info CustomerInfo) *shopapi.CreateOrderRequest {
	req := &shopapi.CreateOrderRequest{
		Customer: shopapi.CustomerPayload{
			FirstName: info.FirstName,
			LastName:  info.LastName,
			Email:     info.Email,
			Phone:     info.Phone,
			Address: shopapi.AddressPayload{
				Street:     info.Street,
				City:       info.City,
				PostalCode: info.PostalCode,
				Country:    defaultCountry,
			},
		},
		Payment: shopapi.PaymentPayload{Method: defaultPaymentMethod},
	}
	for _, item := range s.cart.Items {
		line := shopapi.ItemPayload{Name: item.Name, Quantity: item.Quantity, Price: item.Price}
		// demo product ids are not catalog identifiers
		if _, err := uuid.Parse(item.ID); err == nil {
			line.ProductID = item.ID
		}
		req.Items = append(req.Items, line)
	}
	return req
}

func (s *Session) demoConfirmation() *Confirmation {
	now := s.now()
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}
	delivery := now.Add(demoDeliveryDelay)
	return &Confirmation{
		OrderNumber:       demoOrderPrefix + millis,
		Total:             s.cart.Total(),
		EstimatedDelivery: &delivery,
		Demo:              true,
	}
}

func (s *Session) product(id string) (shopapi.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return shopapi.Product{}, false
}

func (s *Session) persist() {
	if err := SaveCart(s.storage, s.cart); err != nil {
		s.logger.Warn("Failed to store cart", zap.Error(err))
	}
}

// FallbackProducts is the demo catalog with ids "1" to "8".
func FallbackProducts() []shopapi.Product {
	demo := catalog.DemoProducts()
	products := make([]shopapi.Product, 0, len(demo))
	for i := range demo {
		p := &demo[i]
		products = append(products, shopapi.Product{
			ID:                 strconv.Itoa(i + 1),
			Name:               p.Name,
			Description:        p.Description,
			Category:           string(p.Category),
			Price:              p.Price,
			OldPrice:           p.OldPrice,
			DiscountPercentage: p.DiscountPercentage(),
			Stock:              p.Stock,
			Featured:           p.Featured,
		})
	}
	return products
}
