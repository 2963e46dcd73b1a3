package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bonneaffaire/internal/models"
	"bonneaffaire/internal/reconcile"
	"bonneaffaire/internal/repository"
	"bonneaffaire/internal/validation"
	"bonneaffaire/pkg/apperrors"
)

// maxNumberingAttempts bounds retries after an order number collision.
const maxNumberingAttempts = 3

type OrderService interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error)

	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, note, user string) (*models.Order, error)
	MarkAsPaid(ctx context.Context, id, transactionID, user string) (*models.Order, error)
	AddTrackingNumber(ctx context.Context, id, trackingNumber, carrier, user string) (*models.Order, error)
	MarkAsDelivered(ctx context.Context, id, user string) (*models.Order, error)
}

type OrderNumbering struct {
	Prefix   string
	Location *time.Location
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cache       ProductCache
	settings    SettingsService
	sequencer   OrderSequencer
	numbering   OrderNumbering
	logger      *zap.Logger
	now         func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cache ProductCache,
	settings SettingsService,
	sequencer OrderSequencer,
	numbering OrderNumbering,
	logger *zap.Logger,
) OrderService {
	if numbering.Location == nil {
		numbering.Location = time.Local
	}
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cache:       cache,
		settings:    settings,
		sequencer:   sequencer,
		numbering:   numbering,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateOrder prices, numbers, reconciles and stores a new order.
// Catalog items take their name and price from the catalog.
func (s *orderService) CreateOrder(ctx context.Context, order *models.Order) error {
	catalogErr := s.resolveCatalogItems(ctx, order.Items)
	if catalogErr != nil && !apperrors.IsValidation(catalogErr) {
		return catalogErr
	}

	reconcile.ApplyDefaults(order)
	reconcile.NormalizeItemSubtotals(order.Items)
	reconcile.ReconcileTotals(order)

	// fail before a sequence number is spent on an invalid order
	if err := validation.Merge(catalogErr, validation.Struct(order)); err != nil {
		return err
	}

	shipping, tax, err := s.settings.ShippingAndTax(ctx, order.Delivery.Method, order.Totals.Subtotal)
	if err != nil {
		return fmt.Errorf("failed to price order: %w", err)
	}
	order.Totals.Shipping = shipping
	order.Totals.Tax = tax

	numbered := order.OrderNumber == ""
	for attempt := 1; ; attempt++ {
		now := s.now()
		if numbered {
			if err := s.assignNumber(ctx, order, now); err != nil {
				return err
			}
		}

		if err := reconcile.Normalize(order, reconcile.Options{Now: now, IsNew: true}); err != nil {
			return err
		}

		err := s.orderRepo.Create(ctx, order)
		if err == nil {
			break
		}
		if !numbered || !apperrors.IsConflict(err) || attempt >= maxNumberingAttempts {
			return err
		}
		s.logger.Warn("order number already taken, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt),
		)
		order.OrderNumber = ""
		order.ID = uuid.Nil
		for i := range order.Items {
			order.Items[i].ID = 0
		}
	}

	s.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.Totals.Total),
		zap.Int("items", order.ItemCount()),
	)
	s.recordPurchases(ctx, order)
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *orderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return s.orderRepo.GetByOrderNumber(ctx, strings.ToUpper(strings.TrimSpace(orderNumber)))
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, invalidStatus(filter.Status)
	}
	return s.orderRepo.List(ctx, filter)
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, note, user string) (*models.Order, error) {
	if !status.IsValid() {
		return nil, invalidStatus(status)
	}
	return s.update(ctx, id, user, func(order *models.Order, now time.Time) string {
		order.Status = status
		return note
	})
}

func (s *orderService) MarkAsPaid(ctx context.Context, id, transactionID, user string) (*models.Order, error) {
	return s.update(ctx, id, user, func(order *models.Order, now time.Time) string {
		paidAt := now
		amount := order.Totals.Total
		order.Payment.Status = models.PaymentPaid
		order.Payment.PaidAt = &paidAt
		order.Payment.TransactionID = transactionID
		order.Payment.Amount = &amount
		return ""
	})
}

// AddTrackingNumber records the shipment and moves the order to shipped.
func (s *orderService) AddTrackingNumber(ctx context.Context, id, trackingNumber, carrier, user string) (*models.Order, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, apperrors.NewValidationError([]apperrors.FieldError{{
			Field:   "trackingNumber",
			Message: "trackingNumber is required",
		}})
	}
	return s.update(ctx, id, user, func(order *models.Order, now time.Time) string {
		order.Delivery.TrackingNumber = trackingNumber
		order.Delivery.Carrier = strings.TrimSpace(carrier)
		order.Status = models.OrderShipped
		if order.Delivery.Carrier == "" {
			return fmt.Sprintf("Shipped, tracking number %s", trackingNumber)
		}
		return fmt.Sprintf("Shipped with %s, tracking number %s", order.Delivery.Carrier, trackingNumber)
	})
}

func (s *orderService) MarkAsDelivered(ctx context.Context, id, user string) (*models.Order, error) {
	return s.update(ctx, id, user, func(order *models.Order, now time.Time) string {
		deliveredAt := now
		order.Status = models.OrderDelivered
		order.Delivery.ActualDate = &deliveredAt
		return "Order delivered"
	})
}

// update loads the order, applies mutate and saves it through the reconcile pass.
// mutate returns the timeline note used if the status changed.
func (s *orderService) update(ctx context.Context, id, user string, mutate func(*models.Order, time.Time) string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	opts := reconcile.Options{
		Now:            s.now(),
		PreviousStatus: order.Status,
		User:           user,
	}
	if order.Delivery.EstimatedDate != nil {
		estimate := *order.Delivery.EstimatedDate
		opts.PreviousEstimate = &estimate
	}

	opts.StatusNote = mutate(order, opts.Now)
	if err := reconcile.Normalize(order, opts); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.Status)),
		zap.String("payment_status", string(order.Payment.Status)),
		zap.String("user", user),
	)
	return order, nil
}

func (s *orderService) assignNumber(ctx context.Context, order *models.Order, now time.Time) error {
	dayStart, dayEnd := reconcile.DayBounds(now, s.numbering.Location)
	existing, err := s.sequencer.Reserve(ctx, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("failed to number order: %w", err)
	}
	reconcile.AssignOrderNumber(order, s.numbering.Prefix, existing, dayStart)
	return nil
}

// resolveCatalogItems replaces client-sent names and prices with catalog values.
func (s *orderService) resolveCatalogItems(ctx context.Context, items []models.OrderItem) error {
	var fields []apperrors.FieldError
	for i := range items {
		if items[i].ProductID == nil {
			continue
		}
		product, err := s.productRepo.GetByID(ctx, *items[i].ProductID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				fields = append(fields, apperrors.FieldError{
					Field:   fmt.Sprintf("items[%d].productId", i),
					Message: fmt.Sprintf("items[%d].productId: unknown product", i),
				})
				continue
			}
			return err
		}
		if !product.IsActive {
			fields = append(fields, apperrors.FieldError{
				Field:   fmt.Sprintf("items[%d].productId", i),
				Message: fmt.Sprintf("items[%d].productId: %s is no longer available", i, product.Name),
			})
			continue
		}
		items[i].Name = product.Name
		items[i].Price = product.Price
	}
	return apperrors.NewValidationError(fields)
}

// recordPurchases updates catalog analytics and stock, then drops the cached
// featured list. A failure here never undoes the order.
func (s *orderService) recordPurchases(ctx context.Context, order *models.Order) {
	touched := false
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		touched = true
		if err := s.productRepo.IncrementPurchased(ctx, *item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to record purchase",
				zap.String("order_number", order.OrderNumber),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
		}
		if err := s.productRepo.UpdateStock(ctx, *item.ProductID, -item.Quantity); err != nil {
			s.logger.Error("failed to update stock",
				zap.String("order_number", order.OrderNumber),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
		}
	}
	if touched {
		invalidateFeatured(ctx, s.cache, s.logger)
	}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, &apperrors.InvalidIDError{Value: id}
	}
	return parsed, nil
}

func invalidStatus(status models.OrderStatus) error {
	return apperrors.NewValidationError([]apperrors.FieldError{{
		Field:   "status",
		Message: fmt.Sprintf("status: invalid value %q", string(status)),
	}})
}
