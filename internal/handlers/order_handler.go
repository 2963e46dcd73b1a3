package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bonneaffaire/internal/models"
	"bonneaffaire/internal/repository"
	"bonneaffaire/internal/services"
	"bonneaffaire/pkg/apperrors"
	"bonneaffaire/pkg/shopapi"
)

const defaultOrderListLimit = 50

type OrderHandler struct {
	orderService services.OrderService
	logger       *zap.Logger
	production   bool
}

func NewOrderHandler(orderService services.OrderService, logger *zap.Logger, production bool) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger, production: production}
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req shopapi.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request format", err.Error())
		return
	}

	order, err := orderFromRequest(&req)
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	if err := h.orderService.CreateOrder(c.Request.Context(), order); err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusCreated, "order created", order)
}

// GetOrder handles GET /api/orders/:orderNumber
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrderByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "", order)
}

// ListOrders handles GET /api/admin/orders?status=&limit=&offset=
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := repository.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Limit:  defaultOrderListLimit,
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			respondFailure(c, http.StatusBadRequest, "invalid request format", "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			respondFailure(c, http.StatusBadRequest, "invalid request format", "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respond(c, http.StatusOK, "", orders)
}

// AdminGetOrder handles GET /api/admin/orders/:id
func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "", order)
}

// UpdateStatus handles PATCH /api/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request format", err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), models.OrderStatus(req.Status), req.Note, adminName(c))
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "status updated", order)
}

// MarkAsPaid handles POST /api/admin/orders/:id/pay
func (h *OrderHandler) MarkAsPaid(c *gin.Context) {
	var req struct {
		TransactionID string `json:"transactionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request format", err.Error())
		return
	}

	order, err := h.orderService.MarkAsPaid(c.Request.Context(), c.Param("id"), req.TransactionID, adminName(c))
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "payment recorded", order)
}

// AddTracking handles POST /api/admin/orders/:id/tracking
func (h *OrderHandler) AddTracking(c *gin.Context) {
	var req struct {
		TrackingNumber string `json:"trackingNumber" binding:"required"`
		Carrier        string `json:"carrier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request format", err.Error())
		return
	}

	order, err := h.orderService.AddTrackingNumber(c.Request.Context(), c.Param("id"), req.TrackingNumber, req.Carrier, adminName(c))
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "order shipped", order)
}

// MarkAsDelivered handles POST /api/admin/orders/:id/deliver
func (h *OrderHandler) MarkAsDelivered(c *gin.Context) {
	order, err := h.orderService.MarkAsDelivered(c.Request.Context(), c.Param("id"), adminName(c))
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "order delivered", order)
}

// orderFromRequest maps the public payload onto a new order.
func orderFromRequest(req *shopapi.CreateOrderRequest) (*models.Order, error) {
	order := &models.Order{
		Customer: models.Customer{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
			Address: models.Address{
				Street:     req.Customer.Address.Street,
				City:       req.Customer.Address.City,
				PostalCode: req.Customer.Address.PostalCode,
				Country:    req.Customer.Address.Country,
			},
		},
		Payment: models.Payment{Method: models.PaymentMethod(req.Payment.Method)},
		Notes:   models.Notes{Customer: req.Notes},
	}

	for _, item := range req.Items {
		line := models.OrderItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
		if id := strings.TrimSpace(item.ProductID); id != "" {
			productID, err := uuid.Parse(id)
			if err != nil {
				return nil, &apperrors.InvalidIDError{Value: id}
			}
			line.ProductID = &productID
		}
		order.Items = append(order.Items, line)
	}

	if d := req.Delivery; d != nil {
		order.Delivery.Method = models.DeliveryMethod(d.Method)
		order.Delivery.Address = models.DeliveryAddress{
			Street:       d.Street,
			City:         d.City,
			PostalCode:   d.PostalCode,
			Instructions: d.Instructions,
		}
	}
	return order, nil
}
