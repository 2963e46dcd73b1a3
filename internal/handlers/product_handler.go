package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bonneaffaire/internal/models"
	"bonneaffaire/internal/services"
)

type ProductHandler struct {
	productService services.ProductService
	logger         *zap.Logger
	production     bool
}

func NewProductHandler(productService services.ProductService, logger *zap.Logger, production bool) *ProductHandler {
	return &ProductHandler{productService: productService, logger: logger, production: production}
}

// ListProducts handles GET /api/products?featured=&category=&search=
func (h *ProductHandler) ListProducts(c *gin.Context) {
	featured, _ := strconv.ParseBool(c.Query("featured"))
	category := c.Query("category")
	if category == "all" {
		category = ""
	}

	products, err := h.productService.ListProducts(c.Request.Context(), services.ProductQuery{
		Category: models.ProductCategory(category),
		Featured: featured,
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	respond(c, http.StatusOK, "", products)
}

// GetProduct handles GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.ViewProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "", product)
}

// AddToCart handles POST /api/products/:id/cart
func (h *ProductHandler) AddToCart(c *gin.Context) {
	if err := h.productService.RecordAddToCart(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "added to cart", nil)
}

// CreateProduct handles POST /api/admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	product := models.Product{IsActive: true}
	if err := c.ShouldBindJSON(&product); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request format", err.Error())
		return
	}

	if err := h.productService.CreateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusCreated, "product created", product)
}

// UpdateProduct handles PUT /api/admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	changes := models.Product{IsActive: true}
	if err := c.ShouldBindJSON(&changes); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request format", err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), &changes)
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "product updated", product)
}

// AdjustStock handles PATCH /api/admin/products/:id/stock
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	var req struct {
		Delta *int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Delta == nil {
		respondFailure(c, http.StatusBadRequest, "invalid request format", "delta is required")
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), c.Param("id"), *req.Delta)
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "stock updated", product)
}

// DeactivateProduct handles DELETE /api/admin/products/:id
func (h *ProductHandler) DeactivateProduct(c *gin.Context) {
	if err := h.productService.DeactivateProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "product deactivated", nil)
}
