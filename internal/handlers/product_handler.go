package handlers

import (
	"inventorywise/internal/services"
	"inventorywise/pkg/pagination"
	"inventorywise/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     uint            `json:"stock_quantity"`
	Category          string          `json:"category" binding:"required"`
	Barcode           string          `json:"barcode"`
	MinStockThreshold *uint           `json:"min_stock_threshold"`
	MaxStockThreshold *uint           `json:"max_stock_threshold"`
}

type UpdateProductRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	Barcode           *string          `json:"barcode"`
	MinStockThreshold *uint            `json:"min_stock_threshold"`
	MaxStockThreshold *uint            `json:"max_stock_threshold"`
}

type PatchStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// Create 创建商品
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	product, err := h.productService.Create(services.CreateProductParams{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		CategoryName:      req.Category,
		Barcode:           req.Barcode,
		MinStockThreshold: req.MinStockThreshold,
		MaxStockThreshold: req.MaxStockThreshold,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, "Product created successfully", product)
}

// List 分页获取商品
func (h *ProductHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	filters := services.ProductFilters{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		LowStock: c.Query("low_stock") == "true",
	}

	if v := c.Query("min_price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			response.BadRequest(c, "Invalid min_price value")
			return
		}
		filters.MinPrice = &price
	}
	if v := c.Query("max_price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			response.BadRequest(c, "Invalid max_price value")
			return
		}
		filters.MaxPrice = &price
	}

	products, total, err := h.productService.GetWithFiltersAndPage(filters, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Failed to list products")
		return
	}

	response.SuccessWithPage(c, products, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 获取单个商品
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(id)
	if err != nil {
		response.NotFound(c, "Product not found")
		return
	}

	response.Success(c, product)
}

// Update 更新商品基础信息
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	product, err := h.productService.Update(id, services.UpdateProductParams{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Barcode:           req.Barcode,
		MinStockThreshold: req.MinStockThreshold,
		MaxStockThreshold: req.MaxStockThreshold,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "Product updated successfully", product)
}

// PatchStock 调整商品库存增量
func (h *ProductHandler) PatchStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req PatchStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	product, err := h.productService.PatchStock(id, req.Delta)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "Stock updated successfully", product)
}

// Delete 删除商品
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.productService.GetByID(id); err != nil {
		response.NotFound(c, "Product not found")
		return
	}

	if err := h.productService.Delete(id); err != nil {
		response.ServerError(c, "Failed to delete product")
		return
	}

	response.SuccessWithMessage(c, "Product deleted successfully", nil)
}

// LowStock 获取全部低库存商品
func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.productService.GetLowStock()
	if err != nil {
		response.ServerError(c, "Failed to list low stock products")
		return
	}

	response.Success(c, products)
}
