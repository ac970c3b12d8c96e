package handlers

import (
	"inventorywise/internal/services"
	"inventorywise/pkg/pagination"
	"inventorywise/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService *services.InventoryService
}

func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// List 分页获取库存台账
func (h *InventoryHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	inventories, total, err := h.inventoryService.GetWithPage(params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Failed to list inventories")
		return
	}

	response.SuccessWithPage(c, inventories, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByProduct 获取商品的库存台账
func (h *InventoryHandler) GetByProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	inventory, err := h.inventoryService.GetByProductID(id)
	if err != nil {
		response.NotFound(c, "Inventory not found")
		return
	}

	response.Success(c, inventory)
}
