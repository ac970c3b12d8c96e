package handlers

import (
	"inventorywise/internal/services"
	"inventorywise/pkg/pagination"
	"inventorywise/pkg/response"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

type CategoryRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	ParentCategoryID *uint  `json:"parent_category_id"`
}

// Create 创建分类
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	category, err := h.categoryService.Create(req.Name, req.Description, req.ParentCategoryID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, "Category created successfully", category)
}

// List 分页获取分类
func (h *CategoryHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	keyword := c.Query("search")

	categories, total, err := h.categoryService.GetWithPage(keyword, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Failed to list categories")
		return
	}

	response.SuccessWithPage(c, categories, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 获取单个分类
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	category, err := h.categoryService.GetByID(id)
	if err != nil {
		response.NotFound(c, "Category not found")
		return
	}

	response.Success(c, category)
}

// Update 更新分类
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	category, err := h.categoryService.Update(id, req.Name, req.Description, req.ParentCategoryID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "Category updated successfully", category)
}

// Delete 删除分类
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.categoryService.Delete(id); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "Category deleted successfully", nil)
}
