package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"inventorywise/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AlertPublisher 低库存告警的发布端（WebSocket集线器实现）
type AlertPublisher interface {
	PublishLowStock(product *models.Product)
}

type ProductService struct {
	db     *gorm.DB
	alerts AlertPublisher // 可为nil，表示不推送告警
}

func NewProductService(db *gorm.DB, alerts AlertPublisher) *ProductService {
	return &ProductService{db: db, alerts: alerts}
}

// CreateProductParams 创建商品的参数
type CreateProductParams struct {
	Name              string
	Description       string
	Price             decimal.Decimal
	StockQuantity     uint
	CategoryName      string
	Barcode           string
	MinStockThreshold *uint
	MaxStockThreshold *uint
}

// ProductFilters 商品列表的过滤条件
type ProductFilters struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Search   string
	LowStock bool
}

// ========== 基础CRUD方法 ==========

// Create 创建商品
// 商品与库存台账在同一事务中创建，台账初始入库量等于商品初始库存。
func (s *ProductService) Create(params CreateProductParams) (*models.Product, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if params.Price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}

	// 分类按名称解析
	var category models.Category
	if err := s.db.Where("name = ?", params.CategoryName).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %q not found", params.CategoryName)
		}
		return nil, err
	}

	product := &models.Product{
		SKU:           s.GenerateSKU(category.Name, params.Name, time.Now()),
		Name:          params.Name,
		Description:   params.Description,
		Price:         params.Price,
		StockQuantity: params.StockQuantity,
		CategoryID:    category.ID,
		Barcode:       params.Barcode,
	}
	if params.MinStockThreshold != nil {
		product.MinStockThreshold = *params.MinStockThreshold
	} else {
		product.MinStockThreshold = 10
	}
	if params.MaxStockThreshold != nil {
		product.MaxStockThreshold = *params.MaxStockThreshold
	} else {
		product.MaxStockThreshold = 100
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		inventory := &models.Inventory{
			ProductID: product.ID,
			StockIn:   params.StockQuantity,
		}
		inventory.UpdateStock()
		return tx.Create(inventory).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyIfLowStock(product)
	return product, nil
}

// GetByID 根据ID获取商品
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Category").First(&product, id).Error
	return &product, err
}

// GetBySKU 根据SKU获取商品
func (s *ProductService) GetBySKU(sku string) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Category").Where("sku = ?", sku).First(&product).Error
	return &product, err
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *ProductService) GetWithFiltersAndPage(filters ProductFilters, page, pageSize int) ([]*models.Product, int64, error) {
	var products []*models.Product
	var total int64

	query := s.db.Model(&models.Product{})

	if filters.Name != "" {
		query = query.Where("products.name LIKE ?", fmt.Sprintf("%%%s%%", filters.Name))
	}
	if filters.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.name LIKE ?", fmt.Sprintf("%%%s%%", filters.Category))
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.Search != "" {
		searchPattern := fmt.Sprintf("%%%s%%", filters.Search)
		query = query.Where("products.name LIKE ? OR products.description LIKE ? OR sku LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	if filters.LowStock {
		query = query.Where("stock_quantity <= min_stock_threshold")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Category").Order("products.id ASC").Offset(offset).Limit(pageSize).Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetLowStock 获取全部低库存商品
func (s *ProductService) GetLowStock() ([]*models.Product, error) {
	var products []*models.Product
	err := s.db.Where("stock_quantity <= min_stock_threshold").Order("stock_quantity ASC").Find(&products).Error
	return products, err
}

// UpdateProductParams 更新商品的参数，nil字段不变
type UpdateProductParams struct {
	Name              *string
	Description       *string
	Price             *decimal.Decimal
	Barcode           *string
	MinStockThreshold *uint
	MaxStockThreshold *uint
}

// Update 更新商品基础信息（库存走PatchStock）
func (s *ProductService) Update(id uint, params UpdateProductParams) (*models.Product, error) {
	var product models.Product
	err := s.db.First(&product, id).Error
	if err != nil {
		return nil, err
	}

	if params.Name != nil && *params.Name != "" {
		product.Name = *params.Name
	}
	if params.Description != nil {
		product.Description = *params.Description
	}
	if params.Price != nil {
		if params.Price.IsNegative() {
			return nil, fmt.Errorf("price must not be negative")
		}
		product.Price = *params.Price
	}
	if params.Barcode != nil {
		product.Barcode = *params.Barcode
	}
	if params.MinStockThreshold != nil {
		product.MinStockThreshold = *params.MinStockThreshold
	}
	if params.MaxStockThreshold != nil {
		product.MaxStockThreshold = *params.MaxStockThreshold
	}

	err = s.db.Save(&product).Error
	if err != nil {
		return nil, err
	}

	s.notifyIfLowStock(&product)
	return &product, nil
}

// PatchStock 调整库存增量
// delta为正表示入库，为负表示出库；出库量不能超过当前库存。
// 商品数量与库存台账在同一事务中更新。
func (s *ProductService) PatchStock(id uint, delta int) (*models.Product, error) {
	var product models.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}

		if delta < 0 && uint(-delta) > product.StockQuantity {
			return fmt.Errorf("insufficient stock: have %d, requested %d", product.StockQuantity, -delta)
		}

		var inventory models.Inventory
		if err := tx.Where("product_id = ?", id).First(&inventory).Error; err != nil {
			return err
		}

		if delta >= 0 {
			product.StockQuantity += uint(delta)
			inventory.StockIn += uint(delta)
		} else {
			product.StockQuantity -= uint(-delta)
			inventory.StockOut += uint(-delta)
		}
		inventory.UpdateStock()

		if err := tx.Save(&product).Error; err != nil {
			return err
		}
		return tx.Save(&inventory).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyIfLowStock(&product)
	return &product, nil
}

// Delete 删除商品（库存台账随之级联删除）
func (s *ProductService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Inventory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
}

// ========== SKU生成 ==========

// GenerateSKU 生成SKU：分类前4位大写-商品名前3位小写-创建日期
// 例：分类Category、商品name在2026-08-24创建 → "CATE-nam-2026-08-24"
func (s *ProductService) GenerateSKU(categoryName, productName string, now time.Time) string {
	categoryPart := sanitizeSKUPart(categoryName, 4)
	productPart := sanitizeSKUPart(productName, 3)
	return fmt.Sprintf("%s-%s-%s",
		strings.ToUpper(categoryPart),
		strings.ToLower(productPart),
		now.Format("2006-01-02"))
}

// sanitizeSKUPart 取前n个字母/数字字符
func sanitizeSKUPart(value string, n int) string {
	var b strings.Builder
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() >= n {
				break
			}
		}
	}
	if b.Len() == 0 {
		return strings.Repeat("X", n)
	}
	return b.String()
}

func (s *ProductService) notifyIfLowStock(product *models.Product) {
	if s.alerts != nil && product.IsLowStock() {
		s.alerts.PublishLowStock(product)
	}
}
