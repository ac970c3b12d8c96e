package services

import (
	"inventorywise/internal/models"

	"gorm.io/gorm"
)

type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// GetByProductID 获取商品的库存台账
func (s *InventoryService) GetByProductID(productID uint) (*models.Inventory, error) {
	var inventory models.Inventory
	err := s.db.Preload("Product").Where("product_id = ?", productID).First(&inventory).Error
	return &inventory, err
}

// GetWithPage 分页获取库存台账
func (s *InventoryService) GetWithPage(page, pageSize int) ([]*models.Inventory, int64, error) {
	var inventories []*models.Inventory
	var total int64

	if err := s.db.Model(&models.Inventory{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := s.db.Preload("Product").Order("product_id ASC").Offset(offset).Limit(pageSize).Find(&inventories).Error
	if err != nil {
		return nil, 0, err
	}

	return inventories, total, nil
}
