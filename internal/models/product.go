package models

import (
	"github.com/shopspring/decimal"
)

// Product 商品模型
type Product struct {
	BaseModel
	SKU               string          `gorm:"uniqueIndex;size:50;not null" json:"sku"`
	Name              string          `gorm:"size:100;not null;index" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	Price             decimal.Decimal `gorm:"type:numeric(10,2);not null;check:price >= 0" json:"price"`
	StockQuantity     uint            `gorm:"not null;default:0" json:"stock_quantity"`
	CategoryID        uint            `gorm:"not null;index" json:"category_id"`
	Barcode           string          `gorm:"size:100" json:"barcode"`
	MinStockThreshold uint            `gorm:"not null;default:10" json:"min_stock_threshold"`
	MaxStockThreshold uint            `gorm:"not null;default:100" json:"max_stock_threshold"`

	// 关联关系
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
}

// TableName 表名
func (p *Product) TableName() string {
	return "products"
}

// IsLowStock 当前库存是否达到或低于最小阈值
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockThreshold
}
