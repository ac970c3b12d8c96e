package models

import "time"

// Inventory 库存台账，与商品一对一
// current_stock = stock_in - stock_out，由UpdateStock维护。
type Inventory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    uint      `gorm:"not null;uniqueIndex;constraint:OnDelete:CASCADE" json:"product_id"`
	StockIn      uint      `gorm:"not null;default:0" json:"stock_in"`
	StockOut     uint      `gorm:"not null;default:0" json:"stock_out"`
	CurrentStock uint      `gorm:"not null;default:0" json:"current_stock"`
	LastUpdated  time.Time `gorm:"autoUpdateTime" json:"last_updated"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName 表名
func (i *Inventory) TableName() string {
	return "inventories"
}

// UpdateStock 重新计算当前库存
func (i *Inventory) UpdateStock() {
	if i.StockIn >= i.StockOut {
		i.CurrentStock = i.StockIn - i.StockOut
	} else {
		i.CurrentStock = 0
	}
}
