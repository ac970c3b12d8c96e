package models

import (
	"gorm.io/datatypes"
)

// StockReport 低库存报告执行记录
type StockReport struct {
	BaseModel
	JobID          string         `gorm:"size:36;index" json:"job_id"`
	Source         string         `gorm:"size:20;not null" json:"source"` // schedule / manual
	Status         string         `gorm:"size:20;not null;default:'pending'" json:"status"`
	ItemCount      int            `gorm:"not null;default:0" json:"item_count"`
	Payload        datatypes.JSON `json:"payload"` // 低库存明细行
	RecipientCount int            `gorm:"not null;default:0" json:"recipient_count"`
	Error          string         `gorm:"type:text" json:"error,omitempty"`
}

// TableName 表名
func (r *StockReport) TableName() string {
	return "stock_reports"
}

// 报告状态常量
const (
	ReportStatusPending = "pending"
	ReportStatusSent    = "sent"
	ReportStatusEmpty   = "empty" // 没有低库存商品，无需发送
	ReportStatusFailed  = "failed"
)

// StockReportItem 报告中的一行低库存商品
type StockReportItem struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	CurrentStock uint   `json:"current_stock"`
	MinThreshold uint   `json:"min_threshold"`
	MaxThreshold uint   `json:"max_threshold"`
}
