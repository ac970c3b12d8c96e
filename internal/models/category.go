package models

// Category 商品分类，支持父子嵌套
type Category struct {
	BaseModel
	Name             string `gorm:"size:255;not null;index" json:"name"`
	ParentCategoryID *uint  `gorm:"index" json:"parent_category_id"`
	Description      string `gorm:"type:text;not null;default:'No description provided'" json:"description"`

	// 关联关系
	ParentCategory *Category  `gorm:"foreignKey:ParentCategoryID;constraint:OnDelete:CASCADE" json:"parent_category,omitempty"`
	Subcategories  []Category `gorm:"foreignKey:ParentCategoryID" json:"subcategories,omitempty"`
	Products       []Product  `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// TableName 表名
func (c *Category) TableName() string {
	return "categories"
}
