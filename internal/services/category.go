package services

import (
	"errors"
	"fmt"

	"inventorywise/internal/models"

	"gorm.io/gorm"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// Create 创建分类
func (s *CategoryService) Create(name, description string, parentID *uint) (*models.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	// 父分类必须存在
	if parentID != nil {
		var count int64
		s.db.Model(&models.Category{}).Where("id = ?", *parentID).Count(&count)
		if count == 0 {
			return nil, fmt.Errorf("parent category not found")
		}
	}

	category := &models.Category{
		Name:             name,
		ParentCategoryID: parentID,
	}
	if description != "" {
		category.Description = description
	} else {
		category.Description = "No description provided"
	}

	err := s.db.Create(category).Error
	return category, err
}

// GetByID 根据ID获取分类（含子分类）
func (s *CategoryService) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	err := s.db.Preload("Subcategories").First(&category, id).Error
	return &category, err
}

// GetByName 根据名称获取分类
func (s *CategoryService) GetByName(name string) (*models.Category, error) {
	var category models.Category
	err := s.db.Where("name = ?", name).First(&category).Error
	return &category, err
}

// GetWithPage 分页获取分类
func (s *CategoryService) GetWithPage(keyword string, page, pageSize int) ([]*models.Category, int64, error) {
	var categories []*models.Category
	var total int64

	query := s.db.Model(&models.Category{})
	if keyword != "" {
		query = query.Where("name LIKE ?", fmt.Sprintf("%%%s%%", keyword))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Subcategories").Order("id ASC").Offset(offset).Limit(pageSize).Find(&categories).Error
	if err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, name, description string, parentID *uint) (*models.Category, error) {
	var category models.Category
	err := s.db.First(&category, id).Error
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if *parentID == id {
			return nil, fmt.Errorf("category cannot be its own parent")
		}
		var count int64
		s.db.Model(&models.Category{}).Where("id = ?", *parentID).Count(&count)
		if count == 0 {
			return nil, fmt.Errorf("parent category not found")
		}
		category.ParentCategoryID = parentID
	}

	if name != "" {
		category.Name = name
	}
	if description != "" {
		category.Description = description
	}

	err = s.db.Save(&category).Error
	return &category, err
}

// Delete 删除分类
// 仍有商品挂在该分类下时拒绝删除。
func (s *CategoryService) Delete(id uint) error {
	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		return err
	}

	var productCount int64
	s.db.Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount)
	if productCount > 0 {
		return errors.New("category still has products")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// 子分类上移到被删分类的父级
		if err := tx.Model(&models.Category{}).
			Where("parent_category_id = ?", id).
			Update("parent_category_id", category.ParentCategoryID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
}
