package services

import (
	"testing"
	"time"

	"inventorywise/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingPublisher 记录收到的告警
type recordingPublisher struct {
	alerts []*models.Product
}

func (p *recordingPublisher) PublishLowStock(product *models.Product) {
	p.alerts = append(p.alerts, product)
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := models.Category{Name: name, Description: "No description provided"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return &category
}

func TestGenerateSKU(t *testing.T) {
	svc := NewProductService(nil, nil)
	day := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "ELEC-lap-2026-08-24", svc.GenerateSKU("Electronics", "Laptop", day))
	// 分类名中的非字母数字字符被剔除
	assert.Equal(t, "HOME-mop-2026-08-24", svc.GenerateSKU("Home & Garden", "Mop", day))
	// 空名称回退到占位符
	assert.Equal(t, "XXXX-xxx-2026-08-24", svc.GenerateSKU("", "", day))
}

func TestCreateProductWithInventory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db, nil)
	seedCategory(t, db, "Electronics")

	product, err := svc.Create(CreateProductParams{
		Name:          "Laptop",
		Price:         decimal.NewFromFloat(999.99),
		StockQuantity: 50,
		CategoryName:  "Electronics",
	})
	require.NoError(t, err)
	assert.Contains(t, product.SKU, "ELEC-lap-")
	assert.Equal(t, uint(10), product.MinStockThreshold)
	assert.Equal(t, uint(100), product.MaxStockThreshold)

	// 库存台账随商品创建
	var inventory models.Inventory
	require.NoError(t, db.Where("product_id = ?", product.ID).First(&inventory).Error)
	assert.Equal(t, uint(50), inventory.StockIn)
	assert.Equal(t, uint(0), inventory.StockOut)
	assert.Equal(t, uint(50), inventory.CurrentStock)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db, nil)

	_, err := svc.Create(CreateProductParams{
		Name:         "Laptop",
		Price:        decimal.NewFromInt(1),
		CategoryName: "Ghost",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPatchStockUpdatesLedger(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db, nil)
	seedCategory(t, db, "Electronics")

	product, err := svc.Create(CreateProductParams{
		Name:          "Laptop",
		Price:         decimal.NewFromInt(999),
		StockQuantity: 50,
		CategoryName:  "Electronics",
	})
	require.NoError(t, err)

	// 入库
	product, err = svc.PatchStock(product.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, uint(70), product.StockQuantity)

	// 出库
	product, err = svc.PatchStock(product.ID, -30)
	require.NoError(t, err)
	assert.Equal(t, uint(40), product.StockQuantity)

	var inventory models.Inventory
	require.NoError(t, db.Where("product_id = ?", product.ID).First(&inventory).Error)
	assert.Equal(t, uint(70), inventory.StockIn)
	assert.Equal(t, uint(30), inventory.StockOut)
	assert.Equal(t, uint(40), inventory.CurrentStock)

	// 出库不能超过当前库存
	_, err = svc.PatchStock(product.ID, -100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock")
}

func TestPatchStockPublishesLowStockAlert(t *testing.T) {
	db := setupTestDB(t)
	publisher := &recordingPublisher{}
	svc := NewProductService(db, publisher)
	seedCategory(t, db, "Electronics")

	minThreshold := uint(10)
	product, err := svc.Create(CreateProductParams{
		Name:              "Laptop",
		Price:             decimal.NewFromInt(999),
		StockQuantity:     50,
		CategoryName:      "Electronics",
		MinStockThreshold: &minThreshold,
	})
	require.NoError(t, err)
	require.Empty(t, publisher.alerts)

	// 跌破阈值时触发告警
	_, err = svc.PatchStock(product.ID, -45)
	require.NoError(t, err)
	require.Len(t, publisher.alerts, 1)
	assert.Equal(t, uint(5), publisher.alerts[0].StockQuantity)
}

func TestGetLowStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db, nil)
	seedCategory(t, db, "Electronics")

	low := uint(10)
	_, err := svc.Create(CreateProductParams{
		Name: "Cable", Price: decimal.NewFromInt(5), StockQuantity: 3,
		CategoryName: "Electronics", MinStockThreshold: &low,
	})
	require.NoError(t, err)
	_, err = svc.Create(CreateProductParams{
		Name: "Monitor", Price: decimal.NewFromInt(200), StockQuantity: 80,
		CategoryName: "Electronics", MinStockThreshold: &low,
	})
	require.NoError(t, err)

	products, err := svc.GetLowStock()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cable", products[0].Name)
}

func TestProductFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db, nil)
	seedCategory(t, db, "Electronics")
	seedCategory(t, db, "Furniture")

	_, err := svc.Create(CreateProductParams{
		Name: "Laptop", Price: decimal.NewFromInt(999), CategoryName: "Electronics",
	})
	require.NoError(t, err)
	_, err = svc.Create(CreateProductParams{
		Name: "Desk", Price: decimal.NewFromInt(150), CategoryName: "Furniture",
	})
	require.NoError(t, err)

	byCategory, total, err := svc.GetWithFiltersAndPage(ProductFilters{Category: "Electr"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Laptop", byCategory[0].Name)

	minPrice := decimal.NewFromInt(500)
	byPrice, total, err := svc.GetWithFiltersAndPage(ProductFilters{MinPrice: &minPrice}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Laptop", byPrice[0].Name)

	_, total, err = svc.GetWithFiltersAndPage(ProductFilters{Search: "des"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestDeleteProductRemovesInventory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db, nil)
	seedCategory(t, db, "Electronics")

	product, err := svc.Create(CreateProductParams{
		Name: "Laptop", Price: decimal.NewFromInt(999), StockQuantity: 5, CategoryName: "Electronics",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(product.ID))

	var count int64
	db.Model(&models.Inventory{}).Where("product_id = ?", product.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
