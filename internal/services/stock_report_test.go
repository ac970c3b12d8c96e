package services

import (
	"errors"
	"testing"

	"inventorywise/internal/models"
	"inventorywise/pkg/config"
	"inventorywise/pkg/queue"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMailer 记录发送请求，可配置为失败
type fakeMailer struct {
	sent []fakeMail
	fail bool
}

type fakeMail struct {
	subject    string
	recipients []string
}

func (m *fakeMailer) Send(subject, body string, recipients []string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, fakeMail{subject: subject, recipients: recipients})
	return nil
}

func reportTestConfig() *config.ReportConfig {
	return &config.ReportConfig{
		CronSpec:   "0 8 * * *",
		MaxRetries: 3,
	}
}

func TestBuildLowStockItems(t *testing.T) {
	db := setupTestDB(t)
	productSvc := NewProductService(db, nil)
	seedCategory(t, db, "Electronics")

	low := uint(10)
	_, err := productSvc.Create(CreateProductParams{
		Name: "Cable", Price: decimal.NewFromInt(5), StockQuantity: 3,
		CategoryName: "Electronics", MinStockThreshold: &low,
	})
	require.NoError(t, err)
	_, err = productSvc.Create(CreateProductParams{
		Name: "Monitor", Price: decimal.NewFromInt(200), StockQuantity: 80,
		CategoryName: "Electronics", MinStockThreshold: &low,
	})
	require.NoError(t, err)

	svc := NewStockReportService(db, nil, &fakeMailer{}, reportTestConfig())
	items, err := svc.BuildLowStockItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Cable", items[0].Name)
	assert.Equal(t, uint(3), items[0].CurrentStock)
	assert.Equal(t, uint(10), items[0].MinThreshold)
}

func TestRecipientsActiveAdminsAndStockManagers(t *testing.T) {
	db := setupTestDB(t)
	userSvc := NewUserService(db)
	permIDs := seedRBAC(t, db)
	admin := seedRole(t, db, models.RoleAdmin, permIDs, models.AllPermissionCodes...)
	stockManager := seedRole(t, db, models.RoleStockManager, permIDs, models.PermViewItem, models.PermEditItem)
	salesRep := seedRole(t, db, models.RoleSalesRep, permIDs, models.PermViewItem)

	alice, err := userSvc.Create(CreateUserParams{Username: "alice", Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	require.NoError(t, userSvc.AddRole(alice.ID, admin.ID, 0))

	bob, err := userSvc.Create(CreateUserParams{Username: "bob", Email: "bob@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	require.NoError(t, userSvc.AddRole(bob.ID, stockManager.ID, 0))

	// 销售角色不在收件人列表
	carol, err := userSvc.Create(CreateUserParams{Username: "carol", Email: "carol@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	require.NoError(t, userSvc.AddRole(carol.ID, salesRep.ID, 0))

	// 停用的管理员不收报告
	dave, err := userSvc.Create(CreateUserParams{Username: "dave", Email: "dave@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	require.NoError(t, userSvc.AddRole(dave.ID, admin.ID, 0))
	_, err = userSvc.Deactivate(dave.ID)
	require.NoError(t, err)

	cfg := reportTestConfig()
	cfg.Recipients = []string{"ops@example.com", "alice@example.com"}

	svc := NewStockReportService(db, nil, &fakeMailer{}, cfg)
	recipients, err := svc.Recipients()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com", "ops@example.com"}, recipients)
}

func TestProcessSendsReport(t *testing.T) {
	db := setupTestDB(t)
	userSvc := NewUserService(db)
	productSvc := NewProductService(db, nil)
	permIDs := seedRBAC(t, db)
	admin := seedRole(t, db, models.RoleAdmin, permIDs, models.AllPermissionCodes...)

	alice, err := userSvc.Create(CreateUserParams{Username: "alice", Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	require.NoError(t, userSvc.AddRole(alice.ID, admin.ID, 0))

	seedCategory(t, db, "Electronics")
	low := uint(10)
	_, err = productSvc.Create(CreateProductParams{
		Name: "Cable", Price: decimal.NewFromInt(5), StockQuantity: 3,
		CategoryName: "Electronics", MinStockThreshold: &low,
	})
	require.NoError(t, err)

	mail := &fakeMailer{}
	svc := NewStockReportService(db, nil, mail, reportTestConfig())

	job := &queue.ReportJob{JobID: "job-1", Source: queue.SourceManual, Attempt: 1}
	require.NoError(t, svc.Process(job))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"alice@example.com"}, mail.sent[0].recipients)

	var report models.StockReport
	require.NoError(t, db.Where("job_id = ?", "job-1").First(&report).Error)
	assert.Equal(t, models.ReportStatusSent, report.Status)
	assert.Equal(t, 1, report.ItemCount)
	assert.Equal(t, 1, report.RecipientCount)
}

func TestProcessEmptyReportSkipsEmail(t *testing.T) {
	db := setupTestDB(t)

	mail := &fakeMailer{}
	svc := NewStockReportService(db, nil, mail, reportTestConfig())

	job := &queue.ReportJob{JobID: "job-2", Source: queue.SourceSchedule, Attempt: 1}
	require.NoError(t, svc.Process(job))

	assert.Empty(t, mail.sent)

	var report models.StockReport
	require.NoError(t, db.Where("job_id = ?", "job-2").First(&report).Error)
	assert.Equal(t, models.ReportStatusEmpty, report.Status)
}

func TestProcessFailureAfterMaxRetries(t *testing.T) {
	db := setupTestDB(t)
	userSvc := NewUserService(db)
	productSvc := NewProductService(db, nil)
	permIDs := seedRBAC(t, db)
	admin := seedRole(t, db, models.RoleAdmin, permIDs, models.AllPermissionCodes...)

	alice, err := userSvc.Create(CreateUserParams{Username: "alice", Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	require.NoError(t, userSvc.AddRole(alice.ID, admin.ID, 0))

	seedCategory(t, db, "Electronics")
	low := uint(10)
	_, err = productSvc.Create(CreateProductParams{
		Name: "Cable", Price: decimal.NewFromInt(5), StockQuantity: 3,
		CategoryName: "Electronics", MinStockThreshold: &low,
	})
	require.NoError(t, err)

	cfg := reportTestConfig()
	svc := NewStockReportService(db, nil, &fakeMailer{fail: true}, cfg)

	// 已到最大尝试次数，失败落库而不再重试入队
	job := &queue.ReportJob{JobID: "job-3", Source: queue.SourceManual, Attempt: cfg.MaxRetries}
	err = svc.Process(job)
	require.Error(t, err)

	var report models.StockReport
	require.NoError(t, db.Where("job_id = ?", "job-3").First(&report).Error)
	assert.Equal(t, models.ReportStatusFailed, report.Status)
	assert.Contains(t, report.Error, "smtp unavailable")
}
