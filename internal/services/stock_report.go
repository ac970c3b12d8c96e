package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"inventorywise/internal/models"
	"inventorywise/pkg/config"
	"inventorywise/pkg/logger"
	"inventorywise/pkg/mailer"
	"inventorywise/pkg/queue"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockReportService 低库存报告服务
// 报告经由Redis队列异步处理：触发方入队，工作协程出队、汇总低库存商品并发邮件。
type StockReportService struct {
	db     *gorm.DB
	queue  *queue.RedisQueue
	mailer mailer.Mailer
	cfg    *config.ReportConfig

	stopCh chan struct{}
}

func NewStockReportService(db *gorm.DB, q *queue.RedisQueue, m mailer.Mailer, cfg *config.ReportConfig) *StockReportService {
	return &StockReportService{
		db:     db,
		queue:  q,
		mailer: m,
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}
}

// Trigger 触发一次报告任务（入队）
func (s *StockReportService) Trigger(source string, triggeredBy uint) (*queue.ReportJob, error) {
	job := &queue.ReportJob{
		JobID:       uuid.New().String(),
		TriggeredBy: triggeredBy,
		Source:      source,
		Attempt:     1,
	}

	if err := s.queue.Enqueue(job); err != nil {
		return nil, err
	}

	logger.GetLogger().Infof("stock report job enqueued: %s (source: %s)", job.JobID, source)
	return job, nil
}

// BuildLowStockItems 汇总当前全部低库存商品
func (s *StockReportService) BuildLowStockItems() ([]models.StockReportItem, error) {
	var products []models.Product
	err := s.db.Where("stock_quantity <= min_stock_threshold").
		Order("stock_quantity ASC").Find(&products).Error
	if err != nil {
		return nil, err
	}

	items := make([]models.StockReportItem, 0, len(products))
	for _, p := range products {
		items = append(items, models.StockReportItem{
			Name:         p.Name,
			SKU:          p.SKU,
			CurrentStock: p.StockQuantity,
			MinThreshold: p.MinStockThreshold,
			MaxThreshold: p.MaxStockThreshold,
		})
	}
	return items, nil
}

// Recipients 报告收件人：活跃的admin/stock_manager用户邮箱，加上配置的额外收件人
func (s *StockReportService) Recipients() ([]string, error) {
	var emails []string
	err := s.db.Model(&models.User{}).
		Distinct("users.email").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("users.is_active = ? AND roles.name IN ?", true,
			[]string{models.RoleAdmin, models.RoleStockManager}).
		Pluck("users.email", &emails).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(emails))
	for _, e := range emails {
		seen[e] = true
	}
	for _, extra := range s.cfg.Recipients {
		if !seen[extra] {
			emails = append(emails, extra)
			seen[extra] = true
		}
	}
	return emails, nil
}

// Process 处理一条报告任务
// 邮件发送失败时重试入队，直到超过最大重试次数才标记失败。
func (s *StockReportService) Process(job *queue.ReportJob) error {
	log := logger.GetLogger()

	items, err := s.BuildLowStockItems()
	if err != nil {
		return fmt.Errorf("failed to collect low stock items: %w", err)
	}

	report := &models.StockReport{
		JobID:     job.JobID,
		Source:    job.Source,
		Status:    models.ReportStatusPending,
		ItemCount: len(items),
	}

	if payload, err := json.Marshal(items); err == nil {
		report.Payload = payload
	}

	// 没有低库存商品时不发邮件
	if len(items) == 0 {
		report.Status = models.ReportStatusEmpty
		log.Infof("stock report %s: no low stock items, skipping email", job.JobID)
		return s.db.Create(report).Error
	}

	recipients, err := s.Recipients()
	if err != nil {
		return fmt.Errorf("failed to resolve recipients: %w", err)
	}
	report.RecipientCount = len(recipients)

	if len(recipients) == 0 {
		report.Status = models.ReportStatusFailed
		report.Error = "no recipients"
		log.Warnf("stock report %s: no recipients configured", job.JobID)
		return s.db.Create(report).Error
	}

	subject := fmt.Sprintf("Low Stock Report - %s", time.Now().Format("2006-01-02"))
	body := s.renderBody(items)

	if err := s.mailer.Send(subject, body, recipients); err != nil {
		if job.Attempt < s.cfg.MaxRetries {
			log.Warnf("stock report %s: email failed (attempt %d/%d), requeueing: %v",
				job.JobID, job.Attempt, s.cfg.MaxRetries, err)
			return s.queue.Requeue(job)
		}

		report.Status = models.ReportStatusFailed
		report.Error = err.Error()
		log.Errorf("stock report %s: email failed after %d attempts: %v", job.JobID, job.Attempt, err)
		if dbErr := s.db.Create(report).Error; dbErr != nil {
			return dbErr
		}
		return err
	}

	report.Status = models.ReportStatusSent
	log.Infof("stock report %s: sent %d items to %d recipients", job.JobID, len(items), len(recipients))
	return s.db.Create(report).Error
}

// StartWorker 启动队列工作协程
func (s *StockReportService) StartWorker() {
	go func() {
		logger.GetLogger().Info("stock report worker started")
		for {
			select {
			case <-s.stopCh:
				logger.GetLogger().Info("stock report worker stopped")
				return
			default:
			}

			job, err := s.queue.Dequeue(5 * time.Second)
			if err != nil {
				logger.GetLogger().Errorf("stock report dequeue failed: %v", err)
				time.Sleep(time.Second)
				continue
			}
			if job == nil {
				continue
			}

			if err := s.Process(job); err != nil {
				logger.GetLogger().Errorf("stock report job %s failed: %v", job.JobID, err)
			}
		}
	}()
}

// StopWorker 停止队列工作协程
func (s *StockReportService) StopWorker() {
	close(s.stopCh)
}

// GetWithPage 分页获取报告执行记录
func (s *StockReportService) GetWithPage(page, pageSize int) ([]*models.StockReport, int64, error) {
	var reports []*models.StockReport
	var total int64

	if err := s.db.Model(&models.StockReport{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := s.db.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

// renderBody 渲染报告邮件正文
func (s *StockReportService) renderBody(items []models.StockReportItem) string {
	var b strings.Builder
	b.WriteString("<h2>Low Stock Report</h2>")
	b.WriteString(fmt.Sprintf("<p>%d product(s) are at or below their minimum stock threshold:</p>", len(items)))
	b.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Product</th><th>SKU</th><th>Current Stock</th><th>Min Threshold</th><th>Max Threshold</th></tr>")
	for _, item := range items {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%d</td></tr>",
			item.Name, item.SKU, item.CurrentStock, item.MinThreshold, item.MaxThreshold))
	}
	b.WriteString("</table>")
	b.WriteString("<p>Please restock the listed products.</p>")
	return b.String()
}
