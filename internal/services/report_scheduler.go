package services

import (
	"fmt"

	"inventorywise/pkg/logger"
	"inventorywise/pkg/queue"

	"github.com/robfig/cron/v3"
)

// ReportScheduler 低库存报告定时调度器
// 按配置的cron表达式触发报告任务入队，实际处理在队列工作协程中完成。
type ReportScheduler struct {
	reports  *StockReportService
	cron     *cron.Cron
	cronSpec string
	entryID  cron.EntryID
	running  bool
}

func NewReportScheduler(reports *StockReportService, cronSpec string) *ReportScheduler {
	return &ReportScheduler{
		reports:  reports,
		cron:     cron.New(),
		cronSpec: cronSpec,
	}
}

// Start 启动调度器
func (s *ReportScheduler) Start() error {
	if s.running {
		return fmt.Errorf("report scheduler already running")
	}

	if !isValidCron(s.cronSpec) {
		return fmt.Errorf("invalid cron expression: %s", s.cronSpec)
	}

	entryID, err := s.cron.AddFunc(s.cronSpec, func() {
		if _, err := s.reports.Trigger(queue.SourceSchedule, 0); err != nil {
			logger.GetLogger().Errorf("scheduled stock report trigger failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register report job: %v", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.running = true

	logger.GetLogger().Infof("report scheduler started, cron: %s", s.cronSpec)
	return nil
}

// Stop 停止调度器
func (s *ReportScheduler) Stop() {
	if !s.running {
		return
	}

	logger.GetLogger().Info("stopping report scheduler")
	s.cron.Stop()
	s.running = false
}

// NextRun 下次执行时间
func (s *ReportScheduler) NextRun() string {
	if !s.running {
		return ""
	}
	entry := s.cron.Entry(s.entryID)
	if entry.ID == 0 {
		return ""
	}
	return entry.Next.Format("2006-01-02 15:04:05")
}

// isValidCron 验证cron表达式
func isValidCron(spec string) bool {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(spec)
	return err == nil
}
