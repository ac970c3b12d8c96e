package handlers

import (
	"inventorywise/internal/services"
	"inventorywise/pkg/pagination"
	"inventorywise/pkg/queue"
	"inventorywise/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *services.StockReportService
}

func NewReportHandler(reportService *services.StockReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Trigger 手动触发低库存报告
func (h *ReportHandler) Trigger(c *gin.Context) {
	userID := c.GetUint("user_id")

	job, err := h.reportService.Trigger(queue.SourceManual, userID)
	if err != nil {
		response.ServerError(c, "Failed to enqueue report job")
		return
	}

	response.SuccessRaw(c, gin.H{
		"message": "Report job enqueued",
		"job_id":  job.JobID,
	})
}

// List 分页获取报告执行记录
func (h *ReportHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	reports, total, err := h.reportService.GetWithPage(params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Failed to list reports")
		return
	}

	response.SuccessWithPage(c, reports, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Preview 预览当前低库存明细（不入队不发信）
func (h *ReportHandler) Preview(c *gin.Context) {
	items, err := h.reportService.BuildLowStockItems()
	if err != nil {
		response.ServerError(c, "Failed to collect low stock items")
		return
	}

	response.Success(c, items)
}
