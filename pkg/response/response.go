package response

import (
	"net/http"

	"inventorywise/pkg/errors"
	"inventorywise/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// Response 统一返回格式
// 所有响应携带message和status_code字段，错误响应使用真实的HTTP状态码。
type Response struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
}

// ========== 基础返回方法 ==========

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Message:    "success",
		StatusCode: errors.CodeSuccess,
		Data:       data,
	})
}

// SuccessWithMessage 成功返回（自定义消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Message:    message,
		StatusCode: errors.CodeSuccess,
		Data:       data,
	})
}

// Created 创建成功返回
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Message:    message,
		StatusCode: errors.CodeCreated,
		Data:       data,
	})
}

// SuccessWithPage 分页成功返回
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "success",
		"status_code": errors.CodeSuccess,
		"data":        data,
		"page_info":   pageInfo,
	})
}

// SuccessRaw 成功返回（调用方自定义字段，补齐message和status_code）
func SuccessRaw(c *gin.Context, body gin.H) {
	if _, ok := body["message"]; !ok {
		body["message"] = "success"
	}
	body["status_code"] = errors.CodeSuccess
	c.JSON(http.StatusOK, body)
}

// Error 通用错误返回
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Message:    message,
		StatusCode: code,
	})
}

// ========== HTTP错误快捷方法 ==========

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidParam, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errors.CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, errors.CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, errors.CodeNotFound, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, errors.CodeServerError, message)
}
