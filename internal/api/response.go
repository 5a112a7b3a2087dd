package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应格式
type Response struct {
	Code    int         `json:"code"`    // 状态码: 0 表示成功,非 0 表示失败
	Message string      `json:"message"` // 响应消息
	Data    interface{} `json:"data"`    // 响应数据
	Warning string      `json:"warning,omitempty"` // 非致命警告(如通知派发失败)
}

// ErrorResponse 错误响应格式
type ErrorResponse struct {
	Code    int    `json:"code"`             // 错误码
	Message string `json:"message"`          // 错误消息
	Detail  string `json:"detail,omitempty"` // 错误详情(可选)
	Field   string `json:"field,omitempty"`  // 载荷完整性失败时指出的字段
}

// PaginatedResponse 分页响应
type PaginatedResponse struct {
	Code       int            `json:"code"`
	Message    string         `json:"message"`
	Data       interface{}    `json:"data"`       // 数据列表
	Pagination PaginationInfo `json:"pagination"` // 分页信息
}

// PaginationInfo 分页信息
type PaginationInfo struct {
	Page      int   `json:"page"`       // 当前页码
	PageSize  int   `json:"page_size"`  // 每页数量
	Total     int64 `json:"total"`      // 总记录数
	TotalPage int   `json:"total_page"` // 总页数
}

// NewPagination 根据分页参数和总数构造分页信息
func NewPagination(page, pageSize int, total int64) PaginationInfo {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	totalPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	return PaginationInfo{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithWarning 成功响应并附带非致命警告
func SuccessWithWarning(c *gin.Context, data interface{}, warning string) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
		Warning: warning,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string, detail string) {
	statusCode := http.StatusInternalServerError
	if code >= 400 && code < 600 {
		statusCode = code
	}

	c.JSON(statusCode, ErrorResponse{
		Code:    code,
		Message: message,
		Detail:  detail,
	})
}

// Paginated 分页响应
func Paginated(c *gin.Context, data interface{}, pagination PaginationInfo) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Code:       0,
		Message:    "success",
		Data:       data,
		Pagination: pagination,
	})
}
