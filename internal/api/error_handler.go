package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/propflow/propertyflow/internal/workflow"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// HandleServiceError 把服务层错误映射为 HTTP 响应
// 错误分类决定状态码:
//
//	Unauthenticated -> 401, Forbidden -> 403, NotFound -> 404,
//	ConcurrentModification -> 409 (可重试),
//	载荷完整性失败 -> 422, 其余非法转换 -> 400,
//	DependencyUnavailable -> 503 (可重试)
func HandleServiceError(c *gin.Context, err error) {
	var te *workflow.TransitionError

	switch {
	case errors.Is(err, workflow.ErrUnauthenticated):
		Error(c, http.StatusUnauthorized, "authentication required", err.Error())

	case workflow.IsForbidden(err):
		Error(c, http.StatusForbidden, "operation not permitted", err.Error())

	case workflow.IsNotFound(err):
		Error(c, http.StatusNotFound, "resource not found", err.Error())

	case workflow.IsConcurrentModification(err):
		Error(c, http.StatusConflict, "the file was modified by another user, please reload and retry", err.Error())

	case errors.As(err, &te):
		status := http.StatusBadRequest
		if te.Field != "" {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, ErrorResponse{
			Code:    status,
			Message: "invalid transition",
			Detail:  te.Reason,
			Field:   te.Field,
		})

	case workflow.IsInvalidTransition(err):
		Error(c, http.StatusBadRequest, "invalid transition", err.Error())

	case errors.Is(err, workflow.ErrDependencyUnavailable):
		Error(c, http.StatusServiceUnavailable, "a dependency is unavailable, please retry", err.Error())

	default:
		Error(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}
