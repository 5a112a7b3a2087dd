package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propflow/propertyflow/internal/workflow"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serveError 用 HandleServiceError 处理给定错误并返回响应
func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleServiceError(c, err)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandleServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthenticated", workflow.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", &workflow.ForbiddenError{Reason: "not your file"}, http.StatusForbidden},
		{"not found", fmt.Errorf("file x: %w", workflow.ErrNotFound), http.StatusNotFound},
		{"concurrent modification", fmt.Errorf("file y: %w", workflow.ErrConcurrentModification), http.StatusConflict},
		{"invalid transition without field", fmt.Errorf("no: %w", workflow.ErrInvalidTransition), http.StatusBadRequest},
		{"dependency unavailable", fmt.Errorf("minio: %w", workflow.ErrDependencyUnavailable), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := serveError(t, tc.err)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.status, body.Code)
		})
	}
}

func TestHandleServiceErrorPayloadFailureCarriesField(t *testing.T) {
	// 载荷完整性失败返回 422 并指出字段
	w, body := serveError(t, workflow.NewTransitionError("photos", "at least one site photo is required"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "photos", body.Field)
	assert.Equal(t, "at least one site photo is required", body.Detail)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandlerMiddleware())
	router.GET("/api-error", func(c *gin.Context) {
		_ = c.Error(WrapError(errors.New("bad input"), http.StatusBadRequest, "validation failed"))
	})
	router.GET("/plain-error", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-error", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain-error", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, int64(45), p.Total)
	assert.Equal(t, 3, p.TotalPage)

	// 非法参数回落到默认值
	p = NewPagination(0, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Zero(t, p.TotalPage)
}
