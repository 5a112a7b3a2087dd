package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/propflow/propertyflow/internal/auth"
	"github.com/propflow/propertyflow/internal/service"
)

// clientMeta 从请求提取客户端元数据
func clientMeta(c *gin.Context) service.ClientMeta {
	return service.ClientMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// AuthController 认证控制器
type AuthController struct {
	authService service.AuthService
}

// NewAuthController 创建认证控制器
func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Login 凭据登录
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := c.authService.Login(&req, clientMeta(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, result)
}

// Logout 登出
func (c *AuthController) Logout(ctx *gin.Context) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "authentication required", "")
		return
	}

	if err := c.authService.Logout(identity.ID, clientMeta(ctx)); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// Me 返回当前登录用户
func (c *AuthController) Me(ctx *gin.Context) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "authentication required", "")
		return
	}

	user, err := c.authService.CurrentUser(identity.ID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}
