package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/service"
)

// UserController 用户管理控制器
type UserController struct {
	users service.UserService
}

// NewUserController 创建用户管理控制器
func NewUserController(users service.UserService) *UserController {
	return &UserController{users: users}
}

// Create 创建用户
func (c *UserController) Create(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var req service.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	user, err := c.users.Create(&req, id.ID, clientMeta(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Created(ctx, user)
}

// List 查询用户列表
func (c *UserController) List(ctx *gin.Context) {
	filter := &repository.UserFilter{
		Page:     parseIntQuery(ctx, "page", 1),
		PageSize: parseIntQuery(ctx, "page_size", 20),
	}
	if position := ctx.Query("position"); position != "" {
		filter.Position = &position
	}
	if search := ctx.Query("search"); search != "" {
		filter.Search = &search
	}

	users, total, err := c.users.List(filter)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Paginated(ctx, users, NewPagination(filter.Page, filter.PageSize, total))
}

// ListByPosition 按角色查询可指派的活跃用户
func (c *UserController) ListByPosition(ctx *gin.Context) {
	users, err := c.users.ListByPosition(ctx.Param("position"))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, users)
}

// Get 查询用户
func (c *UserController) Get(ctx *gin.Context) {
	user, err := c.users.Get(ctx.Param("id"))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, user)
}

// Update 更新用户
func (c *UserController) Update(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var req service.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	user, err := c.users.Update(ctx.Param("id"), &req, id.ID, clientMeta(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, user)
}

// Deactivate 停用用户
func (c *UserController) Deactivate(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	if err := c.users.Deactivate(ctx.Param("id"), id.ID, clientMeta(ctx)); err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, nil)
}
