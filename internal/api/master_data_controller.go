package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/propflow/propertyflow/internal/model"
	"github.com/propflow/propertyflow/internal/service"
)

// MasterDataController 主数据控制器
// 银行、物业类型、地区与系统配置;写操作走 admin-only 路由
type MasterDataController struct {
	masterData service.MasterDataService
}

// NewMasterDataController 创建主数据控制器
func NewMasterDataController(masterData service.MasterDataService) *MasterDataController {
	return &MasterDataController{masterData: masterData}
}

// ListBanks 列出银行
func (c *MasterDataController) ListBanks(ctx *gin.Context) {
	banks, err := c.masterData.ListBanks()
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, banks)
}

// SaveBank 新建或更新银行
func (c *MasterDataController) SaveBank(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var bank model.BankModel
	if err := ctx.ShouldBindJSON(&bank); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	saved, err := c.masterData.SaveBank(&bank, id.ID, clientMeta(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, saved)
}

// DeleteBank 删除银行
func (c *MasterDataController) DeleteBank(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	if err := c.masterData.DeleteBank(ctx.Param("id"), id.ID, clientMeta(ctx)); err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, nil)
}

// ListPropertyTypes 列出物业类型
func (c *MasterDataController) ListPropertyTypes(ctx *gin.Context) {
	types, err := c.masterData.ListPropertyTypes()
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, types)
}

// SavePropertyType 新建或更新物业类型
func (c *MasterDataController) SavePropertyType(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var pt model.PropertyTypeModel
	if err := ctx.ShouldBindJSON(&pt); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	saved, err := c.masterData.SavePropertyType(&pt, id.ID, clientMeta(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, saved)
}

// DeletePropertyType 删除物业类型
func (c *MasterDataController) DeletePropertyType(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	if err := c.masterData.DeletePropertyType(ctx.Param("id"), id.ID, clientMeta(ctx)); err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, nil)
}

// ListLocations 列出地区
func (c *MasterDataController) ListLocations(ctx *gin.Context) {
	locations, err := c.masterData.ListLocations()
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, locations)
}

// SaveLocation 新建或更新地区
func (c *MasterDataController) SaveLocation(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var location model.LocationModel
	if err := ctx.ShouldBindJSON(&location); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	saved, err := c.masterData.SaveLocation(&location, id.ID, clientMeta(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, saved)
}

// DeleteLocation 删除地区
func (c *MasterDataController) DeleteLocation(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	if err := c.masterData.DeleteLocation(ctx.Param("id"), id.ID, clientMeta(ctx)); err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, nil)
}

// ListConfigurations 列出系统配置
func (c *MasterDataController) ListConfigurations(ctx *gin.Context) {
	configs, err := c.masterData.ListConfigurations()
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, configs)
}

// SaveConfiguration 新建或更新系统配置
func (c *MasterDataController) SaveConfiguration(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var cfg model.SystemConfigurationModel
	if err := ctx.ShouldBindJSON(&cfg); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	saved, err := c.masterData.SaveConfiguration(&cfg, id.ID, clientMeta(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, saved)
}

// DeleteConfiguration 删除系统配置
func (c *MasterDataController) DeleteConfiguration(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	if err := c.masterData.DeleteConfiguration(ctx.Param("id"), id.ID, clientMeta(ctx)); err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, nil)
}
