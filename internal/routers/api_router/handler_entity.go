// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/haierkeys/knowledge-graph-service/internal/app"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"
	"github.com/haierkeys/knowledge-graph-service/internal/middleware"
	pkgapp "github.com/haierkeys/knowledge-graph-service/pkg/app"
	"github.com/haierkeys/knowledge-graph-service/pkg/code"
	apperrors "github.com/haierkeys/knowledge-graph-service/pkg/errors"
	"go.uber.org/zap"
)

// EntityHandler 实体 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type EntityHandler struct {
	*Handler
}

// NewEntityHandler 创建 EntityHandler 实例
func NewEntityHandler(a *app.App) *EntityHandler {
	return &EntityHandler{Handler: NewHandler(a)}
}

// Get 获取单个实体详情
// @Summary 获取实体详情
// @Description 根据 ID 获取单个实体的正文和元数据
// @Tags 实体
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Param params query dto.EntityGetRequest true "获取参数"
// @Success 200 {object} pkgapp.Res{data=dto.EntityDTO} "成功"
// @Router /api/entity [get]
func (h *EntityHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EntityGetRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("EntityHandler.Get.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	entity, err := h.App.EntityService.Get(ctx, ownerID, params)
	if err != nil {
		h.logError(ctx, "EntityHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(entity))
}

// CreateOrUpdate 创建或修改实体
// @Summary 创建或修改实体
// @Description 保存实体正文并自动协调其出边；请求不带 ID 时创建
// @Tags 实体
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Param params body dto.EntityModifyRequest true "实体参数"
// @Success 200 {object} pkgapp.Res{data=dto.EntitySaveResult} "成功"
// @Router /api/entity [post]
func (h *EntityHandler) CreateOrUpdate(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EntityModifyRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("EntityHandler.CreateOrUpdate.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	result, err := h.App.EntityService.Save(ctx, ownerID, params)
	if err != nil {
		h.logError(ctx, "EntityHandler.CreateOrUpdate", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	if params.ID == "" {
		response.ToResponse(code.SuccessCreate.WithData(result))
		return
	}
	response.ToResponse(code.Success.WithData(result))
}

// Delete 删除实体
// @Summary 删除实体
// @Description 删除实体并级联清理其全部边和坐标
// @Tags 实体
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Param params query dto.EntityDeleteRequest true "删除参数"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/entity [delete]
func (h *EntityHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EntityDeleteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("EntityHandler.Delete.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	if err := h.App.EntityService.Delete(ctx, ownerID, params); err != nil {
		h.logError(ctx, "EntityHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessDelete)
}

// List 获取实体列表
// @Summary 获取实体列表
// @Description 分页获取当前所有者的实体，支持按类型和标题关键字过滤
// @Tags 实体
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Param params query dto.EntityListRequest true "查询参数"
// @Success 200 {object} pkgapp.Res{data=[]dto.EntityDTO} "成功"
// @Router /api/entities [get]
func (h *EntityHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EntityListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("EntityHandler.List.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSizeWithConfig(c, pkgapp.PaginationConfig{
		DefaultPageSize: h.App.Config().App.DefaultPageSize,
		MaxPageSize:     h.App.Config().App.MaxPageSize,
	})

	list, total, err := h.App.EntityService.List(ctx, ownerID, params, page, pageSize)
	if err != nil {
		h.logError(ctx, "EntityHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(total))
}

// logError 记录带 TraceID 的错误日志
func (h *EntityHandler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", middleware.GetTraceID(ctx)),
	)
}
