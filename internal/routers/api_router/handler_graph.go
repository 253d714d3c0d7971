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

// GraphHandler 图谱 API 路由处理器
type GraphHandler struct {
	*Handler
}

// NewGraphHandler 创建 GraphHandler 实例
func NewGraphHandler(a *app.App) *GraphHandler {
	return &GraphHandler{Handler: NewHandler(a)}
}

// Projection 获取图谱投影
// @Summary 获取图谱投影
// @Description 按类型/标签/搜索/聚焦条件过滤后的节点和边视图，节点带持久化或占位坐标
// @Tags 图谱
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Param params query dto.GraphRequest true "过滤参数"
// @Success 200 {object} pkgapp.Res{data=dto.GraphProjection} "成功"
// @Router /api/graph [get]
func (h *GraphHandler) Projection(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.GraphRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("GraphHandler.Projection.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	projection, err := h.App.GraphService.Project(ctx, ownerID, params)
	if err != nil {
		h.logError(ctx, "GraphHandler.Projection", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(projection))
}

// SavePosition 保存节点坐标
// @Summary 保存节点坐标
// @Description 持久化单个节点的画布坐标，后续投影复用
// @Tags 图谱
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Param params body dto.PositionSaveRequest true "坐标参数"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/graph/position [post]
func (h *GraphHandler) SavePosition(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PositionSaveRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("GraphHandler.SavePosition.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	if err := h.App.GraphService.SavePosition(ctx, ownerID, params); err != nil {
		h.logError(ctx, "GraphHandler.SavePosition", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// ResetPositions 重置布局
// @Summary 重置布局
// @Description 清空当前所有者的全部持久化坐标，节点回落到占位坐标
// @Tags 图谱
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/graph/positions [delete]
func (h *GraphHandler) ResetPositions(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	if err := h.App.GraphService.ResetPositions(ctx, ownerID); err != nil {
		h.logError(ctx, "GraphHandler.ResetPositions", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessDelete)
}

func (h *GraphHandler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", middleware.GetTraceID(ctx)),
	)
}
