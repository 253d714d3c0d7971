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

// LinkHandler 链接 API 路由处理器
type LinkHandler struct {
	*Handler
}

// NewLinkHandler 创建 LinkHandler 实例
func NewLinkHandler(a *app.App) *LinkHandler {
	return &LinkHandler{Handler: NewHandler(a)}
}

// Links 获取实体的入边和出边
// @Summary 获取实体链接
// @Description 获取一个实体的反向链接和正向链接，均携带另一端实体的摘要
// @Tags 链接
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Param params query dto.LinkQueryRequest true "查询参数"
// @Success 200 {object} pkgapp.Res{data=dto.LinkQueryResult} "成功"
// @Router /api/entity/links [get]
func (h *LinkHandler) Links(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.LinkQueryRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("LinkHandler.Links.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	result, err := h.App.LinkService.GetLinks(ctx, ownerID, params)
	if err != nil {
		h.logError(ctx, "LinkHandler.Links", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// Resolve 解析单个引用标记
// @Summary 解析引用标记
// @Description 将一个引用标记解析为实体，未命中时返回 isNew 候选
// @Tags 链接
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Param params query dto.ResolveRequest true "解析参数"
// @Success 200 {object} pkgapp.Res{data=dto.ResolveResult} "成功"
// @Router /api/entity/resolve [get]
func (h *LinkHandler) Resolve(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ResolveRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("LinkHandler.Resolve.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	result, err := h.App.ResolverService.Resolve(ctx, ownerID, params)
	if err != nil {
		h.logError(ctx, "LinkHandler.Resolve", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// Materialize 从引用标记创建占位实体
// @Summary 物化引用
// @Description 为一个未解析引用创建空正文的占位实体，携带 sourceId 时同步为引用方建边
// @Tags 链接
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Param params body dto.MaterializeRequest true "物化参数"
// @Success 200 {object} pkgapp.Res{data=dto.EntityDTO} "成功"
// @Router /api/entity/materialize [post]
func (h *LinkHandler) Materialize(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.MaterializeRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("LinkHandler.Materialize.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	entity, err := h.App.ResolverService.Materialize(ctx, ownerID, params)
	if err != nil {
		h.logError(ctx, "LinkHandler.Materialize", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessCreate.WithData(entity))
}

func (h *LinkHandler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", middleware.GetTraceID(ctx)),
	)
}
