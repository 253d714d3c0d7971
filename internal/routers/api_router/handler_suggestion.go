package api_router

import (
	"github.com/gin-gonic/gin"
	"github.com/haierkeys/knowledge-graph-service/internal/app"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"
	"github.com/haierkeys/knowledge-graph-service/internal/middleware"
	pkgapp "github.com/haierkeys/knowledge-graph-service/pkg/app"
	"github.com/haierkeys/knowledge-graph-service/pkg/code"
	apperrors "github.com/haierkeys/knowledge-graph-service/pkg/errors"
	"go.uber.org/zap"
)

// SuggestionHandler 联想 API 路由处理器
type SuggestionHandler struct {
	*Handler
}

// NewSuggestionHandler 创建 SuggestionHandler 实例
func NewSuggestionHandler(a *app.App) *SuggestionHandler {
	return &SuggestionHandler{Handler: NewHandler(a)}
}

// Suggest 引用联想
// @Summary 引用联想
// @Description 输入 [[ 片段时返回按序排列的标题候选，末尾可能带 isNew 的新建候选
// @Tags 联想
// @Param X-Owner-ID header string true "所有者标识"
// @Produce json
// @Param params query dto.SuggestionRequest true "联想参数"
// @Success 200 {object} pkgapp.Res{data=[]dto.SuggestionItem} "成功"
// @Router /api/suggestions [get]
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.SuggestionRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("SuggestionHandler.Suggest.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := middleware.GetOwnerID(c)

	items, err := h.App.SuggestionService.Suggest(c.Request.Context(), ownerID, params)
	if err != nil {
		h.App.Logger().Error("SuggestionHandler.Suggest",
			zap.Error(err),
			zap.String("traceId", middleware.GetTraceIDFromGin(c)))
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(items))
}
