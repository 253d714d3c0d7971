package websocket_router

import (
	"strings"

	"github.com/haierkeys/knowledge-graph-service/internal/app"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"
	pkgapp "github.com/haierkeys/knowledge-graph-service/pkg/app"
	"github.com/haierkeys/knowledge-graph-service/pkg/code"

	"go.uber.org/zap"
)

// EntityWSHandler WebSocket entity handler
// EntityWSHandler WebSocket 实体处理器
// Uses App Container to inject dependencies
// 使用 App Container 注入依赖
type EntityWSHandler struct {
	*WSHandler
}

// NewEntityWSHandler creates EntityWSHandler instance
// NewEntityWSHandler 创建 EntityWSHandler 实例
func NewEntityWSHandler(a *app.App) *EntityWSHandler {
	return &EntityWSHandler{
		WSHandler: NewWSHandler(a),
	}
}

// OwnerInfo validates the owner identity sent with Register.
// There is no account system; any non-empty identifier up to 64 chars
// names a private graph.
// OwnerInfo 校验 Register 消息携带的所有者标识。
// 没有账号体系，任意 64 字符以内的非空标识都对应一张私有图谱。
func (h *EntityWSHandler) OwnerInfo(c *pkgapp.WebsocketClient, ownerID string) (*pkgapp.OwnerSelectEntity, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || len(ownerID) > 64 {
		return nil, code.ErrorInvalidOwner
	}
	return &pkgapp.OwnerSelectEntity{ID: ownerID}, nil
}

// EntityModify handles entity create/update messages.
// The body is persisted, links are reconciled and every other client of
// the owner receives an entitySync broadcast.
// EntityModify 处理实体创建/修改消息：正文落库、协调出边，
// 并向所有者的其他连接广播 entitySync。
func (h *EntityWSHandler) EntityModify(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.EntityModifyRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondErrorWithData(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, errs.MapsToString(), "websocket_router.entity.EntityModify.BindAndValid")
		return
	}

	ctx := c.Context()

	result, err := h.App.EntityService.Save(ctx, c.Owner.ID, params)
	if err != nil {
		h.respondError(c, code.ErrorEntityUpdateFailed, err, "websocket_router.entity.EntityModify")
		return
	}

	h.logInfo(c, "websocket_router.entity.EntityModify",
		zap.String("ownerId", c.Owner.ID),
		zap.String("entityId", result.Entity.ID))

	c.ToResponse(code.Success.WithData(result), msg.Type)
}

// EntityDelete handles entity delete messages, cascading edges and
// stored position
// EntityDelete 处理实体删除消息，级联清理边和坐标
func (h *EntityWSHandler) EntityDelete(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.EntityDeleteRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondErrorWithData(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, errs.MapsToString(), "websocket_router.entity.EntityDelete.BindAndValid")
		return
	}

	ctx := c.Context()

	if err := h.App.EntityService.Delete(ctx, c.Owner.ID, params); err != nil {
		h.respondError(c, code.ErrorEntityDeleteFailed, err, "websocket_router.entity.EntityDelete")
		return
	}

	c.ToResponse(code.SuccessDelete.WithData(params), msg.Type)
}

// EntityLinks handles link query messages for one entity
// EntityLinks 处理单个实体的链接查询消息
func (h *EntityWSHandler) EntityLinks(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.LinkQueryRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondErrorWithData(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, errs.MapsToString(), "websocket_router.entity.EntityLinks.BindAndValid")
		return
	}

	ctx := c.Context()

	result, err := h.App.LinkService.GetLinks(ctx, c.Owner.ID, params)
	if err != nil {
		h.respondError(c, code.ErrorLinkQueryFailed, err, "websocket_router.entity.EntityLinks")
		return
	}

	c.ToResponse(code.Success.WithData(result), msg.Type)
}
