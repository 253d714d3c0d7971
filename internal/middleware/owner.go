package middleware

import (
	"strings"

	"github.com/haierkeys/knowledge-graph-service/pkg/app"
	"github.com/haierkeys/knowledge-graph-service/pkg/code"

	"github.com/gin-gonic/gin"
)

const (
	// OwnerIDHeader 携带所有者标识的请求头
	OwnerIDHeader = "X-Owner-ID"
	// OwnerIDKey Context 中存储所有者标识的键
	OwnerIDKey = "owner_id"
)

// OwnerAuth extracts the owner identity from the request.
// Every graph read and write is scoped to one owner; a request without
// an identity is rejected before it reaches a handler.
// OwnerAuth 从请求中提取所有者标识，没有标识的请求在进入处理器前被拒绝。
func OwnerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := strings.TrimSpace(c.GetHeader(OwnerIDHeader))
		if ownerID == "" {
			ownerID = strings.TrimSpace(c.Query("owner"))
		}
		if ownerID == "" {
			app.NewResponse(c).ToResponse(code.ErrorInvalidOwner)
			c.Abort()
			return
		}
		c.Set(OwnerIDKey, ownerID)
		c.Next()
	}
}

// GetOwnerID reads the owner identity stored by OwnerAuth
func GetOwnerID(c *gin.Context) string {
	if v, exists := c.Get(OwnerIDKey); exists {
		if ownerID, ok := v.(string); ok {
			return ownerID
		}
	}
	return ""
}
