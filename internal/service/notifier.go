package service

// Websocket action types pushed to clients after a mutation
// 变更后推送给客户端的 websocket 动作类型
const (
	ActionEntitySync   = "entitySync"
	ActionEntityDelete = "entityDelete"
	ActionLinkSync     = "linkSync"
	ActionPositionSync = "positionSync"
)

// Notifier pushes change events to an owner's connected clients
// Clients treat each message as an invalidation signal and refetch the affected data
// 客户端将每条消息视为失效信号并重新拉取受影响的数据
type Notifier interface {
	Notify(ownerID string, action string, data any)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, any) {}

// NopNotifier returns a notifier that drops everything
func NopNotifier() Notifier {
	return noopNotifier{}
}
