package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldOwnerID 所有者 ID 字段
	FieldOwnerID = "ownerId"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldEntityID 实体 ID 字段
	FieldEntityID = "entityId"

	// FieldEntityType 实体类型字段
	FieldEntityType = "entityType"

	// FieldTitle 实体标题字段
	FieldTitle = "title"

	// FieldLinkID 链接 ID 字段
	FieldLinkID = "linkId"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldSessionID 会话 ID 字段
	FieldSessionID = "sessionId"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldCreated 新建边数量字段
	FieldCreated = "created"

	// FieldRemoved 移除边数量字段
	FieldRemoved = "removed"

	// FieldUnresolved 未解析引用数量字段
	FieldUnresolved = "unresolved"
)
