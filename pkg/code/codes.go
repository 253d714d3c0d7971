package code

// Success codes // 成功码
var (
	Success         = NewSuss(200, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate   = NewSuss(201, lang{en: "Created successfully", zh_cn: "创建成功"})
	SuccessDelete   = NewSuss(202, lang{en: "Deleted successfully", zh_cn: "删除成功"})
	SuccessNoChange = NewSuss(203, lang{en: "No change", zh_cn: "无变更"})
)

// Common errors // 通用错误
var (
	Failed                  = NewError(10000000, lang{en: "Failed", zh_cn: "失败"})
	ErrorServerInternal     = NewError(10000001, lang{en: "Server internal error", zh_cn: "服务内部错误"})
	ErrorInvalidParams      = NewError(10000002, lang{en: "Invalid request parameters", zh_cn: "请求参数错误"})
	ErrorNotFoundAPI        = NewError(10000003, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorTooManyRequests    = NewError(10000004, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorDBQuery            = NewError(10000005, lang{en: "Database query error", zh_cn: "数据库查询错误"})
	ErrorBackendUnavailable = NewError(10000006, lang{en: "Backend unavailable, please retry", zh_cn: "后端服务不可用，请重试"})
	ErrorRequestTimeout     = NewError(10000007, lang{en: "Request timeout", zh_cn: "请求超时"})
)

// Owner errors // 所有者错误
var (
	ErrorInvalidOwner = NewError(10000100, lang{en: "Invalid or missing owner ID", zh_cn: "所有者 ID 无效或缺失"})
)

// Entity errors // 实体错误
var (
	ErrorEntityNotFound     = NewError(10000200, lang{en: "Entity not found", zh_cn: "实体不存在"})
	ErrorEntityCreateFailed = NewError(10000201, lang{en: "Entity create failed", zh_cn: "实体创建失败"})
	ErrorEntityUpdateFailed = NewError(10000202, lang{en: "Entity update failed", zh_cn: "实体更新失败"})
	ErrorEntityDeleteFailed = NewError(10000203, lang{en: "Entity delete failed", zh_cn: "实体删除失败"})
	ErrorEntityListFailed   = NewError(10000204, lang{en: "Entity list query failed", zh_cn: "实体列表查询失败"})
	ErrorEntityTypeInvalid  = NewError(10000205, lang{en: "Invalid entity type", zh_cn: "实体类型无效"})
)

// Link errors // 链接错误
var (
	ErrorLinkConflict       = NewError(10000300, lang{en: "Concurrent link reconcile conflict, please retry", zh_cn: "链接并发调和冲突，请重试"})
	ErrorValidation         = NewError(10000301, lang{en: "Reference validation failed", zh_cn: "引用校验失败"})
	ErrorLinkQueryFailed    = NewError(10000302, lang{en: "Link query failed", zh_cn: "链接查询失败"})
	ErrorReconcileFailed    = NewError(10000303, lang{en: "Link reconcile failed", zh_cn: "链接调和失败"})
	ErrorMaterializeFailed  = NewError(10000304, lang{en: "Reference materialize failed", zh_cn: "引用实体化失败"})
	ErrorSuggestionFailed   = NewError(10000305, lang{en: "Suggestion query failed", zh_cn: "联想查询失败"})
	ErrorProjectionFailed   = NewError(10000306, lang{en: "Graph projection failed", zh_cn: "图谱投影失败"})
	ErrorPositionSaveFailed = NewError(10000307, lang{en: "Position save failed", zh_cn: "坐标保存失败"})
)
