package dto

// LinkQueryRequest Request parameters for fetching an entity's links
// LinkQueryRequest 获取实体链接的请求参数
type LinkQueryRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// LinkItem One edge together with the entity at the far end
// LinkItem 一条边以及另一端的实体
type LinkItem struct {
	LinkID string       `json:"linkId"`
	Type   string       `json:"type"`
	Entity *EntityBrief `json:"entity"`
}

// LinkQueryResult Incoming and outgoing edges of one entity
// LinkQueryResult 一个实体的入边和出边
type LinkQueryResult struct {
	Incoming []*LinkItem `json:"incoming"`
	Outgoing []*LinkItem `json:"outgoing"`
}

// ReconcileResult Outcome of one reconcile pass over an entity's body
// ReconcileResult 对实体正文的一次协调结果
type ReconcileResult struct {
	Created    int      `json:"created"`
	Removed    int      `json:"removed"`
	Unresolved []string `json:"unresolved"`
}

// ResolveRequest Request parameters for resolving a reference token
type ResolveRequest struct {
	Token string `json:"token" form:"token" binding:"required"`
}

// ResolveResult Resolution outcome for a single token
// ResolveResult 单个引用标记的解析结果
type ResolveResult struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	IsNew bool   `json:"isNew"`
}

// MaterializeRequest Request parameters for creating a placeholder entity from a token
// MaterializeRequest 从引用标记创建占位实体的请求参数
type MaterializeRequest struct {
	Title string `json:"title" form:"title" binding:"required"`
	Type  string `json:"type" form:"type" binding:"omitempty,entitytype"`
	// SourceID referring entity whose body holds the token; linked right after creation
	// SourceID 引用方实体，其正文包含该标记，创建后立即建边
	SourceID string `json:"sourceId" form:"sourceId" binding:"omitempty"`
}
