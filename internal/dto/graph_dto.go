package dto

// GraphRequest Filter parameters for a graph projection
// GraphRequest 图谱投影的过滤参数
type GraphRequest struct {
	Types           []string `json:"types" form:"types" binding:"omitempty,dive,entitytype"`
	Tags            []string `json:"tags" form:"tags"`
	Search          string   `json:"search" form:"search"`
	IncludeIsolated bool     `json:"includeIsolated" form:"includeIsolated"`
	FocusID         string   `json:"focusId" form:"focusId"`
}

// NodePosition A node's stored or synthesized coordinate
type NodePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GraphNode One node of the projected graph
// GraphNode 投影图中的一个节点
type GraphNode struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Label    string        `json:"label"`
	Tags     []string      `json:"tags"`
	Position *NodePosition `json:"position,omitempty"`
}

// GraphEdge One edge of the projected graph
type GraphEdge struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
}

// GraphProjection Nodes and edges after all filters are applied
// GraphProjection 应用所有过滤条件之后的节点和边
type GraphProjection struct {
	Nodes []*GraphNode `json:"nodes"`
	Edges []*GraphEdge `json:"edges"`
}

// PositionSaveRequest Request parameters for persisting one node coordinate
// PositionSaveRequest 持久化单个节点坐标的请求参数
type PositionSaveRequest struct {
	EntityID string  `json:"entityId" form:"entityId" binding:"required"`
	X        float64 `json:"x" form:"x"`
	Y        float64 `json:"y" form:"y"`
}
