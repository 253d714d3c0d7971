// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Suggestion SuggestionServiceConfig // Suggestion index config // 联想索引配置
	Graph      GraphServiceConfig      // Graph projection config // 图谱投影配置
}

// SuggestionServiceConfig suggestion service configuration
// SuggestionServiceConfig 联想服务配置
type SuggestionServiceConfig struct {
	MaxResults int // Max ranked candidates per query (default 10) // 每次查询返回的最大候选数（默认 10）
	CacheSize  int // Owner index LRU capacity // 所有者索引 LRU 容量
}

// GraphServiceConfig graph service configuration
// GraphServiceConfig 图谱服务配置
type GraphServiceConfig struct {
	PositionCacheSize int // Owner position map LRU capacity // 所有者坐标表 LRU 容量
}

const (
	defaultMaxSuggestions    = 10
	defaultIndexCacheSize    = 128
	defaultPositionCacheSize = 128
)

// Normalize fills unset fields with defaults
func (c *ServiceConfig) Normalize() {
	if c.Suggestion.MaxResults <= 0 {
		c.Suggestion.MaxResults = defaultMaxSuggestions
	}
	if c.Suggestion.CacheSize <= 0 {
		c.Suggestion.CacheSize = defaultIndexCacheSize
	}
	if c.Graph.PositionCacheSize <= 0 {
		c.Graph.PositionCacheSize = defaultPositionCacheSize
	}
}
