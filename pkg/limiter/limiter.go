// Package limiter provides token-bucket rate limiting keyed by request path
// Package limiter 提供按请求路径划分的令牌桶限流
package limiter

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face is the limiter interface used by the rate limiting middleware
// Face 是限流中间件使用的限流器接口
type Face interface {
	// Key derives the bucket key from the request // 从请求中推导桶的 key
	Key(c *gin.Context) string
	// GetBucket returns the bucket for a key // 返回 key 对应的令牌桶
	GetBucket(key string) (*ratelimit.Bucket, bool)
	// AddBuckets registers bucket rules // 注册桶规则
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule describes one token bucket
// BucketRule 描述一个令牌桶
type BucketRule struct {
	// Key bucket key, for MethodLimiter this is the URI prefix // 桶的 key，MethodLimiter 下为 URI 前缀
	Key string
	// FillInterval token fill interval // 放令牌的间隔
	FillInterval time.Duration
	// Capacity bucket capacity // 桶容量
	Capacity int64
	// Quantum tokens added per interval // 每次放入的令牌数
	Quantum int64
}

// Limiter holds the buckets
type Limiter struct {
	limiterBuckets map[string]*ratelimit.Bucket
}
