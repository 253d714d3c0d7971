package global

import (
	"github.com/haierkeys/knowledge-graph-service/pkg/validator"
)

// Validator 全局验证器句柄，run_server 启动时注入
var Validator *validator.CustomValidator
