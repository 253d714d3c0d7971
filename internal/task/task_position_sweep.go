package task

import (
	"context"

	"github.com/haierkeys/knowledge-graph-service/internal/app"

	"go.uber.org/zap"
)

// PositionSweepTask deletes stored coordinates whose entity no longer exists
// PositionSweepTask 删除实体已不存在的节点坐标
type PositionSweepTask struct {
	app      *app.App
	schedule string
}

// NewPositionSweepTask 创建孤儿坐标清理任务
func NewPositionSweepTask(a *app.App, schedule string) *PositionSweepTask {
	return &PositionSweepTask{app: a, schedule: schedule}
}

// Name 返回任务名称
func (t *PositionSweepTask) Name() string {
	return "PositionSweepTask"
}

// Run 执行清理
func (t *PositionSweepTask) Run(ctx context.Context) error {
	removed, err := t.app.PositionRepo.DeleteOrphans(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		t.app.Logger().Info("orphan positions removed", zap.Int64("count", removed))
	}
	return nil
}

// Schedule 返回 cron 表达式
func (t *PositionSweepTask) Schedule() string {
	return t.schedule
}

// IsStartupRun 是否立即执行一次
func (t *PositionSweepTask) IsStartupRun() bool {
	return false
}
