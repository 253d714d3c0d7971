package task

import (
	"context"

	"github.com/haierkeys/knowledge-graph-service/internal/app"

	"go.uber.org/zap"
)

// LinkAuditTask removes edges whose source or target entity was deleted,
// then re-derives every entity's edges from its body. Normal writes never
// leave such divergence behind; this covers crashes between an entity
// delete and its cascade, and reconciles that failed after a save.
// LinkAuditTask 清理端点实体已被删除的边，再按正文重新推导每个实体的边。
// 兜底实体删除与级联之间崩溃、以及保存后协调失败的场景。
type LinkAuditTask struct {
	app      *app.App
	schedule string
}

// NewLinkAuditTask 创建悬空边审计任务
func NewLinkAuditTask(a *app.App, schedule string) *LinkAuditTask {
	return &LinkAuditTask{app: a, schedule: schedule}
}

// Name 返回任务名称
func (t *LinkAuditTask) Name() string {
	return "LinkAuditTask"
}

// Run 执行审计
func (t *LinkAuditTask) Run(ctx context.Context) error {
	removed, err := t.app.LinkRepo.DeleteDangling(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		t.app.Logger().Info("dangling links removed", zap.Int64("count", removed))
	}

	owners, err := t.app.EntityRepo.ListOwnerIDs(ctx)
	if err != nil {
		return err
	}
	var repaired int
	for _, owner := range owners {
		entities, err := t.app.EntityRepo.ListAll(ctx, owner)
		if err != nil {
			return err
		}
		for _, e := range entities {
			res, err := t.app.ResolverService.Reconcile(ctx, owner, e.ID)
			if err != nil {
				// One bad entity must not stall the sweep
				// 单个实体失败不阻塞整个扫描
				t.app.Logger().Warn("link audit reconcile failed",
					zap.String("ownerId", owner),
					zap.String("entityId", e.ID),
					zap.Error(err))
				continue
			}
			repaired += res.Created + res.Removed
		}
	}
	if repaired > 0 {
		t.app.Logger().Info("link divergence repaired", zap.Int("edges", repaired))
	}
	return nil
}

// Schedule 返回 cron 表达式
func (t *LinkAuditTask) Schedule() string {
	return t.schedule
}

// IsStartupRun 是否立即执行一次
func (t *LinkAuditTask) IsStartupRun() bool {
	return true
}
