package task

import (
	"context"
	"testing"

	"github.com/haierkeys/knowledge-graph-service/internal/app"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newAuditApp wires a container against an in-memory sqlite database
// newAuditApp 基于内存 sqlite 组装一个应用容器
func newAuditApp(t *testing.T) *app.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg := &app.AppConfig{}
	cfg.Database.AutoMigrate = true
	a, err := app.NewApp(cfg, zap.NewNop(), db)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestLinkAuditRepairsDivergence(t *testing.T) {
	a := newAuditApp(t)
	ctx := context.Background()
	owner := "owner-audit"

	_, err := a.EntityService.Save(ctx, owner, &dto.EntityModifyRequest{Type: "note", Title: "Beta"})
	assert.Nil(t, err)
	alpha, err := a.EntityService.Save(ctx, owner, &dto.EntityModifyRequest{
		Type: "note", Title: "Alpha", BodyText: "see [[Beta]]",
	})
	assert.Nil(t, err)
	assert.Equal(t, 1, alpha.Reconcile.Created)

	// drop the edge behind the service's back to simulate a failed reconcile
	// 绕过服务层删掉这条边，模拟协调失败后的状态
	out, err := a.LinkRepo.GetOutgoing(ctx, alpha.Entity.ID, owner)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(out))
	assert.Nil(t, a.LinkRepo.Delete(ctx, out[0].ID, owner))

	audit := NewLinkAuditTask(a, "0 0 5 * * *")
	assert.Nil(t, audit.Run(ctx))

	// the sweep re-derived the edge from Alpha's body
	// 扫描按 Alpha 的正文重新推导出这条边
	out, err = a.LinkRepo.GetOutgoing(ctx, alpha.Entity.ID, owner)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(out))
}

func TestLinkAuditRemovesDangling(t *testing.T) {
	a := newAuditApp(t)
	ctx := context.Background()
	owner := "owner-audit"

	beta, err := a.EntityService.Save(ctx, owner, &dto.EntityModifyRequest{Type: "note", Title: "Beta"})
	assert.Nil(t, err)
	alpha, err := a.EntityService.Save(ctx, owner, &dto.EntityModifyRequest{
		Type: "note", Title: "Alpha", BodyText: "see [[Beta]]",
	})
	assert.Nil(t, err)

	// delete the target row without its cascade, leaving a dangling edge
	// 不走级联直接删掉目标行，留下悬空边
	assert.Nil(t, a.EntityRepo.Delete(ctx, beta.Entity.ID, owner))

	audit := NewLinkAuditTask(a, "0 0 5 * * *")
	assert.Nil(t, audit.Run(ctx))

	out, err := a.LinkRepo.GetOutgoing(ctx, alpha.Entity.ID, owner)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(out))
}
