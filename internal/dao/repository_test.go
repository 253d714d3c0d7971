package dao

import (
	"context"
	"testing"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDao opens an in-memory sqlite database
// newTestDao 打开内存 sqlite 数据库
func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	return New(db, context.Background())
}

func TestEntityRepository(t *testing.T) {
	d := newTestDao(t)
	repo := NewEntityRepository(d)
	ctx := context.Background()
	owner := "owner-dao"

	created, err := repo.Create(ctx, &domain.Entity{
		Type:    domain.EntityTypeNote,
		Title:   "Project Plan",
		Body:    domain.RichText{Format: "markdown", Text: "refs [[Roadmap]]"},
		Tags:    []string{"work", "q3"},
		OwnerID: owner,
	})
	assert.Nil(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID, owner)
	assert.Nil(t, err)
	assert.Equal(t, "Project Plan", got.Title)
	assert.Equal(t, domain.EntityTypeNote, got.Type)
	assert.Equal(t, []string{"work", "q3"}, got.Tags)

	// 标题查找大小写不敏感
	byTitle, err := repo.GetByTitle(ctx, "project plan", owner)
	assert.Nil(t, err)
	assert.Equal(t, created.ID, byTitle.ID)

	// 其他所有者不可见
	_, err = repo.GetByID(ctx, created.ID, "other-owner")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got.Title = "Project Plan v2"
	updated, err := repo.Update(ctx, got)
	assert.Nil(t, err)
	assert.Equal(t, "Project Plan v2", updated.Title)

	_, err = repo.Create(ctx, &domain.Entity{
		Type:    domain.EntityTypeTask,
		Title:   "Review plan",
		OwnerID: owner,
	})
	assert.Nil(t, err)

	list, err := repo.List(ctx, owner, "task", "", 1, 10)
	assert.Nil(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "Review plan", list[0].Title)

	count, err := repo.ListCount(ctx, owner, "", "plan")
	assert.Nil(t, err)
	assert.Equal(t, int64(2), count)

	exists, err := repo.Exists(ctx, created.ID, owner)
	assert.Nil(t, err)
	assert.True(t, exists)

	// 所有者去重
	_, err = repo.Create(ctx, &domain.Entity{Type: domain.EntityTypeNote, Title: "Elsewhere", OwnerID: "other-owner"})
	assert.Nil(t, err)
	owners, err := repo.ListOwnerIDs(ctx)
	assert.Nil(t, err)
	assert.Len(t, owners, 2)

	err = repo.Delete(ctx, created.ID, owner)
	assert.Nil(t, err)

	exists, err = repo.Exists(ctx, created.ID, owner)
	assert.Nil(t, err)
	assert.False(t, exists)
}

func TestLinkRepositoryIdempotentCreate(t *testing.T) {
	d := newTestDao(t)
	entities := NewEntityRepository(d)
	links := NewLinkRepository(d)
	ctx := context.Background()
	owner := "owner-dao"

	a, err := entities.Create(ctx, &domain.Entity{Type: domain.EntityTypeNote, Title: "A", OwnerID: owner})
	assert.Nil(t, err)
	b, err := entities.Create(ctx, &domain.Entity{Type: domain.EntityTypeNote, Title: "B", OwnerID: owner})
	assert.Nil(t, err)

	edge := &domain.Link{SourceID: a.ID, TargetID: b.ID, Type: domain.LinkTypeWiki, OwnerID: owner}

	_, err = links.Create(ctx, edge)
	assert.Nil(t, err)

	// 相同 (source, target, type) 重复写入不产生第二条边
	_, err = links.Create(ctx, &domain.Link{SourceID: a.ID, TargetID: b.ID, Type: domain.LinkTypeWiki, OwnerID: owner})
	assert.Nil(t, err)

	all, err := links.ListAll(ctx, owner)
	assert.Nil(t, err)
	assert.Len(t, all, 1)

	// 自链接拒绝
	_, err = links.Create(ctx, &domain.Link{SourceID: a.ID, TargetID: a.ID, Type: domain.LinkTypeWiki, OwnerID: owner})
	assert.NotNil(t, err)

	out, err := links.GetOutgoing(ctx, a.ID, owner)
	assert.Nil(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].TargetID)

	in, err := links.GetIncoming(ctx, b.ID, owner)
	assert.Nil(t, err)
	assert.Len(t, in, 1)

	err = links.DeleteBySourceTarget(ctx, a.ID, b.ID, domain.LinkTypeWiki, owner)
	assert.Nil(t, err)

	all, err = links.ListAll(ctx, owner)
	assert.Nil(t, err)
	assert.Empty(t, all)
}

func TestLinkRepositoryDeleteDangling(t *testing.T) {
	d := newTestDao(t)
	entities := NewEntityRepository(d)
	links := NewLinkRepository(d)
	ctx := context.Background()
	owner := "owner-dao"

	a, _ := entities.Create(ctx, &domain.Entity{Type: domain.EntityTypeNote, Title: "A", OwnerID: owner})
	b, _ := entities.Create(ctx, &domain.Entity{Type: domain.EntityTypeNote, Title: "B", OwnerID: owner})
	c, _ := entities.Create(ctx, &domain.Entity{Type: domain.EntityTypeNote, Title: "C", OwnerID: owner})

	_, err := links.Create(ctx, &domain.Link{SourceID: a.ID, TargetID: b.ID, Type: domain.LinkTypeWiki, OwnerID: owner})
	assert.Nil(t, err)
	_, err = links.Create(ctx, &domain.Link{SourceID: b.ID, TargetID: c.ID, Type: domain.LinkTypeWiki, OwnerID: owner})
	assert.Nil(t, err)

	// 只删实体不删边，制造悬空边
	err = entities.Delete(ctx, c.ID, owner)
	assert.Nil(t, err)

	removed, err := links.DeleteDangling(ctx)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), removed)

	all, err := links.ListAll(ctx, owner)
	assert.Nil(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].TargetID)
}

func TestPositionRepository(t *testing.T) {
	d := newTestDao(t)
	entities := NewEntityRepository(d)
	positions := NewPositionRepository(d)
	ctx := context.Background()
	owner := "owner-dao"

	a, _ := entities.Create(ctx, &domain.Entity{Type: domain.EntityTypeNote, Title: "A", OwnerID: owner})

	err := positions.Upsert(ctx, &domain.Position{EntityID: a.ID, OwnerID: owner, X: 1, Y: 2})
	assert.Nil(t, err)

	// 再次写入覆盖坐标而不是新增行
	err = positions.Upsert(ctx, &domain.Position{EntityID: a.ID, OwnerID: owner, X: 10, Y: -4})
	assert.Nil(t, err)

	stored, err := positions.GetByOwner(ctx, owner)
	assert.Nil(t, err)
	assert.Len(t, stored, 1)
	assert.Equal(t, float64(10), stored[0].X)
	assert.Equal(t, float64(-4), stored[0].Y)

	// 实体删除后 DeleteOrphans 清掉遗留坐标
	err = entities.Delete(ctx, a.ID, owner)
	assert.Nil(t, err)

	removed, err := positions.DeleteOrphans(ctx)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), removed)

	stored, err = positions.GetByOwner(ctx, owner)
	assert.Nil(t, err)
	assert.Empty(t, stored)
}
