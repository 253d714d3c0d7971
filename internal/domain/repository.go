// Package domain 定义领域模型和接口
package domain

import "context"

// EntityRepository 实体仓储接口
type EntityRepository interface {
	// GetByID 根据ID获取实体
	GetByID(ctx context.Context, id, ownerID string) (*Entity, error)

	// GetByTitle 根据标题获取实体（大小写不敏感精确匹配）
	GetByTitle(ctx context.Context, title, ownerID string) (*Entity, error)

	// Create 创建实体
	Create(ctx context.Context, entity *Entity) (*Entity, error)

	// Update 更新实体
	Update(ctx context.Context, entity *Entity) (*Entity, error)

	// Delete 物理删除实体
	Delete(ctx context.Context, id, ownerID string) error

	// List 分页获取实体列表，keyword 为空时不过滤
	List(ctx context.Context, ownerID string, entityType string, keyword string, page, pageSize int) ([]*Entity, error)

	// ListCount 获取实体数量
	ListCount(ctx context.Context, ownerID string, entityType string, keyword string) (int64, error)

	// ListAll 获取所有者的全部实体（图谱投影使用）
	ListAll(ctx context.Context, ownerID string) ([]*Entity, error)

	// ListTitles 获取所有者的全部 (id, title, type) 轻量投影（联想索引使用）
	ListTitles(ctx context.Context, ownerID string) ([]*Entity, error)

	// ListOwnerIDs 获取存在实体的全部所有者（后台审计任务使用）
	ListOwnerIDs(ctx context.Context) ([]string, error)

	// Exists 检查实体是否存在
	Exists(ctx context.Context, id, ownerID string) (bool, error)
}

// LinkRepository 链接仓储接口
type LinkRepository interface {
	// Create 创建一条边，(source, target, type) 冲突时幂等跳过
	Create(ctx context.Context, link *Link) (*Link, error)

	// Delete 根据边 ID 删除
	Delete(ctx context.Context, id, ownerID string) error

	// DeleteBySourceTarget 根据端点和类型删除
	DeleteBySourceTarget(ctx context.Context, sourceID, targetID, linkType, ownerID string) error

	// DeleteByEntity 删除实体作为任一端点的全部边（级联）
	DeleteByEntity(ctx context.Context, entityID, ownerID string) error

	// GetOutgoing 获取实体的出边
	GetOutgoing(ctx context.Context, sourceID, ownerID string) ([]*Link, error)

	// GetIncoming 获取实体的入边
	GetIncoming(ctx context.Context, targetID, ownerID string) ([]*Link, error)

	// ListAll 获取所有者的全部边（图谱投影使用）
	ListAll(ctx context.Context, ownerID string) ([]*Link, error)

	// DeleteDangling 删除任一端点实体已不存在的边（后台审计任务使用）
	DeleteDangling(ctx context.Context) (int64, error)
}

// PositionRepository 节点坐标仓储接口
type PositionRepository interface {
	// Upsert 写入或更新一个实体的坐标
	Upsert(ctx context.Context, pos *Position) error

	// GetByOwner 获取所有者的全部坐标
	GetByOwner(ctx context.Context, ownerID string) ([]*Position, error)

	// DeleteByOwner 清空所有者的坐标（重置布局）
	DeleteByOwner(ctx context.Context, ownerID string) error

	// DeleteByEntity 删除实体的坐标（实体删除时级联）
	DeleteByEntity(ctx context.Context, entityID, ownerID string) error

	// DeleteOrphans 删除没有对应实体的坐标行（后台清理任务使用）
	DeleteOrphans(ctx context.Context) (int64, error)
}
