package dao

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/model"
	"github.com/haierkeys/knowledge-graph-service/pkg/timex"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// linkRepository implements domain.LinkRepository interface
type linkRepository struct {
	dao             *Dao
	customPrefixKey string
}

// NewLinkRepository creates a LinkRepository instance
func NewLinkRepository(dao *Dao) domain.LinkRepository {
	return &linkRepository{dao: dao, customPrefixKey: "entity_"}
}

// GetKey returns the write queue key, shared with the entity repository so
// edge writes serialize with their source entity's writes
func (r *linkRepository) GetKey(sourceID string) string {
	return r.customPrefixKey + sourceID
}

// getDB gets the database connection and ensures the table is migrated
func (r *linkRepository) getDB() *gorm.DB {
	return r.dao.EnsureMigrated("Link")
}

// toDomain converts database model to domain model
func (r *linkRepository) toDomain(m *model.Link) *domain.Link {
	if m == nil {
		return nil
	}
	return &domain.Link{
		ID:        m.ID,
		SourceID:  m.SourceID,
		TargetID:  m.TargetID,
		Type:      m.Type,
		OwnerID:   m.OwnerID,
		CreatedAt: time.Time(m.CreatedAt),
	}
}

// Create creates an edge, skipping duplicates on (source, target, type)
func (r *linkRepository) Create(ctx context.Context, link *domain.Link) (*domain.Link, error) {
	if link.SourceID == link.TargetID {
		return nil, errors.New("self link rejected")
	}
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	link.CreatedAt = time.Now()

	m := &model.Link{
		ID:        link.ID,
		SourceID:  link.SourceID,
		TargetID:  link.TargetID,
		Type:      link.Type,
		OwnerID:   link.OwnerID,
		CreatedAt: timex.Time(link.CreatedAt),
	}

	err := r.dao.ExecuteWrite(ctx, r.GetKey(link.SourceID), func(db *gorm.DB) error {
		// DoNothing keeps re-resolving the same reference idempotent
		// DoNothing 保证重复解析同一引用是幂等的
		return r.getDB().WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "source_id"}, {Name: "target_id"}, {Name: "type"}},
				DoNothing: true,
			}).
			Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Delete deletes an edge by ID
func (r *linkRepository) Delete(ctx context.Context, id, ownerID string) error {
	return r.getDB().WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Link{}).Error
}

// DeleteBySourceTarget deletes an edge by its endpoints and type
func (r *linkRepository) DeleteBySourceTarget(ctx context.Context, sourceID, targetID, linkType, ownerID string) error {
	return r.dao.ExecuteWrite(ctx, r.GetKey(sourceID), func(db *gorm.DB) error {
		return r.getDB().WithContext(ctx).
			Where("source_id = ? AND target_id = ? AND type = ? AND owner_id = ?", sourceID, targetID, linkType, ownerID).
			Delete(&model.Link{}).Error
	})
}

// DeleteByEntity deletes all edges where the entity is source or target
func (r *linkRepository) DeleteByEntity(ctx context.Context, entityID, ownerID string) error {
	return r.dao.ExecuteWrite(ctx, r.GetKey(entityID), func(db *gorm.DB) error {
		return r.getDB().WithContext(ctx).
			Where("(source_id = ? OR target_id = ?) AND owner_id = ?", entityID, entityID, ownerID).
			Delete(&model.Link{}).Error
	})
}

// GetOutgoing gets all edges from a source entity
func (r *linkRepository) GetOutgoing(ctx context.Context, sourceID, ownerID string) ([]*domain.Link, error) {
	var modelList []*model.Link
	err := r.getDB().WithContext(ctx).
		Where("source_id = ? AND owner_id = ?", sourceID, ownerID).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var results []*domain.Link
	for _, m := range modelList {
		results = append(results, r.toDomain(m))
	}
	return results, nil
}

// GetIncoming gets all edges pointing at a target entity
func (r *linkRepository) GetIncoming(ctx context.Context, targetID, ownerID string) ([]*domain.Link, error) {
	var modelList []*model.Link
	err := r.getDB().WithContext(ctx).
		Where("target_id = ? AND owner_id = ?", targetID, ownerID).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var results []*domain.Link
	for _, m := range modelList {
		results = append(results, r.toDomain(m))
	}
	return results, nil
}

// ListAll gets all edges of an owner
func (r *linkRepository) ListAll(ctx context.Context, ownerID string) ([]*domain.Link, error) {
	var modelList []*model.Link
	err := r.getDB().WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var results []*domain.Link
	for _, m := range modelList {
		results = append(results, r.toDomain(m))
	}
	return results, nil
}

// DeleteDangling deletes edges whose source or target entity no longer exists
func (r *linkRepository) DeleteDangling(ctx context.Context) (int64, error) {
	entityIDs := r.dao.EnsureMigrated("Entity").Model(&model.Entity{}).Select("id")
	res := r.getDB().WithContext(ctx).
		Where("source_id NOT IN (?) OR target_id NOT IN (?)", entityIDs, entityIDs).
		Delete(&model.Link{})
	return res.RowsAffected, res.Error
}

// Ensure linkRepository implements domain.LinkRepository interface
var _ domain.LinkRepository = (*linkRepository)(nil)
