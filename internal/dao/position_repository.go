package dao

import (
	"context"
	"time"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/model"
	"github.com/haierkeys/knowledge-graph-service/pkg/timex"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// positionRepository implements domain.PositionRepository interface
type positionRepository struct {
	dao             *Dao
	customPrefixKey string
}

// NewPositionRepository creates a PositionRepository instance
func NewPositionRepository(dao *Dao) domain.PositionRepository {
	return &positionRepository{dao: dao, customPrefixKey: "position_"}
}

// GetKey returns the write queue key for an owner's position writes
func (r *positionRepository) GetKey(ownerID string) string {
	return r.customPrefixKey + ownerID
}

// getDB gets the database connection and ensures the table is migrated
func (r *positionRepository) getDB() *gorm.DB {
	return r.dao.EnsureMigrated("Position")
}

// toDomain converts database model to domain model
func (r *positionRepository) toDomain(m *model.Position) *domain.Position {
	if m == nil {
		return nil
	}
	return &domain.Position{
		EntityID:  m.EntityID,
		OwnerID:   m.OwnerID,
		X:         m.X,
		Y:         m.Y,
		UpdatedAt: time.Time(m.UpdatedAt),
	}
}

// Upsert writes or updates one entity's coordinate
func (r *positionRepository) Upsert(ctx context.Context, pos *domain.Position) error {
	pos.UpdatedAt = time.Now()
	m := &model.Position{
		EntityID:  pos.EntityID,
		OwnerID:   pos.OwnerID,
		X:         pos.X,
		Y:         pos.Y,
		UpdatedAt: timex.Time(pos.UpdatedAt),
	}
	return r.dao.ExecuteWrite(ctx, r.GetKey(pos.OwnerID), func(db *gorm.DB) error {
		return r.getDB().WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "entity_id"}, {Name: "owner_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"x", "y", "updated_at"}),
			}).
			Create(m).Error
	})
}

// GetByOwner gets all coordinates of an owner
func (r *positionRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Position, error) {
	var modelList []*model.Position
	err := r.getDB().WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var results []*domain.Position
	for _, m := range modelList {
		results = append(results, r.toDomain(m))
	}
	return results, nil
}

// DeleteByOwner clears all coordinates of an owner (reset layout)
func (r *positionRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	return r.dao.ExecuteWrite(ctx, r.GetKey(ownerID), func(db *gorm.DB) error {
		return r.getDB().WithContext(ctx).
			Where("owner_id = ?", ownerID).
			Delete(&model.Position{}).Error
	})
}

// DeleteByEntity deletes an entity's coordinate
func (r *positionRepository) DeleteByEntity(ctx context.Context, entityID, ownerID string) error {
	return r.dao.ExecuteWrite(ctx, r.GetKey(ownerID), func(db *gorm.DB) error {
		return r.getDB().WithContext(ctx).
			Where("entity_id = ? AND owner_id = ?", entityID, ownerID).
			Delete(&model.Position{}).Error
	})
}

// DeleteOrphans deletes coordinate rows whose entity no longer exists
func (r *positionRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.getDB().WithContext(ctx).
		Where("entity_id NOT IN (?)",
			r.dao.EnsureMigrated("Entity").Model(&model.Entity{}).Select("id")).
		Delete(&model.Position{})
	return res.RowsAffected, res.Error
}

// Ensure positionRepository implements domain.PositionRepository interface
var _ domain.PositionRepository = (*positionRepository)(nil)
