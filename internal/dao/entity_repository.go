// Package dao implements the data access layer
package dao

import (
	"context"
	"strings"
	"time"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/model"
	"github.com/haierkeys/knowledge-graph-service/pkg/timex"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// entityRepository implements domain.EntityRepository interface
type entityRepository struct {
	dao             *Dao
	customPrefixKey string
}

// NewEntityRepository creates an EntityRepository instance
func NewEntityRepository(dao *Dao) domain.EntityRepository {
	return &entityRepository{dao: dao, customPrefixKey: "entity_"}
}

// GetKey returns the write queue key for an entity
func (r *entityRepository) GetKey(id string) string {
	return r.customPrefixKey + id
}

// getDB gets the database connection and ensures the table is migrated
func (r *entityRepository) getDB() *gorm.DB {
	return r.dao.EnsureMigrated("Entity")
}

// toDomain converts database model to domain model
func (r *entityRepository) toDomain(m *model.Entity) *domain.Entity {
	if m == nil {
		return nil
	}
	var tags []string
	if len(m.Tags) > 0 {
		_ = sonic.Unmarshal(m.Tags, &tags)
	}
	return &domain.Entity{
		ID:    m.ID,
		Type:  domain.EntityType(m.Type),
		Title: m.Title,
		Body: domain.RichText{
			Format: m.BodyFormat,
			Text:   m.BodyText,
		},
		Tags:      tags,
		OwnerID:   m.OwnerID,
		CreatedAt: time.Time(m.CreatedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
	}
}

// toModel converts domain model to database model
func (r *entityRepository) toModel(e *domain.Entity) *model.Entity {
	tags, _ := sonic.Marshal(e.Tags)
	return &model.Entity{
		ID:         e.ID,
		Type:       string(e.Type),
		Title:      e.Title,
		TitleLower: strings.ToLower(e.Title),
		BodyFormat: e.Body.Format,
		BodyText:   e.Body.Text,
		Tags:       datatypes.JSON(tags),
		OwnerID:    e.OwnerID,
		CreatedAt:  timex.Time(e.CreatedAt),
		UpdatedAt:  timex.Time(e.UpdatedAt),
	}
}

// GetByID gets an entity by ID
func (r *entityRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Entity, error) {
	var m model.Entity
	err := r.getDB().WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByTitle gets an entity by case-insensitive exact title match
func (r *entityRepository) GetByTitle(ctx context.Context, title, ownerID string) (*domain.Entity, error) {
	var m model.Entity
	err := r.getDB().WithContext(ctx).
		Where("title_lower = ? AND owner_id = ?", strings.ToLower(title), ownerID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create creates an entity
func (r *entityRepository) Create(ctx context.Context, entity *domain.Entity) (*domain.Entity, error) {
	if entity.ID == "" {
		entity.ID = uuid.NewString()
	}
	now := time.Now()
	entity.CreatedAt = now
	entity.UpdatedAt = now

	m := r.toModel(entity)
	err := r.dao.ExecuteWrite(ctx, r.GetKey(entity.ID), func(db *gorm.DB) error {
		return r.getDB().WithContext(ctx).Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update updates an entity
func (r *entityRepository) Update(ctx context.Context, entity *domain.Entity) (*domain.Entity, error) {
	entity.UpdatedAt = time.Now()
	m := r.toModel(entity)
	err := r.dao.ExecuteWrite(ctx, r.GetKey(entity.ID), func(db *gorm.DB) error {
		return r.getDB().WithContext(ctx).
			Where("id = ? AND owner_id = ?", entity.ID, entity.OwnerID).
			Select("type", "title", "title_lower", "body_format", "body_text", "tags", "updated_at").
			Updates(m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Delete physically deletes an entity
func (r *entityRepository) Delete(ctx context.Context, id, ownerID string) error {
	return r.dao.ExecuteWrite(ctx, r.GetKey(id), func(db *gorm.DB) error {
		return r.getDB().WithContext(ctx).
			Where("id = ? AND owner_id = ?", id, ownerID).
			Delete(&model.Entity{}).Error
	})
}

// listQuery applies the shared list filters
func (r *entityRepository) listQuery(ctx context.Context, ownerID, entityType, keyword string) *gorm.DB {
	q := r.getDB().WithContext(ctx).Model(&model.Entity{}).Where("owner_id = ?", ownerID)
	if entityType != "" {
		q = q.Where("type = ?", entityType)
	}
	if keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		q = q.Where("title_lower LIKE ?", like)
	}
	return q
}

// List gets a page of entities
func (r *entityRepository) List(ctx context.Context, ownerID string, entityType string, keyword string, page, pageSize int) ([]*domain.Entity, error) {
	var modelList []*model.Entity
	offset := 0
	if page > 0 {
		offset = (page - 1) * pageSize
	}
	err := r.listQuery(ctx, ownerID, entityType, keyword).
		Order("updated_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var results []*domain.Entity
	for _, m := range modelList {
		results = append(results, r.toDomain(m))
	}
	return results, nil
}

// ListCount gets the entity count for the list filters
func (r *entityRepository) ListCount(ctx context.Context, ownerID string, entityType string, keyword string) (int64, error) {
	var count int64
	err := r.listQuery(ctx, ownerID, entityType, keyword).Count(&count).Error
	return count, err
}

// ListAll gets all entities of an owner
func (r *entityRepository) ListAll(ctx context.Context, ownerID string) ([]*domain.Entity, error) {
	var modelList []*model.Entity
	err := r.getDB().WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var results []*domain.Entity
	for _, m := range modelList {
		results = append(results, r.toDomain(m))
	}
	return results, nil
}

// ListTitles gets a light projection of all entities of an owner
func (r *entityRepository) ListTitles(ctx context.Context, ownerID string) ([]*domain.Entity, error) {
	var modelList []*model.Entity
	err := r.getDB().WithContext(ctx).
		Select("id", "title", "type", "owner_id").
		Where("owner_id = ?", ownerID).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var results []*domain.Entity
	for _, m := range modelList {
		results = append(results, r.toDomain(m))
	}
	return results, nil
}

// ListOwnerIDs gets every owner that has at least one entity
func (r *entityRepository) ListOwnerIDs(ctx context.Context) ([]string, error) {
	var owners []string
	res := r.getDB().WithContext(ctx).Model(&model.Entity{}).
		Distinct().
		Pluck("owner_id", &owners)
	if res.Error != nil {
		return nil, res.Error
	}
	return owners, nil
}

// Exists checks whether an entity exists
func (r *entityRepository) Exists(ctx context.Context, id, ownerID string) (bool, error) {
	var count int64
	err := r.getDB().WithContext(ctx).Model(&model.Entity{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure entityRepository implements domain.EntityRepository interface
var _ domain.EntityRepository = (*entityRepository)(nil)
