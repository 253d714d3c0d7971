package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// memEntityRepo is an in-memory EntityRepository for service tests
type memEntityRepo struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]*domain.Entity
}

func newMemEntityRepo() *memEntityRepo {
	return &memEntityRepo{byID: map[string]*domain.Entity{}}
}

func (m *memEntityRepo) clone(e *domain.Entity) *domain.Entity {
	var c domain.Entity
	_ = copier.CopyWithOption(&c, e, copier.Option{DeepCopy: true})
	return &c
}

func (m *memEntityRepo) GetByID(ctx context.Context, id, ownerID string) (*domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok || e.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return m.clone(e), nil
}

func (m *memEntityRepo) GetByTitle(ctx context.Context, title, ownerID string) (*domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := strings.ToLower(title)
	for _, e := range m.byID {
		if e.OwnerID == ownerID && strings.ToLower(e.Title) == want {
			return m.clone(e), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memEntityRepo) Create(ctx context.Context, entity *domain.Entity) (*domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entity.ID == "" {
		m.seq++
		entity.ID = fmt.Sprintf("e%d", m.seq)
	}
	entity.CreatedAt = time.Now()
	entity.UpdatedAt = entity.CreatedAt
	m.byID[entity.ID] = m.clone(entity)
	return m.clone(entity), nil
}

func (m *memEntityRepo) Update(ctx context.Context, entity *domain.Entity) (*domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.byID[entity.ID]
	if !ok || old.OwnerID != entity.OwnerID {
		return nil, gorm.ErrRecordNotFound
	}
	entity.CreatedAt = old.CreatedAt
	entity.UpdatedAt = time.Now()
	m.byID[entity.ID] = m.clone(entity)
	return m.clone(entity), nil
}

func (m *memEntityRepo) Delete(ctx context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memEntityRepo) list(ownerID, entityType, keyword string) []*domain.Entity {
	var out []*domain.Entity
	for _, e := range m.byID {
		if e.OwnerID != ownerID {
			continue
		}
		if entityType != "" && string(e.Type) != entityType {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(keyword)) {
			continue
		}
		out = append(out, m.clone(e))
	}
	return out
}

func (m *memEntityRepo) List(ctx context.Context, ownerID, entityType, keyword string, page, pageSize int) ([]*domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(ownerID, entityType, keyword), nil
}

func (m *memEntityRepo) ListCount(ctx context.Context, ownerID, entityType, keyword string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.list(ownerID, entityType, keyword))), nil
}

func (m *memEntityRepo) ListAll(ctx context.Context, ownerID string) ([]*domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(ownerID, "", ""), nil
}

func (m *memEntityRepo) ListTitles(ctx context.Context, ownerID string) ([]*domain.Entity, error) {
	return m.ListAll(ctx, ownerID)
}

func (m *memEntityRepo) ListOwnerIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var owners []string
	for _, e := range m.byID {
		if !seen[e.OwnerID] {
			seen[e.OwnerID] = true
			owners = append(owners, e.OwnerID)
		}
	}
	return owners, nil
}

func (m *memEntityRepo) Exists(ctx context.Context, id, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	return ok && e.OwnerID == ownerID, nil
}

var _ domain.EntityRepository = (*memEntityRepo)(nil)

// memLinkRepo is an in-memory LinkRepository for service tests
type memLinkRepo struct {
	mu    sync.Mutex
	seq   int
	links map[string]*domain.Link // keyed by source|target|type
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{links: map[string]*domain.Link{}}
}

func linkKey(source, target, linkType string) string {
	return source + "|" + target + "|" + linkType
}

func (m *memLinkRepo) Create(ctx context.Context, link *domain.Link) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := linkKey(link.SourceID, link.TargetID, link.Type)
	if existing, ok := m.links[key]; ok {
		c := *existing
		return &c, nil
	}
	m.seq++
	c := *link
	c.ID = fmt.Sprintf("l%d", m.seq)
	c.CreatedAt = time.Now()
	m.links[key] = &c
	out := c
	return &out, nil
}

func (m *memLinkRepo) Delete(ctx context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, l := range m.links {
		if l.ID == id && l.OwnerID == ownerID {
			delete(m.links, k)
		}
	}
	return nil
}

func (m *memLinkRepo) DeleteBySourceTarget(ctx context.Context, sourceID, targetID, linkType, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.links, linkKey(sourceID, targetID, linkType))
	return nil
}

func (m *memLinkRepo) DeleteByEntity(ctx context.Context, entityID, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, l := range m.links {
		if l.SourceID == entityID || l.TargetID == entityID {
			delete(m.links, k)
		}
	}
	return nil
}

func (m *memLinkRepo) GetOutgoing(ctx context.Context, sourceID, ownerID string) ([]*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Link
	for _, l := range m.links {
		if l.SourceID == sourceID && l.OwnerID == ownerID {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memLinkRepo) GetIncoming(ctx context.Context, targetID, ownerID string) ([]*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Link
	for _, l := range m.links {
		if l.TargetID == targetID && l.OwnerID == ownerID {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memLinkRepo) ListAll(ctx context.Context, ownerID string) ([]*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Link
	for _, l := range m.links {
		if l.OwnerID == ownerID {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memLinkRepo) DeleteDangling(ctx context.Context) (int64, error) {
	return 0, nil
}

var _ domain.LinkRepository = (*memLinkRepo)(nil)

// memPositionRepo is an in-memory PositionRepository for service tests
type memPositionRepo struct {
	mu        sync.Mutex
	positions map[string]*domain.Position // keyed by entityID|ownerID
}

func newMemPositionRepo() *memPositionRepo {
	return &memPositionRepo{positions: map[string]*domain.Position{}}
}

func (m *memPositionRepo) Upsert(ctx context.Context, pos *domain.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *pos
	c.UpdatedAt = time.Now()
	m.positions[pos.EntityID+"|"+pos.OwnerID] = &c
	return nil
}

func (m *memPositionRepo) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Position
	for _, p := range m.positions {
		if p.OwnerID == ownerID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memPositionRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, p := range m.positions {
		if p.OwnerID == ownerID {
			delete(m.positions, k)
		}
	}
	return nil
}

func (m *memPositionRepo) DeleteByEntity(ctx context.Context, entityID, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, entityID+"|"+ownerID)
	return nil
}

func (m *memPositionRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	return 0, nil
}

var _ domain.PositionRepository = (*memPositionRepo)(nil)
