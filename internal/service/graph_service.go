package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"
	"github.com/haierkeys/knowledge-graph-service/pkg/code"
	"github.com/haierkeys/knowledge-graph-service/pkg/util"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// GraphService defines the graph projection service interface
// GraphService 定义图谱投影服务接口
type GraphService interface {
	// Project builds the filtered node/edge view of an owner's graph
	// Project 构建过滤后的图谱节点/边视图
	Project(ctx context.Context, ownerID string, params *dto.GraphRequest) (*dto.GraphProjection, error)

	// SavePosition persists one node coordinate
	SavePosition(ctx context.Context, ownerID string, params *dto.PositionSaveRequest) error

	// ResetPositions clears all of an owner's stored coordinates
	// ResetPositions 清空所有者的全部坐标
	ResetPositions(ctx context.Context, ownerID string) error
}

// graphService implements GraphService interface.
// Stored coordinates sit behind a per-owner LRU front; writes drop the
// cached map so the next projection reloads it.
// 坐标表带每所有者 LRU 前置缓存，写入后整体失效，下次投影时重新加载。
type graphService struct {
	entityRepo   domain.EntityRepository
	linkRepo     domain.LinkRepository
	positionRepo domain.PositionRepository
	posCache     *lru.Cache[string, map[string]*domain.Position]
	sf           singleflight.Group
	notifier     Notifier
}

// NewGraphService creates a GraphService instance
func NewGraphService(entityRepo domain.EntityRepository, linkRepo domain.LinkRepository, positionRepo domain.PositionRepository, cfg GraphServiceConfig, notifier Notifier) GraphService {
	if cfg.PositionCacheSize <= 0 {
		cfg.PositionCacheSize = defaultPositionCacheSize
	}
	if notifier == nil {
		notifier = NopNotifier()
	}
	cache, _ := lru.New[string, map[string]*domain.Position](cfg.PositionCacheSize)
	return &graphService{
		entityRepo:   entityRepo,
		linkRepo:     linkRepo,
		positionRepo: positionRepo,
		posCache:     cache,
		notifier:     notifier,
	}
}

// Project builds the filtered node/edge view of an owner's graph.
// Filter order: focus neighborhood first, then type/tag/search, then
// edge visibility, then isolated-node removal.
// 过滤顺序：先聚焦邻域，再类型/标签/搜索，再边可见性，最后隔离节点。
func (s *graphService) Project(ctx context.Context, ownerID string, params *dto.GraphRequest) (*dto.GraphProjection, error) {
	entities, err := s.entityRepo.ListAll(ctx, ownerID)
	if err != nil {
		return nil, code.ErrorProjectionFailed.WithDetails(err.Error())
	}
	links, err := s.linkRepo.ListAll(ctx, ownerID)
	if err != nil {
		return nil, code.ErrorProjectionFailed.WithDetails(err.Error())
	}

	// Focus narrows to the entity and its direct neighbors before any
	// other filter runs
	if params.FocusID != "" {
		neighborhood := map[string]bool{params.FocusID: true}
		for _, l := range links {
			if l.SourceID == params.FocusID {
				neighborhood[l.TargetID] = true
			}
			if l.TargetID == params.FocusID {
				neighborhood[l.SourceID] = true
			}
		}
		kept := entities[:0]
		for _, e := range entities {
			if neighborhood[e.ID] {
				kept = append(kept, e)
			}
		}
		entities = kept
	}

	typeFilter := make(map[string]bool, len(params.Types))
	for _, t := range params.Types {
		typeFilter[t] = true
	}
	search := strings.ToLower(strings.TrimSpace(params.Search))

	visible := make(map[string]*domain.Entity, len(entities))
	for _, e := range entities {
		if len(typeFilter) > 0 && !typeFilter[string(e.Type)] {
			continue
		}
		if !e.HasAnyTag(params.Tags) {
			continue
		}
		// Search spans title and body text
		// 搜索同时覆盖标题和正文
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Title), search) &&
			!strings.Contains(strings.ToLower(e.Body.Text), search) {
			continue
		}
		visible[e.ID] = e
	}

	// An edge shows only when both endpoints survived the node filters
	// 边只有两端节点都可见时才出现
	edges := make([]*dto.GraphEdge, 0, len(links))
	connected := make(map[string]bool)
	for _, l := range links {
		if visible[l.SourceID] == nil || visible[l.TargetID] == nil {
			continue
		}
		edges = append(edges, &dto.GraphEdge{
			ID:       l.ID,
			SourceID: l.SourceID,
			TargetID: l.TargetID,
			Type:     l.Type,
		})
		connected[l.SourceID] = true
		connected[l.TargetID] = true
	}

	positions, err := s.ownerPositions(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	nodes := make([]*dto.GraphNode, 0, len(visible))
	for _, e := range entities {
		v := visible[e.ID]
		if v == nil {
			continue
		}
		// The focused entity stays on screen even without visible edges
		if !params.IncludeIsolated && !connected[e.ID] && e.ID != params.FocusID {
			continue
		}
		tags := v.Tags
		if tags == nil {
			tags = []string{}
		}
		nodes = append(nodes, &dto.GraphNode{
			ID:       v.ID,
			Type:     string(v.Type),
			Label:    v.Title,
			Tags:     tags,
			Position: nodePosition(positions, v.ID),
		})
	}

	return &dto.GraphProjection{Nodes: nodes, Edges: edges}, nil
}

// ownerPositions returns the owner's stored coordinates, loading on miss
func (s *graphService) ownerPositions(ctx context.Context, ownerID string) (map[string]*domain.Position, error) {
	if m, ok := s.posCache.Get(ownerID); ok {
		return m, nil
	}
	v, err, _ := s.sf.Do("pos_"+ownerID, func() (any, error) {
		list, err := s.positionRepo.GetByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		m := make(map[string]*domain.Position, len(list))
		for _, p := range list {
			m[p.EntityID] = p
		}
		s.posCache.Add(ownerID, m)
		return m, nil
	})
	if err != nil {
		return nil, code.ErrorProjectionFailed.WithDetails(err.Error())
	}
	return v.(map[string]*domain.Position), nil
}

// nodePosition picks the stored coordinate or a deterministic placeholder.
// The placeholder derives from the entity ID, so an unplaced node lands on
// the same spot every time the graph renders.
// 占位坐标由实体 ID 推导，未摆放的节点每次渲染落在同一位置。
func nodePosition(positions map[string]*domain.Position, entityID string) *dto.NodePosition {
	if p, ok := positions[entityID]; ok {
		return &dto.NodePosition{X: p.X, Y: p.Y}
	}
	hx, _ := strconv.Atoi(util.EncodeHash32(entityID))
	hy, _ := strconv.Atoi(util.EncodeHash32(entityID + "#y"))
	return &dto.NodePosition{
		X: float64(uint32(hx)%2001) - 1000,
		Y: float64(uint32(hy)%2001) - 1000,
	}
}

// SavePosition persists one node coordinate
func (s *graphService) SavePosition(ctx context.Context, ownerID string, params *dto.PositionSaveRequest) error {
	exists, err := s.entityRepo.Exists(ctx, params.EntityID, ownerID)
	if err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	if !exists {
		return code.ErrorEntityNotFound
	}
	err = s.positionRepo.Upsert(ctx, &domain.Position{
		EntityID: params.EntityID,
		OwnerID:  ownerID,
		X:        params.X,
		Y:        params.Y,
	})
	if err != nil {
		return code.ErrorPositionSaveFailed.WithDetails(err.Error())
	}
	s.posCache.Remove(ownerID)
	s.notifier.Notify(ownerID, ActionPositionSync, params)
	return nil
}

// ResetPositions clears all of an owner's stored coordinates
func (s *graphService) ResetPositions(ctx context.Context, ownerID string) error {
	if err := s.positionRepo.DeleteByOwner(ctx, ownerID); err != nil {
		return code.ErrorPositionSaveFailed.WithDetails(err.Error())
	}
	s.posCache.Remove(ownerID)
	s.notifier.Notify(ownerID, ActionPositionSync, nil)
	return nil
}

// Ensure graphService implements GraphService interface
var _ GraphService = (*graphService)(nil)
