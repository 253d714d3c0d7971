package service

import (
	"context"
	"errors"
	"strings"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"
	"github.com/haierkeys/knowledge-graph-service/pkg/code"
	"github.com/haierkeys/knowledge-graph-service/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResolverService defines the link resolver service interface
// ResolverService 定义链接解析服务接口
type ResolverService interface {
	// Reconcile re-derives an entity's outgoing edges from its current body
	// Reconcile 根据实体当前正文重新推导出边
	Reconcile(ctx context.Context, ownerID, entityID string) (*dto.ReconcileResult, error)

	// Resolve resolves a single reference token without touching storage
	Resolve(ctx context.Context, ownerID string, params *dto.ResolveRequest) (*dto.ResolveResult, error)

	// Materialize creates a placeholder entity for an unresolved reference
	// Materialize 为未解析的引用创建占位实体
	Materialize(ctx context.Context, ownerID string, params *dto.MaterializeRequest) (*dto.EntityDTO, error)
}

// resolverService implements ResolverService interface
type resolverService struct {
	entityRepo  domain.EntityRepository
	linkRepo    domain.LinkRepository
	invalidator IndexInvalidator
	notifier    Notifier
	logger      *zap.Logger
}

// IndexInvalidator drops cached per-owner state after a mutation
type IndexInvalidator interface {
	Invalidate(ownerID string)
}

// NewResolverService creates a ResolverService instance
func NewResolverService(entityRepo domain.EntityRepository, linkRepo domain.LinkRepository, invalidator IndexInvalidator, notifier Notifier, logger *zap.Logger) ResolverService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &resolverService{
		entityRepo:  entityRepo,
		linkRepo:    linkRepo,
		invalidator: invalidator,
		notifier:    notifier,
		logger:      logger,
	}
}

// edgeKey identifies a desired edge inside one reconcile pass
type edgeKey struct {
	targetID string
	linkType string
}

// ourLinkTypes edge types managed by the resolver; foreign rows are never touched
var ourLinkTypes = map[string]bool{
	domain.LinkTypeWiki:  true,
	domain.LinkTypeTask:  true,
	domain.LinkTypeEvent: true,
}

// Reconcile re-derives an entity's outgoing edges from its current body.
// The pass is a set diff: references not yet stored become edges, stored
// edges no longer referenced are removed. Running it twice on the same
// body is a no-op.
// Reconcile 是一次集合差运算：正文新增的引用落库为边，正文不再包含的边被删除。
// 对同一正文重复执行不产生变化。
func (s *resolverService) Reconcile(ctx context.Context, ownerID, entityID string) (*dto.ReconcileResult, error) {
	entity, err := s.entityRepo.GetByID(ctx, entityID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorEntityNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	refs := util.ParseWikiRefs(entity.Body.Text)

	desired := make(map[edgeKey]bool)
	var unresolved []string
	seenUnresolved := make(map[string]bool)

	for _, ref := range refs {
		// Embeds render content inline, they do not create edges
		// 嵌入仅内联渲染内容，不产生边
		if ref.IsEmbed {
			continue
		}
		target, err := s.resolveRef(ctx, ownerID, ref)
		if err != nil {
			return nil, err
		}
		if target == nil {
			display := ref.Title
			if !seenUnresolved[display] {
				seenUnresolved[display] = true
				unresolved = append(unresolved, display)
			}
			continue
		}
		// Self references are discarded, not errors
		// 自引用被丢弃，不报错
		if target.ID == entity.ID {
			continue
		}
		desired[edgeKey{targetID: target.ID, linkType: domain.LinkTypeForEntity(target.Type)}] = true
	}

	existingLinks, err := s.linkRepo.GetOutgoing(ctx, entity.ID, ownerID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	existing := make(map[edgeKey]*domain.Link, len(existingLinks))
	for _, l := range existingLinks {
		if !ourLinkTypes[l.Type] {
			continue
		}
		existing[edgeKey{targetID: l.TargetID, linkType: l.Type}] = l
	}

	result := &dto.ReconcileResult{Unresolved: unresolved}

	for k := range desired {
		if _, ok := existing[k]; ok {
			continue
		}
		// Re-check the target right before writing; a concurrently deleted
		// target demotes the reference to unresolved instead of leaving a
		// dangling edge
		// 写入前再次确认目标存在；并发删除的目标降级为未解析引用，不留悬空边
		exists, err := s.entityRepo.Exists(ctx, k.targetID, ownerID)
		if err != nil {
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !exists {
			continue
		}
		_, err = s.linkRepo.Create(ctx, &domain.Link{
			SourceID: entity.ID,
			TargetID: k.targetID,
			Type:     k.linkType,
			OwnerID:  ownerID,
		})
		if err != nil {
			return nil, code.ErrorReconcileFailed.WithDetails(err.Error())
		}
		result.Created++
	}

	for k := range existing {
		if desired[k] {
			continue
		}
		err := s.linkRepo.DeleteBySourceTarget(ctx, entity.ID, k.targetID, k.linkType, ownerID)
		if err != nil {
			return nil, code.ErrorReconcileFailed.WithDetails(err.Error())
		}
		result.Removed++
	}

	if result.Created > 0 || result.Removed > 0 {
		s.notifier.Notify(ownerID, ActionLinkSync, &dto.LinkQueryRequest{ID: entity.ID})
	}
	return result, nil
}

// resolveRef resolves one parsed reference to its target entity.
// Explicit IDs win over titles; title lookup is case-insensitive.
// Returns (nil, nil) when the reference does not resolve.
func (s *resolverService) resolveRef(ctx context.Context, ownerID string, ref util.WikiRef) (*domain.Entity, error) {
	if ref.ExplicitID != "" {
		target, err := s.entityRepo.GetByID(ctx, ref.ExplicitID, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}
		return target, nil
	}
	title := strings.TrimSpace(ref.Title)
	if title == "" {
		return nil, nil
	}
	target, err := s.entityRepo.GetByTitle(ctx, title, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return target, nil
}

// Resolve resolves a single reference token without touching storage
func (s *resolverService) Resolve(ctx context.Context, ownerID string, params *dto.ResolveRequest) (*dto.ResolveResult, error) {
	token := strings.TrimSpace(params.Token)
	title, explicitID := token, ""
	if i := strings.Index(token, "|"); i >= 0 {
		title = strings.TrimSpace(token[:i])
		explicitID = strings.TrimSpace(token[i+1:])
	}

	target, err := s.resolveRef(ctx, ownerID, util.WikiRef{Title: title, ExplicitID: explicitID})
	if err != nil {
		return nil, err
	}
	if target == nil {
		return &dto.ResolveResult{Title: title, IsNew: true}, nil
	}
	return &dto.ResolveResult{ID: target.ID, Title: target.Title, IsNew: false}, nil
}

// Materialize creates a placeholder entity for an unresolved reference.
// The new entity has an empty body; type defaults to note.
func (s *resolverService) Materialize(ctx context.Context, ownerID string, params *dto.MaterializeRequest) (*dto.EntityDTO, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, code.ErrorInvalidParams
	}

	// An existing title is returned as-is; materialize is idempotent on title
	// 已存在的标题原样返回，按标题幂等
	if existing, err := s.entityRepo.GetByTitle(ctx, title, ownerID); err == nil {
		s.reconcileSource(ctx, ownerID, params.SourceID)
		return dto.ToEntityDTO(existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	entityType := domain.EntityType(params.Type)
	if params.Type == "" {
		entityType = domain.EntityTypeNote
	}
	if !entityType.IsValid() {
		return nil, code.ErrorEntityTypeInvalid
	}

	created, err := s.entityRepo.Create(ctx, &domain.Entity{
		Type:    entityType,
		Title:   title,
		Body:    domain.RichText{Format: "markdown", Text: ""},
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, code.ErrorMaterializeFailed.WithDetails(err.Error())
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ownerID)
	}
	s.reconcileSource(ctx, ownerID, params.SourceID)
	result := dto.ToEntityDTO(created)
	s.notifier.Notify(ownerID, ActionEntitySync, result)
	s.logger.Info("entity materialized from reference",
		zap.String("ownerId", ownerID),
		zap.String("entityId", created.ID),
		zap.String("title", created.Title))
	return result, nil
}

// reconcileSource links the referring entity to a freshly materialized
// target; its body already carries the reference token, so one reconcile
// pass picks up the new edge. Failure never fails the materialize.
// reconcileSource 将引用方实体链接到刚实体化的目标；其正文已含引用 token，
// 一次调和即可补上新边。调和失败不影响实体化结果。
func (s *resolverService) reconcileSource(ctx context.Context, ownerID, sourceID string) {
	if sourceID == "" {
		return
	}
	if _, err := s.Reconcile(ctx, ownerID, sourceID); err != nil {
		s.logger.Warn("reconcile after materialize failed",
			zap.String("ownerId", ownerID),
			zap.String("sourceId", sourceID),
			zap.Error(err))
	}
}

// Ensure resolverService implements ResolverService interface
var _ ResolverService = (*resolverService)(nil)
