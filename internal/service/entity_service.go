package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"
	"github.com/haierkeys/knowledge-graph-service/pkg/code"
	"github.com/haierkeys/knowledge-graph-service/pkg/workerpool"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EntityService defines the entity store service interface
// EntityService 定义实体存储服务接口
type EntityService interface {
	// Get fetches one entity by ID
	Get(ctx context.Context, ownerID string, params *dto.EntityGetRequest) (*dto.EntityDTO, error)

	// Save creates or updates an entity and reconciles its outgoing links
	// Save 创建或更新实体并协调其出边
	Save(ctx context.Context, ownerID string, params *dto.EntityModifyRequest) (*dto.EntitySaveResult, error)

	// Delete removes an entity with all its edges and stored position
	// Delete 删除实体并级联清理其全部边和坐标
	Delete(ctx context.Context, ownerID string, params *dto.EntityDeleteRequest) error

	// List pages through an owner's entities
	List(ctx context.Context, ownerID string, params *dto.EntityListRequest, page, pageSize int) ([]*dto.EntityDTO, int64, error)
}

// TaskRunner bounds concurrent background work; Submit blocks until the
// function ran or the pool rejected it
// TaskRunner 限制后台并发工作量；Submit 阻塞到函数执行完成或池拒绝
type TaskRunner interface {
	Submit(ctx context.Context, fn func(context.Context) error) error
}

// entityService implements EntityService interface
type entityService struct {
	entityRepo   domain.EntityRepository
	linkRepo     domain.LinkRepository
	positionRepo domain.PositionRepository
	resolver     ResolverService
	invalidator  IndexInvalidator
	notifier     Notifier
	runner       TaskRunner
	logger       *zap.Logger

	// generations tracks a counter per entity so that overlapping saves
	// only run the reconcile belonging to the last submitted body
	// generations 为每个实体维护计数器，重叠保存时只协调最后提交的正文
	generations sync.Map // map[string]*atomic.Uint64
}

// NewEntityService creates an EntityService instance
// runner may be nil, reconcile then runs inline
func NewEntityService(entityRepo domain.EntityRepository, linkRepo domain.LinkRepository, positionRepo domain.PositionRepository, resolver ResolverService, invalidator IndexInvalidator, notifier Notifier, runner TaskRunner, logger *zap.Logger) EntityService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &entityService{
		entityRepo:   entityRepo,
		linkRepo:     linkRepo,
		positionRepo: positionRepo,
		resolver:     resolver,
		invalidator:  invalidator,
		notifier:     notifier,
		runner:       runner,
		logger:       logger,
	}
}

// Get fetches one entity by ID
func (s *entityService) Get(ctx context.Context, ownerID string, params *dto.EntityGetRequest) (*dto.EntityDTO, error) {
	entity, err := s.entityRepo.GetByID(ctx, params.ID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorEntityNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return dto.ToEntityDTO(entity), nil
}

// Save creates or updates an entity and reconciles its outgoing links.
// The body is persisted even when reconcile fails afterwards; the client
// just gets no reconcile summary in that case.
// 正文先落库；后续协调失败不回滚，只是响应里没有协调摘要。
func (s *entityService) Save(ctx context.Context, ownerID string, params *dto.EntityModifyRequest) (*dto.EntitySaveResult, error) {
	entityType := domain.EntityType(params.Type)
	if !entityType.IsValid() {
		return nil, code.ErrorEntityTypeInvalid
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, code.ErrorInvalidParams
	}
	bodyFormat := params.BodyFormat
	if bodyFormat == "" {
		bodyFormat = "markdown"
	}

	var saved *domain.Entity
	var err error
	if params.ID == "" {
		saved, err = s.entityRepo.Create(ctx, &domain.Entity{
			Type:    entityType,
			Title:   title,
			Body:    domain.RichText{Format: bodyFormat, Text: params.BodyText},
			Tags:    params.Tags,
			OwnerID: ownerID,
		})
		if err != nil {
			return nil, code.ErrorEntityCreateFailed.WithDetails(err.Error())
		}
	} else {
		if _, err = s.entityRepo.GetByID(ctx, params.ID, ownerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, code.ErrorEntityNotFound
			}
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}
		saved, err = s.entityRepo.Update(ctx, &domain.Entity{
			ID:      params.ID,
			Type:    entityType,
			Title:   title,
			Body:    domain.RichText{Format: bodyFormat, Text: params.BodyText},
			Tags:    params.Tags,
			OwnerID: ownerID,
		})
		if err != nil {
			return nil, code.ErrorEntityUpdateFailed.WithDetails(err.Error())
		}
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ownerID)
	}

	result := &dto.EntitySaveResult{Entity: dto.ToEntityDTO(saved)}
	result.Reconcile = s.reconcileLatest(ctx, ownerID, saved.ID)

	s.notifier.Notify(ownerID, ActionEntitySync, result.Entity)
	return result, nil
}

// reconcileLatest runs reconcile only when this call still holds the newest
// generation for the entity. A stale save skips; the newer save reconciles
// against the body it just wrote.
func (s *entityService) reconcileLatest(ctx context.Context, ownerID, entityID string) *dto.ReconcileResult {
	v, _ := s.generations.LoadOrStore(ownerID+"/"+entityID, new(atomic.Uint64))
	gen := v.(*atomic.Uint64)
	myGen := gen.Add(1)

	if gen.Load() != myGen {
		return nil
	}

	// The worker pool caps how many reconciles run at once; Submit waits
	// for the result so the save response still carries the summary. A
	// full or closed pool degrades to running inline.
	// worker pool 限制并发协调数量；Submit 等待结果，保存响应仍携带摘要。
	// 池满或已关闭时退化为内联执行。
	var res *dto.ReconcileResult
	var err error
	run := func(ctx context.Context) error {
		res, err = s.resolver.Reconcile(ctx, ownerID, entityID)
		return err
	}
	if s.runner != nil {
		submitErr := s.runner.Submit(ctx, run)
		switch {
		case errors.Is(submitErr, workerpool.ErrWorkerPoolFull) || errors.Is(submitErr, workerpool.ErrWorkerPoolClosed):
			_ = run(ctx)
		case errors.Is(submitErr, context.Canceled) || errors.Is(submitErr, context.DeadlineExceeded):
			// The wait was cancelled; the pooled run may still be going,
			// its result is not safe to read
			// 等待被取消，池内任务可能仍在执行，结果不可读
			return nil
		}
	} else {
		_ = run(ctx)
	}
	if err != nil {
		s.logger.Warn("reconcile after save failed",
			zap.String("ownerId", ownerID),
			zap.String("entityId", entityID),
			zap.Error(err))
		return nil
	}
	return res
}

// Delete removes an entity with all its edges and stored position
func (s *entityService) Delete(ctx context.Context, ownerID string, params *dto.EntityDeleteRequest) error {
	exists, err := s.entityRepo.Exists(ctx, params.ID, ownerID)
	if err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	if !exists {
		return code.ErrorEntityNotFound
	}

	// Edges first so no reader ever sees an edge without its endpoint
	// 先删边，读取方不会看到缺少端点的边
	if err := s.linkRepo.DeleteByEntity(ctx, params.ID, ownerID); err != nil {
		return code.ErrorEntityDeleteFailed.WithDetails(err.Error())
	}
	if err := s.positionRepo.DeleteByEntity(ctx, params.ID, ownerID); err != nil {
		return code.ErrorEntityDeleteFailed.WithDetails(err.Error())
	}
	if err := s.entityRepo.Delete(ctx, params.ID, ownerID); err != nil {
		return code.ErrorEntityDeleteFailed.WithDetails(err.Error())
	}

	s.generations.Delete(ownerID + "/" + params.ID)
	if s.invalidator != nil {
		s.invalidator.Invalidate(ownerID)
	}
	s.notifier.Notify(ownerID, ActionEntityDelete, &dto.EntityDeleteRequest{ID: params.ID})
	s.logger.Info("entity deleted",
		zap.String("ownerId", ownerID),
		zap.String("entityId", params.ID))
	return nil
}

// List pages through an owner's entities
func (s *entityService) List(ctx context.Context, ownerID string, params *dto.EntityListRequest, page, pageSize int) ([]*dto.EntityDTO, int64, error) {
	entities, err := s.entityRepo.List(ctx, ownerID, params.Type, params.Keyword, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorEntityListFailed.WithDetails(err.Error())
	}
	total, err := s.entityRepo.ListCount(ctx, ownerID, params.Type, params.Keyword)
	if err != nil {
		return nil, 0, code.ErrorEntityListFailed.WithDetails(err.Error())
	}

	results := make([]*dto.EntityDTO, 0, len(entities))
	for _, e := range entities {
		results = append(results, dto.ToEntityDTO(e))
	}
	return results, total, nil
}

// Ensure entityService implements EntityService interface
var _ EntityService = (*entityService)(nil)
