package service

import (
	"context"
	"errors"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"
	"github.com/haierkeys/knowledge-graph-service/pkg/code"

	"gorm.io/gorm"
)

// LinkService defines the backlink query service interface
// LinkService 定义反向链接查询服务接口
type LinkService interface {
	// GetLinks gets the incoming and outgoing edges of one entity
	// GetLinks 获取一个实体的入边和出边
	GetLinks(ctx context.Context, ownerID string, params *dto.LinkQueryRequest) (*dto.LinkQueryResult, error)
}

// linkService implements LinkService interface
type linkService struct {
	linkRepo   domain.LinkRepository
	entityRepo domain.EntityRepository
}

// NewLinkService creates a LinkService instance
func NewLinkService(linkRepo domain.LinkRepository, entityRepo domain.EntityRepository) LinkService {
	return &linkService{linkRepo: linkRepo, entityRepo: entityRepo}
}

// GetLinks gets the incoming and outgoing edges of one entity.
// An entity without links yields empty lists, not an error.
// 没有链接的实体返回空列表，不是错误。
func (s *linkService) GetLinks(ctx context.Context, ownerID string, params *dto.LinkQueryRequest) (*dto.LinkQueryResult, error) {
	if _, err := s.entityRepo.GetByID(ctx, params.ID, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorEntityNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	incoming, err := s.linkRepo.GetIncoming(ctx, params.ID, ownerID)
	if err != nil {
		return nil, code.ErrorLinkQueryFailed.WithDetails(err.Error())
	}
	outgoing, err := s.linkRepo.GetOutgoing(ctx, params.ID, ownerID)
	if err != nil {
		return nil, code.ErrorLinkQueryFailed.WithDetails(err.Error())
	}

	result := &dto.LinkQueryResult{
		Incoming: make([]*dto.LinkItem, 0, len(incoming)),
		Outgoing: make([]*dto.LinkItem, 0, len(outgoing)),
	}
	for _, l := range incoming {
		if item := s.toItem(ctx, ownerID, l, l.SourceID); item != nil {
			result.Incoming = append(result.Incoming, item)
		}
	}
	for _, l := range outgoing {
		if item := s.toItem(ctx, ownerID, l, l.TargetID); item != nil {
			result.Outgoing = append(result.Outgoing, item)
		}
	}
	return result, nil
}

// toItem loads the entity at the far end of an edge.
// Edges whose counterpart row is gone are skipped silently; the audit
// task cleans them up.
func (s *linkService) toItem(ctx context.Context, ownerID string, link *domain.Link, counterpartID string) *dto.LinkItem {
	counterpart, err := s.entityRepo.GetByID(ctx, counterpartID, ownerID)
	if err != nil {
		return nil
	}
	return &dto.LinkItem{
		LinkID: link.ID,
		Type:   link.Type,
		Entity: dto.ToEntityBrief(counterpart),
	}
}

// Ensure linkService implements LinkService interface
var _ LinkService = (*linkService)(nil)
