package service

import (
	"context"
	"testing"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"
)

func TestGetLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("incoming and outgoing", func(t *testing.T) {
		entityRepo := newMemEntityRepo()
		linkRepo := newMemLinkRepo()
		alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "")
		beta := mustCreate(t, entityRepo, domain.EntityTypeNote, "Beta", "")
		gamma := mustCreate(t, entityRepo, domain.EntityTypeTask, "Gamma", "")
		linkRepo.Create(ctx, &domain.Link{SourceID: alpha.ID, TargetID: beta.ID, Type: domain.LinkTypeWiki, OwnerID: testOwner})
		linkRepo.Create(ctx, &domain.Link{SourceID: gamma.ID, TargetID: alpha.ID, Type: domain.LinkTypeWiki, OwnerID: testOwner})

		svc := NewLinkService(linkRepo, entityRepo)
		res, err := svc.GetLinks(ctx, testOwner, &dto.LinkQueryRequest{ID: alpha.ID})
		if err != nil {
			t.Fatalf("get links: %v", err)
		}
		if len(res.Outgoing) != 1 || res.Outgoing[0].Entity.ID != beta.ID {
			t.Fatalf("unexpected outgoing: %+v", res.Outgoing)
		}
		if len(res.Incoming) != 1 || res.Incoming[0].Entity.ID != gamma.ID {
			t.Fatalf("unexpected incoming: %+v", res.Incoming)
		}
	})

	t.Run("no links yields empty lists", func(t *testing.T) {
		entityRepo := newMemEntityRepo()
		alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "")

		res, err := NewLinkService(newMemLinkRepo(), entityRepo).GetLinks(ctx, testOwner, &dto.LinkQueryRequest{ID: alpha.ID})
		if err != nil {
			t.Fatalf("get links: %v", err)
		}
		if res.Incoming == nil || res.Outgoing == nil {
			t.Fatal("lists must be non-nil")
		}
		if len(res.Incoming) != 0 || len(res.Outgoing) != 0 {
			t.Fatalf("expected empty lists: %+v", res)
		}
	})

	t.Run("edge with missing counterpart is skipped", func(t *testing.T) {
		entityRepo := newMemEntityRepo()
		linkRepo := newMemLinkRepo()
		alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "")
		linkRepo.Create(ctx, &domain.Link{SourceID: alpha.ID, TargetID: "gone", Type: domain.LinkTypeWiki, OwnerID: testOwner})

		res, err := NewLinkService(linkRepo, entityRepo).GetLinks(ctx, testOwner, &dto.LinkQueryRequest{ID: alpha.ID})
		if err != nil {
			t.Fatalf("get links: %v", err)
		}
		if len(res.Outgoing) != 0 {
			t.Fatalf("dangling edge leaked into result: %+v", res.Outgoing)
		}
	})

	t.Run("missing entity is an error", func(t *testing.T) {
		if _, err := NewLinkService(newMemLinkRepo(), newMemEntityRepo()).GetLinks(ctx, testOwner, &dto.LinkQueryRequest{ID: "nope"}); err == nil {
			t.Fatal("expected error")
		}
	})
}
