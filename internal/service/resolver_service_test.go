package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

const testOwner = "owner-1"

func newTestResolver(entityRepo *memEntityRepo, linkRepo *memLinkRepo) ResolverService {
	return NewResolverService(entityRepo, linkRepo, nil, NopNotifier(), zap.NewNop())
}

func mustCreate(t *testing.T, repo *memEntityRepo, entityType domain.EntityType, title, body string) *domain.Entity {
	t.Helper()
	e, err := repo.Create(context.Background(), &domain.Entity{
		Type:    entityType,
		Title:   title,
		Body:    domain.RichText{Format: "markdown", Text: body},
		OwnerID: testOwner,
	})
	if err != nil {
		t.Fatalf("create entity %q: %v", title, err)
	}
	return e
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates edges for resolvable references", func(t *testing.T) {
		entityRepo := newMemEntityRepo()
		linkRepo := newMemLinkRepo()
		alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "see [[Beta]] and [[Gamma Task]]")
		mustCreate(t, entityRepo, domain.EntityTypeNote, "Beta", "")
		mustCreate(t, entityRepo, domain.EntityTypeTask, "Gamma Task", "")

		res, err := newTestResolver(entityRepo, linkRepo).Reconcile(ctx, testOwner, alpha.ID)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if res.Created != 2 || res.Removed != 0 || len(res.Unresolved) != 0 {
			t.Fatalf("unexpected result: %+v", res)
		}

		out, _ := linkRepo.GetOutgoing(ctx, alpha.ID, testOwner)
		types := map[string]string{}
		for _, l := range out {
			types[l.TargetID] = l.Type
		}
		if len(out) != 2 {
			t.Fatalf("expected 2 edges, got %d", len(out))
		}
		for targetID, linkType := range types {
			target, _ := entityRepo.GetByID(ctx, targetID, testOwner)
			if want := domain.LinkTypeForEntity(target.Type); linkType != want {
				t.Errorf("edge to %s has type %s, want %s", target.Title, linkType, want)
			}
		}
	})

	t.Run("removes edges for dropped references", func(t *testing.T) {
		entityRepo := newMemEntityRepo()
		linkRepo := newMemLinkRepo()
		alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "see [[Beta]]")
		mustCreate(t, entityRepo, domain.EntityTypeNote, "Beta", "")
		svc := newTestResolver(entityRepo, linkRepo)

		if _, err := svc.Reconcile(ctx, testOwner, alpha.ID); err != nil {
			t.Fatalf("first reconcile: %v", err)
		}

		alpha.Body.Text = "no references left"
		if _, err := entityRepo.Update(ctx, alpha); err != nil {
			t.Fatalf("update: %v", err)
		}
		res, err := svc.Reconcile(ctx, testOwner, alpha.ID)
		if err != nil {
			t.Fatalf("second reconcile: %v", err)
		}
		if res.Created != 0 || res.Removed != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
		out, _ := linkRepo.GetOutgoing(ctx, alpha.ID, testOwner)
		if len(out) != 0 {
			t.Fatalf("expected no edges, got %d", len(out))
		}
	})

	t.Run("self references are discarded", func(t *testing.T) {
		entityRepo := newMemEntityRepo()
		linkRepo := newMemLinkRepo()
		alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "I am [[Alpha]]")

		res, err := newTestResolver(entityRepo, linkRepo).Reconcile(ctx, testOwner, alpha.ID)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if res.Created != 0 || len(res.Unresolved) != 0 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("embeds create no edges", func(t *testing.T) {
		entityRepo := newMemEntityRepo()
		linkRepo := newMemLinkRepo()
		mustCreate(t, entityRepo, domain.EntityTypeNote, "Beta", "")
		alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "![[Beta]] but also [[Beta]]... no wait: ![[Gamma]]")

		res, err := newTestResolver(entityRepo, linkRepo).Reconcile(ctx, testOwner, alpha.ID)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		// only the plain [[Beta]] reference counts; the unresolvable
		// embed is not reported either
		// 只有普通 [[Beta]] 引用计数，无法解析的嵌入也不上报
		if res.Created != 1 || len(res.Unresolved) != 0 {
			t.Fatalf("unexpected result: %+v", res)
		}
		out, _ := linkRepo.GetOutgoing(ctx, alpha.ID, testOwner)
		if len(out) != 1 {
			t.Fatalf("expected exactly one edge, got %+v", out)
		}
	})

	t.Run("unresolved references are reported not stored", func(t *testing.T) {
		entityRepo := newMemEntityRepo()
		linkRepo := newMemLinkRepo()
		alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "[[Missing]] and [[Missing]] again")

		res, err := newTestResolver(entityRepo, linkRepo).Reconcile(ctx, testOwner, alpha.ID)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if res.Created != 0 {
			t.Fatalf("expected no edges, got %d created", res.Created)
		}
		if len(res.Unresolved) != 1 || res.Unresolved[0] != "Missing" {
			t.Fatalf("unexpected unresolved: %v", res.Unresolved)
		}
	})

	t.Run("explicit id wins over title", func(t *testing.T) {
		entityRepo := newMemEntityRepo()
		linkRepo := newMemLinkRepo()
		beta := mustCreate(t, entityRepo, domain.EntityTypeEvent, "Beta", "")
		alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha",
			fmt.Sprintf("[[Anything|%s]]", beta.ID))

		res, err := newTestResolver(entityRepo, linkRepo).Reconcile(ctx, testOwner, alpha.ID)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if res.Created != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
		out, _ := linkRepo.GetOutgoing(ctx, alpha.ID, testOwner)
		if len(out) != 1 || out[0].TargetID != beta.ID || out[0].Type != domain.LinkTypeEvent {
			t.Fatalf("unexpected edge: %+v", out)
		}
	})

	t.Run("title resolution is case-insensitive", func(t *testing.T) {
		entityRepo := newMemEntityRepo()
		linkRepo := newMemLinkRepo()
		mustCreate(t, entityRepo, domain.EntityTypeNote, "Project Kickoff", "")
		alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "[[project kickoff]]")

		res, err := newTestResolver(entityRepo, linkRepo).Reconcile(ctx, testOwner, alpha.ID)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if res.Created != 1 || len(res.Unresolved) != 0 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("missing entity", func(t *testing.T) {
		_, err := newTestResolver(newMemEntityRepo(), newMemLinkRepo()).Reconcile(ctx, testOwner, "nope")
		if err == nil {
			t.Fatal("expected error for missing entity")
		}
	})
}

func TestReconcileIdempotent(t *testing.T) {
	ctx := context.Background()
	entityRepo := newMemEntityRepo()
	linkRepo := newMemLinkRepo()
	alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "[[Beta]] [[Beta]] [[Missing]]")
	mustCreate(t, entityRepo, domain.EntityTypeNote, "Beta", "")
	svc := newTestResolver(entityRepo, linkRepo)

	first, err := svc.Reconcile(ctx, testOwner, alpha.ID)
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	if first.Created != 1 {
		t.Fatalf("duplicate references must collapse to one edge: %+v", first)
	}

	second, err := svc.Reconcile(ctx, testOwner, alpha.ID)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if second.Created != 0 || second.Removed != 0 {
		t.Fatalf("second pass over unchanged body must be a no-op: %+v", second)
	}
}

// TestReconcileProperties drives reconcile with random bodies and checks
// the structural invariants that must hold for every outcome
func TestReconcileProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	titles := []string{"Alpha", "Beta", "Gamma", "Source"}
	genBody := gen.SliceOf(gen.OneConstOf("Alpha", "Beta", "Gamma", "Source", "Missing")).
		Map(func(refs []string) string {
			body := ""
			for _, r := range refs {
				body += "text [[" + r + "]] "
			}
			return body
		})

	properties.Property("edges are unique, never dangling, never self", prop.ForAll(
		func(body string) bool {
			ctx := context.Background()
			entityRepo := newMemEntityRepo()
			linkRepo := newMemLinkRepo()
			ids := map[string]string{}
			for _, title := range titles {
				e, _ := entityRepo.Create(ctx, &domain.Entity{
					Type: domain.EntityTypeNote, Title: title, OwnerID: testOwner,
				})
				ids[title] = e.ID
			}
			source, _ := entityRepo.GetByID(ctx, ids["Source"], testOwner)
			source.Body.Text = body
			if _, err := entityRepo.Update(ctx, source); err != nil {
				return false
			}
			svc := newTestResolver(entityRepo, linkRepo)
			if _, err := svc.Reconcile(ctx, testOwner, source.ID); err != nil {
				return false
			}

			out, _ := linkRepo.GetOutgoing(ctx, source.ID, testOwner)
			seen := map[string]bool{}
			for _, l := range out {
				if l.TargetID == source.ID {
					return false // self link
				}
				if ok, _ := entityRepo.Exists(ctx, l.TargetID, testOwner); !ok {
					return false // dangling
				}
				key := l.TargetID + "|" + l.Type
				if seen[key] {
					return false // duplicate
				}
				seen[key] = true
			}

			// second pass must change nothing
			res, err := svc.Reconcile(ctx, testOwner, source.ID)
			return err == nil && res.Created == 0 && res.Removed == 0
		},
		genBody,
	))

	properties.TestingRun(t)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	entityRepo := newMemEntityRepo()
	beta := mustCreate(t, entityRepo, domain.EntityTypeNote, "Beta", "")
	svc := newTestResolver(entityRepo, newMemLinkRepo())

	tests := []struct {
		name    string
		token   string
		wantID  string
		wantNew bool
	}{
		{"existing title", "Beta", beta.ID, false},
		{"existing title case-insensitive", "beta", beta.ID, false},
		{"explicit id", "Display|" + beta.ID, beta.ID, false},
		{"unknown title", "Nope", "", true},
		{"unknown explicit id", "Display|missing-id", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Resolve(ctx, testOwner, &dto.ResolveRequest{Token: tt.token})
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got.ID != tt.wantID || got.IsNew != tt.wantNew {
				t.Fatalf("got %+v, want id=%q isNew=%v", got, tt.wantID, tt.wantNew)
			}
		})
	}
}

func TestMaterialize(t *testing.T) {
	ctx := context.Background()
	entityRepo := newMemEntityRepo()
	svc := newTestResolver(entityRepo, newMemLinkRepo())

	created, err := svc.Materialize(ctx, testOwner, &dto.MaterializeRequest{Title: "New Idea"})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if created.ID == "" || created.Title != "New Idea" || created.Type != "note" {
		t.Fatalf("unexpected entity: %+v", created)
	}
	if created.Body.Text != "" {
		t.Fatalf("placeholder body must be empty, got %q", created.Body.Text)
	}

	// same title again returns the existing entity
	again, err := svc.Materialize(ctx, testOwner, &dto.MaterializeRequest{Title: "new idea"})
	if err != nil {
		t.Fatalf("second materialize: %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("expected existing entity %s, got %s", created.ID, again.ID)
	}

	// explicit type is honored
	task, err := svc.Materialize(ctx, testOwner, &dto.MaterializeRequest{Title: "Chore", Type: "task"})
	if err != nil {
		t.Fatalf("typed materialize: %v", err)
	}
	if task.Type != "task" {
		t.Fatalf("expected task, got %s", task.Type)
	}
}

func TestMaterializeLinksSource(t *testing.T) {
	ctx := context.Background()
	entityRepo := newMemEntityRepo()
	linkRepo := newMemLinkRepo()
	svc := newTestResolver(entityRepo, linkRepo)

	alpha := mustCreate(t, entityRepo, domain.EntityTypeNote, "Alpha", "See [[New Note]]")
	res, err := svc.Reconcile(ctx, testOwner, alpha.ID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Unresolved) != 1 {
		t.Fatalf("expected one unresolved ref, got %+v", res)
	}

	created, err := svc.Materialize(ctx, testOwner, &dto.MaterializeRequest{
		Title:    "New Note",
		SourceID: alpha.ID,
	})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	// the referring entity is linked in the same call
	// 引用方实体在同一次调用里建边
	incoming, _ := linkRepo.GetIncoming(ctx, created.ID, testOwner)
	if len(incoming) != 1 || incoming[0].SourceID != alpha.ID {
		t.Fatalf("expected one edge from %s, got %+v", alpha.ID, incoming)
	}

	// idempotent path also reconciles the source
	// 幂等路径同样协调引用方
	beta := mustCreate(t, entityRepo, domain.EntityTypeNote, "Beta", "also [[New Note]]")
	if _, err := svc.Materialize(ctx, testOwner, &dto.MaterializeRequest{Title: "new note", SourceID: beta.ID}); err != nil {
		t.Fatalf("second materialize: %v", err)
	}
	incoming, _ = linkRepo.GetIncoming(ctx, created.ID, testOwner)
	if len(incoming) != 2 {
		t.Fatalf("expected two incoming edges, got %+v", incoming)
	}
}
