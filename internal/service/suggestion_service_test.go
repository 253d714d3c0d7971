package service

import (
	"context"
	"testing"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"
)

func seedTitles(t *testing.T, repo *memEntityRepo, titles ...string) {
	t.Helper()
	for _, title := range titles {
		mustCreate(t, repo, domain.EntityTypeNote, title, "")
	}
}

func titlesOf(items []*dto.SuggestionItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()

	t.Run("whole word beats word prefix", func(t *testing.T) {
		repo := newMemEntityRepo()
		seedTitles(t, repo, "Meeting Notes", "Team Meet")
		svc := NewSuggestionService(repo, SuggestionServiceConfig{})

		res, err := svc.Suggest(ctx, testOwner, &dto.SuggestionRequest{Query: "Meet"})
		if err != nil {
			t.Fatalf("suggest: %v", err)
		}
		want := []string{"Team Meet", "Meeting Notes", "Meet"}
		if !equalStrings(titlesOf(res), want) {
			t.Fatalf("got %v, want %v", titlesOf(res), want)
		}
		if !res[2].IsNew {
			t.Fatal("trailing candidate must be isNew")
		}
	})

	t.Run("ranks sort alphabetically", func(t *testing.T) {
		repo := newMemEntityRepo()
		seedTitles(t, repo, "Beta plan", "Alpha plan", "Planning", "Replant")
		svc := NewSuggestionService(repo, SuggestionServiceConfig{})

		res, err := svc.Suggest(ctx, testOwner, &dto.SuggestionRequest{Query: "plan"})
		if err != nil {
			t.Fatalf("suggest: %v", err)
		}
		// "plan" is a whole word in both plans, a word prefix in Planning,
		// a bare substring in Replant
		want := []string{"Alpha plan", "Beta plan", "Planning", "Replant", "plan"}
		if !equalStrings(titlesOf(res), want) {
			t.Fatalf("got %v, want %v", titlesOf(res), want)
		}
	})

	t.Run("multibyte titles rank by rune boundaries", func(t *testing.T) {
		repo := newMemEntityRepo()
		seedTitles(t, repo, "产品会议", "会议记录")
		svc := NewSuggestionService(repo, SuggestionServiceConfig{})

		res, err := svc.Suggest(ctx, testOwner, &dto.SuggestionRequest{Query: "会议"})
		if err != nil {
			t.Fatalf("suggest: %v", err)
		}
		// 会议 starts 会议记录 at a boundary but sits mid-word in 产品会议;
		// the preceding CJK letter must not count as a word break
		// 会议 位于 会议记录 的词首，但在 产品会议 中是词中；
		// 前一个中日韩字符不能算作词边界
		want := []string{"会议记录", "产品会议", "会议"}
		if !equalStrings(titlesOf(res), want) {
			t.Fatalf("got %v, want %v", titlesOf(res), want)
		}
	})

	t.Run("case-insensitive matching", func(t *testing.T) {
		repo := newMemEntityRepo()
		seedTitles(t, repo, "Groceries")
		svc := NewSuggestionService(repo, SuggestionServiceConfig{})

		res, err := svc.Suggest(ctx, testOwner, &dto.SuggestionRequest{Query: "GROC"})
		if err != nil {
			t.Fatalf("suggest: %v", err)
		}
		if len(res) == 0 || res[0].Title != "Groceries" {
			t.Fatalf("got %v", titlesOf(res))
		}
	})

	t.Run("exact title suppresses isNew", func(t *testing.T) {
		repo := newMemEntityRepo()
		seedTitles(t, repo, "Beta")
		svc := NewSuggestionService(repo, SuggestionServiceConfig{})

		res, err := svc.Suggest(ctx, testOwner, &dto.SuggestionRequest{Query: "beta"})
		if err != nil {
			t.Fatalf("suggest: %v", err)
		}
		for _, it := range res {
			if it.IsNew {
				t.Fatalf("unexpected isNew candidate: %v", titlesOf(res))
			}
		}
	})

	t.Run("empty query yields nothing", func(t *testing.T) {
		repo := newMemEntityRepo()
		seedTitles(t, repo, "Alpha")
		svc := NewSuggestionService(repo, SuggestionServiceConfig{})

		res, err := svc.Suggest(ctx, testOwner, &dto.SuggestionRequest{Query: "   "})
		if err != nil {
			t.Fatalf("suggest: %v", err)
		}
		if len(res) != 0 {
			t.Fatalf("expected empty result, got %v", titlesOf(res))
		}
	})

	t.Run("result capped", func(t *testing.T) {
		repo := newMemEntityRepo()
		titles := []string{
			"Plan a", "Plan b", "Plan c", "Plan d", "Plan e",
			"Plan f", "Plan g", "Plan h", "Plan i", "Plan j", "Plan k",
		}
		seedTitles(t, repo, titles...)
		svc := NewSuggestionService(repo, SuggestionServiceConfig{MaxResults: 10})

		res, err := svc.Suggest(ctx, testOwner, &dto.SuggestionRequest{Query: "Plan"})
		if err != nil {
			t.Fatalf("suggest: %v", err)
		}
		// 10 ranked candidates plus the synthetic isNew entry
		if len(res) != 11 {
			t.Fatalf("expected 11 items, got %d", len(res))
		}
		if !res[10].IsNew {
			t.Fatal("last item must be the isNew candidate")
		}
	})

	t.Run("invalidate picks up new titles", func(t *testing.T) {
		repo := newMemEntityRepo()
		seedTitles(t, repo, "Alpha")
		svc := NewSuggestionService(repo, SuggestionServiceConfig{})

		if _, err := svc.Suggest(ctx, testOwner, &dto.SuggestionRequest{Query: "Al"}); err != nil {
			t.Fatalf("warm up: %v", err)
		}
		seedTitles(t, repo, "Almond")

		// stale index until invalidated
		res, _ := svc.Suggest(ctx, testOwner, &dto.SuggestionRequest{Query: "Almond"})
		if len(res) != 1 || !res[0].IsNew {
			t.Fatalf("expected only isNew before invalidation, got %v", titlesOf(res))
		}

		svc.Invalidate(testOwner)
		res, _ = svc.Suggest(ctx, testOwner, &dto.SuggestionRequest{Query: "Almond"})
		if len(res) == 0 || res[0].Title != "Almond" || res[0].IsNew {
			t.Fatalf("expected Almond after invalidation, got %v", titlesOf(res))
		}
	})
}
