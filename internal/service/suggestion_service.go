package service

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/internal/dto"
	"github.com/haierkeys/knowledge-graph-service/pkg/code"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// SuggestionService defines the reference auto-completion service interface
// SuggestionService 定义引用联想服务接口
type SuggestionService interface {
	// Suggest returns ranked title candidates for a partial query
	// Suggest 为部分输入返回按序排列的标题候选
	Suggest(ctx context.Context, ownerID string, params *dto.SuggestionRequest) ([]*dto.SuggestionItem, error)

	// Invalidate drops an owner's cached title index
	Invalidate(ownerID string)
}

// indexEntry is one title in an owner's in-memory index
type indexEntry struct {
	id         string
	title      string
	titleLower string
	entityType string
}

// suggestionService implements SuggestionService interface.
// Per-owner title indexes live in an LRU cache and are rebuilt lazily
// after invalidation; singleflight collapses concurrent rebuilds.
// 每个所有者的标题索引放在 LRU 缓存中，失效后惰性重建，singleflight 合并并发重建。
type suggestionService struct {
	entityRepo domain.EntityRepository
	cache      *lru.Cache[string, []*indexEntry]
	sf         singleflight.Group
	maxResults int
}

// NewSuggestionService creates a SuggestionService instance
func NewSuggestionService(entityRepo domain.EntityRepository, cfg SuggestionServiceConfig) SuggestionService {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxSuggestions
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultIndexCacheSize
	}
	cache, _ := lru.New[string, []*indexEntry](cfg.CacheSize)
	return &suggestionService{
		entityRepo: entityRepo,
		cache:      cache,
		maxResults: cfg.MaxResults,
	}
}

// Invalidate drops an owner's cached title index
func (s *suggestionService) Invalidate(ownerID string) {
	s.cache.Remove(ownerID)
}

// ownerIndex returns the owner's title index, building it on miss
func (s *suggestionService) ownerIndex(ctx context.Context, ownerID string) ([]*indexEntry, error) {
	if idx, ok := s.cache.Get(ownerID); ok {
		return idx, nil
	}
	v, err, _ := s.sf.Do(ownerID, func() (any, error) {
		entities, err := s.entityRepo.ListTitles(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		idx := make([]*indexEntry, 0, len(entities))
		for _, e := range entities {
			idx = append(idx, &indexEntry{
				id:         e.ID,
				title:      e.Title,
				titleLower: strings.ToLower(e.Title),
				entityType: string(e.Type),
			})
		}
		s.cache.Add(ownerID, idx)
		return idx, nil
	})
	if err != nil {
		return nil, code.ErrorSuggestionFailed.WithDetails(err.Error())
	}
	return v.([]*indexEntry), nil
}

// candidate pairs an index entry with its match rank
type candidate struct {
	entry *indexEntry
	rank  int
}

// Suggest returns ranked title candidates for a partial query.
// Rank 0: the query appears in the title as a whole word.
// Rank 1: a word of the title starts with the query.
// Rank 2: any other substring hit. Each rank sorts alphabetically.
// When no title equals the query exactly a synthetic isNew entry follows.
// 排序：整词命中 > 词前缀命中 > 其余子串命中，各档内按字母序；
// 没有完全同名标题时追加一条 isNew 候选。
func (s *suggestionService) Suggest(ctx context.Context, ownerID string, params *dto.SuggestionRequest) ([]*dto.SuggestionItem, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return []*dto.SuggestionItem{}, nil
	}
	q := strings.ToLower(query)

	idx, err := s.ownerIndex(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var matches []candidate
	exactTitle := false
	for _, e := range idx {
		if e.titleLower == q {
			exactTitle = true
		}
		if !strings.Contains(e.titleLower, q) {
			continue
		}
		rank := 2
		if containsBounded(e.titleLower, q, true) {
			rank = 0
		} else if containsBounded(e.titleLower, q, false) {
			rank = 1
		}
		matches = append(matches, candidate{entry: e, rank: rank})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		if matches[i].entry.titleLower != matches[j].entry.titleLower {
			return matches[i].entry.titleLower < matches[j].entry.titleLower
		}
		return matches[i].entry.title < matches[j].entry.title
	})
	if len(matches) > s.maxResults {
		matches = matches[:s.maxResults]
	}

	results := make([]*dto.SuggestionItem, 0, len(matches)+1)
	for _, m := range matches {
		results = append(results, &dto.SuggestionItem{
			ID:    m.entry.id,
			Title: m.entry.title,
			Type:  m.entry.entityType,
		})
	}
	if !exactTitle {
		results = append(results, &dto.SuggestionItem{Title: query, IsNew: true})
	}
	return results, nil
}

// containsBounded reports whether q occurs in s starting at a word
// boundary; wholeWord additionally requires the occurrence to end at one
func containsBounded(s, q string, wholeWord bool) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], q)
		if i < 0 {
			return false
		}
		i += from
		before, _ := utf8.DecodeLastRuneInString(s[:i])
		after, _ := utf8.DecodeRuneInString(s[i+len(q):])
		startOK := i == 0 || !isWordRune(before)
		endOK := !wholeWord || i+len(q) == len(s) || !isWordRune(after)
		if startOK && endOK {
			return true
		}
		from = i + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Ensure suggestionService implements SuggestionService interface
var _ SuggestionService = (*suggestionService)(nil)
