package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/marginaliaapp/marginalia-server/internal/dto"
	domainerrors "github.com/marginaliaapp/marginalia-server/internal/errors"
)

// BookSearcher performs a catalog lookup. Implemented by catalog.Client.
type BookSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]dto.Book, error)
}

// CatalogService fronts the external book catalog with query normalization
// and a short-lived response cache, so repeated searches for the same title
// don't burn through the upstream quota.
type CatalogService struct {
	searcher   BookSearcher
	logger     *slog.Logger
	maxResults int
	cacheTTL   time.Duration

	mu    sync.Mutex
	cache map[string]cachedSearch
}

type cachedSearch struct {
	results   []dto.Book
	expiresAt time.Time
}

// NewCatalogService creates a new catalog service. maxResults bounds every
// search; cacheTTL of zero disables caching.
func NewCatalogService(searcher BookSearcher, logger *slog.Logger, maxResults int, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		searcher:   searcher,
		logger:     logger,
		maxResults: maxResults,
		cacheTTL:   cacheTTL,
		cache:      make(map[string]cachedSearch),
	}
}

// Search looks up books matching the query. Queries are trimmed and
// lowercased before hitting the cache or the upstream API, so "Dune " and
// "dune" share one cache entry.
func (s *CatalogService) Search(ctx context.Context, query string) ([]dto.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil, domainerrors.Validation("search query cannot be empty")
	}

	if results, ok := s.cached(normalized); ok {
		s.logger.Debug("catalog cache hit", "query", normalized)
		return results, nil
	}

	results, err := s.searcher.Search(ctx, normalized, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	s.remember(normalized, results)

	s.logger.Info("catalog searched",
		"query", normalized,
		"results", len(results),
	)

	return results, nil
}

func (s *CatalogService) cached(query string) ([]dto.Book, bool) {
	if s.cacheTTL <= 0 {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[query]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.cache, query)
		return nil, false
	}
	return entry.results, true
}

func (s *CatalogService) remember(query string, results []dto.Book) {
	if s.cacheTTL <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[query] = cachedSearch{
		results:   results,
		expiresAt: time.Now().Add(s.cacheTTL),
	}
}
