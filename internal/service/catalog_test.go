package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marginaliaapp/marginalia-server/internal/dto"
	domainerrors "github.com/marginaliaapp/marginalia-server/internal/errors"
)

type fakeSearcher struct {
	calls   int
	queries []string
	results []dto.Book
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]dto.Book, error) {
	f.calls++
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func newCatalogService(searcher BookSearcher, ttl time.Duration) *CatalogService {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewCatalogService(searcher, logger, 7, ttl)
}

func TestCatalogSearch(t *testing.T) {
	searcher := &fakeSearcher{results: []dto.Book{{ID: "vol-1", Title: "Dune"}}}
	svc := newCatalogService(searcher, time.Minute)

	results, err := svc.Search(context.Background(), "Dune")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Dune", results[0].Title)
}

func TestCatalogSearch_NormalizesQuery(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := newCatalogService(searcher, time.Minute)

	_, err := svc.Search(context.Background(), "  The Dispossessed  ")
	require.NoError(t, err)
	require.Len(t, searcher.queries, 1)
	assert.Equal(t, "the dispossessed", searcher.queries[0])
}

func TestCatalogSearch_CacheSharedAcrossVariants(t *testing.T) {
	searcher := &fakeSearcher{results: []dto.Book{{ID: "vol-1"}}}
	svc := newCatalogService(searcher, time.Minute)
	ctx := context.Background()

	_, err := svc.Search(ctx, "Dune")
	require.NoError(t, err)
	_, err = svc.Search(ctx, "  dune ")
	require.NoError(t, err)
	_, err = svc.Search(ctx, "DUNE")
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.calls, "normalized variants should share one upstream call")
}

func TestCatalogSearch_CacheExpires(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := newCatalogService(searcher, 10*time.Millisecond)
	ctx := context.Background()

	_, err := svc.Search(ctx, "dune")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = svc.Search(ctx, "dune")
	require.NoError(t, err)
	assert.Equal(t, 2, searcher.calls)
}

func TestCatalogSearch_EmptyQuery(t *testing.T) {
	svc := newCatalogService(&fakeSearcher{}, time.Minute)

	_, err := svc.Search(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestCatalogSearch_UpstreamError(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("quota exceeded")}
	svc := newCatalogService(searcher, time.Minute)

	_, err := svc.Search(context.Background(), "dune")
	require.Error(t, err)

	// Failures are not cached.
	searcher.err = nil
	_, err = svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, 2, searcher.calls)
}
