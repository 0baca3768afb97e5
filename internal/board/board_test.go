package board

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/store"
	"jobboard-engine/internal/tier"
)

func newService(t *testing.T) (*Service, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db.Pool, nil), db
}

func TestListingsMemoizedUntilInvalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, db := newService(t)

	_, err := store.UpsertJobs(ctx, db.Pool, []domain.Job{
		{ID: "1", Company: "Acme", Tier: "megajob", Source: domain.SourceOnline, PostedDate: "2024-01-01"},
		{ID: "2", Company: "Acme", Tier: "megajob", Source: domain.SourceOnline, PostedDate: "2024-02-01"},
	})
	require.NoError(t, err)

	b, err := svc.Listings(ctx)
	require.NoError(t, err)
	require.Len(t, b[tier.Megajob], 1)
	require.Equal(t, "2", b[tier.Megajob][0].ID)
	require.Equal(t, 2, b[tier.Megajob][0].CompanyJobCount)
	require.NotNil(t, b[tier.Latest])

	_, err = store.UpsertJobs(ctx, db.Pool, []domain.Job{
		{ID: "3", Company: "Beta", Tier: "premium", Source: domain.SourceOnline},
	})
	require.NoError(t, err)

	// still cached
	reps, err := svc.Tier(ctx, tier.Premium)
	require.NoError(t, err)
	require.Empty(t, reps)

	svc.Invalidate()
	reps, err = svc.Tier(ctx, tier.Premium)
	require.NoError(t, err)
	require.Len(t, reps, 1)
	require.Equal(t, "Beta", reps[0].Company)
}

func TestNewsMemoizedUntilInvalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, db := newService(t)

	_, err := store.UpsertNews(ctx, db.Pool, []domain.NewsItem{
		{ID: "a", Type: domain.NewsTypeYouTube, Link: "https://youtube.com/watch?v=X", CreatedAt: "2024-01-01"},
		{ID: "b", Type: domain.NewsTypeYouTube, Link: "https://youtu.be/X", CreatedAt: "2024-01-02"},
		{ID: "c", Title: "Pinned", IsPinned: true, CreatedAt: "2023-01-01"},
	})
	require.NoError(t, err)

	items, err := svc.News(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "c", items[0].ID)
	require.Equal(t, "b", items[1].ID)

	_, err = store.UpsertNews(ctx, db.Pool, []domain.NewsItem{{ID: "d", Title: "Later", CreatedAt: "2024-05-01"}})
	require.NoError(t, err)

	items, err = svc.News(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	svc.Invalidate()
	items, err = svc.News(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "d", items[1].ID)
}

func TestEmptyStore(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	b, err := svc.Listings(context.Background())
	require.NoError(t, err)
	for _, tr := range tier.All {
		require.NotNil(t, b[tr], tr)
		require.Empty(t, b[tr], tr)
	}
	items, err := svc.News(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestTierRejectsNonCanonical(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()
	for _, raw := range []tier.Tier{"latest_job", "PREMIUM", "gold", ""} {
		_, err := svc.Tier(ctx, raw)
		require.ErrorIs(t, err, ErrUnknownTier, raw)
	}

	reps, err := svc.Tier(ctx, tier.Latest)
	require.NoError(t, err)
	require.NotNil(t, reps)
	require.Empty(t, reps)
}
