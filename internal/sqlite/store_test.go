package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"marginbook/internal/domain/document"
	"marginbook/internal/domain/project"
	"marginbook/internal/repository"
	"marginbook/internal/sqlite"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "db.sqlite"))
	require.NoError(t, err)
	store, err := sqlite.NewStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoad_EmptyDatabase(t *testing.T) {
	store := newStore(t)
	doc, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, document.Empty(), doc)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	clientID := "c1"
	doc := document.Empty()
	doc.Projects = []project.Project{{
		ID:        "p1",
		Title:     "Holiday Product Shoot",
		ClientID:  &clientID,
		Status:    project.StatusActive,
		Date:      "2025-01-05T10:00:00.000Z",
		CreatedAt: "2025-01-05T10:00:00.000Z",
		UpdatedAt: "2025-01-05T10:00:00.000Z",
		Products: []project.Product{
			{ID: "x", Title: "Lighting Rental", CostPrice: 120, SellingPrice: 220},
		},
	}}

	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, doc.Projects, got.Projects)
}

func TestSave_Overwrites(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first := document.Empty()
	first.Projects = []project.Project{{ID: "p1", Title: "A", Products: []project.Product{}}}
	require.NoError(t, store.Save(ctx, first))

	second := document.Empty()
	second.Projects = []project.Project{{ID: "p2", Title: "B", Products: []project.Product{}}}
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Projects, 1)
	require.Equal(t, "p2", got.Projects[0].ID)
}

func TestClose_ConcurrentWithOperations(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Load(ctx)
			_ = store.Save(ctx, document.Empty())
		}()
	}
	require.NoError(t, store.Close())
	wg.Wait()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, repository.ErrClosed)
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Close())

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, repository.ErrClosed)
	require.ErrorIs(t, store.Save(context.Background(), document.Empty()), repository.ErrClosed)
	require.NoError(t, store.Close(), "double close is safe")
}
