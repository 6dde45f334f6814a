package itinerary

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-travel-planner/internal/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "travel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	it := sampleItinerary()
	id, err := repo.Save(ctx, "42", it, false)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, it.ID)

	rec, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "42", rec.UserID)
	assert.False(t, rec.Fallback)
	assert.Equal(t, id, rec.Itinerary.ID)
	assert.Equal(t, "Lisbon", rec.Itinerary.Destination)
	require.Len(t, rec.Itinerary.Days, 2)
	assert.True(t, it.Days[1].Date.Equal(rec.Itinerary.Days[1].Date))
	assert.Equal(t, it.Days[0].Activities, rec.Itinerary.Days[0].Activities)

	rec.Itinerary.TravelTips = append(rec.Itinerary.TravelTips, "Carry water")
	require.NoError(t, repo.Update(ctx, rec.Itinerary))

	updated, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, updated.Itinerary.TravelTips, "Carry water")
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ghost := sampleItinerary()
	ghost.ID = "missing"
	assert.ErrorIs(t, repo.Update(ctx, ghost), ErrNotFound)
}

func TestRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, dest := range []string{"Lisbon", "Porto", "Faro"} {
		at := base.Add(time.Duration(i) * time.Hour)
		repo.now = func() time.Time { return at }
		it := sampleItinerary()
		it.Destination = dest
		_, err := repo.Save(ctx, "7", it, i == 2)
		require.NoError(t, err)
	}
	_, err := repo.Save(ctx, "8", sampleItinerary(), false)
	require.NoError(t, err)

	recs, err := repo.ListRecent(ctx, "7", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Faro", recs[0].Itinerary.Destination)
	assert.True(t, recs[0].Fallback)
	assert.Equal(t, "Porto", recs[1].Itinerary.Destination)

	all, err := repo.ListRecent(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
