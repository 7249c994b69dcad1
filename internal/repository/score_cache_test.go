package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PolyWatch/internal/domain/models"
	"PolyWatch/pkg/cache"
)

func TestCachedScoreStoreRoundTrip(t *testing.T) {
	store := NewCachedScoreStore(cache.NewMemoryCache(), time.Minute)

	err := store.SetScores(context.Background(), []models.EnsembleScore{
		{EntityID: "acc-1", Score: 0.87},
		{EntityID: "acc-2", Score: 0.12},
	})
	require.NoError(t, err)

	score, ok, err := store.GetScore(context.Background(), "acc-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 0.87, score, 1e-9)
}

func TestCachedScoreStoreMiss(t *testing.T) {
	store := NewCachedScoreStore(cache.NewMemoryCache(), time.Minute)
	_, ok, err := store.GetScore(context.Background(), "unknown")
	require.NoError(t, err)
	require.False(t, ok)
}
