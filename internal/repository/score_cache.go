package repository

import (
	"context"
	"errors"
	"time"

	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/repository"
	"PolyWatch/pkg/cache"
)

// CachedScoreStore keeps the latest combined score per entity in a cache
// backend (Redis in production, in-memory in tests).
type CachedScoreStore struct {
	cache cache.Service
	ttl   time.Duration
}

// NewCachedScoreStore creates a score store on top of a cache service.
func NewCachedScoreStore(svc cache.Service, ttl time.Duration) repository.ScoreCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedScoreStore{cache: svc, ttl: ttl}
}

func (s *CachedScoreStore) SetScores(ctx context.Context, scores []models.EnsembleScore) error {
	for _, sc := range scores {
		if err := s.cache.Set(ctx, "score:"+sc.EntityID, sc.Score, s.ttl); err != nil {
			return err
		}
	}
	return nil
}

func (s *CachedScoreStore) GetScore(ctx context.Context, entityID string) (float64, bool, error) {
	var score float64
	err := s.cache.Get(ctx, "score:"+entityID, &score)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return score, true, nil
}
