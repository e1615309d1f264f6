package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shivakharbanda/journalclub/internal/models"
)

// CacheRepository caches rendered episode details. Engagement state is
// per-actor, so only the actor-independent detail is cached; reaction counters
// change often and are refreshed on every write through InvalidateEpisode.
type CacheRepository interface {
	GetEpisodeDetail(ctx context.Context, slug string) (*models.EpisodeDetail, error)
	SetEpisodeDetail(ctx context.Context, slug string, detail *models.EpisodeDetail, ttl time.Duration) error
	InvalidateEpisode(ctx context.Context, slug string) error
}

type cacheRepository struct {
	client *redis.Client
}

// NewCacheRepository creates a new cache repository
func NewCacheRepository(client *redis.Client) CacheRepository {
	return &cacheRepository{
		client: client,
	}
}

func episodeDetailKey(slug string) string {
	return fmt.Sprintf("episode:detail:%s", slug)
}

func (r *cacheRepository) GetEpisodeDetail(ctx context.Context, slug string) (*models.EpisodeDetail, error) {
	val, err := r.client.Get(ctx, episodeDetailKey(slug)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached episode: %w", err)
	}

	detail := &models.EpisodeDetail{}
	if err := json.Unmarshal([]byte(val), detail); err != nil {
		return nil, fmt.Errorf("failed to decode cached episode: %w", err)
	}
	return detail, nil
}

func (r *cacheRepository) SetEpisodeDetail(ctx context.Context, slug string, detail *models.EpisodeDetail, ttl time.Duration) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to encode episode for cache: %w", err)
	}
	return r.client.Set(ctx, episodeDetailKey(slug), payload, ttl).Err()
}

func (r *cacheRepository) InvalidateEpisode(ctx context.Context, slug string) error {
	return r.client.Del(ctx, episodeDetailKey(slug)).Err()
}
