package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivakharbanda/journalclub/internal/models"
)

func newEngagementServiceForTest(
	episodeRepo *mockEpisodeRepository,
	topicRepo *mockTopicRepository,
	progressRepo *mockProgressRepository,
	reactionRepo *mockReactionRepository,
	saveRepo *mockSaveRepository,
	cacheRepo *mockCacheRepository,
) EngagementService {
	if episodeRepo == nil {
		episodeRepo = &mockEpisodeRepository{}
	}
	if topicRepo == nil {
		topicRepo = &mockTopicRepository{}
	}
	if progressRepo == nil {
		progressRepo = &mockProgressRepository{}
	}
	if reactionRepo == nil {
		reactionRepo = &mockReactionRepository{}
	}
	if saveRepo == nil {
		saveRepo = &mockSaveRepository{}
	}
	if cacheRepo == nil {
		cacheRepo = &mockCacheRepository{}
	}
	return NewEngagementService(episodeRepo, topicRepo, progressRepo, reactionRepo, saveRepo, cacheRepo, testLogger)
}

func episodeByID(id uint64, slug string) *mockEpisodeRepository {
	return &mockEpisodeRepository{
		findByIDFunc: func(ctx context.Context, got uint64) (*models.Episode, error) {
			if got == id {
				return &models.Episode{ID: id, Slug: slug}, nil
			}
			return nil, nil
		},
	}
}

func TestEngagementService_RecordProgress(t *testing.T) {
	ctx := context.Background()
	actor := models.GuestActor(7)

	t.Run("negative values are rejected", func(t *testing.T) {
		svc := newEngagementServiceForTest(nil, nil, nil, nil, nil, nil)

		err := svc.RecordProgress(ctx, actor, 3, -1, 3600)
		assert.ErrorIs(t, err, ErrInvalidProgress)
	})

	t.Run("missing episode is rejected before any write", func(t *testing.T) {
		episodeRepo := &mockEpisodeRepository{
			findByIDFunc: func(ctx context.Context, id uint64) (*models.Episode, error) {
				return nil, nil
			},
		}
		svc := newEngagementServiceForTest(episodeRepo, nil, nil, nil, nil, nil)

		err := svc.RecordProgress(ctx, actor, 99, 120, 3600)
		assert.ErrorIs(t, err, ErrEpisodeNotFound)
	})

	t.Run("position past the end is clamped and counts as completed", func(t *testing.T) {
		var gotPosition int64
		var gotCompleted bool
		progressRepo := &mockProgressRepository{
			upsertFunc: func(ctx context.Context, a models.Actor, episodeID uint64, positionSeconds, durationSeconds int64, completed bool) error {
				gotPosition = positionSeconds
				gotCompleted = completed
				return nil
			},
		}
		svc := newEngagementServiceForTest(episodeByID(3, "ep"), nil, progressRepo, nil, nil, nil)

		require.NoError(t, svc.RecordProgress(ctx, actor, 3, 5000, 3600))
		assert.Equal(t, int64(3600), gotPosition)
		assert.True(t, gotCompleted)
	})

	t.Run("95 percent heard marks the episode completed", func(t *testing.T) {
		var gotCompleted bool
		progressRepo := &mockProgressRepository{
			upsertFunc: func(ctx context.Context, a models.Actor, episodeID uint64, positionSeconds, durationSeconds int64, completed bool) error {
				gotCompleted = completed
				return nil
			},
		}
		svc := newEngagementServiceForTest(episodeByID(3, "ep"), nil, progressRepo, nil, nil, nil)

		require.NoError(t, svc.RecordProgress(ctx, actor, 3, 3420, 3600))
		assert.True(t, gotCompleted)

		require.NoError(t, svc.RecordProgress(ctx, actor, 3, 3419, 3600))
		assert.False(t, gotCompleted)
	})

	t.Run("unknown duration never completes", func(t *testing.T) {
		var gotCompleted bool
		progressRepo := &mockProgressRepository{
			upsertFunc: func(ctx context.Context, a models.Actor, episodeID uint64, positionSeconds, durationSeconds int64, completed bool) error {
				gotCompleted = completed
				return nil
			},
		}
		svc := newEngagementServiceForTest(episodeByID(3, "ep"), nil, progressRepo, nil, nil, nil)

		require.NoError(t, svc.RecordProgress(ctx, actor, 3, 9999, 0))
		assert.False(t, gotCompleted)
	})
}

func TestEngagementService_ContinueListening(t *testing.T) {
	ctx := context.Background()
	actor := models.UserActor(42)

	var gotLimit int
	progressRepo := &mockProgressRepository{
		listFunc: func(ctx context.Context, a models.Actor, limit int) ([]*models.ContinueListeningItem, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	svc := newEngagementServiceForTest(nil, nil, progressRepo, nil, nil, nil)

	_, err := svc.ContinueListening(ctx, actor, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, gotLimit)

	_, err = svc.ContinueListening(ctx, actor, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, gotLimit)
}

func TestEngagementService_SetReaction(t *testing.T) {
	ctx := context.Background()
	actor := models.GuestActor(7)

	t.Run("unknown action is rejected", func(t *testing.T) {
		svc := newEngagementServiceForTest(nil, nil, nil, nil, nil, nil)

		err := svc.SetReaction(ctx, actor, 3, models.ReactionAction("love"))
		assert.ErrorIs(t, err, ErrInvalidAction)
	})

	t.Run("missing episode is rejected", func(t *testing.T) {
		episodeRepo := &mockEpisodeRepository{
			findByIDFunc: func(ctx context.Context, id uint64) (*models.Episode, error) {
				return nil, nil
			},
		}
		svc := newEngagementServiceForTest(episodeRepo, nil, nil, nil, nil, nil)

		err := svc.SetReaction(ctx, actor, 99, models.ReactionLike)
		assert.ErrorIs(t, err, ErrEpisodeNotFound)
	})

	t.Run("successful reaction invalidates the cached detail", func(t *testing.T) {
		invalidated := ""
		reactionRepo := &mockReactionRepository{
			setFunc: func(ctx context.Context, a models.Actor, episodeID uint64, action models.ReactionAction) error {
				return nil
			},
		}
		cacheRepo := &mockCacheRepository{
			invalidateFunc: func(ctx context.Context, slug string) error {
				invalidated = slug
				return nil
			},
		}
		svc := newEngagementServiceForTest(episodeByID(3, "crispr-screens"), nil, nil, reactionRepo, nil, cacheRepo)

		require.NoError(t, svc.SetReaction(ctx, actor, 3, models.ReactionLike))
		assert.Equal(t, "crispr-screens", invalidated)
	})

	t.Run("cache failure does not fail the reaction", func(t *testing.T) {
		reactionRepo := &mockReactionRepository{
			setFunc: func(ctx context.Context, a models.Actor, episodeID uint64, action models.ReactionAction) error {
				return nil
			},
		}
		cacheRepo := &mockCacheRepository{
			invalidateFunc: func(ctx context.Context, slug string) error {
				return errors.New("redis down")
			},
		}
		svc := newEngagementServiceForTest(episodeByID(3, "ep"), nil, nil, reactionRepo, nil, cacheRepo)

		assert.NoError(t, svc.SetReaction(ctx, actor, 3, models.ReactionDislike))
	})
}

func TestEngagementService_ClearReaction(t *testing.T) {
	ctx := context.Background()
	actor := models.UserActor(42)

	cleared := false
	invalidated := false
	reactionRepo := &mockReactionRepository{
		clearFunc: func(ctx context.Context, a models.Actor, episodeID uint64) error {
			cleared = true
			return nil
		},
	}
	cacheRepo := &mockCacheRepository{
		invalidateFunc: func(ctx context.Context, slug string) error {
			invalidated = true
			return nil
		},
	}
	svc := newEngagementServiceForTest(episodeByID(3, "ep"), nil, nil, reactionRepo, nil, cacheRepo)

	require.NoError(t, svc.ClearReaction(ctx, actor, 3))
	assert.True(t, cleared)
	assert.True(t, invalidated)
}

func TestEngagementService_ToggleSave(t *testing.T) {
	ctx := context.Background()
	actor := models.GuestActor(7)

	t.Run("saving an existing episode toggles on", func(t *testing.T) {
		saveRepo := &mockSaveRepository{
			toggleFunc: func(ctx context.Context, a models.Actor, targetType models.SavableType, targetID uint64) (bool, error) {
				return true, nil
			},
		}
		svc := newEngagementServiceForTest(episodeByID(3, "ep"), nil, nil, nil, saveRepo, nil)

		saved, err := svc.ToggleSave(ctx, actor, models.SavableEpisode, 3)
		require.NoError(t, err)
		assert.True(t, saved)
	})

	t.Run("missing topic is rejected", func(t *testing.T) {
		topicRepo := &mockTopicRepository{
			findByIDFunc: func(ctx context.Context, id uint64) (*models.Topic, error) {
				return nil, nil
			},
		}
		svc := newEngagementServiceForTest(nil, topicRepo, nil, nil, nil, nil)

		_, err := svc.ToggleSave(ctx, actor, models.SavableTopic, 99)
		assert.ErrorIs(t, err, ErrTopicNotFound)
	})

	t.Run("unknown target type is rejected", func(t *testing.T) {
		svc := newEngagementServiceForTest(nil, nil, nil, nil, nil, nil)

		_, err := svc.ToggleSave(ctx, actor, models.SavableType("playlist"), 1)
		assert.ErrorIs(t, err, ErrInvalidTarget)
	})
}
