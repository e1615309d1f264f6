package service

import (
	"context"
	"errors"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/repository"
	"github.com/shivakharbanda/journalclub/pkg/logger"
)

var (
	ErrEpisodeNotFound = errors.New("episode not found")
	ErrTopicNotFound   = errors.New("topic not found")
	ErrInvalidProgress = errors.New("invalid progress values")
	ErrInvalidAction   = errors.New("invalid reaction action")
	ErrInvalidTarget   = errors.New("invalid save target")
)

// EngagementService records listening progress, reactions and saved items for
// any actor, registered or guest. Writes against missing episodes are rejected
// up front so engagement rows never dangle.
type EngagementService interface {
	RecordProgress(ctx context.Context, actor models.Actor, episodeID uint64, positionSeconds, durationSeconds int64) error
	GetProgress(ctx context.Context, actor models.Actor, episodeID uint64) (*models.ListeningProgress, error)
	ContinueListening(ctx context.Context, actor models.Actor, limit int) ([]*models.ContinueListeningItem, error)

	SetReaction(ctx context.Context, actor models.Actor, episodeID uint64, action models.ReactionAction) error
	ClearReaction(ctx context.Context, actor models.Actor, episodeID uint64) error

	ToggleSave(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error)
	ListSaved(ctx context.Context, actor models.Actor) ([]*models.SavedItem, error)
}

type engagementService struct {
	episodeRepo  repository.EpisodeRepository
	topicRepo    repository.TopicRepository
	progressRepo repository.ProgressRepository
	reactionRepo repository.ReactionRepository
	saveRepo     repository.SaveRepository
	cacheRepo    repository.CacheRepository
	log          *logger.Logger
}

func NewEngagementService(
	episodeRepo repository.EpisodeRepository,
	topicRepo repository.TopicRepository,
	progressRepo repository.ProgressRepository,
	reactionRepo repository.ReactionRepository,
	saveRepo repository.SaveRepository,
	cacheRepo repository.CacheRepository,
	log *logger.Logger,
) EngagementService {
	return &engagementService{
		episodeRepo:  episodeRepo,
		topicRepo:    topicRepo,
		progressRepo: progressRepo,
		reactionRepo: reactionRepo,
		saveRepo:     saveRepo,
		cacheRepo:    cacheRepo,
		log:          log,
	}
}

const defaultContinueListeningLimit = 10

// completionThreshold marks an episode finished once this fraction is heard.
const completionThreshold = 0.95

func (s *engagementService) RecordProgress(ctx context.Context, actor models.Actor, episodeID uint64, positionSeconds, durationSeconds int64) error {
	if positionSeconds < 0 || durationSeconds < 0 {
		return ErrInvalidProgress
	}
	if durationSeconds > 0 && positionSeconds > durationSeconds {
		positionSeconds = durationSeconds
	}

	episode, err := s.episodeRepo.FindByID(ctx, episodeID)
	if err != nil {
		return err
	}
	if episode == nil {
		return ErrEpisodeNotFound
	}

	completed := durationSeconds > 0 &&
		float64(positionSeconds) >= completionThreshold*float64(durationSeconds)

	return s.progressRepo.Upsert(ctx, actor, episodeID, positionSeconds, durationSeconds, completed)
}

func (s *engagementService) GetProgress(ctx context.Context, actor models.Actor, episodeID uint64) (*models.ListeningProgress, error) {
	return s.progressRepo.Get(ctx, actor, episodeID)
}

func (s *engagementService) ContinueListening(ctx context.Context, actor models.Actor, limit int) ([]*models.ContinueListeningItem, error) {
	if limit <= 0 {
		limit = defaultContinueListeningLimit
	}
	return s.progressRepo.ListInProgress(ctx, actor, limit)
}

func (s *engagementService) SetReaction(ctx context.Context, actor models.Actor, episodeID uint64, action models.ReactionAction) error {
	if action != models.ReactionLike && action != models.ReactionDislike {
		return ErrInvalidAction
	}

	episode, err := s.episodeRepo.FindByID(ctx, episodeID)
	if err != nil {
		return err
	}
	if episode == nil {
		return ErrEpisodeNotFound
	}

	if err := s.reactionRepo.Set(ctx, actor, episodeID, action); err != nil {
		return err
	}
	s.invalidateEpisodeCache(ctx, episode.Slug)
	return nil
}

func (s *engagementService) ClearReaction(ctx context.Context, actor models.Actor, episodeID uint64) error {
	episode, err := s.episodeRepo.FindByID(ctx, episodeID)
	if err != nil {
		return err
	}
	if episode == nil {
		return ErrEpisodeNotFound
	}

	if err := s.reactionRepo.Clear(ctx, actor, episodeID); err != nil {
		return err
	}
	s.invalidateEpisodeCache(ctx, episode.Slug)
	return nil
}

func (s *engagementService) ToggleSave(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error) {
	switch targetType {
	case models.SavableEpisode:
		episode, err := s.episodeRepo.FindByID(ctx, targetID)
		if err != nil {
			return false, err
		}
		if episode == nil {
			return false, ErrEpisodeNotFound
		}
	case models.SavableTopic:
		topic, err := s.topicRepo.FindByID(ctx, targetID)
		if err != nil {
			return false, err
		}
		if topic == nil {
			return false, ErrTopicNotFound
		}
	default:
		return false, ErrInvalidTarget
	}

	return s.saveRepo.Toggle(ctx, actor, targetType, targetID)
}

func (s *engagementService) ListSaved(ctx context.Context, actor models.Actor) ([]*models.SavedItem, error) {
	return s.saveRepo.ListByActor(ctx, actor)
}

// invalidateEpisodeCache drops the cached detail after a counter change. Cache
// failures only make the next read slower, so they are logged, not returned.
func (s *engagementService) invalidateEpisodeCache(ctx context.Context, slug string) {
	if err := s.cacheRepo.InvalidateEpisode(ctx, slug); err != nil {
		s.log.WithError(err).WithField("slug", slug).Warn("Failed to invalidate episode cache")
	}
}
