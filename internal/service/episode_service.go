package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/repository"
	"github.com/shivakharbanda/journalclub/pkg/helpers"
	"github.com/shivakharbanda/journalclub/pkg/logger"
)

// EpisodeInput carries the writable fields of an episode. Tags are free-form
// names resolved to tag rows on save; topics are referenced by id.
type EpisodeInput struct {
	Title       string
	SummaryText string
	Description string
	Sources     []string
	AudioURL    string
	ImageURL    string
	TopicIDs    []uint64
	Tags        []string
}

type EpisodeService interface {
	Create(ctx context.Context, input EpisodeInput) (*models.Episode, error)
	Update(ctx context.Context, slug string, input EpisodeInput) (*models.Episode, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context, titleQuery string, limit, offset int) ([]*models.Episode, error)
	// GetDetail returns the episode with its topics, tags and the requesting
	// actor's own reaction and saved state. Pass a zero-value actor for
	// anonymous reads with no engagement state.
	GetDetail(ctx context.Context, slug string, actor models.Actor) (*models.EpisodeDetail, error)
}

type episodeService struct {
	episodeRepo  repository.EpisodeRepository
	topicRepo    repository.TopicRepository
	tagRepo      repository.TagRepository
	reactionRepo repository.ReactionRepository
	saveRepo     repository.SaveRepository
	cacheRepo    repository.CacheRepository
	log          *logger.Logger
}

func NewEpisodeService(
	episodeRepo repository.EpisodeRepository,
	topicRepo repository.TopicRepository,
	tagRepo repository.TagRepository,
	reactionRepo repository.ReactionRepository,
	saveRepo repository.SaveRepository,
	cacheRepo repository.CacheRepository,
	log *logger.Logger,
) EpisodeService {
	return &episodeService{
		episodeRepo:  episodeRepo,
		topicRepo:    topicRepo,
		tagRepo:      tagRepo,
		reactionRepo: reactionRepo,
		saveRepo:     saveRepo,
		cacheRepo:    cacheRepo,
		log:          log,
	}
}

const (
	defaultEpisodeListLimit = 20
	maxEpisodeListLimit     = 100
	episodeDetailCacheTTL   = 5 * time.Minute
)

func (s *episodeService) Create(ctx context.Context, input EpisodeInput) (*models.Episode, error) {
	slug, err := s.uniqueSlug(ctx, input.Title)
	if err != nil {
		return nil, err
	}

	episode := &models.Episode{
		Title:       input.Title,
		Slug:        slug,
		SummaryText: input.SummaryText,
		Description: input.Description,
		Sources:     input.Sources,
		AudioURL:    input.AudioURL,
		ImageURL:    input.ImageURL,
	}
	id, err := s.episodeRepo.Create(ctx, episode)
	if err != nil {
		return nil, err
	}
	episode.ID = id

	if err := s.applyAssociations(ctx, id, input); err != nil {
		return nil, err
	}

	s.log.WithField("slug", slug).Info("Episode created")
	return s.episodeRepo.FindByID(ctx, id)
}

func (s *episodeService) Update(ctx context.Context, slug string, input EpisodeInput) (*models.Episode, error) {
	episode, err := s.episodeRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, ErrEpisodeNotFound
	}

	// The slug is stable across edits so shared links keep working.
	episode.Title = input.Title
	episode.SummaryText = input.SummaryText
	episode.Description = input.Description
	episode.Sources = input.Sources
	episode.AudioURL = input.AudioURL
	episode.ImageURL = input.ImageURL
	if err := s.episodeRepo.Update(ctx, episode); err != nil {
		return nil, err
	}

	if err := s.applyAssociations(ctx, episode.ID, input); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, slug)
	return s.episodeRepo.FindByID(ctx, episode.ID)
}

func (s *episodeService) Delete(ctx context.Context, slug string) error {
	episode, err := s.episodeRepo.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if episode == nil {
		return ErrEpisodeNotFound
	}

	if err := s.tagRepo.ClearEpisodeTags(ctx, episode.ID); err != nil {
		return err
	}
	if err := s.episodeRepo.Delete(ctx, episode.ID); err != nil {
		return err
	}

	s.invalidateCache(ctx, slug)
	s.log.WithField("slug", slug).Info("Episode deleted")
	return nil
}

func (s *episodeService) List(ctx context.Context, titleQuery string, limit, offset int) ([]*models.Episode, error) {
	if limit <= 0 {
		limit = defaultEpisodeListLimit
	}
	if limit > maxEpisodeListLimit {
		limit = maxEpisodeListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.episodeRepo.List(ctx, titleQuery, limit, offset)
}

func (s *episodeService) GetDetail(ctx context.Context, slug string, actor models.Actor) (*models.EpisodeDetail, error) {
	detail, err := s.loadDetail(ctx, slug)
	if err != nil || detail == nil {
		return detail, err
	}

	// Per-actor state is attached outside the cache.
	if actor.Kind == "" {
		return detail, nil
	}

	reaction, err := s.reactionRepo.Get(ctx, actor, detail.ID)
	if err != nil {
		return nil, err
	}
	if reaction != nil {
		detail.UserReaction = reaction.Action
	}

	saved, err := s.saveRepo.IsSaved(ctx, actor, models.SavableEpisode, detail.ID)
	if err != nil {
		return nil, err
	}
	detail.Saved = saved

	return detail, nil
}

// loadDetail returns the actor-independent episode detail, through the cache.
func (s *episodeService) loadDetail(ctx context.Context, slug string) (*models.EpisodeDetail, error) {
	cached, err := s.cacheRepo.GetEpisodeDetail(ctx, slug)
	if err != nil {
		s.log.WithError(err).WithField("slug", slug).Warn("Episode cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	episode, err := s.episodeRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, nil
	}

	topics, err := s.topicRepo.ListByEpisode(ctx, episode.ID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagRepo.ListByEpisode(ctx, episode.ID)
	if err != nil {
		return nil, err
	}

	detail := &models.EpisodeDetail{Episode: *episode}
	for _, t := range topics {
		detail.Topics = append(detail.Topics, *t)
	}
	for _, t := range tags {
		detail.Tags = append(detail.Tags, *t)
	}

	if err := s.cacheRepo.SetEpisodeDetail(ctx, slug, detail, episodeDetailCacheTTL); err != nil {
		s.log.WithError(err).WithField("slug", slug).Warn("Episode cache write failed")
	}
	return detail, nil
}

// uniqueSlug slugifies the title and suffixes a counter until no episode
// claims it.
func (s *episodeService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := helpers.Slugify(title)
	if base == "" {
		base = "episode"
	}

	slug := base
	for n := 2; ; n++ {
		exists, err := s.episodeRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *episodeService) applyAssociations(ctx context.Context, episodeID uint64, input EpisodeInput) error {
	if err := s.topicRepo.SetEpisodeTopics(ctx, episodeID, input.TopicIDs); err != nil {
		return err
	}

	tagIDs := make([]uint64, 0, len(input.Tags))
	for _, name := range input.Tags {
		tag, err := s.tagRepo.GetOrCreateByName(ctx, name, helpers.Slugify(name))
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	return s.tagRepo.SetEpisodeTags(ctx, episodeID, tagIDs)
}

func (s *episodeService) invalidateCache(ctx context.Context, slug string) {
	if err := s.cacheRepo.InvalidateEpisode(ctx, slug); err != nil {
		s.log.WithError(err).WithField("slug", slug).Warn("Failed to invalidate episode cache")
	}
}
