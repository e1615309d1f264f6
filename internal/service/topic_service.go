package service

import (
	"context"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/repository"
	"github.com/shivakharbanda/journalclub/pkg/helpers"
)

type TopicService interface {
	Create(ctx context.Context, name, description string) (*models.Topic, error)
	Update(ctx context.Context, slug, name, description string) (*models.Topic, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context) ([]*models.Topic, error)
	GetBySlug(ctx context.Context, slug string) (*models.Topic, error)
}

type topicService struct {
	topicRepo repository.TopicRepository
}

func NewTopicService(topicRepo repository.TopicRepository) TopicService {
	return &topicService{topicRepo: topicRepo}
}

func (s *topicService) Create(ctx context.Context, name, description string) (*models.Topic, error) {
	topic := &models.Topic{
		Name:        name,
		Slug:        helpers.Slugify(name),
		Description: description,
	}
	id, err := s.topicRepo.Create(ctx, topic)
	if err != nil {
		return nil, err
	}
	topic.ID = id
	return topic, nil
}

func (s *topicService) Update(ctx context.Context, slug, name, description string) (*models.Topic, error) {
	topic, err := s.topicRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, ErrTopicNotFound
	}

	topic.Name = name
	topic.Description = description
	if err := s.topicRepo.Update(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *topicService) Delete(ctx context.Context, slug string) error {
	topic, err := s.topicRepo.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if topic == nil {
		return ErrTopicNotFound
	}
	return s.topicRepo.Delete(ctx, topic.ID)
}

func (s *topicService) List(ctx context.Context) ([]*models.Topic, error) {
	return s.topicRepo.List(ctx)
}

func (s *topicService) GetBySlug(ctx context.Context, slug string) (*models.Topic, error) {
	topic, err := s.topicRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, ErrTopicNotFound
	}
	return topic, nil
}
