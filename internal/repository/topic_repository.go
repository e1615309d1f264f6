package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
)

type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) (uint64, error)
	Update(ctx context.Context, topic *models.Topic) error
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*models.Topic, error)
	FindBySlug(ctx context.Context, slug string) (*models.Topic, error)
	List(ctx context.Context) ([]*models.Topic, error)
	ListByEpisode(ctx context.Context, episodeID uint64) ([]*models.Topic, error)
	// SetEpisodeTopics replaces an episode's topic set.
	SetEpisodeTopics(ctx context.Context, episodeID uint64, topicIDs []uint64) error
}

type topicRepository struct {
	db *sql.DB
}

func NewTopicRepository(db *sql.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) (uint64, error) {
	query := `
		INSERT INTO topics (name, slug, description, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query, topic.Name, topic.Slug, topic.Description, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to create topic: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get topic id: %w", err)
	}
	return uint64(id), nil
}

func (r *topicRepository) Update(ctx context.Context, topic *models.Topic) error {
	query := `UPDATE topics SET name = ?, description = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, topic.Name, topic.Description, topic.ID); err != nil {
		return fmt.Errorf("failed to update topic: %w", err)
	}
	return nil
}

func (r *topicRepository) Delete(ctx context.Context, id uint64) error {
	query := `DELETE FROM topics WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}
	return nil
}

func (r *topicRepository) FindByID(ctx context.Context, id uint64) (*models.Topic, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *topicRepository) FindBySlug(ctx context.Context, slug string) (*models.Topic, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *topicRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.Topic, error) {
	query := fmt.Sprintf(`
		SELECT id, name, slug, description, created_at
		FROM topics
		WHERE %s
	`, where)

	topic := &models.Topic{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&topic.ID, &topic.Name, &topic.Slug, &topic.Description, &topic.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find topic: %w", err)
	}
	return topic, nil
}

func (r *topicRepository) List(ctx context.Context) ([]*models.Topic, error) {
	query := `
		SELECT id, name, slug, description, created_at
		FROM topics
		ORDER BY name ASC
	`
	return r.queryTopics(ctx, query)
}

func (r *topicRepository) ListByEpisode(ctx context.Context, episodeID uint64) ([]*models.Topic, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.description, t.created_at
		FROM topics t
		JOIN episode_topics et ON et.topic_id = t.id
		WHERE et.episode_id = ?
		ORDER BY t.name ASC
	`
	return r.queryTopics(ctx, query, episodeID)
}

func (r *topicRepository) SetEpisodeTopics(ctx context.Context, episodeID uint64, topicIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM episode_topics WHERE episode_id = ?`, episodeID); err != nil {
		return fmt.Errorf("failed to clear episode topics: %w", err)
	}
	for _, topicID := range topicIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO episode_topics (episode_id, topic_id) VALUES (?, ?)`, episodeID, topicID); err != nil {
			return fmt.Errorf("failed to attach topic: %w", err)
		}
	}

	return tx.Commit()
}

func (r *topicRepository) queryTopics(ctx context.Context, query string, args ...interface{}) ([]*models.Topic, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []*models.Topic
	for rows.Next() {
		topic := &models.Topic{}
		if err := rows.Scan(&topic.ID, &topic.Name, &topic.Slug, &topic.Description, &topic.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topics: %w", err)
	}
	return topics, nil
}
