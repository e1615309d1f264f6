package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
)

type ProgressRepository interface {
	// Upsert creates or fully replaces the unique progress row for
	// (actor, episode). Last write wins.
	Upsert(ctx context.Context, actor models.Actor, episodeID uint64, positionSeconds, durationSeconds int64, completed bool) error
	Get(ctx context.Context, actor models.Actor, episodeID uint64) (*models.ListeningProgress, error)
	// ListInProgress returns the actor's unfinished episodes, most recently
	// updated first ("continue listening").
	ListInProgress(ctx context.Context, actor models.Actor, limit int) ([]*models.ContinueListeningItem, error)
}

type progressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, actor models.Actor, episodeID uint64, positionSeconds, durationSeconds int64, completed bool) error {
	query := `
		INSERT INTO listening_progress (actor_type, actor_id, episode_id, position_seconds, duration_seconds, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			position_seconds = VALUES(position_seconds),
			duration_seconds = VALUES(duration_seconds),
			completed = VALUES(completed),
			updated_at = VALUES(updated_at)
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		actor.Kind, actor.ID, episodeID, positionSeconds, durationSeconds, completed, now, now)
	if err != nil {
		return fmt.Errorf("failed to save listening progress: %w", err)
	}
	return nil
}

func (r *progressRepository) Get(ctx context.Context, actor models.Actor, episodeID uint64) (*models.ListeningProgress, error) {
	query := `
		SELECT id, episode_id, position_seconds, duration_seconds, completed, created_at, updated_at
		FROM listening_progress
		WHERE actor_type = ? AND actor_id = ? AND episode_id = ?
	`
	progress := &models.ListeningProgress{Actor: actor}
	err := r.db.QueryRowContext(ctx, query, actor.Kind, actor.ID, episodeID).Scan(
		&progress.ID, &progress.EpisodeID, &progress.PositionSeconds,
		&progress.DurationSeconds, &progress.Completed,
		&progress.CreatedAt, &progress.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listening progress: %w", err)
	}
	return progress, nil
}

func (r *progressRepository) ListInProgress(ctx context.Context, actor models.Actor, limit int) ([]*models.ContinueListeningItem, error) {
	query := `
		SELECT e.id, e.title, e.slug, e.summary_text, e.description, e.sources,
		       e.audio_url, e.image_url, e.likes_count, e.dislikes_count, e.created_at,
		       p.position_seconds, p.duration_seconds, p.completed, p.updated_at
		FROM listening_progress p
		JOIN episodes e ON e.id = p.episode_id
		WHERE p.actor_type = ? AND p.actor_id = ? AND p.completed = 0
		ORDER BY p.updated_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, actor.Kind, actor.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list in-progress episodes: %w", err)
	}
	defer rows.Close()

	var items []*models.ContinueListeningItem
	for rows.Next() {
		item := &models.ContinueListeningItem{}
		var sources []byte
		err := rows.Scan(
			&item.Episode.ID, &item.Episode.Title, &item.Episode.Slug,
			&item.Episode.SummaryText, &item.Episode.Description, &sources,
			&item.Episode.AudioURL, &item.Episode.ImageURL,
			&item.Episode.LikesCount, &item.Episode.DislikesCount, &item.Episode.CreatedAt,
			&item.PositionSeconds, &item.DurationSeconds, &item.Completed, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan in-progress episode: %w", err)
		}
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &item.Episode.Sources); err != nil {
				return nil, fmt.Errorf("failed to decode sources: %w", err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating in-progress episodes: %w", err)
	}
	return items, nil
}
