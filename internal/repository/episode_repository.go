package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
)

type EpisodeRepository interface {
	Create(ctx context.Context, episode *models.Episode) (uint64, error)
	Update(ctx context.Context, episode *models.Episode) error
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*models.Episode, error)
	FindBySlug(ctx context.Context, slug string) (*models.Episode, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// List returns episodes newest first, optionally filtered by a title
	// substring match.
	List(ctx context.Context, titleQuery string, limit, offset int) ([]*models.Episode, error)
	// RecomputeReactionCounts overwrites the cached likes/dislikes counters
	// from the reaction table and returns how many episodes had drifted.
	// Repair path only, never on the hot path.
	RecomputeReactionCounts(ctx context.Context) (int64, error)
}

type episodeRepository struct {
	db *sql.DB
}

func NewEpisodeRepository(db *sql.DB) EpisodeRepository {
	return &episodeRepository{db: db}
}

const episodeColumns = `id, title, slug, summary_text, description, sources, audio_url, image_url, likes_count, dislikes_count, created_at`

func (r *episodeRepository) Create(ctx context.Context, episode *models.Episode) (uint64, error) {
	sources, err := json.Marshal(episode.Sources)
	if err != nil {
		return 0, fmt.Errorf("failed to encode sources: %w", err)
	}

	query := `
		INSERT INTO episodes (title, slug, summary_text, description, sources, audio_url, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		episode.Title, episode.Slug, episode.SummaryText, episode.Description,
		string(sources), episode.AudioURL, episode.ImageURL, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to create episode: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get episode id: %w", err)
	}
	return uint64(id), nil
}

func (r *episodeRepository) Update(ctx context.Context, episode *models.Episode) error {
	sources, err := json.Marshal(episode.Sources)
	if err != nil {
		return fmt.Errorf("failed to encode sources: %w", err)
	}

	query := `
		UPDATE episodes
		SET title = ?, summary_text = ?, description = ?, sources = ?, audio_url = ?, image_url = ?
		WHERE id = ?
	`
	_, err = r.db.ExecContext(ctx, query,
		episode.Title, episode.SummaryText, episode.Description,
		string(sources), episode.AudioURL, episode.ImageURL, episode.ID)
	if err != nil {
		return fmt.Errorf("failed to update episode: %w", err)
	}
	return nil
}

func (r *episodeRepository) Delete(ctx context.Context, id uint64) error {
	query := `DELETE FROM episodes WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete episode: %w", err)
	}
	return nil
}

func (r *episodeRepository) FindByID(ctx context.Context, id uint64) (*models.Episode, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *episodeRepository) FindBySlug(ctx context.Context, slug string) (*models.Episode, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *episodeRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.Episode, error) {
	query := fmt.Sprintf(`SELECT %s FROM episodes WHERE %s`, episodeColumns, where)

	episode, err := scanEpisode(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find episode: %w", err)
	}
	return episode, nil
}

func (r *episodeRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check episode slug: %w", err)
	}
	return count > 0, nil
}

func (r *episodeRepository) List(ctx context.Context, titleQuery string, limit, offset int) ([]*models.Episode, error) {
	query := fmt.Sprintf(`SELECT %s FROM episodes`, episodeColumns)
	args := []interface{}{}
	if titleQuery != "" {
		query += ` WHERE title LIKE ?`
		args = append(args, "%"+titleQuery+"%")
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*models.Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, episode)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating episodes: %w", err)
	}
	return episodes, nil
}

func (r *episodeRepository) RecomputeReactionCounts(ctx context.Context) (int64, error) {
	query := `
		UPDATE episodes e
		LEFT JOIN (
			SELECT episode_id,
			       SUM(action = 'like') AS likes,
			       SUM(action = 'dislike') AS dislikes
			FROM episode_reactions
			GROUP BY episode_id
		) r ON r.episode_id = e.id
		SET e.likes_count = COALESCE(r.likes, 0),
		    e.dislikes_count = COALESCE(r.dislikes, 0)
		WHERE e.likes_count <> COALESCE(r.likes, 0)
		   OR e.dislikes_count <> COALESCE(r.dislikes, 0)
	`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute reaction counts: %w", err)
	}

	drifted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return drifted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEpisode(row rowScanner) (*models.Episode, error) {
	episode := &models.Episode{}
	var sources []byte
	err := row.Scan(
		&episode.ID, &episode.Title, &episode.Slug, &episode.SummaryText,
		&episode.Description, &sources, &episode.AudioURL, &episode.ImageURL,
		&episode.LikesCount, &episode.DislikesCount, &episode.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &episode.Sources); err != nil {
			return nil, fmt.Errorf("failed to decode sources: %w", err)
		}
	}
	return episode, nil
}
