package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shivakharbanda/journalclub/internal/models"
)

type TagRepository interface {
	// GetOrCreateByName returns the tag with the given name, creating it if
	// needed. Duplicate-key races fall back to the existing row.
	GetOrCreateByName(ctx context.Context, name, slug string) (*models.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uint64) error
	ListByEpisode(ctx context.Context, episodeID uint64) ([]*models.Tag, error)
	// SetEpisodeTags replaces an episode's tag set.
	SetEpisodeTags(ctx context.Context, episodeID uint64, tagIDs []uint64) error
	ClearEpisodeTags(ctx context.Context, episodeID uint64) error
}

type tagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) GetOrCreateByName(ctx context.Context, name, slug string) (*models.Tag, error) {
	tag, err := r.findByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag != nil {
		return tag, nil
	}

	result, err := r.db.ExecContext(ctx, `INSERT INTO tags (name, slug) VALUES (?, ?)`, name, slug)
	if err != nil {
		if isDuplicateKeyErr(err) {
			return r.findByName(ctx, name)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get tag id: %w", err)
	}
	return &models.Tag{ID: uint64(id), Name: name, Slug: slug}, nil
}

func (r *tagRepository) findByName(ctx context.Context, name string) (*models.Tag, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *tagRepository) FindBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *tagRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT id, name, slug FROM tags WHERE %s`, where)

	tag := &models.Tag{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&tag.ID, &tag.Name, &tag.Slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	return tag, nil
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	query := `UPDATE tags SET name = ?, slug = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, tag.Name, tag.Slug, tag.ID); err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}
	return nil
}

func (r *tagRepository) Delete(ctx context.Context, id uint64) error {
	query := `DELETE FROM tags WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

func (r *tagRepository) ListByEpisode(ctx context.Context, episodeID uint64) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.name, t.slug
		FROM tags t
		JOIN episode_tags et ON et.tag_id = t.id
		WHERE et.episode_id = ?
		ORDER BY t.name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list episode tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag := &models.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

func (r *tagRepository) SetEpisodeTags(ctx context.Context, episodeID uint64, tagIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM episode_tags WHERE episode_id = ?`, episodeID); err != nil {
		return fmt.Errorf("failed to clear episode tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO episode_tags (episode_id, tag_id) VALUES (?, ?)`, episodeID, tagID); err != nil {
			return fmt.Errorf("failed to attach tag: %w", err)
		}
	}

	return tx.Commit()
}

func (r *tagRepository) ClearEpisodeTags(ctx context.Context, episodeID uint64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM episode_tags WHERE episode_id = ?`, episodeID); err != nil {
		return fmt.Errorf("failed to clear episode tags: %w", err)
	}
	return nil
}
