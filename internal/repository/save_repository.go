package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
)

type SaveRepository interface {
	// Toggle creates the save row if absent and deletes it if present,
	// returning the final saved state.
	Toggle(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error)
	IsSaved(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error)
	ListByActor(ctx context.Context, actor models.Actor) ([]*models.SavedItem, error)
}

type saveRepository struct {
	db *sql.DB
}

func NewSaveRepository(db *sql.DB) SaveRepository {
	return &saveRepository{db: db}
}

func (r *saveRepository) Toggle(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id uint64
	query := `
		SELECT id FROM saved_items
		WHERE actor_type = ? AND actor_id = ? AND target_type = ? AND target_id = ?
		FOR UPDATE
	`
	err = tx.QueryRowContext(ctx, query, actor.Kind, actor.ID, targetType, targetID).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		insert := `
			INSERT INTO saved_items (actor_type, actor_id, target_type, target_id, created_at)
			VALUES (?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, insert, actor.Kind, actor.ID, targetType, targetID, time.Now()); err != nil {
			if isDuplicateKeyErr(err) {
				// Lost the insert race; the row now exists, which is the state
				// this call was toggling towards.
				return true, tx.Rollback()
			}
			return false, fmt.Errorf("failed to create saved item: %w", err)
		}
		return true, tx.Commit()

	case err != nil:
		return false, fmt.Errorf("failed to lock saved item: %w", err)

	default:
		if _, err := tx.ExecContext(ctx, `DELETE FROM saved_items WHERE id = ?`, id); err != nil {
			return false, fmt.Errorf("failed to delete saved item: %w", err)
		}
		return false, tx.Commit()
	}
}

func (r *saveRepository) IsSaved(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error) {
	query := `
		SELECT COUNT(*) FROM saved_items
		WHERE actor_type = ? AND actor_id = ? AND target_type = ? AND target_id = ?
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, actor.Kind, actor.ID, targetType, targetID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check saved item: %w", err)
	}
	return count > 0, nil
}

func (r *saveRepository) ListByActor(ctx context.Context, actor models.Actor) ([]*models.SavedItem, error) {
	query := `
		SELECT id, target_type, target_id, created_at
		FROM saved_items
		WHERE actor_type = ? AND actor_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, actor.Kind, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved items: %w", err)
	}
	defer rows.Close()

	var items []*models.SavedItem
	for rows.Next() {
		item := &models.SavedItem{Actor: actor}
		if err := rows.Scan(&item.ID, &item.TargetType, &item.TargetID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved items: %w", err)
	}
	return items, nil
}
