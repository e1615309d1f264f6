package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
)

type ReactionRepository interface {
	// Set creates or updates the unique reaction row for (actor, episode) and
	// applies the matching counter deltas to the episode in the same
	// transaction. Setting the same action again is a no-op.
	Set(ctx context.Context, actor models.Actor, episodeID uint64, action models.ReactionAction) error
	// Clear deletes the reaction row if present and decrements the matching
	// counter in the same transaction.
	Clear(ctx context.Context, actor models.Actor, episodeID uint64) error
	Get(ctx context.Context, actor models.Actor, episodeID uint64) (*models.Reaction, error)
}

type reactionRepository struct {
	db *sql.DB
}

func NewReactionRepository(db *sql.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Set(ctx context.Context, actor models.Actor, episodeID uint64, action models.ReactionAction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := getReactionForUpdate(ctx, tx, actor, episodeID)
	if err != nil {
		return err
	}

	now := time.Now()
	if existing == nil {
		insert := `
			INSERT INTO episode_reactions (actor_type, actor_id, episode_id, action, reacted_at)
			VALUES (?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, insert, actor.Kind, actor.ID, episodeID, action, now)
		if err == nil {
			if err := adjustReactionCounters(ctx, tx, episodeID, deltaFor(action)); err != nil {
				return err
			}
			return tx.Commit()
		}
		if !isDuplicateKeyErr(err) {
			return fmt.Errorf("failed to create reaction: %w", err)
		}
		// Lost the natural-key insert race; the unique key is the backstop.
		// Re-read the winner's row and fall through to the update path.
		existing, err = getReactionForUpdate(ctx, tx, actor, episodeID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("failed to create reaction: row vanished after duplicate key")
		}
	}

	if existing.Action == action {
		// Already recorded; nothing to change.
		return tx.Commit()
	}

	update := `UPDATE episode_reactions SET action = ?, reacted_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, update, action, now, existing.ID); err != nil {
		return fmt.Errorf("failed to update reaction: %w", err)
	}
	delta := deltaFor(action).plus(deltaFor(existing.Action).negate())
	if err := adjustReactionCounters(ctx, tx, episodeID, delta); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *reactionRepository) Clear(ctx context.Context, actor models.Actor, episodeID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := getReactionForUpdate(ctx, tx, actor, episodeID)
	if err != nil {
		return err
	}
	if existing == nil {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM episode_reactions WHERE id = ?`, existing.ID); err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	if err := adjustReactionCounters(ctx, tx, episodeID, deltaFor(existing.Action).negate()); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *reactionRepository) Get(ctx context.Context, actor models.Actor, episodeID uint64) (*models.Reaction, error) {
	query := `
		SELECT id, episode_id, action, reacted_at
		FROM episode_reactions
		WHERE actor_type = ? AND actor_id = ? AND episode_id = ?
	`
	reaction := &models.Reaction{Actor: actor}
	err := r.db.QueryRowContext(ctx, query, actor.Kind, actor.ID, episodeID).Scan(
		&reaction.ID, &reaction.EpisodeID, &reaction.Action, &reaction.ReactedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	return reaction, nil
}

func getReactionForUpdate(ctx context.Context, tx *sql.Tx, actor models.Actor, episodeID uint64) (*models.Reaction, error) {
	query := `
		SELECT id, episode_id, action, reacted_at
		FROM episode_reactions
		WHERE actor_type = ? AND actor_id = ? AND episode_id = ?
		FOR UPDATE
	`
	reaction := &models.Reaction{Actor: actor}
	err := tx.QueryRowContext(ctx, query, actor.Kind, actor.ID, episodeID).Scan(
		&reaction.ID, &reaction.EpisodeID, &reaction.Action, &reaction.ReactedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock reaction: %w", err)
	}
	return reaction, nil
}

// counterDelta is a relative adjustment to the episode's cached counters.
type counterDelta struct {
	likes    int64
	dislikes int64
}

func deltaFor(action models.ReactionAction) counterDelta {
	if action == models.ReactionLike {
		return counterDelta{likes: 1}
	}
	return counterDelta{dislikes: 1}
}

func (d counterDelta) negate() counterDelta {
	return counterDelta{likes: -d.likes, dislikes: -d.dislikes}
}

func (d counterDelta) plus(o counterDelta) counterDelta {
	return counterDelta{likes: d.likes + o.likes, dislikes: d.dislikes + o.dislikes}
}

// adjustReactionCounters applies relative deltas at the SQL level so
// concurrent reactions on the same episode never lose updates. Counters are
// floored at zero.
func adjustReactionCounters(ctx context.Context, tx *sql.Tx, episodeID uint64, delta counterDelta) error {
	if delta.likes == 0 && delta.dislikes == 0 {
		return nil
	}
	query := `
		UPDATE episodes
		SET likes_count = GREATEST(likes_count + ?, 0),
		    dislikes_count = GREATEST(dislikes_count + ?, 0)
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, query, delta.likes, delta.dislikes, episodeID); err != nil {
		return fmt.Errorf("failed to adjust reaction counters: %w", err)
	}
	return nil
}
