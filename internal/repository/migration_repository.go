package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
)

// MigrationRepository merges a guest identity's engagement rows into a
// registered user's rows. The whole merge runs in one transaction with the
// guest row locked, so concurrent logins with the same guest cookie serialize
// and the loser observes the guest already gone.
type MigrationRepository interface {
	// TransferGuestData returns (false, nil) when no guest identity exists for
	// the token, which makes retries and duplicate calls no-ops.
	TransferGuestData(ctx context.Context, deviceToken string, userID uint64) (bool, error)
}

type migrationRepository struct {
	db *sql.DB
}

func NewMigrationRepository(db *sql.DB) MigrationRepository {
	return &migrationRepository{db: db}
}

func (r *migrationRepository) TransferGuestData(ctx context.Context, deviceToken string, userID uint64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	guestID, err := lockGuestByDeviceToken(ctx, tx, deviceToken)
	if err != nil {
		return false, err
	}
	if guestID == 0 {
		// Guest never existed or a previous migration already consumed it.
		return false, nil
	}

	if err := r.transferProgress(ctx, tx, guestID, userID); err != nil {
		return false, err
	}
	if err := r.transferReactions(ctx, tx, guestID, userID); err != nil {
		return false, err
	}
	if err := r.transferSaves(ctx, tx, guestID, userID); err != nil {
		return false, err
	}
	if err := r.retireGuest(ctx, tx, guestID, userID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit guest migration: %w", err)
	}
	return true, nil
}

// lockGuestByDeviceToken row-locks the guest identity for the duration of the
// migration. Returns 0 when no guest exists.
func lockGuestByDeviceToken(ctx context.Context, tx *sql.Tx, deviceToken string) (uint64, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM guest_identities WHERE device_token = ? FOR UPDATE`, deviceToken).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock guest identity: %w", err)
	}
	return id, nil
}

// transferProgress upserts every guest progress row onto the user. The guest
// was the more recent active session, so its values fully overwrite any
// pre-existing user row for the same episode.
func (r *migrationRepository) transferProgress(ctx context.Context, tx *sql.Tx, guestID, userID uint64) error {
	query := `
		INSERT INTO listening_progress (actor_type, actor_id, episode_id, position_seconds, duration_seconds, completed, created_at, updated_at)
		SELECT ?, ?, episode_id, position_seconds, duration_seconds, completed, created_at, updated_at
		FROM listening_progress
		WHERE actor_type = ? AND actor_id = ?
		ON DUPLICATE KEY UPDATE
			position_seconds = VALUES(position_seconds),
			duration_seconds = VALUES(duration_seconds),
			completed = VALUES(completed),
			updated_at = VALUES(updated_at)
	`
	_, err := tx.ExecContext(ctx, query,
		models.ActorKindUser, userID, models.ActorKindGuest, guestID)
	if err != nil {
		return fmt.Errorf("failed to transfer listening progress: %w", err)
	}
	return nil
}

// transferReactions applies the deterministic conflict rule per episode:
// absent user reaction is copied (with counter increment); same action is left
// alone; a differing action is overwritten only when the guest acted later,
// swapping the counters.
func (r *migrationRepository) transferReactions(ctx context.Context, tx *sql.Tx, guestID, userID uint64) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT episode_id, action, reacted_at
		FROM episode_reactions
		WHERE actor_type = ? AND actor_id = ?
	`, models.ActorKindGuest, guestID)
	if err != nil {
		return fmt.Errorf("failed to list guest reactions: %w", err)
	}

	type guestReaction struct {
		episodeID uint64
		action    models.ReactionAction
		reactedAt time.Time
	}
	var guestReactions []guestReaction
	for rows.Next() {
		var gr guestReaction
		if err := rows.Scan(&gr.episodeID, &gr.action, &gr.reactedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan guest reaction: %w", err)
		}
		guestReactions = append(guestReactions, gr)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating guest reactions: %w", err)
	}
	rows.Close()

	userActor := models.UserActor(userID)
	for _, gr := range guestReactions {
		existing, err := getReactionForUpdate(ctx, tx, userActor, gr.episodeID)
		if err != nil {
			return err
		}

		switch {
		case existing == nil:
			insert := `
				INSERT INTO episode_reactions (actor_type, actor_id, episode_id, action, reacted_at)
				VALUES (?, ?, ?, ?, ?)
			`
			if _, err := tx.ExecContext(ctx, insert,
				models.ActorKindUser, userID, gr.episodeID, gr.action, gr.reactedAt); err != nil {
				return fmt.Errorf("failed to copy guest reaction: %w", err)
			}
			if err := adjustReactionCounters(ctx, tx, gr.episodeID, deltaFor(gr.action)); err != nil {
				return err
			}

		case existing.Action == gr.action:
			// Same action on both sides: keep the user's row, no counter change.

		case gr.reactedAt.After(existing.ReactedAt):
			// Guest acted later, so the guest's reaction wins.
			update := `UPDATE episode_reactions SET action = ?, reacted_at = ? WHERE id = ?`
			if _, err := tx.ExecContext(ctx, update, gr.action, gr.reactedAt, existing.ID); err != nil {
				return fmt.Errorf("failed to overwrite user reaction: %w", err)
			}
			delta := deltaFor(gr.action).plus(deltaFor(existing.Action).negate())
			if err := adjustReactionCounters(ctx, tx, gr.episodeID, delta); err != nil {
				return err
			}

		default:
			// The user's own reaction is newer or simultaneous; it wins.
		}
	}

	return nil
}

// transferSaves unions the guest's saved items into the user's set.
func (r *migrationRepository) transferSaves(ctx context.Context, tx *sql.Tx, guestID, userID uint64) error {
	query := `
		INSERT IGNORE INTO saved_items (actor_type, actor_id, target_type, target_id, created_at)
		SELECT ?, ?, target_type, target_id, created_at
		FROM saved_items
		WHERE actor_type = ? AND actor_id = ?
	`
	_, err := tx.ExecContext(ctx, query,
		models.ActorKindUser, userID, models.ActorKindGuest, guestID)
	if err != nil {
		return fmt.Errorf("failed to transfer saved items: %w", err)
	}
	return nil
}

// retireGuest links the guest to the user and removes the guest identity plus
// its engagement rows. Actor references are polymorphic, so the engagement
// rows are deleted explicitly rather than by foreign-key cascade.
func (r *migrationRepository) retireGuest(ctx context.Context, tx *sql.Tx, guestID, userID uint64) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE guest_identities SET linked_user_id = ? WHERE id = ?`, userID, guestID); err != nil {
		return fmt.Errorf("failed to link guest identity: %w", err)
	}

	engagementTables := []string{"listening_progress", "episode_reactions", "saved_items"}
	for _, table := range engagementTables {
		query := fmt.Sprintf(`DELETE FROM %s WHERE actor_type = ? AND actor_id = ?`, table)
		if _, err := tx.ExecContext(ctx, query, models.ActorKindGuest, guestID); err != nil {
			return fmt.Errorf("failed to delete guest rows from %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM guest_identities WHERE id = ?`, guestID); err != nil {
		return fmt.Errorf("failed to delete guest identity: %w", err)
	}
	return nil
}
