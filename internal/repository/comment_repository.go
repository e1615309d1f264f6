package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
)

type CommentRepository interface {
	// Create inserts a comment and increments the materialized replies_count
	// of every ancestor in the same transaction, so reads never recurse.
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id uint64) (*models.Comment, error)
	// ListTopLevel returns root comments for a target, newest first.
	ListTopLevel(ctx context.Context, targetType models.SavableType, targetID uint64, limit, offset int) ([]*models.Comment, error)
	CountTopLevel(ctx context.Context, targetType models.SavableType, targetID uint64) (int64, error)
	// ListThread returns every descendant of a comment flattened in
	// chronological order.
	ListThread(ctx context.Context, rootID uint64) ([]*models.Comment, error)
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = `c.id, c.target_type, c.target_id, c.user_id, u.username, c.parent_id, c.body, c.replies_count, c.created_at`

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO comments (target_type, target_id, user_id, parent_id, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, insert,
		comment.TargetType, comment.TargetID, comment.UserID, comment.ParentID, comment.Body, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get comment id: %w", err)
	}

	// Walk the ancestor chain and bump each materialized descendant count.
	parentID := comment.ParentID
	for parentID.Valid {
		if _, err := tx.ExecContext(ctx,
			`UPDATE comments SET replies_count = replies_count + 1 WHERE id = ?`, parentID.Int64); err != nil {
			return nil, fmt.Errorf("failed to increment replies count: %w", err)
		}
		var next sql.NullInt64
		err := tx.QueryRowContext(ctx,
			`SELECT parent_id FROM comments WHERE id = ?`, parentID.Int64).Scan(&next)
		if err == sql.ErrNoRows {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to walk comment ancestors: %w", err)
		}
		parentID = next
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit comment: %w", err)
	}

	return r.GetByID(ctx, uint64(id))
}

func (r *commentRepository) GetByID(ctx context.Context, id uint64) (*models.Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = ?
	`, commentColumns)

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, targetType models.SavableType, targetID uint64, limit, offset int) ([]*models.Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.target_type = ? AND c.target_id = ? AND c.parent_id IS NULL
		ORDER BY c.created_at DESC
		LIMIT ? OFFSET ?
	`, commentColumns)

	return r.queryComments(ctx, query, targetType, targetID, limit, offset)
}

func (r *commentRepository) CountTopLevel(ctx context.Context, targetType models.SavableType, targetID uint64) (int64, error) {
	query := `
		SELECT COUNT(*) FROM comments
		WHERE target_type = ? AND target_id = ? AND parent_id IS NULL
	`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, targetType, targetID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

func (r *commentRepository) ListThread(ctx context.Context, rootID uint64) ([]*models.Comment, error) {
	// Single recursive CTE instead of per-node query fan-out.
	query := fmt.Sprintf(`
		WITH RECURSIVE thread AS (
			SELECT id FROM comments WHERE parent_id = ?
			UNION ALL
			SELECT c.id FROM comments c JOIN thread t ON c.parent_id = t.id
		)
		SELECT %s
		FROM comments c
		JOIN thread th ON th.id = c.id
		JOIN users u ON u.id = c.user_id
		ORDER BY c.created_at ASC
	`, commentColumns)

	return r.queryComments(ctx, query, rootID)
}

func (r *commentRepository) queryComments(ctx context.Context, query string, args ...interface{}) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}

func scanComment(row rowScanner) (*models.Comment, error) {
	comment := &models.Comment{}
	err := row.Scan(
		&comment.ID, &comment.TargetType, &comment.TargetID, &comment.UserID,
		&comment.Username, &comment.ParentID, &comment.Body,
		&comment.RepliesCount, &comment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return comment, nil
}
