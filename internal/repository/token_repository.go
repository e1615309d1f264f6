package repository

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/pkg/helpers"
)

type TokenRepository interface {
	Create(ctx context.Context, userID uint64, name string, expiresAt time.Time) (string, error)
	ValidateToken(ctx context.Context, token string) (*models.User, error)
	DeleteUserTokens(ctx context.Context, userID uint64) error
}

type tokenRepository struct {
	db  *sql.DB
	ids *helpers.IDGenerator
}

func NewTokenRepository(db *sql.DB) TokenRepository {
	return &tokenRepository{db: db, ids: helpers.NewIDGenerator()}
}

func (r *tokenRepository) Create(ctx context.Context, userID uint64, name string, expiresAt time.Time) (string, error) {
	plainToken := r.ids.GenerateAccessToken()
	tokenHash := hashToken(plainToken)

	query := `
		INSERT INTO personal_access_tokens (user_id, name, token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, userID, name, tokenHash, expiresAt, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	tokenID, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to get token id: %w", err)
	}

	// Wire form is {id}|{plainToken}; only the hash is stored.
	return fmt.Sprintf("%d|%s", tokenID, plainToken), nil
}

func (r *tokenRepository) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	parts := strings.SplitN(token, "|", 2)
	if len(parts) != 2 {
		return nil, nil
	}
	tokenID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, nil
	}

	query := `
		SELECT t.token, t.expires_at,
		       u.id, u.username, u.email, u.password_hash, u.is_admin, u.created_at, u.updated_at
		FROM personal_access_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = ?
	`
	var storedHash string
	var expiresAt sql.NullTime
	user := &models.User{}
	err = r.db.QueryRowContext(ctx, query, tokenID).Scan(
		&storedHash, &expiresAt,
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(hashToken(parts[1]))) != 1 {
		return nil, nil
	}
	if expiresAt.Valid && expiresAt.Time.Before(time.Now()) {
		return nil, nil
	}

	return user, nil
}

func (r *tokenRepository) DeleteUserTokens(ctx context.Context, userID uint64) error {
	query := `DELETE FROM personal_access_tokens WHERE user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
