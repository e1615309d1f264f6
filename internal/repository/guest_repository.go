package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
)

type GuestRepository interface {
	// GetOrCreateByDeviceToken returns the guest identity for a device token,
	// creating it on first contact. Safe under concurrent first requests from
	// the same browser: a duplicate-key race is recovered by re-reading the
	// winner's row.
	GetOrCreateByDeviceToken(ctx context.Context, deviceToken string) (*models.GuestIdentity, error)
	FindByDeviceToken(ctx context.Context, deviceToken string) (*models.GuestIdentity, error)
}

type guestRepository struct {
	db *sql.DB
}

func NewGuestRepository(db *sql.DB) GuestRepository {
	return &guestRepository{db: db}
}

func (r *guestRepository) GetOrCreateByDeviceToken(ctx context.Context, deviceToken string) (*models.GuestIdentity, error) {
	guest, err := r.FindByDeviceToken(ctx, deviceToken)
	if err != nil {
		return nil, err
	}
	if guest != nil {
		return guest, nil
	}

	query := `
		INSERT INTO guest_identities (device_token, created_at)
		VALUES (?, ?)
	`
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, deviceToken, now)
	if err != nil {
		if isDuplicateKeyErr(err) {
			// Lost the insert race; the unique key guarantees exactly one row.
			return r.FindByDeviceToken(ctx, deviceToken)
		}
		return nil, fmt.Errorf("failed to create guest identity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get guest identity id: %w", err)
	}

	return &models.GuestIdentity{
		ID:          uint64(id),
		DeviceToken: deviceToken,
		CreatedAt:   now,
	}, nil
}

func (r *guestRepository) FindByDeviceToken(ctx context.Context, deviceToken string) (*models.GuestIdentity, error) {
	query := `
		SELECT id, device_token, linked_user_id, created_at
		FROM guest_identities
		WHERE device_token = ?
	`
	guest := &models.GuestIdentity{}
	err := r.db.QueryRowContext(ctx, query, deviceToken).Scan(
		&guest.ID, &guest.DeviceToken, &guest.LinkedUserID, &guest.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find guest identity: %w", err)
	}
	return guest, nil
}
