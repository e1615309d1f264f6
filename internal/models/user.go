package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID           uint64    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type PersonalAccessToken struct {
	ID        uint64       `db:"id"`
	UserID    uint64       `db:"user_id"`
	Name      string       `db:"name"`
	Token     string       `db:"token"`
	ExpiresAt sql.NullTime `db:"expires_at"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}
