package models

import (
	"database/sql"
	"time"
)

// GuestIdentity is the anonymous pseudo-account created on first unauthenticated
// contact. It exists only to anchor engagement rows until the visitor registers;
// after a successful migration the row is linked and then deleted.
type GuestIdentity struct {
	ID           uint64        `db:"id"`
	DeviceToken  string        `db:"device_token"`
	LinkedUserID sql.NullInt64 `db:"linked_user_id"`
	CreatedAt    time.Time     `db:"created_at"`
}
