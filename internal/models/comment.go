package models

import (
	"database/sql"
	"time"
)

// Comment is a threaded comment on a polymorphic target (episode or topic).
// RepliesCount is a materialized count of ALL descendants, maintained
// incrementally on insert so reads never recurse.
type Comment struct {
	ID           uint64        `db:"id"`
	TargetType   SavableType   `db:"target_type"`
	TargetID     uint64        `db:"target_id"`
	UserID       uint64        `db:"user_id"`
	Username     string        `db:"-"` // joined from users for display
	ParentID     sql.NullInt64 `db:"parent_id"`
	Body         string        `db:"body"`
	RepliesCount int64         `db:"replies_count"`
	CreatedAt    time.Time     `db:"created_at"`
}
