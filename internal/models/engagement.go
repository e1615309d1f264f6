package models

import "time"

// ActorKind discriminates the polymorphic subject of engagement records.
type ActorKind string

const (
	ActorKindUser  ActorKind = "user"
	ActorKindGuest ActorKind = "guest"
)

// Actor is a (kind, id) reference to a registered user or a guest identity.
// It is never stored as its own entity; every engagement row embeds the pair.
type Actor struct {
	Kind ActorKind
	ID   uint64
}

func UserActor(id uint64) Actor {
	return Actor{Kind: ActorKindUser, ID: id}
}

func GuestActor(id uint64) Actor {
	return Actor{Kind: ActorKindGuest, ID: id}
}

// ReactionAction is a like or dislike on an episode.
type ReactionAction string

const (
	ReactionLike    ReactionAction = "like"
	ReactionDislike ReactionAction = "dislike"
)

// SavableType discriminates polymorphic save targets.
type SavableType string

const (
	SavableEpisode SavableType = "episode"
	SavableTopic   SavableType = "topic"
)

// ListeningProgress is the unique progress row for (actor, episode).
type ListeningProgress struct {
	ID              uint64    `db:"id"`
	Actor           Actor     `db:"-"`
	EpisodeID       uint64    `db:"episode_id"`
	PositionSeconds int64     `db:"position_seconds"`
	DurationSeconds int64     `db:"duration_seconds"`
	Completed       bool      `db:"completed"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Reaction is the unique like/dislike row for (actor, episode).
type Reaction struct {
	ID        uint64         `db:"id"`
	Actor     Actor          `db:"-"`
	EpisodeID uint64         `db:"episode_id"`
	Action    ReactionAction `db:"action"`
	ReactedAt time.Time      `db:"reacted_at"`
}

// SavedItem is the unique saved-content row for (actor, target).
type SavedItem struct {
	ID         uint64      `db:"id"`
	Actor      Actor       `db:"-"`
	TargetType SavableType `db:"target_type"`
	TargetID   uint64      `db:"target_id"`
	CreatedAt  time.Time   `db:"created_at"`
}

// ContinueListeningItem joins an in-progress episode with its progress row.
type ContinueListeningItem struct {
	Episode         Episode
	PositionSeconds int64
	DurationSeconds int64
	Completed       bool
	UpdatedAt       time.Time
}
