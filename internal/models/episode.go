package models

import "time"

type Episode struct {
	ID            uint64    `db:"id"`
	Title         string    `db:"title"`
	Slug          string    `db:"slug"`
	SummaryText   string    `db:"summary_text"`
	Description   string    `db:"description"`
	Sources       []string  `db:"sources"` // stored as a JSON column
	AudioURL      string    `db:"audio_url"`
	ImageURL      string    `db:"image_url"`
	LikesCount    int64     `db:"likes_count"`
	DislikesCount int64     `db:"dislikes_count"`
	CreatedAt     time.Time `db:"created_at"`
}

// EpisodeDetail is an episode together with the requesting actor's own
// engagement state.
type EpisodeDetail struct {
	Episode
	Topics       []Topic
	Tags         []Tag
	UserReaction ReactionAction // empty when the actor has no reaction
	Saved        bool
}

type Topic struct {
	ID          uint64    `db:"id"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type Tag struct {
	ID   uint64 `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}
