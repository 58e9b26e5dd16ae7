package models

import "time"

// InteractionType enumerates the event kinds the engine consumes.
type InteractionType string

const (
	InteractionView    InteractionType = "VIEW"
	InteractionLike    InteractionType = "LIKE"
	InteractionDislike InteractionType = "DISLIKE"
	InteractionRate    InteractionType = "RATE"
)

// Valid reports whether t is one of the known interaction types.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionLike, InteractionDislike, InteractionRate:
		return true
	}
	return false
}

// InteractionEvent is a single user/movie interaction. Rating is set iff
// Type is RATE. At most one LIKE and one DISLIKE row exist per (user, movie);
// VIEW rows are append-only; RATE rows are latest-wins upserts. The write
// path enforces those invariants, the engine relies on them.
type InteractionEvent struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	MovieID   int64           `json:"movie_id"`
	Type      InteractionType `json:"type"`
	Rating    *float64        `json:"rating,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// InteractionRequest is the write-path request body.
type InteractionRequest struct {
	MovieID int64           `json:"movieId"`
	Type    InteractionType `json:"type"`
	Rating  *float64        `json:"rating,omitempty"`
}

// InteractionResult reports the state after applying a toggle write.
// State is one of "none", "liked", "disliked", "rated", "viewed".
type InteractionResult struct {
	MovieID int64  `json:"movieId"`
	State   string `json:"state"`
}

// MovieViewCount is a trending aggregation row: views per movie inside the
// trailing window, already sorted by count descending.
type MovieViewCount struct {
	MovieID int64 `json:"movie_id"`
	Count   int64 `json:"count"`
}

// UserOverlap is one collaborative-filtering neighbor candidate with the
// size of their positive-history intersection with the target user.
type UserOverlap struct {
	UserID  int64 `json:"user_id"`
	Overlap int   `json:"overlap"`
}

// RecommendationResponse wraps every recommendation surface's reply. The
// strategy label is a fixed-vocabulary string identifying which fallback
// tier actually produced the data; clients adapt their messaging to it.
type RecommendationResponse struct {
	Data     []MovieCard `json:"data"`
	Strategy string      `json:"strategy"`
}
