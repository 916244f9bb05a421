package realtime

import (
	"time"

	"github.com/google/uuid"
)

type Event string

const (
	EventReviewCompleted Event = "ReviewCompleted"
)

// Message is the envelope published on the realtime bus. Channel is the
// subscriber scope, in practice the user ID.
type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// ReviewEvent is the data payload for EventReviewCompleted. It is also
// the stored outbox payload, so field names are part of the wire format.
type ReviewEvent struct {
	UserID         uuid.UUID `json:"user_id"`
	FlashcardID    uuid.UUID `json:"flashcard_id"`
	Rating         string    `json:"rating"`
	Maturity       string    `json:"maturity"`
	StreakRelevant bool      `json:"streak_relevant"`
	Timestamp      time.Time `json:"timestamp"`
}
