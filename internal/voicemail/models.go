package voicemail

import "time"

// Message is one recorded voicemail, owned by the store (the call record
// only holds a weak reference back to it).
//
// State machine per message: unplayed -> played, unplayed -> deleted,
// played -> deleted. Played never resets. Each transition is atomic in the
// repository, and a message contributes at most one unplayed-count decrement
// across its whole lifetime; Decremented records that fact explicitly rather
// than inferring it from Played under interleaving.
type Message struct {
	MsgNo     int64     `json:"msg_no" db:"msg_no"`
	CallNo    int64     `json:"call_no" db:"call_no"`
	AudioRef  string    `json:"audio_ref" db:"audio_ref"`
	Played    bool      `json:"played" db:"played"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Decremented is internal bookkeeping, not part of the API surface.
	Decremented bool `json:"-" db:"decremented"`
}

// PlayedResult reports the outcome of a mark-played transition.
type PlayedResult struct {
	// AlreadyPlayed is true when the message had been played before; the
	// operation is an idempotent no-op in that case.
	AlreadyPlayed bool
	// Decrement is true when this transition consumed the message's single
	// unplayed-count decrement.
	Decrement bool
}

// DeleteResult carries what the store needs to finish a deletion after the
// row is gone: the weak reference to clear and the audio payload to release.
type DeleteResult struct {
	CallNo    int64
	AudioRef  string
	Decrement bool
}
