package telephony

import (
	"context"
	"time"
)

// CallEvent is a provider-agnostic inbound call notification.
//
// Rules:
// - No modem/gateway specifics outside telephony adapters.
// - Number is the raw caller ID string; canonicalization happens in the
//   screening layer so the raw form stays available for audit.
type CallEvent struct {
	// Number is the caller ID number as received (may be "anonymous").
	Number string `json:"number"`

	// CallerName is the caller ID display name, when the line provides one.
	CallerName string `json:"caller_name,omitempty"`

	// ReceivedAt is when the boundary observed the call.
	ReceivedAt time.Time `json:"received_at"`

	// Raw is the original payload for debugging/audit; store as JSON string.
	Raw string `json:"raw,omitempty"`
}

// Modem is the minimal line-control surface the attendant needs.
//
// Implementations wrap real hardware or a SIP/ATA gateway. They must be safe
// for use by a single attendant goroutine; PickUp acquires the line and must
// be paired with HangUp.
type Modem interface {
	// Rings delivers one element per ring of the current inbound call.
	Rings() <-chan struct{}

	PickUp(ctx context.Context) error
	HangUp(ctx context.Context) error

	// PlayAudio plays a greeting file on the open line.
	PlayAudio(ctx context.Context, path string) error

	// RecordAudio records from the open line into path and returns the stored
	// audio reference.
	RecordAudio(ctx context.Context, path string) (string, error)
}
