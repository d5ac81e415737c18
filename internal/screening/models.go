package screening

import "time"

// Action is the screening disposition of one inbound call.
type Action string

const (
	// ActionPermitted lets the call through to the real line.
	ActionPermitted Action = "Permitted"
	// ActionBlocked drops the call outright.
	ActionBlocked Action = "Blocked"
	// ActionFiltered diverts the call to additional screening (voicemail).
	ActionFiltered Action = "Filtered"
)

// Fixed classification rationales. These are persisted verbatim in the call
// log, so treat them as part of the storage contract.
const (
	ReasonBlacklisted = "Numéro sur liste noire"
	ReasonWhitelisted = "Numéro autorisé"
	ReasonNoFilter    = "Aucun filtre déclenché"
)

// CallRecord is the immutable audit entry for one inbound call.
//
// Invariants:
// - CallNo is unique and strictly increasing across the process lifetime;
//   gaps are permitted, reuse is not.
// - Action and Reason never change after creation; the disposition of a call
//   is a historical fact.
// - MsgNo is a weak reference: deleting the message clears it but leaves the
//   record itself intact.
type CallRecord struct {
	CallNo      int64     `json:"call_no" db:"call_no"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	CallerName  string    `json:"caller_name,omitempty" db:"caller_name"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Action      Action    `json:"action" db:"action"`
	Reason      string    `json:"reason" db:"reason"`

	// MsgNo references the voicemail left by this call, if any.
	MsgNo *int64 `json:"msg_no,omitempty" db:"msg_no"`
}

// Diverted reports whether this call class can carry a voicemail. Permitted
// callers reach the real line and never leave a message here.
func (r CallRecord) Diverted() bool {
	return r.Action == ActionBlocked || r.Action == ActionFiltered
}
