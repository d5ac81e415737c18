package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummaryRequest requests aggregated screening metrics.

type CallsSummaryRequest struct {
	Range TimeRange `json:"range"`
}

type CallsSummary struct {
	TotalCalls    int `json:"total_calls"`
	PermittedCalls int `json:"permitted_calls"`
	BlockedCalls  int `json:"blocked_calls"`
	FilteredCalls int `json:"filtered_calls"`

	// ReasonCounts breaks the diverted calls down by the reason recorded
	// at screening time (registry hit or the triggering heuristic).
	ReasonCounts map[string]int `json:"reason_counts"`

	CallsWithMessage int `json:"calls_with_message"`
}

// MessagesSummaryRequest requests aggregated voicemail metrics.

type MessagesSummaryRequest struct {
	Range TimeRange `json:"range"`
}

type MessagesSummary struct {
	TotalMessages    int `json:"total_messages"`
	PlayedMessages   int `json:"played_messages"`
	UnplayedMessages int `json:"unplayed_messages"`
}

// TopCallersRequest requests the most frequent callers over a range.

type TopCallersRequest struct {
	Range TimeRange `json:"range"`
	Limit int       `json:"limit,omitempty"`
}

type CallerCount struct {
	PhoneNumber string `json:"phone_number"`
	Calls       int    `json:"calls"`
	Diverted    int    `json:"diverted"`
}
