package screening

import (
	"context"
	"errors"
	"fmt"
	"time"

	"callscreen/internal/registry"
	"callscreen/internal/telephony"
	"callscreen/pkg/logger"
	"callscreen/pkg/phone"
)

var ErrNotFound = errors.New("screening: call record not found")

// RegistryLookup is the read-only reputation surface the classifier needs.
type RegistryLookup interface {
	Lookup(ctx context.Context, number string) (registry.Entry, error)
}

// CallLog is the persistence contract for call records.
//
// Insert must allocate CallNo atomically (sequence or equivalent); two
// concurrent inserts must never observe the same number.
type CallLog interface {
	Insert(ctx context.Context, rec CallRecord) (int64, error)
	Get(ctx context.Context, callNo int64) (CallRecord, error)
	Recent(ctx context.Context, limit int) ([]CallRecord, error)

	// AttachMessage/DetachMessage maintain the weak message back-reference.
	// DetachMessage only clears the reference when it still points at msgNo.
	AttachMessage(ctx context.Context, callNo, msgNo int64) error
	DetachMessage(ctx context.Context, callNo, msgNo int64) error
}

// Classifier decides what happens to an inbound call.
//
// Priority order, first match wins:
//  1. blacklisted number  -> Blocked
//  2. whitelisted number  -> Permitted
//  3. heuristic signals   -> Filtered (first triggered signal names the reason)
//  4. otherwise           -> Permitted
//
// The ordering is the business rule; do not reorder. Each classification
// persists exactly one call record before returning, and a persistence
// failure is surfaced as fatal for the call path: a screening decision must
// never be lost for a call that was actually handled.
type Classifier struct {
	registry RegistryLookup
	signals  []Signal
	log      CallLog
	clock    func() time.Time
}

func NewClassifier(reg RegistryLookup, log CallLog, signals ...Signal) *Classifier {
	return &Classifier{registry: reg, signals: signals, log: log, clock: time.Now}
}

// Classify screens one inbound call and persists its call record.
func (c *Classifier) Classify(ctx context.Context, ev telephony.CallEvent) (CallRecord, error) {
	if c.registry == nil || c.log == nil {
		return CallRecord{}, errors.New("screening: classifier not configured")
	}

	number := ev.Number
	if canon, err := phone.Canonical(ev.Number); err == nil {
		number = canon
	}

	ts := ev.ReceivedAt
	if ts.IsZero() {
		ts = c.clock()
	}

	rec := CallRecord{
		PhoneNumber: number,
		CallerName:  ev.CallerName,
		Timestamp:   ts.UTC(),
	}

	entry, err := c.registry.Lookup(ctx, ev.Number)
	if err != nil {
		return CallRecord{}, fmt.Errorf("screening: registry lookup: %w", err)
	}

	switch {
	case entry.Blacklisted:
		rec.Action = ActionBlocked
		rec.Reason = ReasonBlacklisted
	case entry.Whitelisted:
		rec.Action = ActionPermitted
		rec.Reason = ReasonWhitelisted
	default:
		rec.Action, rec.Reason = c.applySignals(ctx, ev)
	}

	callNo, err := c.log.Insert(ctx, rec)
	if err != nil {
		// Fatal for the call path; no retry here.
		return CallRecord{}, fmt.Errorf("screening: persist call record: %w", err)
	}
	rec.CallNo = callNo

	logger.From(ctx).Info("call screened",
		"call_no", rec.CallNo,
		"number", phone.Display(rec.PhoneNumber),
		"action", rec.Action,
		"reason", rec.Reason,
	)
	return rec, nil
}

// applySignals runs the heuristic predicates in order. A failing signal is
// advisory only: it is logged and skipped, never blocks the call path.
func (c *Classifier) applySignals(ctx context.Context, ev telephony.CallEvent) (Action, string) {
	for _, sig := range c.signals {
		triggered, reason, err := sig.Evaluate(ctx, ev)
		if err != nil {
			logger.From(ctx).Warn("screening signal failed", "signal", sig.Name(), "err", err)
			continue
		}
		if triggered {
			return ActionFiltered, reason
		}
	}
	return ActionPermitted, ReasonNoFilter
}

// GetCall returns an immutable call record by its number.
func (c *Classifier) GetCall(ctx context.Context, callNo int64) (CallRecord, error) {
	return c.log.Get(ctx, callNo)
}

// RecentCalls lists the newest call records, most recent first.
func (c *Classifier) RecentCalls(ctx context.Context, limit int) ([]CallRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return c.log.Recent(ctx, limit)
}
