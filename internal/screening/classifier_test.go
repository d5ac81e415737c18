package screening

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"callscreen/internal/registry"
	"callscreen/internal/telephony"
)

type stubRegistry struct {
	entries map[string]registry.Entry
}

func (s stubRegistry) Lookup(ctx context.Context, number string) (registry.Entry, error) {
	if e, ok := s.entries[number]; ok {
		return e, nil
	}
	return registry.Entry{}, nil
}

type stubSignal struct {
	name      string
	triggered bool
	reason    string
	err       error
}

func (s stubSignal) Name() string { return s.name }
func (s stubSignal) Evaluate(ctx context.Context, ev telephony.CallEvent) (bool, string, error) {
	return s.triggered, s.reason, s.err
}

func event(number string) telephony.CallEvent {
	return telephony.CallEvent{Number: number, ReceivedAt: time.Unix(1700000000, 0)}
}

func TestClassify_BlacklistWinsOverEverything(t *testing.T) {
	reg := stubRegistry{entries: map[string]registry.Entry{
		"5551234": {PhoneNumber: "5551234", Blacklisted: true},
	}}
	// A triggered signal must not override the blacklist.
	c := NewClassifier(reg, NewMemoryCallLog(), stubSignal{name: "x", triggered: true, reason: "robocall"})

	rec, err := c.Classify(context.Background(), event("555-1234"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Action != ActionBlocked {
		t.Fatalf("expected Blocked, got %q", rec.Action)
	}
	if rec.Reason != ReasonBlacklisted {
		t.Fatalf("expected blacklist reason, got %q", rec.Reason)
	}
}

func TestClassify_WhitelistOverridesSignals(t *testing.T) {
	reg := stubRegistry{entries: map[string]registry.Entry{
		"5551234": {PhoneNumber: "5551234", Whitelisted: true},
	}}
	c := NewClassifier(reg, NewMemoryCallLog(), stubSignal{name: "x", triggered: true, reason: "robocall"})

	rec, err := c.Classify(context.Background(), event("5551234"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Action != ActionPermitted || rec.Reason != ReasonWhitelisted {
		t.Fatalf("expected whitelisted Permitted, got %q/%q", rec.Action, rec.Reason)
	}
}

func TestClassify_NeutralWithTriggeredSignalFilters(t *testing.T) {
	c := NewClassifier(stubRegistry{}, NewMemoryCallLog(),
		stubSignal{name: "quiet"},
		stubSignal{name: "robocall", triggered: true, reason: "Préfixe de robocall connu"},
	)

	rec, err := c.Classify(context.Background(), event("0600000000"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Action != ActionFiltered {
		t.Fatalf("expected Filtered, got %q", rec.Action)
	}
	if rec.Reason != "Préfixe de robocall connu" {
		t.Fatalf("expected trigger reason, got %q", rec.Reason)
	}
	if rec.Action == ActionPermitted {
		t.Fatalf("robocall pattern must never yield Permitted")
	}
}

func TestClassify_NeutralNoSignalsPermits(t *testing.T) {
	c := NewClassifier(stubRegistry{}, NewMemoryCallLog())

	rec, err := c.Classify(context.Background(), event("5551234"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Action != ActionPermitted || rec.Reason != ReasonNoFilter {
		t.Fatalf("expected default Permitted, got %q/%q", rec.Action, rec.Reason)
	}
}

func TestClassify_FailingSignalIsSkipped(t *testing.T) {
	c := NewClassifier(stubRegistry{}, NewMemoryCallLog(),
		stubSignal{name: "broken", err: errors.New("redis down")},
		stubSignal{name: "rate", triggered: true, reason: "Cadence d'appels anormale"},
	)

	rec, err := c.Classify(context.Background(), event("5551234"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Action != ActionFiltered {
		t.Fatalf("expected later signal to apply, got %q", rec.Action)
	}
}

type failingLog struct {
	MemoryCallLog
}

func (f *failingLog) Insert(ctx context.Context, rec CallRecord) (int64, error) {
	return 0, errors.New("storage unreachable")
}

func TestClassify_PersistFailureIsSurfaced(t *testing.T) {
	c := NewClassifier(stubRegistry{}, &failingLog{})

	if _, err := c.Classify(context.Background(), event("5551234")); err == nil {
		t.Fatalf("expected persistence failure to surface")
	}
}

func TestClassify_RecordPersistedBeforeReturn(t *testing.T) {
	log := NewMemoryCallLog()
	c := NewClassifier(stubRegistry{}, log)

	rec, err := c.Classify(context.Background(), event("5551234"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	stored, err := log.Get(context.Background(), rec.CallNo)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if stored.Action != rec.Action || stored.Reason != rec.Reason {
		t.Fatalf("stored record mismatch: %+v vs %+v", stored, rec)
	}
}

func TestClassify_ConcurrentCallNosAreDistinct(t *testing.T) {
	log := NewMemoryCallLog()
	c := NewClassifier(stubRegistry{}, log)

	const n = 50
	var wg sync.WaitGroup
	nums := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := c.Classify(context.Background(), event("5551234"))
			if err != nil {
				t.Errorf("classify: %v", err)
				return
			}
			nums <- rec.CallNo
		}()
	}
	wg.Wait()
	close(nums)

	seen := map[int64]bool{}
	for no := range nums {
		if seen[no] {
			t.Fatalf("duplicate call_no %d", no)
		}
		seen[no] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct call numbers, got %d", n, len(seen))
	}
}
