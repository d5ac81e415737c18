package screening

import (
	"context"
	"testing"
	"time"

	"callscreen/internal/telephony"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCallRateSignal_TriggersAboveThreshold(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewCallRateSignal(rdb, time.Minute, 3)

	ctx := context.Background()
	ev := telephony.CallEvent{Number: "5551234"}

	for i := 0; i < 3; i++ {
		triggered, _, err := s.Evaluate(ctx, ev)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if triggered {
			t.Fatalf("call %d should not trigger yet", i+1)
		}
	}

	triggered, reason, err := s.Evaluate(ctx, ev)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !triggered {
		t.Fatalf("expected trigger above threshold")
	}
	if reason != "Cadence d'appels anormale" {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestCallRateSignal_WindowResets(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewCallRateSignal(rdb, time.Minute, 1)

	ctx := context.Background()
	ev := telephony.CallEvent{Number: "5551234"}

	if triggered, _, _ := s.Evaluate(ctx, ev); triggered {
		t.Fatalf("first call should not trigger")
	}
	if triggered, _, _ := s.Evaluate(ctx, ev); !triggered {
		t.Fatalf("second call inside window should trigger")
	}

	mr.FastForward(2 * time.Minute)

	if triggered, _, _ := s.Evaluate(ctx, ev); triggered {
		t.Fatalf("call after window expiry should not trigger")
	}
}

func TestCallRateSignal_UnparseableNumberIsQuiet(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewCallRateSignal(rdb, time.Minute, 1)

	triggered, _, err := s.Evaluate(context.Background(), telephony.CallEvent{Number: "anonymous"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if triggered {
		t.Fatalf("expected no trigger for unparseable number")
	}
}
