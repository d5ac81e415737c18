package screening

import (
	"context"
	"time"

	"callscreen/internal/telephony"
	"callscreen/pkg/phone"
	"callscreen/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// CallRateSignal flags numbers calling more than threshold times inside
// window. Counters live in Redis so repeated dialing is caught across
// restarts and, later, across multiple line handlers.
type CallRateSignal struct {
	rdb       *redis.Client
	window    time.Duration
	threshold int
}

func NewCallRateSignal(rdb *redis.Client, window time.Duration, threshold int) *CallRateSignal {
	return &CallRateSignal{rdb: rdb, window: window, threshold: threshold}
}

func (s *CallRateSignal) Name() string { return "call_rate" }

func (s *CallRateSignal) Evaluate(ctx context.Context, ev telephony.CallEvent) (bool, string, error) {
	canon, err := phone.Canonical(ev.Number)
	if err != nil {
		// No stable key to count against.
		return false, "", nil
	}

	count, err := utils.CountCallInWindow(ctx, s.rdb, "callrate:"+canon, s.window)
	if err != nil {
		return false, "", err
	}
	if count > int64(s.threshold) {
		return true, "Cadence d'appels anormale", nil
	}
	return false, "", nil
}
