package reporting

import (
	"context"
	"sync"
	"time"

	"callscreen/internal/screening"
	"callscreen/internal/voicemail"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early development.

type MemoryRepo struct {
	mu sync.Mutex

	Calls    []screening.CallRecord
	Messages []voicemail.Message
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListCalls(ctx context.Context, from, to time.Time) ([]screening.CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]screening.CallRecord, 0)
	for _, c := range r.Calls {
		if !c.Timestamp.IsZero() {
			if c.Timestamp.Before(from) || !c.Timestamp.Before(to) {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryRepo) ListMessages(ctx context.Context, from, to time.Time) ([]voicemail.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]voicemail.Message, 0)
	for _, m := range r.Messages {
		if !m.CreatedAt.IsZero() {
			if m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) {
				continue
			}
		}
		out = append(out, m)
	}
	return out, nil
}
