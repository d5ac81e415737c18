package screening

import (
	"context"
	"sync"
)

// MemoryCallLog is an in-memory call log for tests and early development.
// CallNo allocation happens under the same lock as the insert, so concurrent
// classifications always observe distinct, increasing numbers.
type MemoryCallLog struct {
	mu      sync.Mutex
	seq     int64
	records map[int64]CallRecord
	order   []int64
}

func NewMemoryCallLog() *MemoryCallLog {
	return &MemoryCallLog{records: map[int64]CallRecord{}}
}

func (l *MemoryCallLog) Insert(ctx context.Context, rec CallRecord) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	rec.CallNo = l.seq
	l.records[rec.CallNo] = rec
	l.order = append(l.order, rec.CallNo)
	return rec.CallNo, nil
}

func (l *MemoryCallLog) Get(ctx context.Context, callNo int64) (CallRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[callNo]
	if !ok {
		return CallRecord{}, ErrNotFound
	}
	return rec, nil
}

func (l *MemoryCallLog) Recent(ctx context.Context, limit int) ([]CallRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CallRecord, 0, limit)
	for i := len(l.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.records[l.order[i]])
	}
	return out, nil
}

func (l *MemoryCallLog) AttachMessage(ctx context.Context, callNo, msgNo int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[callNo]
	if !ok {
		return ErrNotFound
	}
	rec.MsgNo = &msgNo
	l.records[callNo] = rec
	return nil
}

func (l *MemoryCallLog) DetachMessage(ctx context.Context, callNo, msgNo int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[callNo]
	if !ok {
		return ErrNotFound
	}
	if rec.MsgNo != nil && *rec.MsgNo == msgNo {
		rec.MsgNo = nil
		l.records[callNo] = rec
	}
	return nil
}
