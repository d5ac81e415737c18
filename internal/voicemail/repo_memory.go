package voicemail

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory message repository for tests and early
// development. One mutex serializes all transitions, which trivially gives
// the per-message atomicity the Postgres implementation gets from row locks.
type MemoryRepo struct {
	mu       sync.Mutex
	seq      int64
	messages map[int64]Message
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{messages: map[int64]Message{}}
}

func (r *MemoryRepo) Insert(ctx context.Context, m Message) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.MsgNo = r.seq
	r.messages[m.MsgNo] = m
	return m.MsgNo, nil
}

func (r *MemoryRepo) Get(ctx context.Context, msgNo int64) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[msgNo]
	if !ok {
		return Message{}, ErrNotFound
	}
	return m, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MsgNo > out[j].MsgNo })
	return out, nil
}

func (r *MemoryRepo) MarkPlayed(ctx context.Context, msgNo int64) (PlayedResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[msgNo]
	if !ok {
		return PlayedResult{}, ErrNotFound
	}
	if m.Played {
		return PlayedResult{AlreadyPlayed: true}, nil
	}
	m.Played = true
	m.Decremented = true
	r.messages[msgNo] = m
	return PlayedResult{Decrement: true}, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, msgNo int64) (DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[msgNo]
	if !ok {
		return DeleteResult{}, ErrNotFound
	}
	delete(r.messages, msgNo)
	return DeleteResult{
		CallNo:    m.CallNo,
		AudioRef:  m.AudioRef,
		Decrement: !m.Decremented,
	}, nil
}

func (r *MemoryRepo) CountUnplayed(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if !m.Played {
			n++
		}
	}
	return n, nil
}
