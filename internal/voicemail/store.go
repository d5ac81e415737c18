package voicemail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"callscreen/internal/screening"
	"callscreen/pkg/logger"
)

var (
	ErrNotFound     = errors.New("voicemail: message not found")
	ErrInvalidState = errors.New("voicemail: call record cannot carry a message")
)

// Repository is the persistence contract for messages.
//
// MarkPlayed and Delete must be atomic per message: the repository serializes
// concurrent transitions on the same msg_no (row lock or equivalent) and
// reports through the result whether the transition consumed the message's
// single unplayed-count decrement.
type Repository interface {
	Insert(ctx context.Context, m Message) (int64, error)
	Get(ctx context.Context, msgNo int64) (Message, error)
	List(ctx context.Context) ([]Message, error)
	MarkPlayed(ctx context.Context, msgNo int64) (PlayedResult, error)
	Delete(ctx context.Context, msgNo int64) (DeleteResult, error)
	CountUnplayed(ctx context.Context) (int64, error)
}

// CallLog is the slice of the call-record surface the store needs: validating
// that a call may carry a message and maintaining the weak back-reference.
type CallLog interface {
	Get(ctx context.Context, callNo int64) (screening.CallRecord, error)
	AttachMessage(ctx context.Context, callNo, msgNo int64) error
	DetachMessage(ctx context.Context, callNo, msgNo int64) error
}

// AudioStore releases recorded payloads. Removal is best-effort: the store
// guarantees message metadata is gone even when the payload lingers.
type AudioStore interface {
	Remove(ctx context.Context, audioRef string) error
}

// Store owns the voicemail message lifecycle and keeps the unplayed counter
// consistent with it.
type Store struct {
	repo    Repository
	calls   CallLog
	audio   AudioStore
	counter *Counter
	clock   func() time.Time
}

func NewStore(repo Repository, calls CallLog, audio AudioStore) *Store {
	return &Store{
		repo:    repo,
		calls:   calls,
		audio:   audio,
		counter: NewCounter(),
		clock:   time.Now,
	}
}

// Restore seeds the unplayed counter from storage. Call once at startup
// before serving traffic.
func (s *Store) Restore(ctx context.Context) error {
	n, err := s.repo.CountUnplayed(ctx)
	if err != nil {
		return fmt.Errorf("voicemail: restore unplayed count: %w", err)
	}
	s.counter.Set(n)
	return nil
}

// UnplayedCount returns the current derived counter value.
func (s *Store) UnplayedCount() int64 { return s.counter.Current() }

// Create stores a new unplayed message for a Blocked or Filtered call.
// Permitted calls reached the real line and fail with ErrInvalidState.
func (s *Store) Create(ctx context.Context, callNo int64, audioRef string) (Message, error) {
	if audioRef == "" {
		return Message{}, fmt.Errorf("voicemail: audio ref is required")
	}

	rec, err := s.calls.Get(ctx, callNo)
	if err != nil {
		if errors.Is(err, screening.ErrNotFound) {
			return Message{}, ErrNotFound
		}
		return Message{}, fmt.Errorf("voicemail: resolve call %d: %w", callNo, err)
	}
	if !rec.Diverted() {
		return Message{}, ErrInvalidState
	}

	m := Message{
		CallNo:    callNo,
		AudioRef:  audioRef,
		CreatedAt: s.clock().UTC(),
	}
	msgNo, err := s.repo.Insert(ctx, m)
	if err != nil {
		return Message{}, fmt.Errorf("voicemail: persist message: %w", err)
	}
	m.MsgNo = msgNo
	s.counter.Inc()

	// The back-reference is derived data; a failure here leaves the message
	// intact and is repaired on the next attach.
	if err := s.calls.AttachMessage(ctx, callNo, msgNo); err != nil {
		logger.From(ctx).Warn("voicemail: attach message reference failed",
			"call_no", callNo, "msg_no", msgNo, "err", err)
	}

	return m, nil
}

// MarkPlayed flips a message to played. Idempotent: marking an already-played
// message returns the current state without touching the counter.
func (s *Store) MarkPlayed(ctx context.Context, msgNo int64) (int64, int64, error) {
	res, err := s.repo.MarkPlayed(ctx, msgNo)
	if err != nil {
		return 0, 0, err
	}
	if res.Decrement {
		if _, err := s.counter.Dec(); err != nil {
			logger.From(ctx).Error("voicemail: unplayed counter underflow on mark-played",
				"msg_no", msgNo)
			return 0, 0, err
		}
	}
	return msgNo, s.counter.Current(), nil
}

// Delete removes a message and releases its audio payload. Deleting a
// missing message fails with ErrNotFound so racing callers see the loss
// explicitly rather than as a silent no-op.
func (s *Store) Delete(ctx context.Context, msgNo int64) error {
	res, err := s.repo.Delete(ctx, msgNo)
	if err != nil {
		return err
	}
	if res.Decrement {
		if _, err := s.counter.Dec(); err != nil {
			logger.From(ctx).Error("voicemail: unplayed counter underflow on delete",
				"msg_no", msgNo)
			return err
		}
	}

	// Clear the weak reference; guarded so a newer message is untouched.
	if err := s.calls.DetachMessage(ctx, res.CallNo, msgNo); err != nil {
		logger.From(ctx).Warn("voicemail: detach message reference failed",
			"call_no", res.CallNo, "msg_no", msgNo, "err", err)
	}

	// Payload removal is delegated and best-effort; metadata is already gone.
	if s.audio != nil && res.AudioRef != "" {
		if err := s.audio.Remove(ctx, res.AudioRef); err != nil {
			logger.From(ctx).Warn("voicemail: audio payload removal failed",
				"msg_no", msgNo, "audio_ref", res.AudioRef, "err", err)
		}
	}
	return nil
}

// Get returns one message.
func (s *Store) Get(ctx context.Context, msgNo int64) (Message, error) {
	return s.repo.Get(ctx, msgNo)
}

// List returns all messages, newest first.
func (s *Store) List(ctx context.Context) ([]Message, error) {
	return s.repo.List(ctx)
}
