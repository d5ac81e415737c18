package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only; callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogRegistryUpdate records an administrative whitelist/blacklist change.
func (s *Service) LogRegistryUpdate(ctx context.Context, actorUserID, actorRole, ip, phoneNumber, message string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeRegistryUpdate,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		PhoneNumber: phoneNumber,
		Message:     message,
	})
}

// LogMessageDelete records a voicemail deletion.
func (s *Service) LogMessageDelete(ctx context.Context, actorUserID, actorRole, ip string, callNo, msgNo int64) error {
	return s.Append(ctx, Event{
		Type:        EventTypeMessageDelete,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		CallNo:      callNo,
		MsgNo:       msgNo,
		Message:     "message deleted",
	})
}
