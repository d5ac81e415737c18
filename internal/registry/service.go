package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"callscreen/pkg/phone"
)

var ErrNotFound = errors.New("registry: entry not found")

// Repository is the persistence contract for reputation entries.
//
// Upsert must apply the whole entry atomically so the whitelist/blacklist
// exclusivity can never be observed half-written.
type Repository interface {
	Get(ctx context.Context, phoneNumber string) (Entry, bool, error)
	Upsert(ctx context.Context, e Entry) error
	Delete(ctx context.Context, phoneNumber string) error
}

// Service owns reputation entries. The decision engine only ever reads
// through Lookup; the write methods are the administrative surface.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Lookup returns the reputation for a number, or a neutral zero entry when
// none exists. Only storage failures produce an error.
func (s *Service) Lookup(ctx context.Context, number string) (Entry, error) {
	key, err := phone.Canonical(number)
	if err != nil {
		// Unparseable caller IDs ("anonymous", withheld) are neutral.
		return Entry{}, nil
	}
	e, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		return Entry{}, fmt.Errorf("registry: lookup %s: %w", key, err)
	}
	if !ok {
		return Entry{PhoneNumber: key}, nil
	}
	return e, nil
}

// SetWhitelisted marks a number as always-permitted, clearing any blacklist
// flag in the same write. Creates the entry when absent.
func (s *Service) SetWhitelisted(ctx context.Context, number, displayName string) (Entry, error) {
	return s.set(ctx, number, displayName, true, false)
}

// SetBlacklisted marks a number as always-blocked, clearing any whitelist
// flag in the same write. Creates the entry when absent.
func (s *Service) SetBlacklisted(ctx context.Context, number, displayName string) (Entry, error) {
	return s.set(ctx, number, displayName, false, true)
}

// Clear removes the reputation entry, returning the number to neutral.
// Clearing a number with no entry fails with ErrNotFound.
func (s *Service) Clear(ctx context.Context, number string) error {
	key, err := phone.Canonical(number)
	if err != nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	return nil
}

func (s *Service) set(ctx context.Context, number, displayName string, white, black bool) (Entry, error) {
	key, err := phone.Canonical(number)
	if err != nil {
		return Entry{}, fmt.Errorf("registry: %w", err)
	}

	e := Entry{
		PhoneNumber: key,
		Whitelisted: white,
		Blacklisted: black,
		DisplayName: displayName,
		UpdatedAt:   s.clock().UTC(),
	}
	if displayName == "" {
		if prev, ok, err := s.repo.Get(ctx, key); err == nil && ok {
			e.DisplayName = prev.DisplayName
		}
	}
	if err := s.repo.Upsert(ctx, e); err != nil {
		return Entry{}, fmt.Errorf("registry: upsert %s: %w", key, err)
	}
	return e, nil
}
