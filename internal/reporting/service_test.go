package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"callscreen/internal/screening"
	"callscreen/internal/voicemail"
)

func rng(t *testing.T) TimeRange {
	t.Helper()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return TimeRange{From: from, To: from.AddDate(0, 1, 0)}
}

func inRange(r TimeRange, d time.Duration) time.Time { return r.From.Add(d) }

func TestCallsSummary_CountsByAction(t *testing.T) {
	r := rng(t)
	msgNo := int64(7)
	repo := NewMemoryRepo()
	repo.Calls = []screening.CallRecord{
		{CallNo: 1, PhoneNumber: "5551111", Action: screening.ActionPermitted, Reason: screening.ReasonNoFilter, Timestamp: inRange(r, time.Hour)},
		{CallNo: 2, PhoneNumber: "5552222", Action: screening.ActionBlocked, Reason: screening.ReasonBlacklisted, Timestamp: inRange(r, 2 * time.Hour)},
		{CallNo: 3, PhoneNumber: "5553333", Action: screening.ActionFiltered, Reason: "Préfixe de robocall connu", MsgNo: &msgNo, Timestamp: inRange(r, 3 * time.Hour)},
		// outside the range, must not be counted
		{CallNo: 4, PhoneNumber: "5554444", Action: screening.ActionBlocked, Reason: screening.ReasonBlacklisted, Timestamp: r.To.Add(time.Hour)},
	}
	s := NewService(repo)

	sum, err := s.CallsSummary(context.Background(), CallsSummaryRequest{Range: r})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalCalls != 3 || sum.PermittedCalls != 1 || sum.BlockedCalls != 1 || sum.FilteredCalls != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.CallsWithMessage != 1 {
		t.Fatalf("expected 1 call with message, got %d", sum.CallsWithMessage)
	}
	if sum.ReasonCounts[screening.ReasonBlacklisted] != 1 {
		t.Fatalf("unexpected reason counts %+v", sum.ReasonCounts)
	}
}

func TestCallsSummary_RejectsInvalidRange(t *testing.T) {
	s := NewService(NewMemoryRepo())
	_, err := s.CallsSummary(context.Background(), CallsSummaryRequest{})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestMessagesSummary(t *testing.T) {
	r := rng(t)
	repo := NewMemoryRepo()
	repo.Messages = []voicemail.Message{
		{MsgNo: 1, Played: true, CreatedAt: inRange(r, time.Hour)},
		{MsgNo: 2, Played: false, CreatedAt: inRange(r, 2 * time.Hour)},
		{MsgNo: 3, Played: false, CreatedAt: inRange(r, 3 * time.Hour)},
	}
	s := NewService(repo)

	sum, err := s.MessagesSummary(context.Background(), MessagesSummaryRequest{Range: r})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalMessages != 3 || sum.PlayedMessages != 1 || sum.UnplayedMessages != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestTopCallers_OrdersByFrequency(t *testing.T) {
	r := rng(t)
	repo := NewMemoryRepo()
	for i := 0; i < 3; i++ {
		repo.Calls = append(repo.Calls, screening.CallRecord{
			PhoneNumber: "5559999", Action: screening.ActionBlocked, Timestamp: inRange(r, time.Duration(i) * time.Hour),
		})
	}
	repo.Calls = append(repo.Calls, screening.CallRecord{
		PhoneNumber: "5551111", Action: screening.ActionPermitted, Timestamp: inRange(r, time.Hour),
	})
	s := NewService(repo)

	top, err := s.TopCallers(context.Background(), TopCallersRequest{Range: r, Limit: 1})
	if err != nil {
		t.Fatalf("top callers: %v", err)
	}
	if len(top) != 1 || top[0].PhoneNumber != "5559999" || top[0].Calls != 3 || top[0].Diverted != 3 {
		t.Fatalf("unexpected result %+v", top)
	}
}
