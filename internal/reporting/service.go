package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"callscreen/internal/screening"
	"callscreen/internal/voicemail"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// Implementations should query the immutable screening log and the
// message store; reporting never mutates either.

type Repository interface {
	ListCalls(ctx context.Context, from, to time.Time) ([]screening.CallRecord, error)
	ListMessages(ctx context.Context, from, to time.Time) ([]voicemail.Message, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if err := s.check(req.Range); err != nil {
		return CallsSummary{}, err
	}

	rows, err := s.repo.ListCalls(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{ReasonCounts: map[string]int{}}
	for _, c := range rows {
		out.TotalCalls++
		if c.MsgNo != nil {
			out.CallsWithMessage++
		}
		switch c.Action {
		case screening.ActionPermitted:
			out.PermittedCalls++
		case screening.ActionBlocked:
			out.BlockedCalls++
			out.ReasonCounts[c.Reason]++
		case screening.ActionFiltered:
			out.FilteredCalls++
			out.ReasonCounts[c.Reason]++
		}
	}
	return out, nil
}

func (s *Service) MessagesSummary(ctx context.Context, req MessagesSummaryRequest) (MessagesSummary, error) {
	if err := s.check(req.Range); err != nil {
		return MessagesSummary{}, err
	}

	rows, err := s.repo.ListMessages(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return MessagesSummary{}, err
	}

	out := MessagesSummary{}
	for _, m := range rows {
		out.TotalMessages++
		if m.Played {
			out.PlayedMessages++
		} else {
			out.UnplayedMessages++
		}
	}
	return out, nil
}

func (s *Service) TopCallers(ctx context.Context, req TopCallersRequest) ([]CallerCount, error) {
	if err := s.check(req.Range); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.repo.ListCalls(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return nil, err
	}

	byNumber := map[string]*CallerCount{}
	for _, c := range rows {
		cc := byNumber[c.PhoneNumber]
		if cc == nil {
			cc = &CallerCount{PhoneNumber: c.PhoneNumber}
			byNumber[c.PhoneNumber] = cc
		}
		cc.Calls++
		if c.Diverted() {
			cc.Diverted++
		}
	}

	out := make([]CallerCount, 0, len(byNumber))
	for _, cc := range byNumber {
		out = append(out, *cc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].PhoneNumber < out[j].PhoneNumber
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Service) check(r TimeRange) error {
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return ErrInvalidRequest
	}
	if s.repo == nil {
		return errors.New("reporting: repository not configured")
	}
	return nil
}
