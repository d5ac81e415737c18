package screening

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"callscreen/internal/telephony"
	"callscreen/pkg/phone"
)

// Signal is a pluggable heuristic predicate evaluated when neither list
// claims the number. The first triggered signal names the Filtered reason.
//
// Signals must treat their own failures as advisory: the classifier logs and
// skips a failing signal rather than aborting the call path.
type Signal interface {
	Name() string
	Evaluate(ctx context.Context, ev telephony.CallEvent) (triggered bool, reason string, err error)
}

// CallerNameSignal flags caller ID display names matching a pattern, e.g.
// withheld names or the telltale strings carriers substitute for spam.
type CallerNameSignal struct {
	re *regexp.Regexp
}

func NewCallerNameSignal(pattern string) (*CallerNameSignal, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("screening: caller name pattern is required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("screening: caller name pattern: %w", err)
	}
	return &CallerNameSignal{re: re}, nil
}

func (s *CallerNameSignal) Name() string { return "caller_name_pattern" }

func (s *CallerNameSignal) Evaluate(ctx context.Context, ev telephony.CallEvent) (bool, string, error) {
	if ev.CallerName == "" {
		return false, "", nil
	}
	if s.re.MatchString(ev.CallerName) {
		return true, "Nom d'appelant suspect", nil
	}
	return false, "", nil
}

// RobocallPrefixSignal flags numbers whose canonical form starts with a known
// auto-dialer prefix.
type RobocallPrefixSignal struct {
	prefixes []string
}

func NewRobocallPrefixSignal(prefixes []string) *RobocallPrefixSignal {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if canon, err := phone.Canonical(p); err == nil {
			out = append(out, canon)
		}
	}
	return &RobocallPrefixSignal{prefixes: out}
}

func (s *RobocallPrefixSignal) Name() string { return "robocall_prefix" }

func (s *RobocallPrefixSignal) Evaluate(ctx context.Context, ev telephony.CallEvent) (bool, string, error) {
	canon, err := phone.Canonical(ev.Number)
	if err != nil {
		// Withheld numbers carry no prefix to match.
		return false, "", nil
	}
	for _, p := range s.prefixes {
		if strings.HasPrefix(canon, p) {
			return true, "Préfixe de robocall connu", nil
		}
	}
	return false, "", nil
}
