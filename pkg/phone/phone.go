package phone

import (
	"errors"
	"strings"
)

// Canonical reduces a dialed or displayed phone number to its canonical key
// form: digits only, with a single leading "+" preserved when present.
//
// The canonical form is the registry and call-log key, so "555-1234",
// "555.1234" and "5551234" all resolve to the same entry. Callers must
// canonicalize before any lookup or persistence; raw display strings never
// reach storage as keys.
func Canonical(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyNumber
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')' || r == '/':
			// formatting noise
		default:
			return "", ErrInvalidNumber
		}
	}

	out := b.String()
	if out == "" || out == "+" {
		return "", ErrEmptyNumber
	}
	return out, nil
}

// Display formats a canonical North American 7 or 10 digit number with
// dashes for UI purposes. Anything else is returned unchanged.
func Display(canonical string) string {
	digits := strings.TrimPrefix(canonical, "+")
	switch len(digits) {
	case 7:
		return digits[0:3] + "-" + digits[3:]
	case 10:
		return digits[0:3] + "-" + digits[3:6] + "-" + digits[6:]
	default:
		return canonical
	}
}

var (
	ErrEmptyNumber   = errors.New("phone: empty number")
	ErrInvalidNumber = errors.New("phone: invalid character in number")
)
