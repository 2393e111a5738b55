// Package slug turns titles into unique, URL-safe identifiers.
package slug

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// MaxLength bounds the normalized slug before any numeric suffix.
	MaxLength = 64

	// Fallback replaces titles that normalize to nothing.
	Fallback = "resource"

	// maxProbes bounds the -2, -3, ... probing sequence.
	maxProbes = 200
)

// ErrExhausted is returned when the probe budget and the timestamp fallback
// both collided. Callers should retry with a fresh base or give up.
var ErrExhausted = errors.New("slug namespace exhausted")

// Make normalizes a title into a slug: lowercase ASCII letters and digits,
// runs of anything else collapsed to a single hyphen, no leading or trailing
// hyphen, at most MaxLength characters. Empty results become Fallback, so the
// output is always a valid slug.
func Make(base string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(base) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	s := strings.Trim(b.String(), "-")
	if len(s) > MaxLength {
		s = strings.Trim(s[:MaxLength], "-")
	}
	if s == "" {
		return Fallback
	}
	return s
}

// EnsureUnique probes base, base-2, base-3, ... until exists reports false,
// and returns that candidate. The suffix starts at 2 so the first duplicate
// reads naturally. After maxProbes attempts it falls back to a timestamp
// suffix; if even that is taken it returns ErrExhausted. Predicate errors are
// propagated as-is.
func EnsureUnique(base string, exists func(string) (bool, error)) (string, error) {
	candidate := Make(base)

	for i := 1; i <= maxProbes; i++ {
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", Make(base), i)
		}
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	candidate = fmt.Sprintf("%s-%d", Make(base), time.Now().UnixNano())
	taken, err := exists(candidate)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrExhausted
	}
	return candidate, nil
}
