package placement

import (
	"fmt"
	"strings"
	"time"

	"mercator-hq/placement/pkg/layout"
)

// expirationLayouts are the accepted instant formats, most specific first.
// The minute-precision form is what the admin form submits.
var expirationLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ExpirationFilter decides whether layouts have passed their cutoff.
type ExpirationFilter struct {
	loc *time.Location
}

// NewExpirationFilter creates a filter interpreting zone-less instants in
// loc. A nil loc means UTC.
func NewExpirationFilter(loc *time.Location) *ExpirationFilter {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpirationFilter{loc: loc}
}

// Location returns the location zone-less instants are interpreted in.
func (f *ExpirationFilter) Location() *time.Location {
	return f.loc
}

// Parse parses an expiration instant.
func (f *ExpirationFilter) Parse(at string) (time.Time, error) {
	at = strings.TrimSpace(at)
	for _, format := range expirationLayouts {
		if t, err := time.ParseInLocation(format, at, f.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiration instant %q", at)
}

// Expired reports whether l is expired at now. Layouts without an enabled
// expiration, without an instant, or with an unparsable instant are never
// expired.
func (f *ExpirationFilter) Expired(l *layout.Layout, now time.Time) bool {
	at, ok := f.Cutoff(l)
	if !ok {
		return false
	}
	return now.After(at)
}

// Cutoff returns the parsed expiration instant of l, if it has one in effect.
func (f *ExpirationFilter) Cutoff(l *layout.Layout) (time.Time, bool) {
	if l == nil || l.Expiration == nil || !l.Expiration.Enabled || strings.TrimSpace(l.Expiration.At) == "" {
		return time.Time{}, false
	}
	at, err := f.Parse(l.Expiration.At)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

var utcFilter = NewExpirationFilter(time.UTC)

// IsExpired reports whether l is expired at now, interpreting zone-less
// instants in UTC.
func IsExpired(l *layout.Layout, now time.Time) bool {
	return utcFilter.Expired(l, now)
}
