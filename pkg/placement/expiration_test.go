package placement

import (
	"testing"
	"time"

	"mercator-hq/placement/pkg/layout"
)

func expiring(at string, enabled bool) *layout.Layout {
	return &layout.Layout{
		ID:         "exp",
		Slot:       layout.SlotHeader,
		Expiration: &layout.Expiration{Enabled: enabled, At: at},
	}
}

func TestIsExpired(t *testing.T) {
	cutoff := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		layout *layout.Layout
		now    time.Time
		want   bool
	}{
		{name: "no expiration", layout: &layout.Layout{}, now: cutoff.Add(time.Hour), want: false},
		{name: "disabled", layout: expiring("2026-03-01T12:00", false), now: cutoff.Add(time.Hour), want: false},
		{name: "empty instant", layout: expiring("", true), now: cutoff.Add(time.Hour), want: false},
		{name: "unparsable instant", layout: expiring("next tuesday", true), now: cutoff.Add(time.Hour), want: false},
		{name: "one second after cutoff", layout: expiring("2026-03-01T12:00", true), now: cutoff.Add(time.Second), want: true},
		{name: "at cutoff", layout: expiring("2026-03-01T12:00", true), now: cutoff, want: false},
		{name: "before cutoff", layout: expiring("2026-03-01T12:00:00", true), now: cutoff.Add(-time.Minute), want: false},
		{name: "rfc3339 with offset", layout: expiring("2026-03-01T13:00:00+01:00", true), now: cutoff.Add(time.Second), want: true},
		{name: "nil layout", layout: nil, now: cutoff, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpired(tt.layout, tt.now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpirationFilter_Location(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	f := NewExpirationFilter(loc)
	l := expiring("2026-03-01T12:00", true)

	// 12:00 at UTC+2 is 10:00 UTC.
	if !f.Expired(l, time.Date(2026, 3, 1, 10, 0, 1, 0, time.UTC)) {
		t.Error("expected expiry to be evaluated in the configured location")
	}
	if IsExpired(l, time.Date(2026, 3, 1, 10, 0, 1, 0, time.UTC)) {
		t.Error("UTC filter should not consider the layout expired yet")
	}
}

func TestExpirationFilter_Parse(t *testing.T) {
	f := NewExpirationFilter(nil)

	for _, input := range []string{"2026-03-01T12:00", " 2026-03-01T12:00:00 ", "2026-03-01T12:00:00Z"} {
		got, err := f.Parse(input)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", input, err)
			continue
		}
		if !got.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("Parse(%q) = %v", input, got)
		}
	}

	if _, err := f.Parse("01/03/2026"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
