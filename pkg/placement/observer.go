package placement

import (
	"time"

	"mercator-hq/placement/pkg/layout"
)

// Reason explains why a candidate was excluded.
type Reason string

const (
	ReasonSlot    Reason = "slot"
	ReasonHook    Reason = "hook"
	ReasonExpired Reason = "expired"
	ReasonNoMatch Reason = "no_match"
)

// Observer receives resolution outcomes. Implementations must be safe for
// concurrent use.
type Observer interface {
	// Excluded is called once per excluded candidate.
	Excluded(slot layout.Slot, layoutID string, reason Reason)

	// Resolved is called once per resolution with the number of candidates
	// considered and the number selected.
	Resolved(slot layout.Slot, candidates, selected int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) Excluded(layout.Slot, string, Reason) {}
func (nopObserver) Resolved(layout.Slot, int, int, time.Duration) {}
