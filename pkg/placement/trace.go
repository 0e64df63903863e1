package placement

import (
	"fmt"
	"strings"
)

// Trace records the decision taken for every candidate of one resolution.
type Trace struct {
	Steps []TraceStep
}

// TraceStep is the decision for one candidate.
type TraceStep struct {
	LayoutID string
	Priority int

	// Selected is true when the candidate is part of the result.
	Selected bool

	// Reason is set for excluded candidates.
	Reason Reason

	// GroupIndex is the matching group for selected candidates with
	// conditions, -1 otherwise.
	GroupIndex int
}

func (t *Trace) add(step TraceStep) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, step)
}

// String renders the trace one candidate per line.
func (t *Trace) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	for _, s := range t.Steps {
		if s.Selected {
			fmt.Fprintf(&b, "%s\tselected\tpriority=%d group=%d\n", s.LayoutID, s.Priority, s.GroupIndex)
			continue
		}
		fmt.Fprintf(&b, "%s\texcluded\treason=%s\n", s.LayoutID, s.Reason)
	}
	return b.String()
}
