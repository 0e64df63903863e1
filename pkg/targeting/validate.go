package targeting

import (
	"fmt"
)

// Issue describes a problem found in a stored condition set. Issues never
// change matching behavior; they feed linting and admin diagnostics.
type Issue struct {
	Group   int
	Atom    int
	Message string
}

// String formats the issue.
func (i Issue) String() string {
	if i.Group < 0 {
		return i.Message
	}
	if i.Atom < 0 {
		return fmt.Sprintf("group %d: %s", i.Group, i.Message)
	}
	return fmt.Sprintf("group %d atom %d: %s", i.Group, i.Atom, i.Message)
}

// Inspect reports atoms that can never match as written.
func Inspect(cs ConditionSet, categories CategorySource) []Issue {
	if cs.Corrupt() {
		return []Issue{{Group: -1, Atom: -1, Message: cs.Err().Error()}}
	}

	var issues []Issue
	for gi, group := range cs.Groups {
		if len(group) == 0 {
			issues = append(issues, Issue{Group: gi, Atom: -1, Message: "empty group matches every context"})
			continue
		}
		for ai, atom := range group {
			add := func(msg string) {
				issues = append(issues, Issue{Group: gi, Atom: ai, Message: msg})
			}
			if !atom.Comparator.Valid() {
				add(fmt.Sprintf("unknown comparator %q", atom.Comparator))
			}
			if atom.Root == "" {
				add("empty root")
			} else if categories != nil {
				if _, ok := categories.Accessor(atom.Root); !ok {
					add(fmt.Sprintf("unrecognized category %q", atom.Root))
				}
			}
			if atom.End.IsEmpty() {
				add("empty end value")
			}
		}
	}
	return issues
}
