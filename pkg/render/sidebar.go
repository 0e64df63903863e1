package render

import (
	"strings"

	"mercator-hq/placement/pkg/layout"
)

// ApplySidebar combines sidebar fragments for one position with the
// existing sidebar markup. Prepends and appends stack in fragment order;
// the first replace fragment replaces the existing markup.
func ApplySidebar(existing string, position string, fragments []Fragment) string {
	var (
		before, after []string
		replacement   *string
	)
	for _, f := range fragments {
		if f.Sidebar == nil || f.Sidebar.Position != position {
			continue
		}
		switch f.Sidebar.Action {
		case layout.SidebarPrepend:
			before = append(before, f.Body)
		case layout.SidebarAppend:
			after = append(after, f.Body)
		case layout.SidebarReplace:
			if replacement == nil {
				body := f.Body
				replacement = &body
			}
		}
	}

	middle := existing
	if replacement != nil {
		middle = *replacement
	}
	if len(before) == 0 && len(after) == 0 {
		return middle
	}
	return strings.Join(before, "") + middle + strings.Join(after, "")
}
