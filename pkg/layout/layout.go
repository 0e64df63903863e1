package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"mercator-hq/placement/pkg/targeting"
)

// Priority bounds and defaults. Lower values win.
const (
	MinPriority           = 1
	MaxPriority           = 150
	DefaultPriority       = 10
	LegacyDefaultPriority = 1
)

// Record schema versions.
const (
	SchemaLegacy  = 1
	SchemaCurrent = 2
)

// SidebarAction is how a sidebar layout combines with the existing sidebar.
type SidebarAction string

const (
	SidebarReplace SidebarAction = "replace"
	SidebarAppend  SidebarAction = "append"
	SidebarPrepend SidebarAction = "prepend"
)

// InsideAnchor is the content element an inside layout is counted against.
type InsideAnchor string

const (
	AnchorAfterHeadings InsideAnchor = "after_headings"
	AnchorAfterBlocks   InsideAnchor = "after_blocks"
)

// Sidebar configures a sidebar slot layout.
type Sidebar struct {
	Position string        `json:"position"`
	Action   SidebarAction `json:"action"`
}

// Inside configures an inside-content slot layout.
type Inside struct {
	Anchor InsideAnchor `json:"anchor"`
	Count  int          `json:"count"`
}

// Expiration is an optional single cutoff instant.
type Expiration struct {
	Enabled bool   `json:"enabled"`
	At      string `json:"at,omitempty"`
}

// UnmarshalJSON accepts booleans and checkbox-style strings ("1", "on",
// "yes", "true") for the enabled flag. It never fails: an instant that is
// not a string is kept as its JSON text, and a bare non-object value is an
// enabled expiration at that value. Unparsable instants never expire.
func (e *Expiration) UnmarshalJSON(data []byte) error {
	*e = Expiration{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		e.Enabled = checkbox(raw["enabled"])
		e.At = instantText(raw["at"])
	case 't', 'f':
		e.Enabled = checkbox(data)
	case 'n':
	default:
		e.Enabled = true
		e.At = instantText(data)
	}
	return nil
}

func checkbox(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "on", "yes", "true":
			return true
		}
	case float64:
		return v != 0
	}
	return false
}

func instantText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Layout is a reusable block of markup placed on a slot.
type Layout struct {
	// ID is assigned by the store.
	ID string `json:"id"`

	// Title is the admin label.
	Title string `json:"title,omitempty"`

	Slot     Slot     `json:"slot"`
	HookName string   `json:"hook_name,omitempty"`
	Sidebar  *Sidebar `json:"sidebar,omitempty"`
	Inside   *Inside  `json:"inside,omitempty"`

	// Priority is optional; see EffectivePriority.
	Priority *int `json:"priority,omitempty"`

	// SchemaVersion selects the default priority of records without one.
	SchemaVersion int `json:"schema_version,omitempty"`

	Conditions targeting.ConditionSet `json:"conditions"`
	Expiration *Expiration            `json:"expiration,omitempty"`

	Body string `json:"body"`

	// Meta is opaque store-owned metadata, e.g. page builder markers.
	Meta map[string]string `json:"meta,omitempty"`

	// Language is the layout's own language; Translations maps other
	// languages to the ids of translated layouts.
	Language     string            `json:"language,omitempty"`
	Translations map[string]string `json:"translations,omitempty"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// EffectivePriority returns the priority used for ordering, applying the
// schema-dependent default and clamping into [MinPriority, MaxPriority].
func (l *Layout) EffectivePriority() int {
	var p int
	switch {
	case l.Priority != nil:
		p = *l.Priority
	case l.SchemaVersion >= SchemaCurrent:
		p = DefaultPriority
	default:
		p = LegacyDefaultPriority
	}
	return min(max(p, MinPriority), MaxPriority)
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	out := *l
	if l.Sidebar != nil {
		s := *l.Sidebar
		out.Sidebar = &s
	}
	if l.Inside != nil {
		in := *l.Inside
		out.Inside = &in
	}
	if l.Priority != nil {
		out.Priority = IntPtr(*l.Priority)
	}
	if l.Expiration != nil {
		e := *l.Expiration
		out.Expiration = &e
	}
	out.Conditions = l.Conditions.Clone()
	out.Meta = maps.Clone(l.Meta)
	out.Translations = maps.Clone(l.Translations)
	return &out
}

// Problems reports structural issues of the layout record. It does not
// inspect conditions or expiration instants.
func (l *Layout) Problems() []string {
	var problems []string
	if l.ID == "" {
		problems = append(problems, "missing id")
	}
	if !l.Slot.Valid() {
		problems = append(problems, fmt.Sprintf("unknown slot %q", l.Slot))
	}
	if l.Priority != nil && (*l.Priority < MinPriority || *l.Priority > MaxPriority) {
		problems = append(problems, fmt.Sprintf("priority %d outside [%d, %d]", *l.Priority, MinPriority, MaxPriority))
	}

	switch l.Slot {
	case SlotHook:
		if strings.TrimSpace(l.HookName) == "" {
			problems = append(problems, "hook slot without hook_name")
		}
	case SlotSidebar:
		switch {
		case l.Sidebar == nil:
			problems = append(problems, "sidebar slot without sidebar settings")
		case l.Sidebar.Position == "":
			problems = append(problems, "sidebar slot without position")
		case l.Sidebar.Action != SidebarReplace && l.Sidebar.Action != SidebarAppend && l.Sidebar.Action != SidebarPrepend:
			problems = append(problems, fmt.Sprintf("unknown sidebar action %q", l.Sidebar.Action))
		}
	case SlotInside:
		switch {
		case l.Inside == nil:
			problems = append(problems, "inside slot without inside settings")
		case l.Inside.Anchor != AnchorAfterHeadings && l.Inside.Anchor != AnchorAfterBlocks:
			problems = append(problems, fmt.Sprintf("unknown inside anchor %q", l.Inside.Anchor))
		case l.Inside.Count < 1:
			problems = append(problems, "inside count must be at least 1")
		}
	}
	return problems
}

// Decode parses a JSON-encoded layout.
func Decode(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return &l, nil
}
