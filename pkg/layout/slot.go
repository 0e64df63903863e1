package layout

import (
	"encoding/json"
	"fmt"
)

// Slot is a named location on the rendered page.
type Slot string

const (
	SlotIndividual  Slot = "individual"
	SlotHeader      Slot = "header"
	SlotInside      Slot = "inside"
	SlotFooter      Slot = "footer"
	SlotGlobal      Slot = "global"
	SlotHook        Slot = "hook"
	SlotNotFound    Slot = "not_found"
	SlotSinglePost  Slot = "single_post"
	SlotSinglePage  Slot = "single_page"
	SlotSearch      Slot = "search"
	SlotArchives    Slot = "archives"
	SlotSidebar     Slot = "sidebar"
	SlotOffline     Slot = "offline"
	SlotServerError Slot = "server_error"
)

// slotAliases maps legacy stored names to slots.
var slotAliases = map[string]Slot{
	"hooks": SlotHook,
}

var allSlots = []Slot{
	SlotIndividual, SlotHeader, SlotInside, SlotFooter, SlotGlobal, SlotHook,
	SlotNotFound, SlotSinglePost, SlotSinglePage, SlotSearch, SlotArchives,
	SlotSidebar, SlotOffline, SlotServerError,
}

// ParseSlot resolves a stored slot name, accepting legacy aliases.
func ParseSlot(name string) (Slot, bool) {
	if alias, ok := slotAliases[name]; ok {
		return alias, true
	}
	s := Slot(name)
	return s, s.Valid()
}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	for _, known := range allSlots {
		if s == known {
			return true
		}
	}
	return false
}

// UnmarshalJSON decodes a slot name, normalizing aliases. Unknown names are
// kept as-is so that such layouts are simply never resolved.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("slot must be a string: %w", err)
	}
	if parsed, ok := ParseSlot(name); ok {
		*s = parsed
		return nil
	}
	*s = Slot(name)
	return nil
}

// Mode tells how many layouts a slot renders.
type Mode int

const (
	// ModeSingle renders only the highest priority match.
	ModeSingle Mode = iota

	// ModeStack renders every match in priority order.
	ModeStack
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeStack {
		return "stack"
	}
	return "single"
}

// Mode returns the render mode of the slot.
func (s Slot) Mode() Mode {
	switch s {
	case SlotHook, SlotInside, SlotGlobal, SlotSidebar, SlotIndividual:
		return ModeStack
	default:
		return ModeSingle
	}
}

// Capabilities are the optional features that gate slot availability.
type Capabilities struct {
	Sidebar bool
	PWA     bool
}

// AvailableSlots returns the slots offered for the given capabilities.
func AvailableSlots(caps Capabilities) []Slot {
	out := make([]Slot, 0, len(allSlots))
	for _, s := range allSlots {
		switch s {
		case SlotSidebar:
			if !caps.Sidebar {
				continue
			}
		case SlotOffline, SlotServerError:
			if !caps.PWA {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
