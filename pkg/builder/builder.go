// Package builder detects which editor produced a layout's body.
//
// The origin is resolved once per layout from store-owned metadata and is
// consumed only by the rendering surface; targeting never looks at it.
package builder

import (
	"strings"

	"mercator-hq/placement/pkg/layout"
)

// Origin is the editor a layout body was built with.
type Origin string

const (
	Individual Origin = "custom"
	Elementor  Origin = "elementor"
	Beaver     Origin = "beaver"
	Brizy      Origin = "brizy"
	Default    Origin = "default"
)

// Metadata keys written by the editors.
const (
	MetaEditorMode    = "neve_editor_mode"
	MetaElementorMode = "_elementor_edit_mode"
	MetaBeaverEnabled = "_fl_builder_enabled"
	MetaBrizyEnabled  = "brizy_enabled"
)

// Probe reports whether a layout was built with one origin.
type Probe struct {
	Origin Origin
	Match  func(meta map[string]string) bool
}

// DefaultProbes returns the built-in probes in detection order.
func DefaultProbes() []Probe {
	return []Probe{
		{Origin: Individual, Match: func(m map[string]string) bool { return m[MetaEditorMode] == "1" }},
		{Origin: Elementor, Match: func(m map[string]string) bool { return m[MetaElementorMode] == "builder" }},
		{Origin: Beaver, Match: func(m map[string]string) bool { return truthy(m[MetaBeaverEnabled]) }},
		{Origin: Brizy, Match: func(m map[string]string) bool { return truthy(m[MetaBrizyEnabled]) }},
	}
}

// Detector resolves builder origins. Only probes of enabled builders are
// consulted; the individual editor is always available.
type Detector struct {
	probes []Probe
}

// NewDetector creates a detector for the enabled builders. A nil enabled
// list enables every built-in probe.
func NewDetector(enabled []Origin) *Detector {
	probes := DefaultProbes()
	if enabled == nil {
		return &Detector{probes: probes}
	}

	on := make(map[Origin]bool, len(enabled)+1)
	on[Individual] = true
	for _, o := range enabled {
		on[o] = true
	}

	d := &Detector{}
	for _, p := range probes {
		if on[p.Origin] {
			d.probes = append(d.probes, p)
		}
	}
	return d
}

// Detect returns the origin of l, Default when no probe matches.
func (d *Detector) Detect(l *layout.Layout) Origin {
	if l == nil || len(l.Meta) == 0 {
		return Default
	}
	for _, p := range d.probes {
		if p.Match(l.Meta) {
			return p.Origin
		}
	}
	return Default
}

// ParseOrigin parses an origin name.
func ParseOrigin(name string) (Origin, bool) {
	switch o := Origin(strings.ToLower(strings.TrimSpace(name))); o {
	case Individual, Elementor, Beaver, Brizy, Default:
		return o, true
	}
	return "", false
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}
