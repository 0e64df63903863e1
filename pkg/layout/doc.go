// Package layout defines the layout entity and its placement slots.
//
// A layout is a reusable block of markup attached to a slot on the rendered
// page. Slots are either single-render (only the highest priority layout is
// rendered, e.g. the header) or stacking (every matching layout is rendered
// in priority order, e.g. a named hook).
//
// Layouts are read-only to the targeting engine. They are owned by a store
// (see package store) and decoded from JSON or YAML:
//
//	id: promo-banner
//	slot: hook
//	hook_name: before_content
//	priority: 5
//	schema_version: 2
//	conditions:
//	  - - root: user_status
//	      end: logged_out
//	      comparator: "==="
//	body: "<div>Welcome back, {display_name}</div>"
package layout
