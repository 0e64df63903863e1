// Package placement resolves which layouts render on a slot for a request.
//
// Resolution filters candidates by slot (and hook name for hook slots),
// drops expired layouts, evaluates each layout's condition set and orders
// the survivors by effective priority, lowest first. Layouts with equal
// priority keep the order in which the store listed them.
//
// Resolution never fails. Every problem with a candidate (corrupt
// conditions, unknown categories, missing context data) degrades to
// excluding it; exclusions are reported to an optional Observer and, when
// requested, in a Trace.
//
// Expiration instants are parsed in a configured location:
//
//	filter := placement.NewExpirationFilter(time.UTC)
//	expired := filter.Expired(l, time.Now())
package placement
