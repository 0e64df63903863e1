// Package render turns resolved layouts into page fragments.
//
// Service ties the pieces together for one request: it loads the slot's
// candidates from the store, resolves them against the request context,
// swaps in translations for the request language, renders each body
// according to the editor that built it and substitutes magic tags using
// the categories of the layout's first matching rule group.
//
// Single-render slots (header, footer, page templates) yield at most one
// fragment. Stacking slots yield every match in priority order; helpers in
// this package place inside-content and sidebar fragments into existing
// markup.
package render
