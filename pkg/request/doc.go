// Package request defines the per-request evaluation snapshot consumed by the
// targeting engine and the magic tag substitutor.
//
// A Context is built once per incoming request (usually by a Provider or by
// decoding the JSON body sent to the HTTP surface) and is treated as read-only
// for the duration of one resolution. Nothing in this package performs I/O.
//
// # Extension data
//
// Optional collaborators (commerce, course platforms, multilingual plugins)
// attach their own state under Extensions, keyed by collaborator name. The
// core never interprets extension payloads; vocabulary contributors decode
// them with Extension.
package request
