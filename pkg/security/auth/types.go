package auth

// KeyInfo identifies the admin key that authenticated a request. The key
// itself is never kept.
type KeyInfo struct {
	Name    string
	Enabled bool
}

// Source defines where to extract a key from.
type Source struct {
	Type   string // "header" or "query"
	Name   string // header name or query parameter
	Scheme string // optional, e.g. "Bearer"
}

// Source types.
const (
	SourceHeader = "header"
	SourceQuery  = "query"
)
