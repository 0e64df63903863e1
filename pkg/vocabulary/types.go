package vocabulary

import (
	"mercator-hq/placement/pkg/request"
)

// GeneralEnd is the pseudo end value whose tags apply to every end of a root.
const GeneralEnd = "general"

// Pair identifies one matched (root, end) combination.
type Pair struct {
	Root string `json:"root"`
	End  string `json:"end"`
}

// Accessor reads the actual values of a category from a request context.
// ok is false when the category cannot be evaluated for this context at all
// (for example when the collaborator that owns the data is absent); such
// atoms never match.
type Accessor func(ctx *request.Context) (values []string, ok bool)

// Option is one selectable end value for the admin surface.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Category is a rule root: a named dimension of the request context.
type Category struct {
	// Key is the root identifier used in stored rules (e.g. "archive_type").
	Key string `json:"key"`

	// Label is the human-readable name shown in admin choice lists.
	Label string `json:"label"`

	// Group clusters categories in the admin surface ("content", "archive", "user", ...).
	Group string `json:"group,omitempty"`

	// MultiSelect marks categories whose end is edited as a list.
	MultiSelect bool `json:"multi_select,omitempty"`

	// Options lists the known end values. Categories whose values are
	// open-ended (ids, slugs) leave it empty.
	Options []Option `json:"options,omitempty"`

	// Contributor names the collaborator that registered the category.
	Contributor string `json:"contributor,omitempty"`

	// Accessor reads the category from a request context.
	Accessor Accessor `json:"-"`
}

// Renderers are the richer-fragment collaborators a tag may call.
type Renderers interface {
	// Avatar renders avatar markup for a person.
	Avatar(person *request.Person) string
}

// TagFunc computes the value of a tag. ok is false when the context carries no
// value, in which case the token is left literal.
type TagFunc func(ctx *request.Context, r Renderers) (value string, ok bool)

// Tag is one magic tag token.
type Tag struct {
	// Name is the token name without braces.
	Name string `json:"name"`

	// Markup marks values that are already markup and must not be escaped.
	Markup bool `json:"markup,omitempty"`

	// Resolve computes the value.
	Resolve TagFunc `json:"-"`
}

// Token returns the literal token text, e.g. "{author}".
func (t Tag) Token() string {
	return "{" + t.Name + "}"
}

// Contributor registers optional categories and tags.
type Contributor interface {
	// Name identifies the contributor (also the request extension key it reads).
	Name() string

	// Contribute registers categories and tags into the registry.
	Contribute(r *Registry) error
}
