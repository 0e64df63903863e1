package request

import (
	"context"
	"encoding/json"
	"slices"
	"time"
)

// PageKind identifies the kind of page being rendered.
type PageKind string

const (
	PageSingular  PageKind = "singular"
	PageFrontPage PageKind = "front_page"
	PagePosts     PageKind = "posts_page"
	PageArchive   PageKind = "archive"
	PageSearch    PageKind = "search"
	PageNotFound  PageKind = "not_found"
)

// Content is the content item currently being displayed.
type Content struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"`
	Title    string              `json:"title,omitempty"`
	Excerpt  string              `json:"excerpt,omitempty"`
	URL      string              `json:"url,omitempty"`
	AuthorID string              `json:"author_id,omitempty"`
	Template string              `json:"template,omitempty"`
	Date     time.Time           `json:"date,omitempty"`
	Terms    map[string][]string `json:"terms,omitempty"`

	// Body is the rendered content markup.
	Body         string `json:"body,omitempty"`
	CommentCount int    `json:"comment_count,omitempty"`
}

// Term is the queried taxonomy term on taxonomy archives.
type Term struct {
	Taxonomy    string `json:"taxonomy"`
	Slug        string `json:"slug"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Archive describes the queried archive.
type Archive struct {
	// Kind is the archive type: "author", "date", "post_type", "taxonomy".
	Kind        string `json:"kind"`
	PostType    string `json:"post_type,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Person is an author or an authenticated visitor.
type Person struct {
	ID          string   `json:"id"`
	Login       string   `json:"login,omitempty"`
	Nicename    string   `json:"nicename,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// Context is the immutable snapshot a single resolution is evaluated against.
// Nil pointers mean the request has no such element (e.g. Visitor is nil for
// anonymous visitors).
type Context struct {
	Page     PageKind  `json:"page,omitempty"`
	Content  *Content  `json:"content,omitempty"`
	Term     *Term     `json:"term,omitempty"`
	Archive  *Archive  `json:"archive,omitempty"`
	Author   *Person   `json:"author,omitempty"`
	Visitor  *Person   `json:"visitor,omitempty"`
	Language string    `json:"language,omitempty"`
	Now      time.Time `json:"now,omitempty"`

	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// Provider supplies the request context for the current request.
type Provider interface {
	Context(ctx context.Context) (*Context, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (*Context, error)

// Context implements Provider.
func (f ProviderFunc) Context(ctx context.Context) (*Context, error) {
	return f(ctx)
}

// LoggedIn reports whether the visitor is authenticated.
func (c *Context) LoggedIn() bool {
	return c != nil && c.Visitor != nil && c.Visitor.ID != ""
}

// VisitorRoles returns a copy of the visitor's roles.
func (c *Context) VisitorRoles() []string {
	if !c.LoggedIn() {
		return nil
	}
	return slices.Clone(c.Visitor.Roles)
}

// Extension decodes the extension payload registered under name into out.
// It returns false when the payload is absent or cannot be decoded.
func (c *Context) Extension(name string, out any) bool {
	if c == nil || c.Extensions == nil {
		return false
	}
	raw, ok := c.Extensions[name]
	if !ok || len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// HasExtension reports whether a payload is registered under name.
func (c *Context) HasExtension(name string) bool {
	if c == nil || c.Extensions == nil {
		return false
	}
	_, ok := c.Extensions[name]
	return ok
}

// Time returns the evaluation instant, falling back to the wall clock.
func (c *Context) Time() time.Time {
	if c == nil || c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

// Decode parses a JSON-encoded context.
func Decode(data []byte) (*Context, error) {
	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
