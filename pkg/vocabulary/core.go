package vocabulary

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"mercator-hq/placement/pkg/request"
)

// Core category keys.
const (
	RootPostType        = "post_type"
	RootPost            = "post"
	RootPage            = "page"
	RootPageType        = "page_type"
	RootPageTemplate    = "page_template"
	RootPostTaxonomy    = "post_taxonomy"
	RootPostAuthor      = "post_author"
	RootArchiveTaxonomy = "archive_taxonomy"
	RootArchiveTerm     = "archive_term"
	RootArchiveType     = "archive_type"
	RootArchiveAuthor   = "archive_author"
	RootUserStatus      = "user_status"
	RootUserRole        = "user_role"
	RootUser            = "user"
)

// User status end values.
const (
	StatusLoggedIn  = "logged_in"
	StatusLoggedOut = "logged_out"
)

// RegisterCore registers the built-in categories, tags and sidebar positions.
func RegisterCore(r *Registry) error {
	categories := []Category{
		{
			Key:      RootPostType,
			Label:    "Post Type",
			Group:    "content",
			Options:  []Option{{Value: "post", Label: "Posts"}, {Value: "page", Label: "Pages"}},
			Accessor: singular(func(c *request.Content) []string { return one(c.Type) }),
		},
		{
			Key:         RootPost,
			Label:       "Post",
			Group:       "content",
			MultiSelect: true,
			Accessor:    singularOfType("post"),
		},
		{
			Key:         RootPage,
			Label:       "Page",
			Group:       "content",
			MultiSelect: true,
			Accessor:    singularOfType("page"),
		},
		{
			Key:   RootPageType,
			Label: "Page Type",
			Group: "content",
			Options: []Option{
				{Value: string(request.PageFrontPage), Label: "Front Page"},
				{Value: string(request.PagePosts), Label: "Posts Page"},
				{Value: string(request.PageNotFound), Label: "404 Page"},
				{Value: string(request.PageSearch), Label: "Search Page"},
			},
			Accessor: func(ctx *request.Context) ([]string, bool) {
				if ctx == nil {
					return nil, false
				}
				return one(string(ctx.Page)), true
			},
		},
		{
			Key:      RootPageTemplate,
			Label:    "Page Template",
			Group:    "content",
			Accessor: singular(func(c *request.Content) []string { return one(c.Template) }),
		},
		{
			Key:         RootPostTaxonomy,
			Label:       "Post Taxonomy",
			Group:       "content",
			MultiSelect: true,
			Accessor: singular(func(c *request.Content) []string {
				var out []string
				for taxonomy, slugs := range c.Terms {
					for _, slug := range slugs {
						out = append(out, TermValue(taxonomy, slug))
					}
				}
				return out
			}),
		},
		{
			Key:         RootPostAuthor,
			Label:       "Post Author",
			Group:       "content",
			MultiSelect: true,
			Accessor:    singular(func(c *request.Content) []string { return one(c.AuthorID) }),
		},
		{
			Key:   RootArchiveTaxonomy,
			Label: "Archive Taxonomy",
			Group: "archive",
			Options: []Option{
				{Value: "category", Label: "Categories"},
				{Value: "post_tag", Label: "Tags"},
			},
			Accessor: func(ctx *request.Context) ([]string, bool) {
				if ctx == nil {
					return nil, false
				}
				if ctx.Term == nil {
					return nil, true
				}
				return one(ctx.Term.Taxonomy), true
			},
		},
		{
			Key:         RootArchiveTerm,
			Label:       "Archive Term",
			Group:       "archive",
			MultiSelect: true,
			Accessor: func(ctx *request.Context) ([]string, bool) {
				if ctx == nil {
					return nil, false
				}
				if ctx.Term == nil {
					return nil, true
				}
				return one(TermValue(ctx.Term.Taxonomy, ctx.Term.Slug)), true
			},
		},
		{
			Key:   RootArchiveType,
			Label: "Archive Type",
			Group: "archive",
			Options: []Option{
				{Value: "author", Label: "Author Archive"},
				{Value: "date", Label: "Date Archive"},
				{Value: "post_type", Label: "Post Type Archive"},
			},
			Accessor: func(ctx *request.Context) ([]string, bool) {
				if ctx == nil {
					return nil, false
				}
				if ctx.Archive == nil {
					return nil, true
				}
				return one(ctx.Archive.Kind), true
			},
		},
		{
			Key:         RootArchiveAuthor,
			Label:       "Archive Author",
			Group:       "archive",
			MultiSelect: true,
			Accessor: func(ctx *request.Context) ([]string, bool) {
				if ctx == nil {
					return nil, false
				}
				if ctx.Archive == nil || ctx.Archive.Kind != "author" || ctx.Author == nil {
					return nil, true
				}
				return one(ctx.Author.ID), true
			},
		},
		{
			Key:   RootUserStatus,
			Label: "User Status",
			Group: "user",
			Options: []Option{
				{Value: StatusLoggedIn, Label: "Logged In"},
				{Value: StatusLoggedOut, Label: "Logged Out"},
			},
			Accessor: func(ctx *request.Context) ([]string, bool) {
				if ctx == nil {
					return nil, false
				}
				if ctx.LoggedIn() {
					return one(StatusLoggedIn), true
				}
				return one(StatusLoggedOut), true
			},
		},
		{
			Key:         RootUserRole,
			Label:       "User Role",
			Group:       "user",
			MultiSelect: true,
			Options: []Option{
				{Value: "administrator", Label: "Administrator"},
				{Value: "editor", Label: "Editor"},
				{Value: "author", Label: "Author"},
				{Value: "contributor", Label: "Contributor"},
				{Value: "subscriber", Label: "Subscriber"},
			},
			Accessor: func(ctx *request.Context) ([]string, bool) {
				if ctx == nil {
					return nil, false
				}
				return ctx.VisitorRoles(), true
			},
		},
		{
			Key:         RootUser,
			Label:       "User",
			Group:       "user",
			MultiSelect: true,
			Accessor: func(ctx *request.Context) ([]string, bool) {
				if ctx == nil {
					return nil, false
				}
				if !ctx.LoggedIn() {
					return nil, true
				}
				return one(ctx.Visitor.ID), true
			},
		},
	}

	for _, c := range categories {
		c.Contributor = "core"
		if err := r.RegisterCategory(c); err != nil {
			return err
		}
	}

	if err := registerCoreTags(r); err != nil {
		return err
	}

	return r.AddSidebarPosition(Option{Value: "blog", Label: "Blog"})
}

func registerCoreTags(r *Registry) error {
	termTags := []Tag{
		{Name: "title", Resolve: termField(func(t *request.Term) string { return t.Name })},
		{Name: "description", Resolve: termField(func(t *request.Term) string { return t.Description })},
	}
	archiveTags := []Tag{
		{Name: "archive_title", Resolve: archiveField(func(a *request.Archive) string { return a.Title })},
		{Name: "archive_description", Resolve: archiveField(func(a *request.Archive) string { return a.Description })},
	}
	userTags := []Tag{
		{Name: "user_nicename", Resolve: visitorField(func(p *request.Person) string { return p.Nicename })},
		{Name: "display_name", Resolve: visitorField(func(p *request.Person) string { return p.DisplayName })},
		{Name: "user_email", Resolve: visitorField(func(p *request.Person) string { return p.Email })},
	}

	registrations := []struct {
		pair Pair
		tags []Tag
	}{
		{Pair{RootArchiveTaxonomy, "category"}, termTags},
		{Pair{RootArchiveTaxonomy, "post_tag"}, termTags},
		{Pair{RootArchiveTaxonomy, GeneralEnd}, archiveTags},
		{Pair{RootArchiveType, "author"}, []Tag{
			{Name: "author", Resolve: authorField(func(p *request.Person) string { return p.DisplayName })},
			{Name: "author_description", Resolve: authorField(func(p *request.Person) string { return p.Description })},
			{Name: "author_url", Resolve: authorField(func(p *request.Person) string { return p.URL })},
			{Name: "author_name", Resolve: authorField(func(p *request.Person) string { return p.DisplayName })},
			{Name: "author_bio", Resolve: authorField(func(p *request.Person) string { return p.Description })},
			{Name: "author_avatar", Markup: true, Resolve: func(ctx *request.Context, rr Renderers) (string, bool) {
				if ctx == nil || ctx.Author == nil || rr == nil {
					return "", false
				}
				markup := rr.Avatar(ctx.Author)
				return markup, markup != ""
			}},
		}},
		{Pair{RootArchiveType, "date"}, []Tag{
			{Name: "date", Resolve: archiveField(func(a *request.Archive) string { return a.Title })},
		}},
		{Pair{RootArchiveType, GeneralEnd}, append(archiveTags, Tag{
			Name: "archive_url", Resolve: archiveField(func(a *request.Archive) string { return a.URL }),
		})},
		{Pair{RootPostType, GeneralEnd}, []Tag{
			{Name: "current_single_title", Resolve: contentField(func(c *request.Content) string { return c.Title })},
			{Name: "current_single_excerpt", Resolve: contentField(func(c *request.Content) string { return c.Excerpt })},
			{Name: "current_single_content", Markup: true, Resolve: contentField(func(c *request.Content) string { return c.Body })},
			{Name: "current_single_url", Resolve: contentField(func(c *request.Content) string { return c.URL })},
			{Name: "meta_category", Resolve: contentField(func(c *request.Content) string {
				return strings.Join(c.Terms["category"], ", ")
			})},
			{Name: "meta_comments", Resolve: contentField(commentsText)},
			{Name: "meta_time_to_read", Resolve: contentField(func(c *request.Content) string {
				if c.Body == "" {
					return ""
				}
				return fmt.Sprintf("%d min read", readingMinutes(c.Body))
			})},
			{Name: "meta_date", Resolve: contentField(func(c *request.Content) string {
				if c.Date.IsZero() {
					return ""
				}
				return c.Date.Format("January 2, 2006")
			})},
			{Name: "meta_author", Resolve: func(ctx *request.Context, _ Renderers) (string, bool) {
				if ctx == nil || ctx.Author == nil || ctx.Author.DisplayName == "" {
					return "", false
				}
				return ctx.Author.DisplayName, true
			}},
		}},
		{Pair{RootUserStatus, GeneralEnd}, userTags},
		{Pair{RootUserRole, GeneralEnd}, userTags},
		{Pair{RootUser, GeneralEnd}, userTags},
	}

	for _, reg := range registrations {
		if err := r.RegisterTags(reg.pair, reg.tags...); err != nil {
			return err
		}
	}
	return nil
}

// TermValue encodes a term reference as used by term-valued categories.
func TermValue(taxonomy, slug string) string {
	return taxonomy + ":" + slug
}

func one(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// singular builds an accessor that reads the current content item on
// singular pages and yields no values elsewhere.
func singular(read func(c *request.Content) []string) Accessor {
	return func(ctx *request.Context) ([]string, bool) {
		if ctx == nil {
			return nil, false
		}
		if ctx.Content == nil {
			return nil, true
		}
		return read(ctx.Content), true
	}
}

func singularOfType(contentType string) Accessor {
	return singular(func(c *request.Content) []string {
		if c.Type != contentType {
			return nil
		}
		return one(c.ID)
	})
}

func nonEmpty(v string) (string, bool) {
	return v, v != ""
}

func termField(read func(t *request.Term) string) TagFunc {
	return func(ctx *request.Context, _ Renderers) (string, bool) {
		if ctx == nil || ctx.Term == nil {
			return "", false
		}
		return nonEmpty(read(ctx.Term))
	}
}

func archiveField(read func(a *request.Archive) string) TagFunc {
	return func(ctx *request.Context, _ Renderers) (string, bool) {
		if ctx == nil || ctx.Archive == nil {
			return "", false
		}
		return nonEmpty(read(ctx.Archive))
	}
}

func authorField(read func(p *request.Person) string) TagFunc {
	return func(ctx *request.Context, _ Renderers) (string, bool) {
		if ctx == nil || ctx.Author == nil {
			return "", false
		}
		return nonEmpty(read(ctx.Author))
	}
}

func visitorField(read func(p *request.Person) string) TagFunc {
	return func(ctx *request.Context, _ Renderers) (string, bool) {
		if !ctx.LoggedIn() {
			return "", false
		}
		return nonEmpty(read(ctx.Visitor))
	}
}

func contentField(read func(c *request.Content) string) TagFunc {
	return func(ctx *request.Context, _ Renderers) (string, bool) {
		if ctx == nil || ctx.Content == nil {
			return "", false
		}
		return nonEmpty(read(ctx.Content))
	}
}

// wordsPerMinute is the reading speed used by meta_time_to_read.
const wordsPerMinute = 200

// readingMinutes estimates the reading time of markup, counting only
// text content. The result is at least one minute.
func readingMinutes(markup string) int {
	words := 0
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return max(1, (words+wordsPerMinute-1)/wordsPerMinute)
		case html.TextToken:
			words += len(strings.Fields(string(z.Text())))
		}
	}
}

func commentsText(c *request.Content) string {
	switch c.CommentCount {
	case 0:
		return "No Comments"
	case 1:
		return "1 Comment"
	default:
		return fmt.Sprintf("%d Comments", c.CommentCount)
	}
}
