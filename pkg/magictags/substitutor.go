package magictags

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"mercator-hq/placement/pkg/request"
	"mercator-hq/placement/pkg/vocabulary"
)

// DefaultAvatarSize is the avatar edge length in pixels.
const DefaultAvatarSize = 32

// TagSource supplies the tags exposed by a matched pair.
// *vocabulary.Registry implements it.
type TagSource interface {
	Tags(p vocabulary.Pair) []vocabulary.Tag
}

// AvatarRenderer renders avatar markup for a person at a given size.
type AvatarRenderer interface {
	Avatar(person *request.Person, size int) string
}

// AvatarRendererFunc adapts a function to AvatarRenderer.
type AvatarRendererFunc func(person *request.Person, size int) string

// Avatar implements AvatarRenderer.
func (f AvatarRendererFunc) Avatar(person *request.Person, size int) string {
	return f(person, size)
}

// ImageAvatar renders an <img> element from the person's avatar URL.
func ImageAvatar(person *request.Person, size int) string {
	if person == nil || person.AvatarURL == "" {
		return ""
	}
	return fmt.Sprintf(`<img src="%s" alt="%s" width="%d" height="%d" class="avatar avatar-%d">`,
		html.EscapeString(person.AvatarURL),
		html.EscapeString(person.DisplayName),
		size, size, size,
	)
}

// Observer is notified of substituted roots.
type Observer interface {
	Substituted(root string, tokens int)
}

// Config configures a Substitutor.
type Config struct {
	// AvatarSize defaults to DefaultAvatarSize.
	AvatarSize int

	// Avatars defaults to ImageAvatar.
	Avatars AvatarRenderer

	Observer Observer
	Logger   *slog.Logger
}

// Substitutor rewrites magic tags. It is safe for concurrent use.
type Substitutor struct {
	tags      TagSource
	renderers renderers
	observer  Observer
	logger    *slog.Logger
}

// New creates a substitutor. cfg may be nil.
func New(tags TagSource, cfg *Config) *Substitutor {
	if cfg == nil {
		cfg = &Config{}
	}
	size := cfg.AvatarSize
	if size <= 0 {
		size = DefaultAvatarSize
	}
	avatars := cfg.Avatars
	if avatars == nil {
		avatars = AvatarRendererFunc(ImageAvatar)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Substitutor{
		tags:      tags,
		renderers: renderers{avatars: avatars, size: size},
		observer:  cfg.Observer,
		logger:    logger,
	}
}

// Substitute replaces the tokens exposed by pairs in body with their values
// for ctx. When several pairs expose the same token, the first one that
// resolves wins.
func (s *Substitutor) Substitute(body string, pairs []vocabulary.Pair, ctx *request.Context) string {
	if body == "" || len(pairs) == 0 || !strings.Contains(body, "{") {
		return body
	}

	var oldnew []string
	seen := make(map[string]bool)
	perRoot := make(map[string]int)

	for _, p := range pairs {
		for _, tag := range s.tags.Tags(p) {
			token := tag.Token()
			if seen[token] || !strings.Contains(body, token) || tag.Resolve == nil {
				continue
			}
			// Unresolved tokens stay open for a later pair.
			value, ok := s.resolve(tag, ctx)
			if !ok {
				continue
			}
			seen[token] = true
			if !tag.Markup {
				value = html.EscapeString(value)
			}
			oldnew = append(oldnew, token, value)
			perRoot[p.Root]++
		}
	}

	if len(oldnew) == 0 {
		return body
	}

	if s.observer != nil {
		for root, n := range perRoot {
			s.observer.Substituted(root, n)
		}
	}
	return strings.NewReplacer(oldnew...).Replace(body)
}

// Available returns the tags exposed by pairs, deduplicated by token in
// first-definer order.
func (s *Substitutor) Available(pairs []vocabulary.Pair) []vocabulary.Tag {
	var out []vocabulary.Tag
	seen := make(map[string]bool)
	for _, p := range pairs {
		for _, tag := range s.tags.Tags(p) {
			if seen[tag.Name] {
				continue
			}
			seen[tag.Name] = true
			out = append(out, tag)
		}
	}
	return out
}

// resolve calls a tag function, treating a panic as an unresolved token.
func (s *Substitutor) resolve(tag vocabulary.Tag, ctx *request.Context) (value string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("magic tag panicked", "tag", tag.Name, "panic", r)
			value, ok = "", false
		}
	}()
	return tag.Resolve(ctx, s.renderers)
}

type renderers struct {
	avatars AvatarRenderer
	size    int
}

func (r renderers) Avatar(person *request.Person) string {
	return r.avatars.Avatar(person, r.size)
}
