// Package multilingual contributes the language category to a vocabulary
// registry.
package multilingual

import (
	"mercator-hq/placement/pkg/request"
	"mercator-hq/placement/pkg/vocabulary"
)

// RootLanguage is the category matching the request language.
const RootLanguage = "language"

// Contributor registers the language category.
type Contributor struct {
	languages []vocabulary.Option
}

// New creates a multilingual contributor offering the given language codes.
func New(languages ...string) *Contributor {
	opts := make([]vocabulary.Option, 0, len(languages))
	for _, lang := range languages {
		opts = append(opts, vocabulary.Option{Value: lang, Label: lang})
	}
	return &Contributor{languages: opts}
}

// Name implements vocabulary.Contributor.
func (c *Contributor) Name() string {
	return "multilingual"
}

// Contribute implements vocabulary.Contributor.
func (c *Contributor) Contribute(r *vocabulary.Registry) error {
	err := r.RegisterCategory(vocabulary.Category{
		Key:         RootLanguage,
		Label:       "Language",
		Group:       "content",
		MultiSelect: true,
		Options:     c.languages,
		Contributor: c.Name(),
		Accessor: func(ctx *request.Context) ([]string, bool) {
			// A request without a language cannot be evaluated.
			if ctx == nil || ctx.Language == "" {
				return nil, false
			}
			return []string{ctx.Language}, true
		},
	})
	if err != nil {
		return err
	}

	return r.RegisterTags(vocabulary.Pair{Root: RootLanguage, End: vocabulary.GeneralEnd},
		vocabulary.Tag{Name: "language", Resolve: func(ctx *request.Context, _ vocabulary.Renderers) (string, bool) {
			if ctx == nil || ctx.Language == "" {
				return "", false
			}
			return ctx.Language, true
		}},
	)
}
