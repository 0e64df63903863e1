package render

import (
	"context"
	"errors"

	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/layout/store"
)

// Translator maps a resolved layout to its translation for a language.
// Implementations return the original layout when no translation applies.
type Translator interface {
	Translate(ctx context.Context, l *layout.Layout, language string) (*layout.Layout, error)
}

// StoreTranslator looks translations up in a store through the layout's
// translations map.
type StoreTranslator struct {
	Store store.Reader
}

// Translate implements Translator.
func (t StoreTranslator) Translate(ctx context.Context, l *layout.Layout, language string) (*layout.Layout, error) {
	if language == "" || l.Language == language || len(l.Translations) == 0 {
		return l, nil
	}
	id, ok := l.Translations[language]
	if !ok || id == "" || id == l.ID {
		return l, nil
	}

	translated, err := t.Store.GetLayout(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}
	return translated, nil
}
