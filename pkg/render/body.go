package render

import (
	"context"

	"mercator-hq/placement/pkg/builder"
	"mercator-hq/placement/pkg/layout"
)

// BodyRenderer produces the markup of a layout built with one editor.
type BodyRenderer interface {
	RenderBody(ctx context.Context, l *layout.Layout) (string, error)
}

// BodyRendererFunc adapts a function to BodyRenderer.
type BodyRendererFunc func(ctx context.Context, l *layout.Layout) (string, error)

// RenderBody implements BodyRenderer.
func (f BodyRendererFunc) RenderBody(ctx context.Context, l *layout.Layout) (string, error) {
	return f(ctx, l)
}

// RawBody returns the stored body unchanged.
var RawBody = BodyRendererFunc(func(_ context.Context, l *layout.Layout) (string, error) {
	return l.Body, nil
})

// dispatch selects the renderer for an origin, falling back to the default
// origin's renderer and then to RawBody.
func dispatch(renderers map[builder.Origin]BodyRenderer, origin builder.Origin) BodyRenderer {
	if r, ok := renderers[origin]; ok && r != nil {
		return r
	}
	if r, ok := renderers[builder.Default]; ok && r != nil {
		return r
	}
	return RawBody
}
