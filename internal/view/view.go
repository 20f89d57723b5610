// Package view renders the HTML pages of the photo app.
//
// Pages are html/template files embedded in the binary. Each view is parsed
// together with layout.html and exposed as a templ.Component.
package view

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	ViewIndex = "index"
	ViewAdd   = "add"
)

var ErrUnknownView = errors.New("unknown view")

// Data is the mapping handed to a view.
type Data map[string]any

// Renderer renders a named view with the given data.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, view string, data Data) error
}

type templateRenderer struct {
	views map[string]*template.Template
}

// New parses every view from the embedded templates.
func New() (Renderer, error) {
	views := make(map[string]*template.Template)
	for _, name := range []string{ViewIndex, ViewAdd} {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", name, err)
		}
		views[name] = t
	}
	return &templateRenderer{views: views}, nil
}

// Component returns the templ.Component for view.
func (r *templateRenderer) Component(view string, data Data) (templ.Component, error) {
	t, ok := r.views[view]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	return templ.FromGoHTML(t, data), nil
}

func (r *templateRenderer) Render(ctx context.Context, w io.Writer, view string, data Data) error {
	c, err := r.Component(view, data)
	if err != nil {
		return err
	}
	return c.Render(ctx, w)
}
