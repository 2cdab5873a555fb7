// Package render 把模板解析、文档适配与两个渲染后端串联起来。
package render

import (
	"fmt"
	"strings"

	"resumeforge/internal/document"
	"resumeforge/internal/render/pdf"
	"resumeforge/internal/render/preview"
	"resumeforge/internal/templates"
)

// Renderer is a backend that turns a prepared view into output of type T.
// Implementations hold no per-call state and are safe for concurrent use.
type Renderer[T any] interface {
	Render(view document.View, cfg templates.Config) (T, error)
}

var (
	_ Renderer[preview.Markup] = (*preview.Renderer)(nil)
	_ Renderer[pdf.Result]     = (*pdf.Renderer)(nil)
)

// Engine resolves templates against a catalog and drives both backends.
type Engine struct {
	catalog   *templates.Catalog
	preview   Renderer[preview.Markup]
	pdf       Renderer[pdf.Result]
	defaultID string
}

func NewEngine(catalog *templates.Catalog, pdfOpts ...pdf.Option) *Engine {
	return &Engine{
		catalog: catalog,
		preview: preview.New(),
		pdf:     pdf.New(pdfOpts...),
	}
}

// WithDefaultTemplate returns a copy of e that uses id for inputs naming no template.
func (e *Engine) WithDefaultTemplate(id string) *Engine {
	cp := *e
	cp.defaultID = strings.TrimSpace(id)
	return &cp
}

func (e *Engine) templateID(in document.Input) string {
	if id := in.Template(); id != "" {
		return id
	}
	return e.defaultID
}

func (e *Engine) Catalog() *templates.Catalog {
	return e.catalog
}

// Config resolves the template for in without failing.
func (e *Engine) Config(in document.Input) templates.Config {
	return e.catalog.Resolve(e.templateID(in), in.Overrides, in.Preferences())
}

// Preview renders interactive markup. Template problems silently fall back to defaults.
func (e *Engine) Preview(in document.Input) (preview.Markup, error) {
	return run(e.preview, in, e.Config(in))
}

// RenderToBuffer renders a PDF. Unlike Preview it refuses to fall back to built-in
// defaults when the catalog cannot supply a template.
func (e *Engine) RenderToBuffer(in document.Input) (pdf.Result, error) {
	id := e.templateID(in)
	cfg, err := e.catalog.ResolveStrict(id, in.Overrides, in.Preferences())
	if err != nil {
		return pdf.Result{}, fmt.Errorf("resolve template %q: %w", id, err)
	}
	return run(e.pdf, in, cfg)
}

func run[T any](r Renderer[T], in document.Input, cfg templates.Config) (T, error) {
	var zero T
	view, err := document.Prepare(in, cfg)
	if err != nil {
		return zero, err
	}
	out, err := r.Render(view, cfg)
	if err != nil {
		return zero, fmt.Errorf("render %s: %w", in.Type, err)
	}
	return out, nil
}
