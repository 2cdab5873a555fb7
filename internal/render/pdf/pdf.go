// Package pdf draws documents onto fixed A4 pages with the fpdf core fonts.
// Nothing is fetched at render time: fonts map to Helvetica, Times or Courier and
// only inline photo data is decoded.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"resumeforge/internal/document"
	"resumeforge/internal/templates"
)

// Result is a rendered PDF and its page count.
type Result struct {
	Data  []byte
	Pages int
}

const DefaultWatermark = "DRAFT"

type Option func(*Renderer)

// WithCompression toggles stream compression. Uncompressed output is handy for inspection.
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

func WithWatermark(text string) Option {
	return func(r *Renderer) {
		if text != "" {
			r.watermark = text
		}
	}
}

// WithClock fixes the creation timestamp source, e.g. for reproducible output.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

type Renderer struct {
	compress  bool
	watermark string
	now       func() time.Time
}

func New(opts ...Option) *Renderer {
	r := &Renderer{compress: true, watermark: DefaultWatermark, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws view onto A4 pages. Content that does not fit flows onto new pages.
func (r *Renderer) Render(view document.View, cfg templates.Config) (Result, error) {
	d := newDoc(cfg, view.Scale)

	ts := r.now()
	d.pdf.SetCompression(r.compress)
	d.pdf.SetCatalogSort(true)
	d.pdf.SetCreationDate(ts)
	d.pdf.SetModificationDate(ts)
	d.pdf.SetTitle(view.Title, true)
	d.pdf.SetCreator("resumeforge", true)

	watermark := ""
	if view.Watermark {
		watermark = r.watermark
	}
	d.pdf.SetHeaderFunc(func() { d.pageBackground(watermark) })

	d.pdf.AddPage()
	if view.Letter != nil {
		d.letter(*view.Letter, view.Separator)
	} else {
		for _, s := range view.Sections {
			d.section(s)
		}
	}

	if d.pdf.Err() {
		return Result{}, fmt.Errorf("draw pdf: %w", d.pdf.Error())
	}
	pages := d.pdf.PageCount()

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return Result{}, fmt.Errorf("write pdf: %w", err)
	}
	return Result{Data: buf.Bytes(), Pages: pages}, nil
}

func (d *doc) section(s document.Section) {
	switch body := s.Body.(type) {
	case document.HeaderBody:
		d.header(body)
	case document.SummaryBody:
		d.sectionTitle(s.Title)
		d.blocks(body.Blocks)
	case document.ExperienceBody:
		d.sectionTitle(s.Title)
		d.experience(body)
	case document.EducationBody:
		d.sectionTitle(s.Title)
		d.education(body)
	case document.SkillsBody:
		d.sectionTitle(s.Title)
		d.skills(body)
	case document.ProjectsBody:
		d.sectionTitle(s.Title)
		d.projects(body)
	case document.CertificationsBody:
		d.sectionTitle(s.Title)
		d.certifications(body)
	default:
		return
	}
	d.pdf.Ln(d.gap(3))
}

// newFpdf 创建 A4 / 毫米单位的文档并开启自动分页。
func newFpdf() *fpdf.Fpdf {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetMargins(marginLeft, marginTop, marginRight)
	p.SetAutoPageBreak(true, marginBottom)
	return p
}
