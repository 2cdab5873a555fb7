// Package preview renders documents as self-contained HTML for on-screen display and
// for the thumbnail capture worker.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"resumeforge/internal/document"
	"resumeforge/internal/richtext"
	"resumeforge/internal/templates"
)

// Markup is a complete HTML document.
type Markup string

const DefaultWatermark = "DRAFT"

type Option func(*Renderer)

// WithWatermark sets the text shown when a document asks for a watermark.
func WithWatermark(text string) Option {
	return func(r *Renderer) {
		if text = strings.TrimSpace(text); text != "" {
			r.watermark = text
		}
	}
}

type Renderer struct {
	tmpl      *template.Template
	watermark string
}

func New(opts ...Option) *Renderer {
	r := &Renderer{watermark: DefaultWatermark}
	for _, opt := range opts {
		opt(r)
	}
	r.tmpl = template.Must(template.New("page").Funcs(template.FuncMap{
		"inline":   inline,
		"photoSrc": photoSrc,
		"href":     document.LinkURL,
		"initials": document.Initials,
		"join":     func(sep string, items []string) string { return strings.Join(items, sep) },
	}).Parse(pageTemplate))
	template.Must(r.tmpl.Parse(bodyTemplates))
	return r
}

type page struct {
	Title        string
	Kind         document.Kind
	Style        template.CSS
	Layout       templates.Layout
	HeaderStyle  templates.HeaderStyle
	SectionStyle templates.SectionStyle
	Ornament     templates.Ornament
	Watermark    string
	Cards        bool
	Regions      []region
	Letter       *letterView
}

type region struct {
	Name   string
	Blocks []block
}

type block struct {
	ID    string
	Type  document.SectionType
	Title string
	HTML  template.HTML
}

type letterView struct {
	*document.Letter
	Separator    document.Separator
	HasRecipient bool
}

// Render builds the HTML page for view using cfg.
func (r *Renderer) Render(view document.View, cfg templates.Config) (Markup, error) {
	p := page{
		Title:        view.Title,
		Kind:         view.Kind,
		Style:        stylesheet(cfg, view.Scale),
		Layout:       cfg.Layout,
		HeaderStyle:  cfg.HeaderStyle,
		SectionStyle: cfg.SectionStyle,
		Ornament:     cfg.Ornament,
		Cards:        cfg.Layout == templates.LayoutCards,
	}
	if p.Ornament == "" {
		p.Ornament = templates.OrnamentNone
	}
	if view.Watermark {
		p.Watermark = r.watermark
	}

	if view.Letter != nil {
		rc := view.Letter.Recipient
		p.Letter = &letterView{
			Letter:       view.Letter,
			Separator:    view.Separator,
			HasRecipient: rc.ManagerName != "" || rc.Company != "" || len(rc.AddressLines()) > 0,
		}
	} else {
		blocks := make([]block, 0, len(view.Sections))
		for _, s := range view.Sections {
			html, err := r.section(s)
			if err != nil {
				return "", err
			}
			blocks = append(blocks, block{ID: s.ID, Type: s.Type, Title: s.Title, HTML: html})
		}
		p.Regions = arrange(cfg.Layout, blocks)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page", p); err != nil {
		return "", fmt.Errorf("execute page template: %w", err)
	}
	return Markup(buf.String()), nil
}

// section renders one section body with the sub-template for its variant.
func (r *Renderer) section(s document.Section) (template.HTML, error) {
	var name string
	switch s.Body.(type) {
	case document.HeaderBody:
		name = "header"
	case document.SummaryBody:
		name = "summary"
	case document.ExperienceBody:
		name = "experience"
	case document.EducationBody:
		name = "education"
	case document.SkillsBody:
		name = "skills"
	case document.ProjectsBody:
		name = "projects"
	case document.CertificationsBody:
		name = "certifications"
	default:
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, s.Body); err != nil {
		return "", fmt.Errorf("execute %s template: %w", name, err)
	}
	// 子模板输出已经过 html/template 上下文转义
	return template.HTML(buf.String()), nil
}

var (
	sidebarSide = map[document.SectionType]bool{
		document.SectionBasics:         true,
		document.SectionSkills:         true,
		document.SectionCertifications: true,
	}
	splitRight = map[document.SectionType]bool{
		document.SectionSkills:         true,
		document.SectionEducation:      true,
		document.SectionCertifications: true,
	}
)

// arrange groups blocks into layout regions. Within a region the caller's section
// order is kept; which region a section lands in is fixed by the layout.
func arrange(layout templates.Layout, blocks []block) []region {
	switch layout {
	case templates.LayoutSidebarLeft, templates.LayoutSidebarRight:
		side, main := partition(blocks, func(b block) bool { return sidebarSide[b.Type] })
		if layout == templates.LayoutSidebarLeft {
			return []region{{Name: "side", Blocks: side}, {Name: "main", Blocks: main}}
		}
		return []region{{Name: "main", Blocks: main}, {Name: "side", Blocks: side}}
	case templates.LayoutSplit:
		header, rest := partition(blocks, isHeader)
		right, left := partition(rest, func(b block) bool { return splitRight[b.Type] })
		return []region{{Name: "header", Blocks: header}, {Name: "left", Blocks: left}, {Name: "right", Blocks: right}}
	case templates.LayoutCards:
		header, rest := partition(blocks, isHeader)
		return []region{{Name: "header", Blocks: header}, {Name: "cards", Blocks: rest}}
	default:
		return []region{{Name: "main", Blocks: blocks}}
	}
}

func isHeader(b block) bool { return b.Type == document.SectionBasics }

func partition(blocks []block, in func(block) bool) (yes, no []block) {
	for _, b := range blocks {
		if in(b) {
			yes = append(yes, b)
		} else {
			no = append(no, b)
		}
	}
	return yes, no
}

// inline 把行内强调标记转换为 <strong>/<em>/<u>，其余文本做 HTML 转义，换行转为 <br>。
func inline(s string) template.HTML {
	var b strings.Builder
	for _, sp := range richtext.Spans(s) {
		text := strings.ReplaceAll(template.HTMLEscapeString(sp.Text), "\n", "<br>")
		if sp.Underline {
			text = "<u>" + text + "</u>"
		}
		if sp.Italic {
			text = "<em>" + text + "</em>"
		}
		if sp.Bold {
			text = "<strong>" + text + "</strong>"
		}
		b.WriteString(text)
	}
	return template.HTML(b.String())
}

// photoSrc accepts inline image data and http(s) URLs; anything else yields the placeholder.
func photoSrc(photo string) template.URL {
	photo = strings.TrimSpace(photo)
	lower := strings.ToLower(photo)
	switch {
	case strings.HasPrefix(lower, "data:image/"):
		return template.URL(photo)
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return template.URL(photo)
	}
	return ""
}
