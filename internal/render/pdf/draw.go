package pdf

import (
	"strings"

	"github.com/go-pdf/fpdf"

	"resumeforge/internal/document"
	"resumeforge/internal/richtext"
	"resumeforge/internal/templates"
)

const (
	marginLeft   = 16.0
	marginTop    = 16.0
	marginRight  = 16.0
	marginBottom = 16.0

	defaultLineWidth = 0.2
	ptToMM           = 0.3528
	leading          = 1.45

	bodyPt    = 10.0
	smallPt   = 9.0
	entryPt   = 11.0
	headingPt = 12.0
	namePt    = 22.0
	titlePt   = 12.0

	bullet = "- "
)

// doc wraps one fpdf document together with the resolved style for a single render.
type doc struct {
	pdf   *fpdf.Fpdf
	cfg   templates.Config
	scale float64
	tr    func(string) string

	bodyFont    string
	headingFont string

	text    templates.RGB
	muted   templates.RGB
	surface templates.RGB
	border  templates.RGB
	accent  templates.RGB
}

func newDoc(cfg templates.Config, scale float64) *doc {
	if scale <= 0 {
		scale = 1
	}
	p := newFpdf()
	pal := cfg.Palette
	return &doc{
		pdf:         p,
		cfg:         cfg,
		scale:       scale,
		tr:          p.UnicodeTranslatorFromDescriptor(""),
		bodyFont:    string(templates.FontFamilyFor(cfg.BodyFont)),
		headingFont: string(templates.FontFamilyFor(cfg.HeadingFont)),
		text:        templates.MustRGB(pal.Text, templates.DefaultTextColor),
		muted:       templates.MustRGB(pal.Muted, templates.DefaultMutedColor),
		surface:     templates.MustRGB(pal.Surface, templates.DefaultSurfaceColor),
		border:      templates.MustRGB(pal.Border, templates.DefaultBorderColor),
		accent:      templates.MustRGB(pal.Accent, templates.DefaultAccentColor),
	}
}

// pt scales a font size in points.
func (d *doc) pt(size float64) float64 { return size * d.scale }

// lh is the line height in millimetres for a font size in points.
func (d *doc) lh(size float64) float64 { return d.pt(size) * ptToMM * leading }

func (d *doc) gap(mm float64) float64 { return mm * d.scale }

func (d *doc) width() float64 {
	w, _ := d.pdf.GetPageSize()
	return w - marginLeft - marginRight
}

func (d *doc) setFont(family, style string, size float64) {
	d.pdf.SetFont(family, style, d.pt(size))
}

func (d *doc) color(c templates.RGB) { d.pdf.SetTextColor(c.R, c.G, c.B) }

// ensureSpace starts a new page when fewer than h millimetres remain.
func (d *doc) ensureSpace(h float64) {
	_, pageH := d.pdf.GetPageSize()
	if d.pdf.GetY()+h > pageH-marginBottom {
		d.pdf.AddPage()
	}
}

// write draws wrapped text at x with width w and leaves the cursor below it.
func (d *doc) write(x, w, h float64, s, align string) {
	if s == "" {
		return
	}
	d.pdf.SetX(x)
	d.pdf.MultiCell(w, h, d.tr(s), "", align, false)
}

func (d *doc) pageBackground(watermark string) {
	pageW, pageH := d.pdf.GetPageSize()

	switch d.cfg.Layout {
	case templates.LayoutSidebarLeft:
		d.pdf.SetFillColor(d.accent.R, d.accent.G, d.accent.B)
		d.pdf.Rect(0, 0, 4, pageH, "F")
	case templates.LayoutSidebarRight:
		d.pdf.SetFillColor(d.accent.R, d.accent.G, d.accent.B)
		d.pdf.Rect(pageW-4, 0, 4, pageH, "F")
	}

	if watermark == "" {
		return
	}
	d.pdf.SetFont(d.headingFont, "B", 64)
	d.pdf.SetTextColor(d.border.R, d.border.G, d.border.B)
	d.pdf.SetAlpha(0.35, "Normal")
	text := d.tr(watermark)
	cx, cy := pageW/2, pageH/2
	d.pdf.TransformBegin()
	d.pdf.TransformRotate(45, cx, cy)
	d.pdf.Text(cx-d.pdf.GetStringWidth(text)/2, cy+64*ptToMM/3, text)
	d.pdf.TransformEnd()
	d.pdf.SetAlpha(1, "Normal")
}

func (d *doc) sectionTitle(title string) {
	h := d.lh(headingPt)
	// 标题后至少保留一行正文，避免孤立标题
	d.ensureSpace(h*2 + d.gap(4))
	d.pdf.Ln(d.gap(1))

	d.setFont(d.headingFont, "B", headingPt)
	x := marginLeft
	y := d.pdf.GetY()

	switch d.cfg.SectionStyle {
	case templates.SectionPill:
		label := d.tr(title)
		w := d.pdf.GetStringWidth(label) + d.gap(6)
		d.pdf.SetFillColor(d.accent.R, d.accent.G, d.accent.B)
		d.color(d.surface)
		d.pdf.SetX(x)
		d.pdf.CellFormat(w, h, label, "", 1, "C", true, 0, "")
	case templates.SectionStripe:
		d.pdf.SetFillColor(d.accent.R, d.accent.G, d.accent.B)
		d.pdf.Rect(x, y+h*0.15, 1.2, h*0.7, "F")
		d.color(d.accent)
		d.write(x+3, d.width()-3, h, title, "L")
	case templates.SectionUnderline:
		d.color(d.accent)
		d.write(x, d.width(), h, title, "L")
		d.pdf.SetDrawColor(d.accent.R, d.accent.G, d.accent.B)
		d.pdf.SetLineWidth(0.4)
		ly := d.pdf.GetY() + 0.6
		d.pdf.Line(x, ly, x+d.width(), ly)
		d.pdf.SetLineWidth(defaultLineWidth)
		d.pdf.SetY(ly + 0.4)
	default:
		d.color(d.accent)
		d.write(x, d.width(), h, strings.ToUpper(title), "L")
	}
	d.pdf.Ln(d.gap(1.5))
	d.color(d.text)
}

// blocks draws rich text stripped of inline markers; list items keep a dash prefix.
func (d *doc) blocks(blocks []richtext.Block) {
	h := d.lh(bodyPt)
	x := marginLeft
	w := d.width()

	d.setFont(d.bodyFont, "", bodyPt)
	d.color(d.text)
	for _, b := range blocks {
		switch b.Kind {
		case richtext.List:
			dash := d.pdf.GetStringWidth(bullet) + 0.5
			for _, item := range b.Items {
				d.ensureSpace(h)
				d.pdf.SetX(x)
				d.pdf.CellFormat(dash, h, bullet, "", 0, "L", false, 0, "")
				d.pdf.MultiCell(w-dash, h, d.tr(richtext.Strip(item)), "", "L", false)
			}
		default:
			d.write(x, w, h, richtext.Strip(b.Text), "L")
		}
		d.pdf.Ln(d.gap(1))
	}
}

// entryHead draws a bold title on the left and a muted date on the right of one line.
func (d *doc) entryHead(title, date string) {
	h := d.lh(entryPt)
	d.ensureSpace(h * 3)

	dateW := 0.0
	d.setFont(d.bodyFont, "", smallPt)
	if date != "" {
		dateW = d.pdf.GetStringWidth(d.tr(date)) + 2
	}

	y := d.pdf.GetY()
	d.setFont(d.headingFont, "B", entryPt)
	d.color(d.text)
	d.write(marginLeft, d.width()-dateW, h, title, "L")
	after := d.pdf.GetY()

	if date != "" {
		d.setFont(d.bodyFont, "", smallPt)
		d.color(d.muted)
		d.pdf.SetXY(marginLeft+d.width()-dateW, y)
		d.pdf.CellFormat(dateW, h, d.tr(date), "", 0, "R", false, 0, "")
		d.color(d.text)
	}
	if after <= y {
		after = y + h
	}
	d.pdf.SetY(after)
}

func (d *doc) muteLine(s string) {
	if s == "" {
		return
	}
	d.setFont(d.bodyFont, "I", smallPt)
	d.color(d.muted)
	d.write(marginLeft, d.width(), d.lh(smallPt), s, "L")
	d.color(d.text)
}

// link draws a single clickable line in the accent color.
func (d *doc) link(label, href string) {
	if href == "" {
		return
	}
	h := d.lh(smallPt)
	d.ensureSpace(h)
	d.setFont(d.bodyFont, "U", smallPt)
	d.color(d.accent)
	text := d.tr(label)
	d.pdf.SetX(marginLeft)
	d.pdf.CellFormat(d.pdf.GetStringWidth(text)+1, h, text, "", 1, "L", false, 0, href)
	d.color(d.text)
}

func (d *doc) experience(body document.ExperienceBody) {
	for _, e := range body.Entries {
		title := e.Position
		if title == "" {
			title = e.Company
		}
		d.entryHead(title, e.Period)
		if e.Position != "" {
			d.muteLine(joinNonEmpty(" · ", e.Company, e.Location))
		} else {
			d.muteLine(e.Location)
		}
		d.blocks(e.Blocks)
		d.pdf.Ln(d.gap(1.5))
	}
}

func (d *doc) education(body document.EducationBody) {
	for _, e := range body.Entries {
		title := e.Degree
		if title == "" {
			title = e.Institution
		}
		d.entryHead(title, e.Period)
		if e.Degree != "" {
			d.muteLine(joinNonEmpty(" · ", e.Institution, e.Location))
		} else {
			d.muteLine(e.Location)
		}
		if e.GPA != "" {
			d.muteLine("GPA " + e.GPA)
		}
		d.blocks(e.Blocks)
		d.pdf.Ln(d.gap(1.5))
	}
}

func (d *doc) skills(body document.SkillsBody) {
	h := d.lh(bodyPt)
	for _, g := range body.Groups {
		names := make([]string, 0, len(g.Skills))
		for _, s := range g.Skills {
			if s.Level != "" {
				names = append(names, s.Name+" ("+s.Level+")")
			} else {
				names = append(names, s.Name)
			}
		}
		d.ensureSpace(h)
		d.pdf.SetX(marginLeft)
		if g.Category != "" {
			label := d.tr(g.Category + ": ")
			d.setFont(d.bodyFont, "B", bodyPt)
			d.color(d.text)
			lw := d.pdf.GetStringWidth(label) + 0.5
			d.pdf.CellFormat(lw, h, label, "", 0, "L", false, 0, "")
			d.setFont(d.bodyFont, "", bodyPt)
			d.pdf.MultiCell(d.width()-lw, h, d.tr(strings.Join(names, ", ")), "", "L", false)
			continue
		}
		d.setFont(d.bodyFont, "", bodyPt)
		d.color(d.text)
		d.pdf.MultiCell(d.width(), h, d.tr(strings.Join(names, ", ")), "", "L", false)
	}
}

func (d *doc) projects(body document.ProjectsBody) {
	for _, p := range body.Entries {
		d.entryHead(p.Name, p.Period)
		d.link(p.Link, document.LinkURL(p.Link))
		d.blocks(p.Blocks)
		if len(p.Technologies) > 0 {
			d.muteLine(strings.Join(p.Technologies, ", "))
		}
		d.pdf.Ln(d.gap(1.5))
	}
}

func (d *doc) certifications(body document.CertificationsBody) {
	h := d.lh(bodyPt)
	for _, c := range body.Entries {
		d.ensureSpace(h)
		name := d.tr(c.Name)
		d.pdf.SetX(marginLeft)
		if c.Link != "" {
			d.setFont(d.bodyFont, "BU", bodyPt)
			d.color(d.accent)
		} else {
			d.setFont(d.bodyFont, "B", bodyPt)
			d.color(d.text)
		}
		link := document.LinkURL(c.Link)
		rest := joinNonEmpty(", ", c.Issuer, c.Date)

		nw := d.pdf.GetStringWidth(name) + 0.5
		if nw > d.width()*0.75 {
			// 名称过长时单独成段，颁发方另起一行
			top := d.pdf.GetY()
			d.pdf.MultiCell(d.width(), h, name, "", "L", false)
			if link != "" {
				d.pdf.LinkString(marginLeft, top, d.width(), d.pdf.GetY()-top, link)
			}
			if rest != "" {
				d.setFont(d.bodyFont, "", bodyPt)
				d.color(d.muted)
				d.pdf.SetX(marginLeft)
				d.pdf.MultiCell(d.width(), h, d.tr(rest), "", "L", false)
			}
			d.color(d.text)
			continue
		}
		d.pdf.CellFormat(nw, h, name, "", 0, "L", false, 0, link)

		d.setFont(d.bodyFont, "", bodyPt)
		d.color(d.muted)
		if rest != "" {
			rest = " - " + rest
		}
		d.pdf.MultiCell(d.width()-nw, h, d.tr(rest), "", "L", false)
		d.color(d.text)
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
