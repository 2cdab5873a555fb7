package pdf

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	imagedraw "image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/go-pdf/fpdf"

	"resumeforge/internal/document"
	"resumeforge/internal/templates"
)

const (
	photoSize = 24.0

	lineSeparatorWidth = 0.3
	barSeparatorWidth  = 1.6
)

// separatorWidth returns the stroke width in millimetres; zero means no separator.
func separatorWidth(s document.Separator) float64 {
	switch s {
	case document.SeparatorLine:
		return lineSeparatorWidth
	case document.SeparatorBar:
		return barSeparatorWidth
	}
	return 0
}

func contactText(items []document.ContactItem) string {
	values := make([]string, 0, len(items))
	for _, it := range items {
		values = append(values, it.Value)
	}
	return strings.Join(values, "  |  ")
}

func (d *doc) header(h document.HeaderBody) {
	w := d.width()
	top := d.pdf.GetY()
	bottom := top

	nameH := d.lh(namePt)
	titleH := d.lh(titlePt)
	contactH := d.lh(smallPt)

	switch d.cfg.HeaderStyle {
	case templates.HeaderCenter:
		if h.ShowPhoto {
			d.photo(h, marginLeft+(w-photoSize)/2, top)
			d.pdf.SetY(top + photoSize + 2)
		}
		d.identity(h, marginLeft, w, "C", nameH, titleH)
		d.setFont(d.bodyFont, "", smallPt)
		d.color(d.muted)
		d.write(marginLeft, w, contactH, contactText(h.Contact), "C")
		bottom = d.pdf.GetY()

	case templates.HeaderSplit:
		x := marginLeft
		if h.ShowPhoto {
			d.photo(h, x, top)
			x += photoSize + 4
			bottom = top + photoSize
		}
		leftW := (marginLeft + w - x) * 0.55
		d.pdf.SetY(top)
		d.identity(h, x, leftW, "L", nameH, titleH)
		bottom = max(bottom, d.pdf.GetY())

		rightX := x + leftW
		rightW := marginLeft + w - rightX
		d.setFont(d.bodyFont, "", smallPt)
		d.color(d.muted)
		d.pdf.SetY(top)
		for _, it := range h.Contact {
			d.write(rightX, rightW, contactH, it.Value, "R")
		}
		bottom = max(bottom, d.pdf.GetY())

	default:
		x := marginLeft
		if h.ShowPhoto {
			d.photo(h, x, top)
			x += photoSize + 4
			bottom = top + photoSize
		}
		d.pdf.SetY(top)
		d.identity(h, x, marginLeft+w-x, "L", nameH, titleH)
		d.setFont(d.bodyFont, "", smallPt)
		d.color(d.muted)
		d.write(x, marginLeft+w-x, contactH, contactText(h.Contact), "L")
		bottom = max(bottom, d.pdf.GetY())
	}

	d.color(d.text)
	d.pdf.SetY(bottom + d.gap(4))
}

func (d *doc) identity(h document.HeaderBody, x, w float64, align string, nameH, titleH float64) {
	d.setFont(d.headingFont, "B", namePt)
	d.color(d.text)
	d.write(x, w, nameH, h.Name, align)
	d.setFont(d.headingFont, "", titlePt)
	d.color(d.accent)
	d.write(x, w, titleH, h.Title, align)
}

// photo draws the inline image when it decodes, otherwise an initials placeholder.
func (d *doc) photo(h document.HeaderBody, x, y float64) {
	if data, ok := decodePhoto(h.Photo); ok && d.pdf.Ok() {
		opts := fpdf.ImageOptions{ImageType: "png"}
		d.pdf.RegisterImageOptionsReader("photo", opts, bytes.NewReader(data))
		if d.pdf.Ok() {
			d.pdf.ImageOptions("photo", x, y, photoSize, photoSize, false, opts, 0, "")
			return
		}
		// 照片是可选字段，嵌入失败时退回占位符
		d.pdf.ClearError()
	}

	d.pdf.SetFillColor(d.border.R, d.border.G, d.border.B)
	d.pdf.Circle(x+photoSize/2, y+photoSize/2, photoSize/2, "F")
	initials := document.Initials(h.Name)
	if initials == "" {
		return
	}
	d.setFont(d.headingFont, "B", 16)
	d.color(d.muted)
	lh := d.lh(16)
	d.pdf.SetXY(x, y+(photoSize-lh)/2)
	d.pdf.CellFormat(photoSize, lh, d.tr(initials), "", 0, "C", false, 0, "")
	d.color(d.text)
}

// decodePhoto accepts base64 data URIs carrying png, jpeg or gif images and returns
// them re-encoded as an opaque, non-interlaced 8-bit PNG that fpdf can always embed.
func decodePhoto(src string) ([]byte, bool) {
	meta, payload, found := strings.Cut(strings.TrimSpace(src), ",")
	meta = strings.ToLower(strings.TrimSpace(meta))
	if !found || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, false
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}
	switch format {
	case "png", "jpeg", "gif":
	default:
		return nil, false
	}

	// 透明部分铺白底，输出统一为 8 位 RGB
	bounds := img.Bounds()
	flat := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	imagedraw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, imagedraw.Src)
	imagedraw.Draw(flat, flat.Bounds(), img, bounds.Min, imagedraw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

func (d *doc) letter(l document.Letter, sep document.Separator) {
	d.header(l.Sender)

	if w := separatorWidth(sep); w > 0 {
		y := d.pdf.GetY()
		d.pdf.SetDrawColor(d.accent.R, d.accent.G, d.accent.B)
		d.pdf.SetLineWidth(w)
		d.pdf.Line(marginLeft, y, marginLeft+d.width(), y)
		d.pdf.SetLineWidth(defaultLineWidth)
		d.pdf.SetY(y + w + d.gap(4))
	}

	h := d.lh(bodyPt)
	d.setFont(d.bodyFont, "", bodyPt)
	if l.Date != "" {
		d.color(d.muted)
		d.write(marginLeft, d.width(), h, l.Date, "L")
		d.pdf.Ln(d.gap(2))
	}

	d.color(d.text)
	recipient := make([]string, 0, 4)
	for _, line := range append([]string{l.Recipient.ManagerName, l.Recipient.Company}, l.Recipient.AddressLines()...) {
		if line != "" {
			recipient = append(recipient, line)
		}
	}
	if len(recipient) > 0 {
		d.write(marginLeft, d.width(), h, strings.Join(recipient, "\n"), "L")
		d.pdf.Ln(d.gap(4))
	}

	if l.Subject != "" {
		d.setFont(d.headingFont, "B", entryPt)
		d.color(d.accent)
		d.write(marginLeft, d.width(), d.lh(entryPt), l.Subject, "L")
		d.pdf.Ln(d.gap(3))
	}

	d.setFont(d.bodyFont, "", bodyPt)
	d.color(d.text)
	if l.Greeting != "" {
		d.write(marginLeft, d.width(), h, l.Greeting, "L")
		d.pdf.Ln(d.gap(2))
	}
	d.blocks(l.Body)
	if l.Closing != "" {
		d.pdf.Ln(d.gap(2))
		d.setFont(d.bodyFont, "", bodyPt)
		d.write(marginLeft, d.width(), h, l.Closing, "L")
	}
	if l.Signature != "" {
		d.pdf.Ln(d.gap(6))
		d.setFont(d.headingFont, "B", bodyPt)
		d.write(marginLeft, d.width(), h, l.Signature, "L")
	}
}
