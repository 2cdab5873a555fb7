package preview

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"unicode"

	"resumeforge/internal/templates"
)

var bulletGlyphs = map[templates.BulletStyle]string{
	templates.BulletDot:     `\2022`,
	templates.BulletDash:    `\2013`,
	templates.BulletDiamond: `\25C6`,
	templates.BulletLine:    `\2502`,
}

// stylesheet 生成页面 CSS。所有字号与间距都经过 --scale 计算，颜色已在解析阶段规范化。
func stylesheet(cfg templates.Config, scale float64) template.CSS {
	if scale <= 0 {
		scale = 1
	}
	pal := cfg.Palette
	glyph, ok := bulletGlyphs[cfg.BulletStyle]
	if !ok {
		glyph = bulletGlyphs[templates.BulletDot]
	}

	var b strings.Builder
	w := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	w(":root{--scale:%s;--text:%s;--muted:%s;--surface:%s;--border:%s;--accent:%s;}",
		strconv.FormatFloat(scale, 'f', -1, 64), css(pal.Text), css(pal.Muted), css(pal.Surface), css(pal.Border), css(pal.Accent))
	w("*{box-sizing:border-box;}")
	w("body{margin:0;background:#f3f4f6;}")
	w(".page{position:relative;overflow:hidden;width:794px;min-height:1122px;margin:0 auto;padding:%s;background:var(--surface);color:var(--text);font-family:%s;font-size:%s;line-height:1.45;}",
		px(40), fontStack(cfg.BodyFont), px(13))
	w("h1,h2,h3{font-family:%s;margin:0;}", fontStack(cfg.HeadingFont))
	w("p{margin:0 0 %s;}", px(6))
	w("a{color:var(--accent);text-decoration:none;}")

	// header
	w(".header{display:flex;flex-direction:column;gap:%s;margin-bottom:%s;}", px(8), px(18))
	w(".header-identity{display:flex;align-items:center;gap:%s;}", px(14))
	w(".name{font-size:%s;font-weight:700;letter-spacing:0.01em;}", px(28))
	w(".headline{font-size:%s;color:var(--muted);margin:%s 0 0;}", px(15), px(2))
	w(".contact{list-style:none;margin:0;padding:0;display:flex;flex-wrap:wrap;gap:%s %s;font-size:%s;color:var(--muted);}", px(4), px(14), px(12))
	w(".photo{width:%s;height:%s;border-radius:50%%;object-fit:cover;flex:none;}", px(84), px(84))
	w(".photo--placeholder{display:flex;align-items:center;justify-content:center;background:var(--border);color:var(--muted);font-size:%s;font-weight:600;}", px(24))
	w(".header--center .header{align-items:center;text-align:center;}")
	w(".header--center .header-identity{flex-direction:column;}")
	w(".header--center .contact{justify-content:center;}")
	w(".header--split .header{flex-direction:row;justify-content:space-between;align-items:center;}")
	w(".header--split .contact{flex-direction:column;align-items:flex-end;text-align:right;}")

	// section headings
	w(".section{margin-bottom:%s;}", px(16))
	w(".section-title{font-size:%s;font-weight:700;color:var(--accent);margin-bottom:%s;}", px(14), px(8))
	switch cfg.SectionStyle {
	case templates.SectionUnderline:
		w(".section-title{padding-bottom:%s;border-bottom:2px solid var(--accent);}", px(4))
	case templates.SectionPill:
		w(".section-title{display:inline-block;padding:%s %s;border-radius:999px;background:var(--accent);color:var(--surface);}", px(3), px(12))
	case templates.SectionStripe:
		w(".section-title{padding-left:%s;border-left:4px solid var(--accent);}", px(8))
	default:
		w(".section-title{text-transform:uppercase;letter-spacing:0.12em;font-size:%s;}", px(12))
	}

	// entries
	w(".entry{margin-bottom:%s;}", px(10))
	w(".entry-head{display:flex;justify-content:space-between;align-items:baseline;gap:%s;}", px(12))
	w(".entry-title{font-size:%s;font-weight:600;}", px(14))
	w(".entry-sub{font-size:%s;color:var(--muted);margin:0;}", px(12))
	w(".entry-date{font-size:%s;color:var(--muted);white-space:nowrap;}", px(11))
	w(".entry-meta{font-size:%s;color:var(--muted);}", px(11))
	w(".entry-link{font-size:%s;}", px(11))
	w(".bullets{list-style:none;margin:%s 0;padding:0;}", px(4))
	w(".bullets li{position:relative;padding-left:%s;margin-bottom:%s;}", px(14), px(2))
	w(".bullets li::before{content:\"%s\";position:absolute;left:0;color:var(--accent);}", glyph)
	w(".skill-category{font-size:%s;font-weight:600;margin-bottom:%s;}", px(12), px(4))
	w(".skills{list-style:none;margin:0 0 %s;padding:0;display:flex;flex-wrap:wrap;gap:%s;}", px(8), px(6))
	w(".skill{font-size:%s;padding:%s %s;border:1px solid var(--border);border-radius:4px;}", px(12), px(2), px(8))
	w(".skill-level{font-size:%s;color:var(--muted);}", px(10))
	w(".certs{list-style:none;margin:0;padding:0;}")
	w(".cert{font-size:%s;margin-bottom:%s;}", px(12), px(4))
	w(".cert-issuer{color:var(--muted);}")

	// layouts
	switch cfg.Layout {
	case templates.LayoutSidebarLeft, templates.LayoutSidebarRight:
		cols := "32% 1fr"
		if cfg.Layout == templates.LayoutSidebarRight {
			cols = "1fr 32%"
		}
		w(".page{display:grid;grid-template-columns:%s;gap:%s;align-items:start;}", cols, px(24))
		w(".region--side{padding:%s;background:var(--border);border-radius:6px;}", px(14))
	case templates.LayoutSplit:
		w(".page{display:grid;grid-template-columns:1fr 1fr;gap:0 %s;align-items:start;}", px(24))
		w(".region--header{grid-column:1 / -1;}")
	case templates.LayoutCards:
		w(".region--cards{display:grid;grid-template-columns:1fr 1fr;gap:%s;}", px(12))
		w(".card{margin:0;padding:%s;border:1px solid var(--border);border-radius:8px;}", px(12))
	}

	// ornaments
	switch cfg.Ornament {
	case templates.OrnamentOrbs:
		w(".ornament--orbs{position:absolute;top:-%s;right:-%s;width:%s;height:%s;border-radius:50%%;background:var(--accent);opacity:0.12;pointer-events:none;}", px(60), px(60), px(220), px(220))
	case templates.OrnamentGrid:
		w(".ornament--grid{position:absolute;inset:0;background-image:linear-gradient(var(--border) 1px,transparent 1px),linear-gradient(90deg,var(--border) 1px,transparent 1px);background-size:%s %s;opacity:0.35;pointer-events:none;}", px(24), px(24))
	case templates.OrnamentStripes:
		w(".ornament--stripes{position:absolute;top:0;left:0;right:0;height:%s;background:repeating-linear-gradient(45deg,var(--accent) 0 8px,transparent 8px 16px);opacity:0.25;pointer-events:none;}", px(10))
	case templates.OrnamentCorner:
		w(".ornament--corner{position:absolute;top:0;right:0;width:0;height:0;border-top:%s solid var(--accent);border-left:%s solid transparent;opacity:0.8;pointer-events:none;}", px(90), px(90))
	case templates.OrnamentBadge:
		w(".ornament--badge{position:absolute;top:%s;right:%s;width:%s;height:%s;border-radius:50%%;border:3px solid var(--accent);pointer-events:none;}", px(24), px(24), px(40), px(40))
	}

	// cover letter
	w(".separator{border:0;margin:%s 0;background:var(--accent);}", px(12))
	w(".separator--line{height:1px;}")
	w(".separator--bar{height:%s;}", px(6))
	w(".recipient{font-style:normal;font-size:%s;margin-bottom:%s;}", px(12), px(12))
	w(".letter-date{font-size:%s;color:var(--muted);}", px(12))
	w(".subject{font-size:%s;font-weight:700;margin-bottom:%s;}", px(14), px(12))
	w(".greeting,.closing,.signature{font-size:%s;}", px(13))
	w(".letter-body{font-size:%s;margin-bottom:%s;}", px(13), px(12))

	w(".watermark{position:absolute;top:45%%;left:0;right:0;text-align:center;transform:rotate(-35deg);font-size:%s;font-weight:700;color:var(--border);opacity:0.6;pointer-events:none;}", px(96))
	w("@media print{body{background:none;}.page{margin:0;}}")

	// 内容均由本包生成并经过清洗
	return template.CSS(b.String())
}

// px returns a length that follows the document scale.
func px(n float64) string {
	return "calc(" + strconv.FormatFloat(n, 'f', -1, 64) + "px * var(--scale))"
}

// css guards a normalized color value before it is written into the stylesheet.
func css(v string) string {
	for _, r := range v {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("#(),. ", r)) {
			return templates.DefaultTextColor
		}
	}
	return v
}

// fontStack builds a CSS font-family value, dropping characters that could end the declaration.
func fontStack(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == ',' || r == '\'' {
			return r
		}
		return -1
	}, name)
	return templates.CSSFontStack(cleaned)
}
