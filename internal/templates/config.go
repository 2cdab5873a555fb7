// Package templates 维护模板目录，并把模板 ID 与用户覆盖项解析为完整的样式配置。
package templates

// Layout 描述页面的整体排布方式。
type Layout string

const (
	LayoutSidebarLeft  Layout = "sidebar-left"
	LayoutSidebarRight Layout = "sidebar-right"
	LayoutSplit        Layout = "split"
	LayoutStacked      Layout = "stacked"
	LayoutCards        Layout = "cards"
)

// HeaderStyle 描述页眉（姓名/联系方式）的排布。
type HeaderStyle string

const (
	HeaderCenter HeaderStyle = "center"
	HeaderSplit  HeaderStyle = "split"
	HeaderLeft   HeaderStyle = "left"
)

// SectionStyle 描述分区标题的装饰。
type SectionStyle string

const (
	SectionCaps      SectionStyle = "caps"
	SectionUnderline SectionStyle = "underline"
	SectionPill      SectionStyle = "pill"
	SectionStripe    SectionStyle = "stripe"
)

// BulletStyle only affects the preview; PDF output always uses a dash.
type BulletStyle string

const (
	BulletDot     BulletStyle = "dot"
	BulletDash    BulletStyle = "dash"
	BulletDiamond BulletStyle = "diamond"
	BulletLine    BulletStyle = "line"
)

// Ornament is the background decoration drawn behind the preview page.
type Ornament string

const (
	OrnamentOrbs    Ornament = "orbs"
	OrnamentGrid    Ornament = "grid"
	OrnamentStripes Ornament = "stripes"
	OrnamentCorner  Ornament = "corner"
	OrnamentBadge   Ornament = "badge"
	OrnamentNone    Ornament = "none"
)

// Palette holds normalized CSS colors.
type Palette struct {
	Text    string `json:"text" yaml:"text"`
	Muted   string `json:"muted" yaml:"muted"`
	Surface string `json:"surface" yaml:"surface"`
	Border  string `json:"border" yaml:"border"`
	Accent  string `json:"accent" yaml:"accent"`
}

// Config 是一次渲染所用的完整样式配置，解析完成后所有字段都非空。
type Config struct {
	Layout       Layout       `json:"layout" yaml:"layout"`
	HeaderStyle  HeaderStyle  `json:"headerStyle" yaml:"headerStyle"`
	SectionStyle SectionStyle `json:"sectionStyle" yaml:"sectionStyle"`
	BulletStyle  BulletStyle  `json:"bulletStyle" yaml:"bulletStyle"`
	Ornament     Ornament     `json:"ornament" yaml:"ornament"`
	BodyFont     string       `json:"bodyFont" yaml:"bodyFont"`
	HeadingFont  string       `json:"headingFont" yaml:"headingFont"`
	Palette      Palette      `json:"palette" yaml:"palette"`
	HasPhoto     bool         `json:"hasPhoto" yaml:"hasPhoto"`
}

// Defaults applied to any field still unset after the catalog entry and overrides are merged.
const (
	DefaultFont         = "sans-serif"
	DefaultLayout       = LayoutStacked
	DefaultHeaderStyle  = HeaderLeft
	DefaultSectionStyle = SectionCaps
	DefaultBulletStyle  = BulletDot
	DefaultOrnament     = OrnamentNone

	DefaultTextColor    = "#1f2937"
	DefaultMutedColor   = "#6b7280"
	DefaultSurfaceColor = "#ffffff"
	DefaultBorderColor  = "#e5e7eb"
	DefaultAccentColor  = "#2563eb"
)

// DefaultPalette is the muted-gray palette used when neither catalog nor caller supplies colors.
func DefaultPalette() Palette {
	return Palette{
		Text:    DefaultTextColor,
		Muted:   DefaultMutedColor,
		Surface: DefaultSurfaceColor,
		Border:  DefaultBorderColor,
		Accent:  DefaultAccentColor,
	}
}

func validLayout(v Layout) bool {
	switch v {
	case LayoutSidebarLeft, LayoutSidebarRight, LayoutSplit, LayoutStacked, LayoutCards:
		return true
	}
	return false
}

func validHeaderStyle(v HeaderStyle) bool {
	switch v {
	case HeaderCenter, HeaderSplit, HeaderLeft:
		return true
	}
	return false
}

func validSectionStyle(v SectionStyle) bool {
	switch v {
	case SectionCaps, SectionUnderline, SectionPill, SectionStripe:
		return true
	}
	return false
}

func validBulletStyle(v BulletStyle) bool {
	switch v {
	case BulletDot, BulletDash, BulletDiamond, BulletLine:
		return true
	}
	return false
}

func validOrnament(v Ornament) bool {
	switch v {
	case OrnamentOrbs, OrnamentGrid, OrnamentStripes, OrnamentCorner, OrnamentBadge, OrnamentNone:
		return true
	}
	return false
}

// IsSidebar reports whether the layout splits the page into a narrow and a main column.
func (l Layout) IsSidebar() bool {
	return l == LayoutSidebarLeft || l == LayoutSidebarRight
}
