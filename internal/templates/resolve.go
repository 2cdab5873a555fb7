package templates

import "strings"

// Overrides are partial, caller-supplied style fields. Empty strings and a nil HasPhoto
// mean "not set".
type Overrides struct {
	Layout       Layout       `json:"layout,omitempty"`
	HeaderStyle  HeaderStyle  `json:"headerStyle,omitempty"`
	SectionStyle SectionStyle `json:"sectionStyle,omitempty"`
	BulletStyle  BulletStyle  `json:"bulletStyle,omitempty"`
	Ornament     Ornament     `json:"ornament,omitempty"`
	BodyFont     string       `json:"bodyFont,omitempty"`
	HeadingFont  string       `json:"headingFont,omitempty"`
	Palette      Palette      `json:"palette,omitempty"`
	HasPhoto     *bool        `json:"hasPhoto,omitempty"`
}

// Preferences are the user-level document settings that outrank template data for a
// few fields: the font family wins over every font source, the theme color over every accent.
type Preferences struct {
	FontFamily string
	ThemeColor string
}

// Resolve 从目录条目出发，叠加覆盖项与用户偏好，再补齐默认值。从不失败：
// 未知 id 回落到默认条目，默认条目也缺失时仅使用内置默认值。
func (c *Catalog) Resolve(id string, o *Overrides, p Preferences) Config {
	base, ok := c.entryOrFallback(id)
	if !ok {
		base = Entry{}
	}
	return resolve(base.Config, o, p)
}

// ResolveStrict is Resolve for call sites where a partially styled document is worse
// than none: it fails when neither id nor the fallback entry is in the catalog.
func (c *Catalog) ResolveStrict(id string, o *Overrides, p Preferences) (Config, error) {
	base, ok := c.entryOrFallback(id)
	if !ok {
		return Config{}, ErrTemplateUnavailable
	}
	return resolve(base.Config, o, p), nil
}

func (c *Catalog) entryOrFallback(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	if e, ok := c.Lookup(id); ok {
		return e, true
	}
	return c.Lookup(DefaultTemplateID)
}

// resolve applies the per-field precedence table:
//
//	fonts:  preferences > overrides > catalog > default
//	accent: preferences > overrides > catalog > default
//	rest:   overrides > catalog > default
func resolve(base Config, o *Overrides, p Preferences) Config {
	cfg := base
	if o != nil {
		cfg = merge(cfg, *o)
	}

	if f := strings.TrimSpace(p.FontFamily); f != "" {
		cfg.BodyFont = f
		cfg.HeadingFont = f
	}
	if t := strings.TrimSpace(p.ThemeColor); t != "" {
		if normalized := NormalizeColor(t, ""); normalized != "" {
			cfg.Palette.Accent = normalized
		}
	}

	return withDefaults(cfg)
}

func merge(cfg Config, o Overrides) Config {
	if o.Layout != "" {
		cfg.Layout = o.Layout
	}
	if o.HeaderStyle != "" {
		cfg.HeaderStyle = o.HeaderStyle
	}
	if o.SectionStyle != "" {
		cfg.SectionStyle = o.SectionStyle
	}
	if o.BulletStyle != "" {
		cfg.BulletStyle = o.BulletStyle
	}
	if o.Ornament != "" {
		cfg.Ornament = o.Ornament
	}
	if strings.TrimSpace(o.BodyFont) != "" {
		cfg.BodyFont = o.BodyFont
	}
	if strings.TrimSpace(o.HeadingFont) != "" {
		cfg.HeadingFont = o.HeadingFont
	}
	if o.Palette.Text != "" {
		cfg.Palette.Text = o.Palette.Text
	}
	if o.Palette.Muted != "" {
		cfg.Palette.Muted = o.Palette.Muted
	}
	if o.Palette.Surface != "" {
		cfg.Palette.Surface = o.Palette.Surface
	}
	if o.Palette.Border != "" {
		cfg.Palette.Border = o.Palette.Border
	}
	if o.Palette.Accent != "" {
		cfg.Palette.Accent = o.Palette.Accent
	}
	if o.HasPhoto != nil {
		cfg.HasPhoto = *o.HasPhoto
	}
	return cfg
}

// withDefaults fills every empty or invalid field; enum values outside their set count as unset.
func withDefaults(cfg Config) Config {
	if !validLayout(cfg.Layout) {
		cfg.Layout = DefaultLayout
	}
	if !validHeaderStyle(cfg.HeaderStyle) {
		cfg.HeaderStyle = DefaultHeaderStyle
	}
	if !validSectionStyle(cfg.SectionStyle) {
		cfg.SectionStyle = DefaultSectionStyle
	}
	if !validBulletStyle(cfg.BulletStyle) {
		cfg.BulletStyle = DefaultBulletStyle
	}
	if !validOrnament(cfg.Ornament) {
		cfg.Ornament = DefaultOrnament
	}

	cfg.BodyFont = strings.TrimSpace(cfg.BodyFont)
	if cfg.BodyFont == "" {
		cfg.BodyFont = DefaultFont
	}
	cfg.HeadingFont = strings.TrimSpace(cfg.HeadingFont)
	if cfg.HeadingFont == "" {
		cfg.HeadingFont = cfg.BodyFont
	}

	defaults := DefaultPalette()
	cfg.Palette.Text = NormalizeColor(cfg.Palette.Text, defaults.Text)
	cfg.Palette.Muted = NormalizeColor(cfg.Palette.Muted, defaults.Muted)
	cfg.Palette.Surface = NormalizeColor(cfg.Palette.Surface, defaults.Surface)
	cfg.Palette.Border = NormalizeColor(cfg.Palette.Border, defaults.Border)
	cfg.Palette.Accent = NormalizeColor(cfg.Palette.Accent, cfg.Palette.Text)

	return cfg
}
