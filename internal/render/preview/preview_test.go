package preview

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/document"
	"resumeforge/internal/templates"
)

var sectionAttr = regexp.MustCompile(`data-section="([a-z-]+)"`)

func renderResume(t *testing.T, templateID string, data document.ResumeData, o *templates.Overrides) string {
	t.Helper()
	catalog := templates.MustLoadBuiltin()
	in := document.Input{Type: document.KindResume, TemplateID: templateID, Overrides: o, Resume: &data}
	cfg := catalog.Resolve(in.Template(), in.Overrides, in.Preferences())
	view, err := document.Prepare(in, cfg)
	require.NoError(t, err)
	out, err := New().Render(view, cfg)
	require.NoError(t, err)
	return string(out)
}

func renderedSections(html string) []string {
	var out []string
	for _, m := range sectionAttr.FindAllStringSubmatch(html, -1) {
		out = append(out, m[1])
	}
	return out
}

func fullResume() document.ResumeData {
	return document.ResumeData{
		Basics: document.Basics{Name: "Jane Doe", Title: "Engineer", Email: "jane@example.com", Summary: "Builds **reliable** systems."},
		Experiences: []document.Experience{
			{ID: "e1", Company: "Acme", Position: "Staff Engineer", StartDate: "2020", Current: true, Description: "- Led *platform* work\n- Cut costs"},
		},
		Education:      []document.Education{{ID: "ed1", Institution: "MIT", Degree: "BSc", GPA: "3.9"}},
		Skills:         []document.Skill{{ID: "s1", Name: "Go", Category: "Languages"}},
		Projects:       []document.Project{{ID: "p1", Name: "forge", Link: "github.com/jane/forge"}},
		Certifications: []document.Certification{{ID: "c1", Name: "CKA", Link: "https://cncf.io"}},
	}
}

func TestModernShowsOnlyPopulatedSections(t *testing.T) {
	data := document.ResumeData{
		Basics:      document.Basics{Name: "Jane Doe"},
		Experiences: []document.Experience{{ID: "e1", Company: "Acme", Position: "Engineer"}},
	}

	html := renderResume(t, "modern", data, nil)

	assert.Equal(t, []string{"basics", "experience"}, renderedSections(html))
	assert.Contains(t, html, "Jane Doe")
	for _, absent := range []string{"skills", "education", "projects", "certifications", "summary"} {
		assert.NotContains(t, html, `data-section="`+absent+`"`)
	}
}

func TestSummaryIncludedWhenPresent(t *testing.T) {
	data := document.ResumeData{
		Basics:      document.Basics{Name: "Jane Doe", Summary: "Hello"},
		Experiences: []document.Experience{{ID: "e1", Company: "Acme"}},
	}
	assert.Equal(t, []string{"basics", "summary", "experience"}, renderedSections(renderResume(t, "modern", data, nil)))
}

func TestSidebarLayoutGroupsSections(t *testing.T) {
	html := renderResume(t, "modern", fullResume(), &templates.Overrides{Layout: templates.LayoutSidebarLeft})

	side := strings.Index(html, `data-region="side"`)
	main := strings.Index(html, `data-region="main"`)
	require.True(t, side >= 0 && main > side)

	assert.Equal(t, []string{"basics", "skills", "certifications", "summary", "experience", "education", "projects"},
		renderedSections(html))
}

func TestSidebarRightPutsMainFirst(t *testing.T) {
	html := renderResume(t, "modern", fullResume(), &templates.Overrides{Layout: templates.LayoutSidebarRight})
	assert.Less(t, strings.Index(html, `data-region="main"`), strings.Index(html, `data-region="side"`))
}

func TestSplitLayoutColumns(t *testing.T) {
	html := renderResume(t, "modern", fullResume(), &templates.Overrides{Layout: templates.LayoutSplit})
	assert.Equal(t, []string{"basics", "summary", "experience", "projects", "education", "skills", "certifications"},
		renderedSections(html))
	assert.Contains(t, html, `data-region="left"`)
	assert.Contains(t, html, `data-region="right"`)
}

func TestCardsLayoutWrapsSections(t *testing.T) {
	html := renderResume(t, "modern", fullResume(), &templates.Overrides{Layout: templates.LayoutCards})
	assert.Equal(t, 6, strings.Count(html, `class="section card"`))
}

func TestStructureOrderPreserved(t *testing.T) {
	data := fullResume()
	data.Structure = []document.SectionDescriptor{
		{ID: "projects", Type: document.SectionProjects, Order: 0},
		{ID: "basics", Type: document.SectionBasics, Order: 1},
		{ID: "skills", Type: document.SectionSkills, Order: 2},
	}
	assert.Equal(t, []string{"projects", "basics", "skills"}, renderedSections(renderResume(t, "modern", data, nil)))
}

func TestConfigIsReflected(t *testing.T) {
	html := renderResume(t, "modern", fullResume(), &templates.Overrides{
		HeaderStyle:  templates.HeaderSplit,
		SectionStyle: templates.SectionPill,
		BulletStyle:  templates.BulletDiamond,
		Ornament:     templates.OrnamentGrid,
		Palette:      templates.Palette{Accent: "#FF0000"},
	})

	assert.Contains(t, html, "header--split")
	assert.Contains(t, html, "sections--pill")
	assert.Contains(t, html, `border-radius:999px`)
	assert.Contains(t, html, `content:"\25C6"`)
	assert.Contains(t, html, `data-ornament="grid"`)
	assert.Contains(t, html, "--accent:#ff0000")
}

func TestNoOrnamentElementForNone(t *testing.T) {
	html := renderResume(t, "modern", fullResume(), &templates.Overrides{Ornament: templates.OrnamentNone})
	assert.NotContains(t, html, "data-ornament")
}

func TestEveryFontSizeFollowsScale(t *testing.T) {
	data := fullResume()
	data.Metadata.FontSize = "lg"
	html := renderResume(t, "modern", data, nil)

	assert.Contains(t, html, "--scale:1.12")
	total := strings.Count(html, "font-size:")
	require.Positive(t, total)
	assert.Equal(t, total, strings.Count(html, "font-size:calc("))
}

func TestInlineEmphasisAndEscaping(t *testing.T) {
	data := fullResume()
	data.Basics.Summary = "Uses **Go** & <script>alert(1)</script> with __care__"
	html := renderResume(t, "modern", data, nil)

	assert.Contains(t, html, "<strong>Go</strong> &amp; &lt;script&gt;")
	assert.Contains(t, html, "<u>care</u>")
	assert.Contains(t, html, "<em>platform</em>")
	assert.NotContains(t, html, "<script>")
}

func TestOptionalFieldsOmitted(t *testing.T) {
	data := fullResume()
	html := renderResume(t, "modern", data, nil)
	assert.Contains(t, html, "GPA 3.9")
	assert.Contains(t, html, `href="https://github.com/jane/forge"`)

	data.Education[0].GPA = ""
	html = renderResume(t, "modern", data, nil)
	assert.NotContains(t, html, "GPA")
	assert.NotContains(t, html, `class="photo`)
}

func TestPhotoPlaceholderWhenTemplateHasPhoto(t *testing.T) {
	data := fullResume()
	html := renderResume(t, "executive", data, nil)
	assert.Contains(t, html, `photo--placeholder`)
	assert.Contains(t, html, ">JD<")

	data.Basics.Photo = "data:image/png;base64,iVBORw0KGgo="
	html = renderResume(t, "executive", data, nil)
	assert.Contains(t, html, `src="data:image/png;base64,iVBORw0KGgo="`)
}

func TestCoverLetterMarkup(t *testing.T) {
	letter := &document.CoverLetterData{
		Basics:    document.Basics{Name: "Jane Doe", Email: "jane@example.com"},
		Recipient: document.Recipient{ManagerName: "Sam Lee", Company: "Acme", Address: "1 Main St\nSpringfield"},
		Subject:   "Application for Staff Engineer",
		Greeting:  "Dear Sam,",
		Body:      "I would *love* to join.\n\n- Go\n- Kubernetes",
		Closing:   "Regards,",
		Signature: "Jane",
		Metadata:  document.Metadata{SectionSeparator: document.SeparatorBar, Watermark: true},
	}
	catalog := templates.MustLoadBuiltin()
	in := document.Input{Type: document.KindCoverLetter, CoverLetter: letter}
	cfg := catalog.Resolve(in.Template(), nil, in.Preferences())
	view, err := document.Prepare(in, cfg)
	require.NoError(t, err)

	out, err := New(WithWatermark("SAMPLE")).Render(view, cfg)
	require.NoError(t, err)
	html := string(out)

	assert.Equal(t, []string{"basics", "recipient", "subject", "body"}, renderedSections(html))
	assert.Contains(t, html, `data-separator="bar"`)
	assert.Contains(t, html, "<div>Springfield</div>")
	assert.Contains(t, html, "<em>love</em>")
	assert.Contains(t, html, `class="watermark"`)
	assert.Contains(t, html, "SAMPLE")

	letter.Metadata.SectionSeparator = document.SeparatorNone
	letter.Metadata.Watermark = false
	view, err = document.Prepare(in, cfg)
	require.NoError(t, err)
	out, err = New().Render(view, cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "data-separator")
	assert.NotContains(t, string(out), `class="watermark"`)
}

func TestRenderIsDeterministic(t *testing.T) {
	a := renderResume(t, "creative", fullResume(), nil)
	b := renderResume(t, "creative", fullResume(), nil)
	assert.Equal(t, a, b)
}
