package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/document"
	"resumeforge/internal/render/pdf"
	"resumeforge/internal/templates"
)

func sampleInput(templateID string) document.Input {
	return document.Input{
		Type:       document.KindResume,
		TemplateID: templateID,
		Resume: &document.ResumeData{
			Basics:      document.Basics{Name: "Jane Doe", Summary: "Engineer"},
			Experiences: []document.Experience{{ID: "e1", Company: "Acme", Position: "Engineer"}},
		},
	}
}

func TestEngineRendersBothBackends(t *testing.T) {
	e := NewEngine(templates.MustLoadBuiltin(), pdf.WithClock(func() time.Time { return time.Unix(0, 0) }))

	html, err := e.Preview(sampleInput("classic"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Jane Doe")

	res, err := e.RenderToBuffer(sampleInput("classic"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.Data, []byte("%PDF")))
	assert.Equal(t, 1, res.Pages)
}

func TestUnknownTemplateFallsBackToDefault(t *testing.T) {
	e := NewEngine(templates.MustLoadBuiltin())
	cfg := e.Config(sampleInput("does-not-exist"))
	modern, _ := e.Catalog().Lookup(templates.DefaultTemplateID)
	assert.Equal(t, modern.Config.Layout, cfg.Layout)

	_, err := e.RenderToBuffer(sampleInput("does-not-exist"))
	assert.NoError(t, err)
}

func TestPDFFailsWhenNoTemplateResolves(t *testing.T) {
	empty, err := templates.NewCatalog(nil)
	require.NoError(t, err)
	e := NewEngine(empty)

	_, err = e.RenderToBuffer(sampleInput("modern"))
	assert.ErrorIs(t, err, templates.ErrTemplateUnavailable)

	// the preview keeps rendering with built-in defaults
	html, err := e.Preview(sampleInput("modern"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(html), "layout--stacked"))
}

func TestInvalidInputRejected(t *testing.T) {
	e := NewEngine(templates.MustLoadBuiltin())
	_, err := e.RenderToBuffer(document.Input{Type: document.KindCoverLetter})
	assert.ErrorIs(t, err, document.ErrInvalidInput)
}

func TestSectionOrderMatchesAcrossBackends(t *testing.T) {
	e := NewEngine(templates.MustLoadBuiltin(), pdf.WithCompression(false))
	in := sampleInput("modern")
	in.Resume.Skills = []document.Skill{{ID: "s1", Name: "Golang"}}
	in.Resume.Structure = []document.SectionDescriptor{
		{ID: "skills", Type: document.SectionSkills, Title: "Toolbox", Order: 0},
		{ID: "experience", Type: document.SectionExperience, Title: "Work", Order: 1},
	}

	html, err := e.Preview(in)
	require.NoError(t, err)
	res, err := e.RenderToBuffer(in)
	require.NoError(t, err)

	h := string(html)
	p := string(res.Data)
	assert.Less(t, strings.Index(h, "Toolbox"), strings.Index(h, "Work"))
	assert.Less(t, strings.Index(p, "(Toolbox)"), strings.Index(p, "(Work)"))
}

func TestDefaultTemplateAppliesWhenInputNamesNone(t *testing.T) {
	e := NewEngine(templates.MustLoadBuiltin()).WithDefaultTemplate("portfolio")

	cfg := e.Config(sampleInput(""))
	assert.Equal(t, templates.LayoutCards, cfg.Layout)

	// an explicit id still wins
	cfg = e.Config(sampleInput("executive"))
	assert.Equal(t, templates.LayoutSidebarLeft, cfg.Layout)
}
