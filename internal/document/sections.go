package document

import (
	"strings"

	"resumeforge/internal/richtext"
	"resumeforge/internal/templates"
)

// Section is one renderable block in final display order.
type Section struct {
	ID    string
	Type  SectionType
	Title string
	Body  Body
}

// Body is implemented only by the section body types in this package; renderers
// switch over the concrete type.
type Body interface {
	sectionBody()
}

// ContactItem 是联系方式中的一项，Kind 为字段名（email、phone 等）。
type ContactItem struct {
	Kind  string
	Value string
}

type HeaderBody struct {
	Name    string
	Title   string
	Contact []ContactItem
	// Photo is set only when the template shows photos; it may still be empty,
	// in which case renderers draw a placeholder.
	Photo     string
	ShowPhoto bool
}

type SummaryBody struct {
	Blocks []richtext.Block
}

type ExperienceEntry struct {
	ID       string
	Position string
	Company  string
	Location string
	Period   string
	Blocks   []richtext.Block
}

type ExperienceBody struct {
	Entries []ExperienceEntry
}

type EducationEntry struct {
	ID          string
	Institution string
	Degree      string
	Location    string
	Period      string
	GPA         string
	Blocks      []richtext.Block
}

type EducationBody struct {
	Entries []EducationEntry
}

// SkillGroup keeps skills of one category together, in first-appearance order.
type SkillGroup struct {
	Category string
	Skills   []Skill
}

type SkillsBody struct {
	Groups []SkillGroup
}

type ProjectEntry struct {
	ID           string
	Name         string
	Link         string
	Period       string
	Technologies []string
	Blocks       []richtext.Block
}

type ProjectsBody struct {
	Entries []ProjectEntry
}

type CertificationEntry struct {
	ID     string
	Name   string
	Issuer string
	Date   string
	Link   string
}

type CertificationsBody struct {
	Entries []CertificationEntry
}

func (HeaderBody) sectionBody()         {}
func (SummaryBody) sectionBody()        {}
func (ExperienceBody) sectionBody()     {}
func (EducationBody) sectionBody()      {}
func (SkillsBody) sectionBody()         {}
func (ProjectsBody) sectionBody()       {}
func (CertificationsBody) sectionBody() {}

// BuildSections 按结构顺序生成可渲染分区：不可见、未知/自定义类型以及内容为空的分区都会被跳过。
func BuildSections(data ResumeData, cfg templates.Config) []Section {
	structure := ActiveStructure(data.Structure)
	sections := make([]Section, 0, len(structure))

	for _, d := range structure {
		if !d.Visible() {
			continue
		}
		body, ok := extract(d.Type, data, cfg)
		if !ok {
			continue
		}
		title := strings.TrimSpace(d.Title)
		if title == "" {
			title = DefaultTitle(d.Type)
		}
		id := d.ID
		if id == "" {
			id = string(d.Type)
		}
		sections = append(sections, Section{ID: id, Type: d.Type, Title: title, Body: body})
	}

	return sections
}

func extract(t SectionType, data ResumeData, cfg templates.Config) (Body, bool) {
	switch t {
	case SectionBasics:
		return headerBody(data.Basics, cfg)
	case SectionSummary:
		return summaryBody(data.Basics.Summary)
	case SectionExperience:
		return experienceBody(data.Experiences)
	case SectionEducation:
		return educationBody(data.Education)
	case SectionSkills:
		return skillsBody(data.Skills)
	case SectionProjects:
		return projectsBody(data.Projects)
	case SectionCertifications:
		return certificationsBody(data.Certifications)
	default:
		// custom and unknown types carry no data of their own
		return nil, false
	}
}

// ContactLine returns the non-blank contact fields in fixed order:
// location, email, phone, linkedin, github, portfolio.
func ContactLine(b Basics) []ContactItem {
	fields := []ContactItem{
		{Kind: "location", Value: b.Location},
		{Kind: "email", Value: b.Email},
		{Kind: "phone", Value: b.Phone},
		{Kind: "linkedin", Value: b.LinkedIn},
		{Kind: "github", Value: b.GitHub},
		{Kind: "portfolio", Value: b.Portfolio},
	}
	out := make([]ContactItem, 0, len(fields))
	for _, f := range fields {
		f.Value = strings.TrimSpace(f.Value)
		if f.Value == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func headerBody(b Basics, cfg templates.Config) (Body, bool) {
	h := HeaderBody{
		Name:      strings.TrimSpace(b.Name),
		Title:     strings.TrimSpace(b.Title),
		Contact:   ContactLine(b),
		ShowPhoto: cfg.HasPhoto,
	}
	if cfg.HasPhoto {
		h.Photo = strings.TrimSpace(b.Photo)
	}
	if h.Name == "" && h.Title == "" && len(h.Contact) == 0 {
		return nil, false
	}
	return h, true
}

func summaryBody(summary string) (Body, bool) {
	blocks := richtext.Parse(summary)
	if len(blocks) == 0 {
		return nil, false
	}
	return SummaryBody{Blocks: blocks}, true
}

func experienceBody(items []Experience) (Body, bool) {
	entries := make([]ExperienceEntry, 0, len(items))
	for _, e := range items {
		entry := ExperienceEntry{
			ID:       e.ID,
			Position: strings.TrimSpace(e.Position),
			Company:  strings.TrimSpace(e.Company),
			Location: strings.TrimSpace(e.Location),
			Period:   Period(e.StartDate, e.EndDate, e.Current),
			Blocks:   richtext.Parse(e.Description),
		}
		if entry.Position == "" && entry.Company == "" && len(entry.Blocks) == 0 {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, false
	}
	return ExperienceBody{Entries: entries}, true
}

func educationBody(items []Education) (Body, bool) {
	entries := make([]EducationEntry, 0, len(items))
	for _, e := range items {
		degree := strings.TrimSpace(e.Degree)
		if field := strings.TrimSpace(e.Field); field != "" {
			if degree == "" {
				degree = field
			} else {
				degree += ", " + field
			}
		}
		entry := EducationEntry{
			ID:          e.ID,
			Institution: strings.TrimSpace(e.Institution),
			Degree:      degree,
			Location:    strings.TrimSpace(e.Location),
			Period:      Period(e.StartDate, e.EndDate, false),
			GPA:         strings.TrimSpace(e.GPA),
			Blocks:      richtext.Parse(e.Description),
		}
		if entry.Institution == "" && entry.Degree == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, false
	}
	return EducationBody{Entries: entries}, true
}

func skillsBody(items []Skill) (Body, bool) {
	var groups []SkillGroup
	index := map[string]int{}
	for _, s := range items {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		s.Level = strings.TrimSpace(s.Level)
		category := strings.TrimSpace(s.Category)
		idx, ok := index[category]
		if !ok {
			idx = len(groups)
			index[category] = idx
			groups = append(groups, SkillGroup{Category: category})
		}
		groups[idx].Skills = append(groups[idx].Skills, s)
	}
	if len(groups) == 0 {
		return nil, false
	}
	return SkillsBody{Groups: groups}, true
}

func projectsBody(items []Project) (Body, bool) {
	entries := make([]ProjectEntry, 0, len(items))
	for _, p := range items {
		entry := ProjectEntry{
			ID:     p.ID,
			Name:   strings.TrimSpace(p.Name),
			Link:   strings.TrimSpace(p.Link),
			Period: Period(p.StartDate, p.EndDate, false),
			Blocks: richtext.Parse(p.Description),
		}
		for _, tech := range p.Technologies {
			if tech = strings.TrimSpace(tech); tech != "" {
				entry.Technologies = append(entry.Technologies, tech)
			}
		}
		if entry.Name == "" && len(entry.Blocks) == 0 {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, false
	}
	return ProjectsBody{Entries: entries}, true
}

func certificationsBody(items []Certification) (Body, bool) {
	entries := make([]CertificationEntry, 0, len(items))
	for _, c := range items {
		entry := CertificationEntry{
			ID:     c.ID,
			Name:   strings.TrimSpace(c.Name),
			Issuer: strings.TrimSpace(c.Issuer),
			Date:   strings.TrimSpace(c.Date),
			Link:   strings.TrimSpace(c.Link),
		}
		if entry.Name == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, false
	}
	return CertificationsBody{Entries: entries}, true
}

// Period joins start and end dates; a current role ends with "Present".
func Period(start, end string, current bool) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if current {
		end = "Present"
	}
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	default:
		return end
	}
}

// LinkURL returns link with an https scheme added when it has none.
func LinkURL(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	lower := strings.ToLower(link)
	if strings.Contains(lower, "://") || strings.HasPrefix(lower, "mailto:") {
		return link
	}
	return "https://" + link
}
