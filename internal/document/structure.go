package document

import "sort"

var defaultOrder = []SectionType{
	SectionBasics,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
}

var defaultTitles = map[SectionType]string{
	SectionSummary:        "Summary",
	SectionExperience:     "Experience",
	SectionEducation:      "Education",
	SectionSkills:         "Skills",
	SectionProjects:       "Projects",
	SectionCertifications: "Certifications",
}

// DefaultStructure returns the seven built-in sections, all visible, in canonical order.
func DefaultStructure() []SectionDescriptor {
	out := make([]SectionDescriptor, 0, len(defaultOrder))
	for i, t := range defaultOrder {
		out = append(out, SectionDescriptor{
			ID:    string(t),
			Type:  t,
			Title: defaultTitles[t],
			Order: i,
		})
	}
	return out
}

// ActiveStructure 返回按 Order 升序（稳定）排序后的结构副本；为空时返回默认结构。
func ActiveStructure(structure []SectionDescriptor) []SectionDescriptor {
	if len(structure) == 0 {
		return DefaultStructure()
	}
	out := make([]SectionDescriptor, len(structure))
	copy(out, structure)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// DefaultTitle returns the heading used when a descriptor carries no title.
func DefaultTitle(t SectionType) string {
	return defaultTitles[t]
}
