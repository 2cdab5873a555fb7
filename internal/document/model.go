// Package document 定义简历 / CV / 求职信的输入数据，并把它们转换为渲染器使用的有序分区。
package document

// Kind 区分文档类型。
type Kind string

const (
	KindResume      Kind = "resume"
	KindCV          Kind = "cv"
	KindCoverLetter Kind = "cover-letter"
)

// SectionType is the closed set of section kinds a structure may reference.
type SectionType string

const (
	SectionBasics         SectionType = "basics"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionProjects       SectionType = "projects"
	SectionCertifications SectionType = "certifications"
	SectionCustom         SectionType = "custom"
)

// SectionDescriptor controls presence and order of one section. A nil IsVisible counts as visible.
type SectionDescriptor struct {
	ID        string      `json:"id"`
	Type      SectionType `json:"type"`
	Title     string      `json:"title,omitempty"`
	IsVisible *bool       `json:"isVisible,omitempty"`
	Order     int         `json:"order"`
}

// Visible reports whether the descriptor should be rendered.
func (d SectionDescriptor) Visible() bool {
	return d.IsVisible == nil || *d.IsVisible
}

// Basics 个人信息与联系方式。Summary 支持轻量富文本。
type Basics struct {
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Location  string `json:"location,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Summary   string `json:"summary,omitempty"`
	// Photo is a data: URI, or an asset object key that the export worker inlines.
	Photo string `json:"photo,omitempty"`
}

type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	GPA         string `json:"gpa,omitempty"`
	Description string `json:"description,omitempty"`
}

type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Level    string `json:"level,omitempty"`
	Category string `json:"category,omitempty"`
}

type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Link         string   `json:"link,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
}

type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
	Link   string `json:"link,omitempty"`
}

// Metadata carries per-document presentation settings chosen by the user.
type Metadata struct {
	Template         string    `json:"template,omitempty"`
	ThemeColor       string    `json:"themeColor,omitempty"`
	FontFamily       string    `json:"fontFamily,omitempty"`
	FontSize         string    `json:"fontSize,omitempty"` // sm | md | lg
	Watermark        bool      `json:"watermark,omitempty"`
	SectionSeparator Separator `json:"sectionSeparator,omitempty"`
}

// ResumeData is shared by resumes and CVs.
type ResumeData struct {
	Basics         Basics              `json:"basics"`
	Experiences    []Experience        `json:"experiences,omitempty"`
	Education      []Education         `json:"education,omitempty"`
	Skills         []Skill             `json:"skills,omitempty"`
	Projects       []Project           `json:"projects,omitempty"`
	Certifications []Certification     `json:"certifications,omitempty"`
	Metadata       Metadata            `json:"metadata"`
	Structure      []SectionDescriptor `json:"structure,omitempty"`
}

// Recipient 求职信收件人信息。
type Recipient struct {
	ManagerName string `json:"managerName,omitempty"`
	Company     string `json:"company,omitempty"`
	Address     string `json:"address,omitempty"`
}

type CoverLetterData struct {
	Basics    Basics    `json:"basics"`
	Recipient Recipient `json:"recipient"`
	Date      string    `json:"date,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Greeting  string    `json:"greeting,omitempty"`
	Body      string    `json:"body"`
	Closing   string    `json:"closing,omitempty"`
	Signature string    `json:"signature,omitempty"`
	Metadata  Metadata  `json:"metadata"`
}

// Separator 是求职信页眉与收件人之间的分隔样式。
type Separator string

const (
	SeparatorLine Separator = "line"
	SeparatorBar  Separator = "bar"
	SeparatorNone Separator = "none"
)

func normalizeSeparator(s Separator) Separator {
	switch s {
	case SeparatorLine, SeparatorBar, SeparatorNone:
		return s
	}
	return SeparatorLine
}
