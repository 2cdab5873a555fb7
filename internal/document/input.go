package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"resumeforge/internal/richtext"
	"resumeforge/internal/templates"
)

var ErrInvalidInput = errors.New("invalid document input")

// Input 是一次渲染调用的完整输入，JSON 中按 type 区分 data 的形状。
type Input struct {
	Type        Kind
	TemplateID  string
	Overrides   *templates.Overrides
	Resume      *ResumeData
	CoverLetter *CoverLetterData
}

type inputJSON struct {
	Type       Kind                 `json:"type"`
	TemplateID string               `json:"templateId,omitempty"`
	Overrides  *templates.Overrides `json:"overrides,omitempty"`
	Data       json.RawMessage      `json:"data"`
}

func (in Input) MarshalJSON() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch in.Type {
	case KindCoverLetter:
		data, err = json.Marshal(in.CoverLetter)
	default:
		data, err = json.Marshal(in.Resume)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(inputJSON{
		Type:       in.Type,
		TemplateID: in.TemplateID,
		Overrides:  in.Overrides,
		Data:       data,
	})
}

func (in *Input) UnmarshalJSON(b []byte) error {
	var raw inputJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*in = Input{Type: raw.Type, TemplateID: raw.TemplateID, Overrides: raw.Overrides}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}
	switch raw.Type {
	case KindResume, KindCV:
		var data ResumeData
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return fmt.Errorf("decode %s data: %w", raw.Type, err)
		}
		in.Resume = &data
	case KindCoverLetter:
		var data CoverLetterData
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return fmt.Errorf("decode cover letter data: %w", err)
		}
		in.CoverLetter = &data
	default:
		return fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, raw.Type)
	}
	return nil
}

// Validate checks that the payload matches the declared type.
func (in Input) Validate() error {
	switch in.Type {
	case KindResume, KindCV:
		if in.Resume == nil {
			return fmt.Errorf("%w: %s requires resume data", ErrInvalidInput, in.Type)
		}
	case KindCoverLetter:
		if in.CoverLetter == nil {
			return fmt.Errorf("%w: cover letter requires cover letter data", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, in.Type)
	}
	return nil
}

func (in Input) Metadata() Metadata {
	switch {
	case in.Type == KindCoverLetter && in.CoverLetter != nil:
		return in.CoverLetter.Metadata
	case in.Resume != nil:
		return in.Resume.Metadata
	}
	return Metadata{}
}

// Template 返回显式的模板 id，缺省时取 metadata.template。
func (in Input) Template() string {
	if id := strings.TrimSpace(in.TemplateID); id != "" {
		return id
	}
	return strings.TrimSpace(in.Metadata().Template)
}

func (in Input) Preferences() templates.Preferences {
	md := in.Metadata()
	return templates.Preferences{FontFamily: md.FontFamily, ThemeColor: md.ThemeColor}
}

// FontScale maps a font size bucket to the global scale factor.
func FontScale(bucket string) float64 {
	switch strings.ToLower(strings.TrimSpace(bucket)) {
	case "sm":
		return 0.9
	case "lg":
		return 1.12
	default:
		return 1.0
	}
}

// Letter is the cover-letter view consumed by renderers.
type Letter struct {
	Sender    HeaderBody
	Recipient Recipient
	Date      string
	Subject   string
	Greeting  string
	Body      []richtext.Block
	Closing   string
	Signature string
}

// View 是渲染器的统一输入：简历/CV 使用 Sections，求职信使用 Letter。
type View struct {
	Kind      Kind
	Title     string
	Sections  []Section
	Letter    *Letter
	Scale     float64
	Watermark bool
	Separator Separator
}

// Prepare validates the input and builds the renderer view for cfg.
func Prepare(in Input, cfg templates.Config) (View, error) {
	if err := in.Validate(); err != nil {
		return View{}, err
	}
	md := in.Metadata()
	view := View{
		Kind:      in.Type,
		Scale:     FontScale(md.FontSize),
		Watermark: md.Watermark,
		Separator: normalizeSeparator(md.SectionSeparator),
	}

	switch in.Type {
	case KindCoverLetter:
		letter := buildLetter(*in.CoverLetter, cfg)
		view.Letter = &letter
		view.Title = titleFor(letter.Sender.Name, "Cover Letter")
	default:
		view.Sections = BuildSections(*in.Resume, cfg)
		label := "Resume"
		if in.Type == KindCV {
			label = "CV"
		}
		view.Title = titleFor(in.Resume.Basics.Name, label)
	}
	return view, nil
}

func buildLetter(data CoverLetterData, cfg templates.Config) Letter {
	sender := HeaderBody{
		Name:      strings.TrimSpace(data.Basics.Name),
		Title:     strings.TrimSpace(data.Basics.Title),
		Contact:   ContactLine(data.Basics),
		ShowPhoto: cfg.HasPhoto,
	}
	if cfg.HasPhoto {
		sender.Photo = strings.TrimSpace(data.Basics.Photo)
	}
	return Letter{
		Sender: sender,
		Recipient: Recipient{
			ManagerName: strings.TrimSpace(data.Recipient.ManagerName),
			Company:     strings.TrimSpace(data.Recipient.Company),
			Address:     strings.TrimSpace(data.Recipient.Address),
		},
		Date:      strings.TrimSpace(data.Date),
		Subject:   strings.TrimSpace(data.Subject),
		Greeting:  strings.TrimSpace(data.Greeting),
		Body:      richtext.Parse(data.Body),
		Closing:   strings.TrimSpace(data.Closing),
		Signature: strings.TrimSpace(data.Signature),
	}
}

func titleFor(name, label string) string {
	if name = strings.TrimSpace(name); name == "" {
		return label
	}
	return name + " - " + label
}

// AddressLines splits a multi-line address, dropping blank lines.
func (r Recipient) AddressLines() []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(r.Address, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Initials returns up to two uppercase initials for the photo placeholder.
func Initials(name string) string {
	var b strings.Builder
	for i, f := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r := []rune(f)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}
