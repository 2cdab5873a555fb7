package document

// Sample returns a fully populated input of the given kind. It backs template
// thumbnails and `resumectl render --sample`.
func Sample(kind Kind, templateID string) Input {
	if kind == KindCoverLetter {
		data := sampleCoverLetter()
		return Input{Type: KindCoverLetter, TemplateID: templateID, CoverLetter: &data}
	}
	if kind != KindCV {
		kind = KindResume
	}
	data := sampleResume()
	return Input{Type: kind, TemplateID: templateID, Resume: &data}
}

func sampleBasics() Basics {
	return Basics{
		Name:      "Alex Morgan",
		Title:     "Senior Backend Engineer",
		Location:  "Berlin, DE",
		Email:     "alex.morgan@example.com",
		Phone:     "+49 30 1234 5678",
		LinkedIn:  "linkedin.com/in/alexmorgan",
		GitHub:    "github.com/alexmorgan",
		Portfolio: "alexmorgan.dev",
		Summary:   "Backend engineer with **8 years** of experience building _reliable_ distributed systems and developer tooling.",
	}
}

func sampleResume() ResumeData {
	return ResumeData{
		Basics: sampleBasics(),
		Experiences: []Experience{
			{
				ID:          "exp-1",
				Company:     "Northwind Logistics",
				Position:    "Senior Backend Engineer",
				Location:    "Berlin",
				StartDate:   "2021-03",
				Current:     true,
				Description: "- Led the migration of order routing to an event-driven pipeline\n- Cut p99 latency of the pricing API by **40%**\n- Mentored four engineers through on-call onboarding",
			},
			{
				ID:          "exp-2",
				Company:     "Contoso Cloud",
				Position:    "Software Engineer",
				Location:    "Hamburg",
				StartDate:   "2017-09",
				EndDate:     "2021-02",
				Description: "- Built the multi-tenant billing service\n- Introduced contract tests across twelve services",
			},
		},
		Education: []Education{
			{
				ID:          "edu-1",
				Institution: "Technical University of Munich",
				Degree:      "M.Sc.",
				Field:       "Computer Science",
				StartDate:   "2015",
				EndDate:     "2017",
				GPA:         "1.3",
			},
		},
		Skills: []Skill{
			{ID: "sk-1", Name: "Go", Category: "Languages"},
			{ID: "sk-2", Name: "SQL", Category: "Languages"},
			{ID: "sk-3", Name: "PostgreSQL", Category: "Data"},
			{ID: "sk-4", Name: "Redis", Category: "Data"},
			{ID: "sk-5", Name: "Kubernetes", Category: "Platform"},
		},
		Projects: []Project{
			{
				ID:           "prj-1",
				Name:         "queue-inspector",
				Description:  "Terminal UI for inspecting and replaying background jobs.",
				Technologies: []string{"Go", "Redis"},
				Link:         "github.com/alexmorgan/queue-inspector",
			},
		},
		Certifications: []Certification{
			{ID: "cert-1", Name: "Certified Kubernetes Administrator", Issuer: "CNCF", Date: "2022", Link: "https://www.cncf.io/certification/cka/"},
		},
	}
}

func sampleCoverLetter() CoverLetterData {
	return CoverLetterData{
		Basics: sampleBasics(),
		Recipient: Recipient{
			ManagerName: "Jordan Lee",
			Company:     "Fabrikam GmbH",
			Address:     "Friedrichstrasse 10\n10117 Berlin",
		},
		Date:      "March 4, 2024",
		Subject:   "Application for Staff Engineer",
		Greeting:  "Dear Jordan Lee,",
		Body:      "I am writing to apply for the **Staff Engineer** role at Fabrikam.\n\nOver the past years I have:\n- scaled event pipelines to millions of messages a day\n- led platform migrations without downtime\n\nI would welcome the chance to discuss how I can help your team.",
		Closing:   "Kind regards,",
		Signature: "Alex Morgan",
	}
}
