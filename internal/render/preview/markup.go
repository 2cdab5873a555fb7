package preview

// pageTemplate 是预览页面的 HTML 模板。各分区正文由 bodyTemplates 单独渲染后注入。
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>{{.Style}}</style>
</head>
<body>
<div id="a4-container" class="page layout--{{.Layout}} header--{{.HeaderStyle}} sections--{{.SectionStyle}}" data-layout="{{.Layout}}" data-kind="{{.Kind}}">
{{- if ne .Ornament "none"}}
<div class="ornament ornament--{{.Ornament}}" data-ornament="{{.Ornament}}" aria-hidden="true"></div>
{{- end}}
{{- if .Watermark}}
<div class="watermark" aria-hidden="true">{{.Watermark}}</div>
{{- end}}
{{- if .Letter}}
{{template "letter" .Letter}}
{{- else}}
{{- range .Regions}}
<div class="region region--{{.Name}}" data-region="{{.Name}}">
{{- range .Blocks}}
{{- if eq .Type "basics"}}
{{.HTML}}
{{- else}}
<section class="section{{if $.Cards}} card{{end}}" id="section-{{.ID}}" data-section="{{.Type}}">
<h2 class="section-title">{{.Title}}</h2>
{{.HTML}}
</section>
{{- end}}
{{- end}}
</div>
{{- end}}
{{- end}}
</div>
<div id="pdf-render-ready" hidden></div>
</body>
</html>
`

const bodyTemplates = `
{{define "blocks"}}
{{- range .}}
{{- if eq .Kind "list"}}
<ul class="bullets">{{range .Items}}<li>{{inline .}}</li>{{end}}</ul>
{{- else}}
<p class="text">{{inline .Text}}</p>
{{- end}}
{{- end}}
{{end}}

{{define "photo"}}
{{- if .ShowPhoto}}
{{- with photoSrc .Photo}}
<img class="photo" src="{{.}}" alt="">
{{- else}}
<div class="photo photo--placeholder" aria-hidden="true">{{initials $.Name}}</div>
{{- end}}
{{- end}}
{{end}}

{{define "header"}}
<header class="header" data-section="basics">
<div class="header-identity">
{{template "photo" .}}
<div class="header-names">
{{- with .Name}}<h1 class="name">{{.}}</h1>{{end}}
{{- with .Title}}<p class="headline">{{.}}</p>{{end}}
</div>
</div>
{{- with .Contact}}
<ul class="contact">{{range .}}<li class="contact-item" data-contact="{{.Kind}}">{{.Value}}</li>{{end}}</ul>
{{- end}}
</header>
{{end}}

{{define "summary"}}{{template "blocks" .Blocks}}{{end}}

{{define "experience"}}
{{- range .Entries}}
<article class="entry" data-entry="{{.ID}}">
<div class="entry-head">
<div>
{{- with .Position}}<h3 class="entry-title">{{.}}</h3>{{end}}
{{- if or .Company .Location}}<p class="entry-sub">{{.Company}}{{if and .Company .Location}} · {{end}}{{.Location}}</p>{{end}}
</div>
{{- with .Period}}<span class="entry-date">{{.}}</span>{{end}}
</div>
{{template "blocks" .Blocks}}
</article>
{{- end}}
{{end}}

{{define "education"}}
{{- range .Entries}}
<article class="entry" data-entry="{{.ID}}">
<div class="entry-head">
<div>
{{- with .Degree}}<h3 class="entry-title">{{.}}</h3>{{end}}
{{- if or .Institution .Location}}<p class="entry-sub">{{.Institution}}{{if and .Institution .Location}} · {{end}}{{.Location}}</p>{{end}}
</div>
{{- with .Period}}<span class="entry-date">{{.}}</span>{{end}}
</div>
{{- with .GPA}}<p class="entry-meta">GPA {{.}}</p>{{end}}
{{template "blocks" .Blocks}}
</article>
{{- end}}
{{end}}

{{define "skills"}}
{{- range .Groups}}
<div class="skill-group">
{{- with .Category}}<h3 class="skill-category">{{.}}</h3>{{end}}
<ul class="skills">{{range .Skills}}<li class="skill">{{.Name}}{{with .Level}} <span class="skill-level">{{.}}</span>{{end}}</li>{{end}}</ul>
</div>
{{- end}}
{{end}}

{{define "projects"}}
{{- range .Entries}}
<article class="entry" data-entry="{{.ID}}">
<div class="entry-head">
<div>
{{- with .Name}}<h3 class="entry-title">{{.}}</h3>{{end}}
{{- with .Link}}<a class="entry-link" href="{{href .}}">{{.}}</a>{{end}}
</div>
{{- with .Period}}<span class="entry-date">{{.}}</span>{{end}}
</div>
{{template "blocks" .Blocks}}
{{- with .Technologies}}<p class="entry-meta">{{join ", " .}}</p>{{end}}
</article>
{{- end}}
{{end}}

{{define "certifications"}}
<ul class="certs">
{{- range .Entries}}
<li class="cert" data-entry="{{.ID}}">
{{- if .Link}}<a href="{{href .Link}}">{{.Name}}</a>{{else}}<span>{{.Name}}</span>{{end}}
{{- with .Issuer}} <span class="cert-issuer">{{.}}</span>{{end}}
{{- with .Date}} <span class="entry-date">{{.}}</span>{{end}}
</li>
{{- end}}
</ul>
{{end}}

{{define "letter"}}
<div class="region region--letter" data-region="letter">
{{template "header" .Sender}}
{{- if ne .Separator "none"}}
<hr class="separator separator--{{.Separator}}" data-separator="{{.Separator}}">
{{- end}}
{{- with .Date}}<p class="letter-date">{{.}}</p>{{end}}
{{- if .HasRecipient}}
<address class="recipient" data-section="recipient">
{{- with .Recipient.ManagerName}}<div>{{.}}</div>{{end}}
{{- with .Recipient.Company}}<div>{{.}}</div>{{end}}
{{- range .Recipient.AddressLines}}<div>{{.}}</div>{{end}}
</address>
{{- end}}
{{- with .Subject}}<p class="subject" data-section="subject">{{.}}</p>{{end}}
{{- with .Greeting}}<p class="greeting">{{.}}</p>{{end}}
<div class="letter-body" data-section="body">{{template "blocks" .Body}}</div>
{{- with .Closing}}<p class="closing">{{.}}</p>{{end}}
{{- with .Signature}}<p class="signature">{{.}}</p>{{end}}
</div>
{{end}}
`
