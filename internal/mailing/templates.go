package mailing

import (
	"os"

	"github.com/ignite/outreach-tracker/internal/domain"
)

// Built-in templates used when no template files are configured. The body
// carries the cta-button link that tracking injection rewrites.
const (
	DefaultSubjectTemplate = `{{ recipient_name | default: "there" }}, let's improve {{ company_name }}'s performance in {{ industry }}`

	DefaultBodyTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Outreach Email</title>
</head>
<body>
  <div class="container">
    <p>Hi {{ recipient_name | default: "there" }},</p>
    <p>I came across {{ company_name }} while researching {{ industry }} companies
    in {{ location }} and was impressed by your work in this space.</p>
    <p>We've helped companies similar to yours, and I'd love to share how we might
    be able to do the same for {{ company_name }}.</p>
    <a href="https://calendly.com/outreach/intro" class="cta-button">Schedule a 15-minute call</a>
    <p>Thank you for your time, {{ recipient_name | default: "there" }}.</p>
  </div>
</body>
</html>`
)

// Renderer produces the personalized subject and body for one lead. It is
// the template-rendering collaborator the send loop depends on.
type Renderer struct {
	ts      *TemplateService
	subject string
	body    string
}

// NewRenderer creates a renderer over literal template strings.
func NewRenderer(subject, body string) *Renderer {
	if subject == "" {
		subject = DefaultSubjectTemplate
	}
	if body == "" {
		body = DefaultBodyTemplate
	}
	return &Renderer{ts: NewTemplateService(), subject: subject, body: body}
}

// NewRendererFromFiles loads templates from the given paths, substituting
// the built-in defaults for any path that is empty or missing.
func NewRendererFromFiles(subjectPath, bodyPath string) *Renderer {
	return NewRenderer(readTemplate(subjectPath), readTemplate(bodyPath))
}

func readTemplate(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// Render produces the subject line and HTML body for a lead.
func (r *Renderer) Render(lead domain.Lead) (subject, body string, err error) {
	ctx := map[string]interface{}{
		"recipient_name": lead.FirstName(),
		"company_name":   orDefault(lead.Company, "your company"),
		"industry":       orDefault(lead.Industry, "your industry"),
		"location":       orDefault(lead.Location, "your area"),
	}

	subject, err = r.ts.Render("subject", r.subject, ctx)
	if err != nil {
		return "", "", err
	}
	body, err = r.ts.Render("body", r.body, ctx)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
