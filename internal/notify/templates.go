package notify

import (
	"bytes"
	"fmt"
	"html"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fixitsanclemente/quote-intake/internal/business"
	"github.com/fixitsanclemente/quote-intake/internal/leads"
	"github.com/fixitsanclemente/quote-intake/internal/quote"
)

// RenderedEmail is a subject plus HTML and plain-text bodies.
type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

// Message addresses the rendered email.
func (r RenderedEmail) Message(to, toName string) EmailMessage {
	return EmailMessage{
		To:      to,
		ToName:  toName,
		Subject: r.Subject,
		Body:    r.Text,
		HTML:    r.HTML,
	}
}

type emailData struct {
	Business    *business.Profile
	BusinessTel string
	Lead        *leads.Record
	CustomerTel string
	Address     string
	Description htmltemplate.HTML
	PlainDesc   string
	Analysis    *quote.Analysis
	LeadRef     string
	ReceivedAt  string
}

const ownerHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #1e3a5f; color: white; padding: 20px; text-align: center;">
    <h1 style="margin: 0;">New Quote Request</h1>
  </div>
  <div style="padding: 20px; background: #f8f9fa;">
    <h2 style="color: #1e3a5f; margin-top: 0;">Customer Information</h2>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><td style="padding: 10px; border-bottom: 1px solid #dee2e6; font-weight: bold;">Name:</td><td style="padding: 10px; border-bottom: 1px solid #dee2e6;">{{.Lead.Name}}</td></tr>
      <tr><td style="padding: 10px; border-bottom: 1px solid #dee2e6; font-weight: bold;">Phone:</td><td style="padding: 10px; border-bottom: 1px solid #dee2e6;"><a href="tel:{{.CustomerTel}}">{{.Lead.Phone}}</a></td></tr>
      <tr><td style="padding: 10px; border-bottom: 1px solid #dee2e6; font-weight: bold;">Email:</td><td style="padding: 10px; border-bottom: 1px solid #dee2e6;"><a href="mailto:{{.Lead.Email}}">{{.Lead.Email}}</a></td></tr>
      <tr><td style="padding: 10px; border-bottom: 1px solid #dee2e6; font-weight: bold;">Address:</td><td style="padding: 10px; border-bottom: 1px solid #dee2e6;">{{.Address}}</td></tr>
      <tr><td style="padding: 10px; border-bottom: 1px solid #dee2e6; font-weight: bold;">Service:</td><td style="padding: 10px; border-bottom: 1px solid #dee2e6;">{{.Lead.ServiceType}}</td></tr>
    </table>
    <h2 style="color: #1e3a5f; margin-top: 20px;">Project Description</h2>
    <p style="background: white; padding: 15px; border-radius: 8px; border-left: 4px solid #f59e0b;">{{.Description}}</p>
    {{- with .Analysis}}
    <h2 style="color: #1e3a5f; margin-top: 20px;">AI Analysis</h2>
    <div style="background: white; padding: 15px; border-radius: 8px; border-left: 4px solid #10b981;">
      <p><strong>Category:</strong> {{or .Category "N/A"}}</p>
      <p><strong>Complexity:</strong> {{or .Complexity "N/A"}}</p>
      <p><strong>Est. Time:</strong> {{or .EstimatedHours "N/A"}}</p>
      <p><strong>Recommendation:</strong> {{or .Recommendation "N/A"}}</p>
    </div>
    {{- end}}
    <div style="margin-top: 20px; text-align: center;">
      <a href="tel:{{.CustomerTel}}" style="display: inline-block; background: #f59e0b; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; font-weight: bold;">Call {{.Lead.Name}}</a>
    </div>
  </div>
  <div style="background: #1e3a5f; color: white; padding: 10px; text-align: center; font-size: 12px;">
    {{.Business.Name}} &bull; Lead {{.LeadRef}} &bull; Received {{.ReceivedAt}}
  </div>
</div>
`

const ownerText = `New quote request

Name: {{.Lead.Name}}
Phone: {{.Lead.Phone}}
Email: {{.Lead.Email}}
Address: {{.Address}}
Service: {{.Lead.ServiceType}}

Project description:
{{.PlainDesc}}
{{with .Analysis}}
AI analysis:
  Category: {{or .Category "N/A"}}
  Complexity: {{or .Complexity "N/A"}}
  Est. time: {{or .EstimatedHours "N/A"}}
  Recommendation: {{or .Recommendation "N/A"}}
{{end}}
Lead {{.LeadRef}}, received {{.ReceivedAt}}
`

const customerHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #1e3a5f; color: white; padding: 20px; text-align: center;">
    <h1 style="margin: 0;">Thanks, {{.Lead.Name}}!</h1>
  </div>
  <div style="padding: 20px; background: #f8f9fa;">
    <p style="font-size: 16px;">I received your quote request and will get back to you {{.Business.ResponseWindow}} (usually much sooner!).</p>
    <h2 style="color: #1e3a5f;">Your Request Summary</h2>
    <div style="background: white; padding: 15px; border-radius: 8px;">
      <p><strong>Service:</strong> {{.Lead.ServiceType}}</p>
      <p><strong>Description:</strong> {{.Description}}</p>
    </div>
    <div style="margin-top: 20px; padding: 15px; background: #fef3c7; border-radius: 8px;">
      <p style="margin: 0; font-weight: bold;">Need it done ASAP?</p>
      <p style="margin: 5px 0 0 0;">Call me directly: <a href="tel:{{.BusinessTel}}">{{.Business.Phone}}</a></p>
    </div>
    <p style="margin-top: 20px; color: #64748b; font-size: 14px;">- {{.Business.OwnerName}}<br>{{.Business.Name}}<br>{{.Business.Tagline}}</p>
  </div>
  <div style="background: #1e3a5f; color: white; padding: 10px; text-align: center; font-size: 12px;">
    <a href="{{.Business.SiteURL}}" style="color: #f59e0b;">{{.Business.SiteURL}}</a> &bull; {{.Business.Phone}}
  </div>
</div>
`

const customerText = `Thanks, {{.Lead.Name}}!

I received your quote request and will get back to you {{.Business.ResponseWindow}} (usually much sooner!).

Service: {{.Lead.ServiceType}}
Description: {{.PlainDesc}}

Need it done ASAP? Call me directly: {{.Business.Phone}}

- {{.Business.OwnerName}}
{{.Business.Name}}
{{.Business.SiteURL}}
`

var (
	ownerHTMLTmpl    = htmltemplate.Must(htmltemplate.New("owner").Parse(ownerHTML))
	ownerTextTmpl    = texttemplate.Must(texttemplate.New("owner").Parse(ownerText))
	customerHTMLTmpl = htmltemplate.Must(htmltemplate.New("customer").Parse(customerHTML))
	customerTextTmpl = texttemplate.Must(texttemplate.New("customer").Parse(customerText))
)

// RenderOwnerNotification renders the new-lead email sent to the business.
// Every user-supplied field is HTML escaped; the description keeps its line
// breaks as <br>.
func RenderOwnerNotification(p *business.Profile, rec *leads.Record) (RenderedEmail, error) {
	data := newEmailData(p, rec, rec.Description)
	data.Analysis = rec.Analysis()

	subject := sanitizeHeader(fmt.Sprintf("New Quote Request: %s - %s", rec.ServiceType, rec.Name))
	return render(subject, ownerHTMLTmpl, ownerTextTmpl, data)
}

// RenderCustomerConfirmation renders the thank-you email, echoing the
// description truncated to maxChars runes.
func RenderCustomerConfirmation(p *business.Profile, rec *leads.Record, maxChars int) (RenderedEmail, error) {
	data := newEmailData(p, rec, Truncate(rec.Description, maxChars))
	subject := sanitizeHeader(fmt.Sprintf("Thanks for your quote request! - %s", p.Name))
	return render(subject, customerHTMLTmpl, customerTextTmpl, data)
}

func newEmailData(p *business.Profile, rec *leads.Record, description string) emailData {
	address := rec.Address
	if strings.TrimSpace(address) == "" {
		address = "Not provided"
	}
	leadRef := rec.ID
	if leadRef == "" {
		leadRef = "(not saved)"
	}
	received := rec.CreatedAt
	if received.IsZero() {
		received = time.Now().UTC()
	}
	return emailData{
		Business:    p,
		BusinessTel: p.PhoneDigits(),
		Lead:        rec,
		CustomerTel: telDigits(rec.Phone),
		Address:     address,
		Description: nl2br(description),
		PlainDesc:   description,
		LeadRef:     leadRef,
		ReceivedAt:  received.Format(time.RFC1123),
	}
}

func render(subject string, h *htmltemplate.Template, t *texttemplate.Template, data emailData) (RenderedEmail, error) {
	var htmlBuf, textBuf bytes.Buffer
	if err := h.Execute(&htmlBuf, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("notify: render %s html: %w", h.Name(), err)
	}
	if err := t.Execute(&textBuf, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("notify: render %s text: %w", t.Name(), err)
	}
	return RenderedEmail{Subject: subject, HTML: htmlBuf.String(), Text: textBuf.String()}, nil
}

// nl2br escapes s and turns line breaks into <br>.
func nl2br(s string) htmltemplate.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return htmltemplate.HTML(strings.ReplaceAll(html.EscapeString(s), "\n", "<br>"))
}

// sanitizeHeader drops CR and LF so user input can't inject headers.
func sanitizeHeader(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, s)
}

func telDigits(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Truncate shortens s to at most max runes, trimming trailing whitespace and
// appending "...". Strings at or under the bound, or a non-positive bound,
// return s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:max]), unicode.IsSpace) + "..."
}
