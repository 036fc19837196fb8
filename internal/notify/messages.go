package notify

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Links shown with in-app notifications.
const (
	linkMyApplications = "/applications/mine"
	linkMyJobs         = "/jobs/mine"
	linkMyInvoices     = "/invoices/mine"
)

// textPolicy strips all markup from user-supplied text shown in plain-text
// surfaces (in-app notifications, SMS, subjects). The sanitizer emits
// entity-escaped text, so plain unescapes it again.
var textPolicy = bluemonday.StrictPolicy()

// messagePolicy keeps basic formatting in applicant cover messages that are
// embedded into HTML email.
var messagePolicy = bluemonday.UGCPolicy()

func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

const emailLayout = `{{define "row"}}<tr><td style="padding: 8px; border: 1px solid #ddd;"><strong>{{.K}}</strong></td><td style="padding: 8px; border: 1px solid #ddd;">{{.V}}</td></tr>{{end}}`

var emails = template.Must(template.New("emails").Parse(emailLayout + `
{{define "tutorHired"}}<h2>Congratulations! You've Been Hired!</h2>
<p>Hello {{.TutorName}},</p>
<p>Great news! <strong>{{.GuardianName}}</strong> has hired you for the following tuition job:</p>
<table style="border-collapse: collapse; margin: 20px 0; width: 100%;">
{{range .Rows}}{{template "row" .}}{{end}}
</table>
<p><strong>Next Steps:</strong></p>
<ol>
<li>Contact the guardian to arrange your first session.</li>
<li>Pay the platform commission of ৳{{.Commission}} to complete the process.</li>
</ol>
<p>Best regards,<br/>{{.Sender}} Team</p>{{end}}

{{define "guardianHired"}}<h2>Tutor Hired Successfully!</h2>
<p>Hello {{.GuardianName}},</p>
<p>You have successfully hired a tutor for your job. Here are the details:</p>
<table style="border-collapse: collapse; margin: 20px 0; width: 100%;">
{{range .Rows}}{{template "row" .}}{{end}}
</table>
<p><strong>Next Steps:</strong></p>
<ol>
<li>Contact the tutor to arrange the first session.</li>
<li>You can leave a review after the tuition begins.</li>
</ol>
<p>Best regards,<br/>{{.Sender}} Team</p>{{end}}

{{define "applicationReceived"}}<h2>New Application Received</h2>
<p>Hello {{.GuardianName}},</p>
<p><strong>{{.TutorName}}</strong> applied to your job "{{.Title}}".</p>
{{if .Message}}<blockquote>{{.Message}}</blockquote>{{end}}
<p>Log in to review the applicants.</p>
<p>Best regards,<br/>{{.Sender}} Team</p>{{end}}
`))

type row struct{ K, V string }

type emailData struct {
	Sender       string
	TutorName    string
	GuardianName string
	Title        string
	Commission   string
	Message      template.HTML
	Rows         []row
}

func render(name string, d emailData) (string, error) {
	var buf bytes.Buffer
	if err := emails.ExecuteTemplate(&buf, name, d); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func orName(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
