package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"case_docket_app_go/config"
	"case_docket_app_go/models"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, log *zap.Logger, email *Email) error {
	// In test mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmail(log, email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    cfg.EmailFrom,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Info("email sent via Resend", zap.String("id", sent.Id), zap.Strings("to", email.To))
	return nil
}

// logEmail records an email that test mode did not send
func logEmail(log *zap.Logger, email *Email) {
	log.Info("email logged (test mode, not sent)",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", email.TextBody),
		zap.String("html", truncate(email.HTMLBody, 500)),
	)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// SendEmailAsync sends an email in a goroutine so handlers never wait on the mail API
func SendEmailAsync(cfg *config.Config, log *zap.Logger, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func() {
		if err := SendEmail(cfg, log, emailCopy); err != nil {
			log.Error("error sending async email", zap.Error(err))
		}
	}()
}

// CaseEmailData contains data for case activity emails
type CaseEmailData struct {
	Event      string
	ClientName string
	CaseStatus string
	CaseID     string
	Actor      string
	OccurredAt string
}

const caseEmailHTML = `<html><body>
<h2>Case {{.Event}}</h2>
<p><strong>Client:</strong> {{.ClientName}}</p>
<p><strong>Status:</strong> {{.CaseStatus}}</p>
<p><strong>Case ID:</strong> {{.CaseID}}</p>
<p>{{.Event}} by {{if .Actor}}{{.Actor}}{{else}}system{{end}} at {{.OccurredAt}}.</p>
</body></html>`

const caseEmailText = `Case {{.Event}}

Client: {{.ClientName}}
Status: {{.CaseStatus}}
Case ID: {{.CaseID}}

{{.Event}} by {{if .Actor}}{{.Actor}}{{else}}system{{end}} at {{.OccurredAt}}.
`

var (
	caseEmailHTMLTmpl = htmltemplate.Must(htmltemplate.New("case_email.html").Parse(caseEmailHTML))
	caseEmailTextTmpl = texttemplate.Must(texttemplate.New("case_email.txt").Parse(caseEmailText))
)

// BuildCaseEmail renders the notification for a case event ("created", "deleted")
func BuildCaseEmail(to string, c *models.Case, event, actor string) (*Email, error) {
	data := CaseEmailData{
		Event:      event,
		ClientName: c.ClientName,
		CaseStatus: c.CaseStatus,
		CaseID:     c.ID,
		Actor:      actor,
		OccurredAt: time.Now().UTC().Format(time.RFC1123),
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := caseEmailHTMLTmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render case email: %w", err)
	}
	if err := caseEmailTextTmpl.Execute(&textBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render case email: %w", err)
	}

	return &Email{
		To:       []string{to},
		Subject:  fmt.Sprintf("Case %s: %s", event, strings.TrimSpace(c.ClientName)),
		HTMLBody: htmlBuf.String(),
		TextBody: textBuf.String(),
	}, nil
}

// Notifier emails case activity to the configured NOTIFY_EMAIL address.
// A nil Notifier or an empty address disables notifications.
type Notifier struct {
	cfg *config.Config
	log *zap.Logger
	// send is swapped in tests
	send func(cfg *config.Config, log *zap.Logger, email *Email)
}

// NewNotifier creates a notifier that sends asynchronously
func NewNotifier(cfg *config.Config, log *zap.Logger) *Notifier {
	return &Notifier{cfg: cfg, log: log, send: SendEmailAsync}
}

// CaseEvent notifies about a case event. Failures are logged, never returned.
func (n *Notifier) CaseEvent(c *models.Case, event, actor string) {
	if n == nil || n.cfg.NotifyEmail == "" {
		return
	}

	email, err := BuildCaseEmail(n.cfg.NotifyEmail, c, event, actor)
	if err != nil {
		n.log.Error("failed to build case notification", zap.String("case_id", c.ID), zap.Error(err))
		return
	}
	n.send(n.cfg, n.log, email)
}

// ReminderItem is one proceeding listed in a reminder digest
type ReminderItem struct {
	ClientName  string
	CaseID      string
	Kind        string // "Hearing" or "Tentative"
	Description string
}

const reminderEmailHTML = `<html><body>
<h2>Proceedings on {{.Date}}</h2>
<ul>
{{range .Items}}<li><strong>{{.Kind}}</strong> for {{.ClientName}}: {{.Description}} (case {{.CaseID}})</li>
{{end}}</ul>
</body></html>`

const reminderEmailText = `Proceedings on {{.Date}}
{{range .Items}}
- {{.Kind}} for {{.ClientName}}: {{.Description}} (case {{.CaseID}})
{{- end}}
`

var (
	reminderEmailHTMLTmpl = htmltemplate.Must(htmltemplate.New("reminder_email.html").Parse(reminderEmailHTML))
	reminderEmailTextTmpl = texttemplate.Must(texttemplate.New("reminder_email.txt").Parse(reminderEmailText))
)

// BuildProceedingReminderEmail renders the digest of proceedings due on day
func BuildProceedingReminderEmail(to string, day time.Time, items []ReminderItem) (*Email, error) {
	data := struct {
		Date  string
		Items []ReminderItem
	}{
		Date:  day.Format(models.DateLayout),
		Items: items,
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := reminderEmailHTMLTmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render reminder email: %w", err)
	}
	if err := reminderEmailTextTmpl.Execute(&textBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render reminder email: %w", err)
	}

	return &Email{
		To:       []string{to},
		Subject:  fmt.Sprintf("%d proceeding(s) on %s", len(items), data.Date),
		HTMLBody: htmlBuf.String(),
		TextBody: textBuf.String(),
	}, nil
}
