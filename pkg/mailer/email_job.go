package mailer

import (
	"fmt"

	mailtpl "github.com/oksasatya/go-user-registration/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template and Data are set, or Subject with Text and/or HTML.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome"
	Data     map[string]any `json:"data,omitempty"`
}

// ensureRecipient fills the Email and RecipientEmail template fields from To
// when the producer left them empty.
func (j *EmailJob) ensureRecipient() {
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	for _, k := range []string{"Email", "RecipientEmail"} {
		if v, ok := j.Data[k]; !ok || fmt.Sprintf("%v", v) == "" {
			j.Data[k] = j.To
		}
	}
}

// Render returns the subject and bodies to deliver for the job, rendering
// the embedded template when one is named.
func (j *EmailJob) Render() (subject, text, html string, err error) {
	if j.Template == "" {
		if j.Subject == "" || (j.Text == "" && j.HTML == "") {
			return "", "", "", fmt.Errorf("email job for %q has neither template nor content", j.To)
		}
		return j.Subject, j.Text, j.HTML, nil
	}
	j.ensureRecipient()
	return mailtpl.Render(j.Template, j.Data)
}
