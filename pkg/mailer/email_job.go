package mailer

import (
	"errors"

	"github.com/oksasatya/go-places-api/pkg/mailer/templates"
)

// TemplateWelcome is sent once after sign-up.
const TemplateWelcome = "welcome"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (with Data) or Subject with Text/HTML is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Render returns the subject and bodies to send. Template jobs are rendered
// with defaults merged under Data; plain jobs are returned as is.
func (j EmailJob) Render(defaults map[string]any) (subject, text, html string, err error) {
	if j.Template == "" {
		if j.Subject == "" || (j.Text == "" && j.HTML == "") {
			return "", "", "", errors.New("email job has neither template nor content")
		}
		return j.Subject, j.Text, j.HTML, nil
	}
	data := make(map[string]any, len(defaults)+len(j.Data))
	for k, v := range defaults {
		data[k] = v
	}
	for k, v := range j.Data {
		data[k] = v
	}
	return templates.Render(j.Template, data)
}
