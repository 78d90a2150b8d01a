// internal/workers/communication/notify-onboarding-status/templates.go
package notifyonboardingstatus

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"

	"onboarding-workers/internal/common/aws"
	"onboarding-workers/internal/models"
)

// messageData is what every template renders from.
type messageData struct {
	ApplicationID string
	EmployeeName  string
	FormTitle     string
	Comment       string
}

// templates is keyed by event, then by recipient type.
var templates = map[string]map[string]models.NotificationTemplate{
	EventFormSubmitted: {
		RecipientHR: {
			Type:     EventFormSubmitted,
			Subject:  "{{.EmployeeName}} submitted {{.FormTitle}}",
			Body:     "{{.EmployeeName}} submitted {{.FormTitle}} for review.\n\nApplication: {{.ApplicationID}}\n",
			HTMLBody: "<p>{{.EmployeeName}} submitted <strong>{{.FormTitle}}</strong> for review.</p><p>Application: {{.ApplicationID}}</p>",
		},
	},
	EventFormApproved: {
		RecipientEmployee: {
			Type:     EventFormApproved,
			Subject:  "Your {{.FormTitle}} form was approved",
			Body:     "Hi {{.EmployeeName}},\n\nHR approved your {{.FormTitle}} form. No further action is needed for it.\n",
			HTMLBody: "<p>Hi {{.EmployeeName}},</p><p>HR approved your <strong>{{.FormTitle}}</strong> form. No further action is needed for it.</p>",
		},
	},
	EventFormRejected: {
		RecipientEmployee: {
			Type:     EventFormRejected,
			Subject:  "Your {{.FormTitle}} form needs changes",
			Body:     "Hi {{.EmployeeName}},\n\nHR returned your {{.FormTitle}} form for revision.{{if .Comment}}\n\nReviewer comment: {{.Comment}}{{end}}\n\nPlease update and resubmit it.\n",
			HTMLBody: "<p>Hi {{.EmployeeName}},</p><p>HR returned your <strong>{{.FormTitle}}</strong> form for revision.</p>{{if .Comment}}<blockquote>{{.Comment}}</blockquote>{{end}}<p>Please update and resubmit it.</p>",
		},
	},
	EventOnboardingCompleted: {
		RecipientEmployee: {
			Type:     EventOnboardingCompleted,
			Subject:  "Your onboarding is complete",
			Body:     "Hi {{.EmployeeName}},\n\nAll of your onboarding forms have been completed. Welcome aboard!\n",
			HTMLBody: "<p>Hi {{.EmployeeName}},</p><p>All of your onboarding forms have been completed. Welcome aboard!</p>",
		},
		RecipientHR: {
			Type:    EventOnboardingCompleted,
			Subject: "Onboarding complete: {{.EmployeeName}}",
			Body:    "{{.EmployeeName}} has completed every required onboarding form.\n\nApplication: {{.ApplicationID}}\n",
		},
	},
}

// smsTemplates hold the short text sent to the employee's phone.
var smsTemplates = map[string]string{
	EventFormApproved:        "{{.FormTitle}} approved.",
	EventFormRejected:        "Your {{.FormTitle}} form needs changes. Check your email for details.",
	EventOnboardingCompleted: "Your onboarding is complete. Welcome aboard!",
}

func renderEmail(tmpl models.NotificationTemplate, to string, data messageData) (aws.Email, error) {
	subject, err := renderText(tmpl.Type+".subject", tmpl.Subject, data)
	if err != nil {
		return aws.Email{}, err
	}
	text, err := renderText(tmpl.Type+".body", tmpl.Body, data)
	if err != nil {
		return aws.Email{}, err
	}

	email := aws.Email{To: []string{to}, Subject: subject, TextBody: text}
	if tmpl.HTMLBody != "" {
		t, err := htmltemplate.New(tmpl.Type + ".html").Parse(tmpl.HTMLBody)
		if err != nil {
			return aws.Email{}, err
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return aws.Email{}, err
		}
		email.HTMLBody = buf.String()
	}
	return email, nil
}

func renderText(name, text string, data messageData) (string, error) {
	t, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
