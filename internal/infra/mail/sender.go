package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

var dealWonTmpl = template.Must(template.New("deal_won").Parse(`
<h2>Deal won 🎉</h2>
<p><strong>{{.LeadName}}</strong> closed for {{.Value}}.</p>
`))

var dealLostTmpl = template.Must(template.New("deal_lost").Parse(`
<h2>Deal lost</h2>
<p><strong>{{.LeadName}}</strong> was marked lost ({{.Reason}}).</p>
`))

var taskReminderTmpl = template.Must(template.New("task_reminder").Parse(`
<h2>Task due</h2>
<p>{{.Title}} — lead <strong>{{.LeadName}}</strong>, due {{.DueDate}}{{if .DueTime}} at {{.DueTime}}{{end}}.</p>
`))

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     "no-reply@pipeboard.app",
	}
}

func (s *EmailSender) SendDealWon(to, leadName string, valueCents int64) error {
	value := fmt.Sprintf("$%.2f", float64(valueCents)/100.0)
	subject := fmt.Sprintf("Deal won: %s", leadName)
	return s.send(to, subject, dealWonTmpl, dealWonData{LeadName: leadName, Value: value})
}

func (s *EmailSender) SendDealLost(to, leadName, reason string) error {
	if reason == "" {
		reason = "no reason given"
	}
	subject := fmt.Sprintf("Deal lost: %s", leadName)
	return s.send(to, subject, dealLostTmpl, dealLostData{LeadName: leadName, Reason: reason})
}

func (s *EmailSender) SendTaskReminder(to, leadName, title, dueDate, dueTime string) error {
	subject := fmt.Sprintf("Task due: %s", title)
	return s.send(to, subject, taskReminderTmpl, taskReminderData{
		LeadName: leadName, Title: title, DueDate: dueDate, DueTime: dueTime,
	})
}

func (s *EmailSender) send(to, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send SMTP email: %w", err)
	}

	return nil
}
