package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

type EmailData struct {
	Name       string
	Restaurant string
	Email      string
	Password   string
	LoginURL   string
}

// Mailer sends templated HTML mail.
type Mailer interface {
	Send(to, subject string, tmpl *template.Template, data EmailData) error
}

type SMTPMailer struct {
	From     string
	Password string
	Host     string
	Address  string
}

func (m SMTPMailer) Send(to, subject string, tmpl *template.Template, data EmailData) error {
	if m.Address == "" {
		return fmt.Errorf("smtp is not configured")
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.From,
		to,
		subject,
		body.String(),
	)

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	if err := smtp.SendMail(m.Address, auth, m.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

var ChefWelcomeTemplate = template.Must(template.New("chef_welcome").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <h2>Welcome to {{.Restaurant}}, {{.Name}}!</h2>
    <p>An account has been created for you on the kitchen dashboard.</p>
    <p>
      Email: <strong>{{.Email}}</strong><br>
      Temporary password: <strong>{{.Password}}</strong>
    </p>
    <p><a href="{{.LoginURL}}">Sign in</a> and change your password.</p>
  </body>
</html>`))
