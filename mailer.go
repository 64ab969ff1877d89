package main

import (
	"fmt"
	"html"
	"log"

	"gopkg.in/gomail.v2"
)

// mailer delivers transactional email (password reset links).
type mailer interface {
	Send(to, subject, body string) error
}

// smtpMailer sends HTML mail through an SMTP relay.
type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m smtpMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}

// logMailer writes messages to the log. Used when SMTP is not configured.
type logMailer struct{}

func (logMailer) Send(to, subject, body string) error {
	log.Printf("[mail] to=%s subject=%q\n%s", to, subject, body)
	return nil
}

// newMailer returns an SMTP mailer when SMTP_HOST is set, else a logMailer.
func newMailer(cfg config) mailer {
	if cfg.SMTP.Host == "" {
		log.Println("[mail] SMTP_HOST not set, emails will be logged")
		return logMailer{}
	}
	return smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		from:   cfg.SMTP.From,
	}
}

// resetEmailBody is the HTML body of the password reset email.
func resetEmailBody(firstName, link string) string {
	name := firstName
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>Someone asked to reset the password for your account. The link below is valid for one hour:</p>
<p><a href="%s">Reset your password</a></p>
<p>If it wasn't you, ignore this email and your password stays the same.</p>`,
		html.EscapeString(name), html.EscapeString(link))
}
