// Package mail sends transactional email: OTP codes, temporary
// passwords, order confirmations and contact-form copies.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender delivers a single email. Satisfied by *SMTPMailer; narrow
// interface for testability.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// OtpBody renders the verification-code email.
func OtpBody(fullName, code string) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>Your verification code is <strong>%s</strong>. It expires in 15 minutes.</p>
<p>If you did not request this, you can ignore this email.</p>`, fullName, code)
}

// TempPasswordBody renders the forgot-password email.
func TempPasswordBody(fullName, password string) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>Your temporary password is <strong>%s</strong>.</p>
<p>Please log in and change it from the My Account page.</p>`, fullName, password)
}

// ContactCopyBody renders the copy of a contact-form submission sent to
// the service inbox.
func ContactCopyBody(name, email, subject, message string) string {
	return fmt.Sprintf(`<p><strong>From:</strong> %s (%s)</p>
<p><strong>Subject:</strong> %s</p>
<p>%s</p>`, name, email, subject, message)
}
