package utils

import (
	"fmt"
	"html"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

// Mailer delivers a message with plain text and HTML bodies.
type Mailer interface {
	Send(to, subject, plainBody, htmlBody string) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	if from == "" {
		from = user
	}
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

func (m *SMTPMailer) Send(to, subject, plainBody, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	msg.AddAlternative("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// LogMailer writes messages to the log. It is used when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, plainBody, _ string) error {
	log.Printf("Mail to %s | %s | %s", to, subject, plainBody)
	return nil
}

const mailLayout = `<!DOCTYPE html>
<html>
<head>
	<title>%[1]s</title>
	<style>
		body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0; }
		.container { background-color: #ffffff; margin: 20px auto; padding: 20px; border-radius: 8px; max-width: 600px; }
		h1 { color: #333333; }
		p { color: #666666; }
		.highlight { font-weight: bold; color: #007bff; }
	</style>
</head>
<body>
	<div class="container">
		<h1>%[1]s</h1>
		%[2]s
	</div>
</body>
</html>
`

// SendConfirmationEmail mails the sign-up confirmation code.
func SendConfirmationEmail(m Mailer, email, name, code string) error {
	subject := "Confirma tu registro"
	plain := fmt.Sprintf("Hola %s, tu código de confirmación es: %s", name, code)
	body := fmt.Sprintf(`<p>Hola %s,</p>
		<p>Tu código de confirmación es:</p>
		<p class="highlight">%s</p>
		<p>Si no creaste una cuenta, ignora este correo.</p>`,
		html.EscapeString(name), html.EscapeString(code))
	return m.Send(email, subject, plain, fmt.Sprintf(mailLayout, subject, body))
}

// SendReminderEmail reminds a patient of an accepted appointment.
func SendReminderEmail(m Mailer, email, name, treatment string, at time.Time) error {
	subject := "Recordatorio de tu cita"
	when := at.Format("02/01/2006 15:04")
	plain := fmt.Sprintf("Hola %s, te recordamos tu cita de %s el %s.", name, treatment, when)
	body := fmt.Sprintf(`<p>Hola %s,</p>
		<p>Te recordamos tu cita de <span class="highlight">%s</span>.</p>
		<p class="highlight">%s</p>`,
		html.EscapeString(name), html.EscapeString(treatment), when)
	return m.Send(email, subject, plain, fmt.Sprintf(mailLayout, subject, body))
}
