// internal/app/system/mailer/mailer.go

// Package mailer sends the account emails (verification, password reset)
// over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Email is a plain-text message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers account emails. Handlers depend on this interface so
// tests can capture messages instead of talking to a relay.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// SMTPConfig carries relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP sends mail through a single relay with PLAIN auth.
type SMTP struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg}
}

func (m *SMTP) Send(_ context.Context, e Email) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(e.Body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{e.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", e.To, err)
	}
	return nil
}

// Verification builds the address-confirmation email. The link embeds the
// raw token and targets the API verify endpoint directly, since a GET is
// enough to consume it. Only the token's hash is stored server side.
func Verification(baseURL, to, token string) Email {
	link := fmt.Sprintf("%s/api/users/verify-email?token=%s", strings.TrimRight(baseURL, "/"), token)
	return Email{
		To:      to,
		Subject: "Confirma tu cuenta",
		Body: "Gracias por registrarte.\n\n" +
			"Confirma tu dirección de correo con este enlace (válido 24 horas):\n\n" +
			link + "\n\n" +
			"Si no creaste esta cuenta, ignora este mensaje.\n",
	}
}

// PasswordReset builds the reset email. The link targets the front-end
// reset page served under the configured base URL; that page collects the
// new password and submits it with the token to POST
// /api/users/reset-password.
func PasswordReset(baseURL, to, token string) Email {
	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(baseURL, "/"), token)
	return Email{
		To:      to,
		Subject: "Restablecer contraseña",
		Body: "Recibimos una solicitud para restablecer tu contraseña.\n\n" +
			"Usa este enlace (válido 1 hora):\n\n" +
			link + "\n\n" +
			"Si no fuiste tú, ignora este mensaje.\n",
	}
}
