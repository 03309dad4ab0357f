package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/config"
)

// SMTPMailer sends verification mail over plain SMTP with AUTH PLAIN.
type SMTPMailer struct {
	cfg config.MailConfig
	// sendFn is swapped in tests; nil means smtp.SendMail.
	sendFn func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// SendVerificationEmail sends the verification link to the address.
func (m *SMTPMailer) SendVerificationEmail(_ context.Context, to, username, token, baseURL string) error {
	link := VerificationLink(baseURL, token)
	body := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: Verify your CrimeCity account",
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		fmt.Sprintf("Hey %s,", username),
		"",
		"Confirm your email address to activate your account:",
		link,
		"",
		"The link expires in 24 hours. If you did not sign up, ignore this mail.",
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	send := m.sendFn
	if send == nil {
		send = smtp.SendMail
	}
	if errSend := send(addr, auth, m.cfg.From, []string{to}, []byte(body)); errSend != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, errSend)
	}
	return nil
}
