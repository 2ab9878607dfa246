package email

import (
	"context"
	"fmt"
	"net/smtp"

	"punchme/web/config"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender delivers plain-text mail through an authenticated SMTP relay.
type Sender struct {
	cfg  config.SMTP
	send sendFunc
}

func NewSender(cfg config.SMTP) *Sender {
	return &Sender{cfg: cfg, send: smtp.SendMail}
}

func (s *Sender) SendEmail(ctx context.Context, to string, subject string, body string) error {
	c := s.cfg
	if c.Server == "" || c.Port == "" || c.User == "" || c.Pass == "" || c.FromAddr == "" {
		return fmt.Errorf(
			"missing required SMTP settings: SMTP_SERVER=%q, SMTP_PORT=%q, SMTP_USER=%q, FROM_ADDR=%q",
			c.Server, c.Port, c.User, c.FromAddr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := BuildMessage(c.FromName, c.FromAddr, to, subject, body)
	auth := smtp.PlainAuth("", c.User, c.Pass, c.Server)

	if err := s.send(c.Server+":"+c.Port, auth, c.FromAddr, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func BuildMessage(fromName, fromAddr, to, subject, body string) []byte {
	return []byte(fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n"+
		"%s",
		fromName, fromAddr, to, subject, body))
}
