package mailer

import (
	"crypto/tls"
	"fmt"

	"inventorywise/pkg/config"

	"gopkg.in/gomail.v2"
)

// Mailer 邮件发送接口，便于测试时替换
type Mailer interface {
	Send(subject, body string, recipients []string) error
}

// Client SMTP邮件客户端
type Client struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func New(cfg config.SMTPConfig) *Client {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	dialer.TLSConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	return &Client{
		cfg:    cfg,
		dialer: dialer,
	}
}

// Send 发送HTML邮件
func (c *Client) Send(subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := gomail.NewMessage(
		gomail.SetCharset("UTF-8"),
		gomail.SetEncoding(gomail.Base64),
	)

	msg.SetAddressHeader("From", c.cfg.From, c.cfg.FromName)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := c.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
