package email

import (
	"context"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
)

// Sender 发送事务邮件
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// NewSender 按 email.strategy 选择实现
func NewSender(cfg *config.EmailConfig) Sender {
	if cfg.Strategy == "smtp" {
		return NewSMTPSender(cfg)
	}
	return ConsoleSender{}
}

// SMTPSender 通过 SMTP 发送
type SMTPSender struct {
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg *config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	return s.dialer.DialAndSend(m)
}

// ConsoleSender 只写日志，开发环境使用
type ConsoleSender struct{}

func (ConsoleSender) Send(_ context.Context, msg Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("Email (console strategy)")
	return nil
}
