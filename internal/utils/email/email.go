package email

import (
	"fmt"
	"net/smtp"
	"net/url"
	"time"

	"github.com/Dan9191/bankshot/internal/config"
	"github.com/Dan9191/bankshot/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   sendFunc
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendPasswordReset sends a reset link carrying token
func (s *Sender) SendPasswordReset(to, username, token string, expiry time.Time) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Reset your Bankshot password"

	link := s.cfg.ResetURL + "?token=" + url.QueryEscape(token)
	body := fmt.Sprintf("Hi %s,\n\n", username)
	body += fmt.Sprintf(
		"We received a request to reset your password.\n"+
			"Use the link below before %s:\n\n%s\n\n"+
			"If you did not ask for this, you can ignore this email.\n",
		expiry.UTC().Format("2006-01-02 15:04 MST"), link,
	)
	body += "\nCoach,\nBankshot"
	e.Text = []byte(body)

	return s.deliver(e, to)
}

// SendDigest sends the weekly summary of a dashboard snapshot
func (s *Sender) SendDigest(to, username string, view models.DerivedView, advice string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Your weekly game plan"

	body := fmt.Sprintf("Hi %s,\n\n", username)
	body += fmt.Sprintf(
		"Current balance: $%d\n"+
			"Change over six months: %+d\n"+
			"Trend: %s\n"+
			"Best month: %s ($%d)\n"+
			"Goal progress: %.0f%%\n",
		view.CurrentBalance, view.BalanceDelta, view.TrendDirection,
		view.BestMonth.Period, view.BestMonth.Balance, view.GoalProgressPercent,
	)
	if advice != "" {
		body += "\nThis week's play: " + advice + "\n"
	}
	body += "\nCoach,\nBankshot"
	e.Text = []byte(body)

	return s.deliver(e, to)
}

func (s *Sender) deliver(e *email.Email, to string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
