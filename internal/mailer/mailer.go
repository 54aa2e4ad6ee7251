package mailer

import (
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers magic-link emails over SMTP. When SMTP_HOST is unset the
// login URL is logged instead, which is the local development mode.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
	lg   *zap.SugaredLogger
}

func NewFromEnv(lg *zap.SugaredLogger) *Mailer {
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@accredia.local"
	}
	return &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: from,
		lg:   lg,
	}
}

func (m *Mailer) SendLoginLink(to, url string) error {
	if m.host == "" {
		m.lg.Infow("smtp not configured, magic link not sent", "to", to, "url", url)
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your Accredia sign-in link")
	msg.SetBody("text/plain",
		"Sign in to Accredia:\n\n"+url+"\n\nThe link is valid for 30 minutes and can be used once.")
	return gomail.NewDialer(m.host, m.port, m.user, m.pass).DialAndSend(msg)
}
