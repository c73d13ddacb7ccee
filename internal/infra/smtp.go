package infra

import (
	"fmt"
	"net/smtp"

	"github.com/boring-ventures/billar-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends plain-text operational alerts over SMTP. Every send goes
// through a circuit breaker so a dead SMTP relay does not stall the workers.
type Mailer struct {
	from    string
	host    string
	user    string
	pass    string
	addr    string
	breaker *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.AlertEmailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		from:    from,
		host:    cfg.SMTPHost,
		user:    cfg.SMTPUser,
		pass:    cfg.SMTPPassword,
		addr:    fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker: NewCircuitBreaker(CircuitBreakerConfig{Name: "smtp"}),
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// Breaker exposes the breaker for health reporting.
func (m *Mailer) Breaker() *CircuitBreaker { return m.breaker }

// SendAlert delivers one message to all recipients.
func (m *Mailer) SendAlert(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	return m.breaker.Execute(func() error {
		if err := e.Send(m.addr, auth); err != nil {
			return fmt.Errorf("mailer: send: %w", err)
		}
		return nil
	})
}
