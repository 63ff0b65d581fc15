// Package notify delivers out-of-band progress mail. Delivery failures are
// logged and swallowed: notifications must never fail a crawl.
package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"

	"github.com/soclens/profile-scout/internal/scout"
)

// Options configures the SMTP mailer.
type Options struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Recipient string
	// Threshold gates per-acceptance mail: a message goes out every
	// Threshold acceptances. Zero disables per-acceptance mail.
	Threshold int
}

var (
	_ scout.Notifier = (*Mailer)(nil)
	_ scout.Notifier = Nop{}
)

type sendFunc func(mail *email.Email, addr string, auth smtp.Auth) error

// Mailer implements scout.Notifier over SMTP.
type Mailer struct {
	opts   Options
	logger *zap.Logger
	send   sendFunc
}

// NewMailer builds an SMTP-backed notifier.
func NewMailer(opts Options, logger *zap.Logger) *Mailer {
	return &Mailer{
		opts:   opts,
		logger: logger,
		send: func(mail *email.Email, addr string, auth smtp.Auth) error {
			return mail.Send(addr, auth)
		},
	}
}

// ProfileAccepted mails a short acceptance note whenever the running total
// crosses the configured threshold.
func (m *Mailer) ProfileAccepted(profile scout.QualifiedProfile, totalAccepted int) {
	if m.opts.Threshold <= 0 || totalAccepted%m.opts.Threshold != 0 {
		return
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Profile Scout <%s>", m.opts.Username)
	mail.To = []string{m.opts.Recipient}
	mail.Subject = fmt.Sprintf("Profile Scout: %d profiles accepted", totalAccepted)
	mail.Text = []byte(fmt.Sprintf(`Latest accepted profile:

Username:   %s
URL:        %s
Followers:  %d
Engagement: %.2f%%
Source:     %s
Reason:     %s
`, profile.Username, profile.ProfileURL, profile.FollowerCount,
		profile.EngagementRate, profile.Source, profile.Reason))

	m.deliver(mail)
}

// SessionSummary mails the end-of-run totals.
func (m *Mailer) SessionSummary(examined, accepted, errors int, elapsed time.Duration) {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Profile Scout <%s>", m.opts.Username)
	mail.To = []string{m.opts.Recipient}
	mail.Subject = "Profile Scout: session finished"
	mail.Text = []byte(fmt.Sprintf(`Session results:

Examined: %d
Accepted: %d
Errors:   %d
Elapsed:  %s
`, examined, accepted, errors, elapsed.Round(time.Second)))

	m.deliver(mail)
}

func (m *Mailer) deliver(mail *email.Email) {
	addr := fmt.Sprintf("%s:%d", m.opts.Host, m.opts.Port)
	auth := smtp.PlainAuth("", m.opts.Username, m.opts.Password, m.opts.Host)
	if err := m.send(mail, addr, auth); err != nil {
		m.logger.Warn("notification delivery failed",
			zap.String("subject", mail.Subject),
			zap.Error(err),
		)
	}
}

// Nop is a no-op notifier for runs with notifications disabled.
type Nop struct{}

// ProfileAccepted does nothing.
func (Nop) ProfileAccepted(scout.QualifiedProfile, int) {}

// SessionSummary does nothing.
func (Nop) SessionSummary(int, int, int, time.Duration) {}
