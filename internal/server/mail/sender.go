package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/logging"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
)

// Transport delivers an encoded message.
type Transport func(ctx context.Context, s Settings, from string, to []string, msg []byte) error

// Mailer sends account notices using the settings currently on disk.
type Mailer struct {
	settings  *SettingsStore
	transport Transport
	log       logging.Logger
	now       func() time.Time
}

func NewMailer(settings *SettingsStore, transport Transport, log logging.Logger) *Mailer {
	if transport == nil {
		transport = SendSMTP
	}
	return &Mailer{settings: settings, transport: transport, log: log.With("module", "mail"), now: time.Now}
}

// SendAccountNotice mails the credentials of a freshly created account.
// It fails with common.ErrorMailNotConfigured when no server is set up.
func (m *Mailer) SendAccountNotice(ctx context.Context, user *models.User, password string) error {
	settings, err := m.settings.Load()
	if err != nil {
		return err
	}
	if !settings.Configured() {
		return common.ErrorMailNotConfigured
	}

	msg, err := NewAccountNotice(settings.From, user.Email, AccountNotice{
		Name:     user.Name,
		UserID:   user.ID,
		Password: password,
		Instance: settings.Instance,
	})
	if err != nil {
		return err
	}

	raw, err := msg.Bytes(m.now())
	if err != nil {
		return err
	}

	if err := m.transport(ctx, settings, settings.From, msg.To, raw); err != nil {
		m.log.Error(ctx, "account notice failed", "user", user.ID, "server", settings.Addr(), "error", err)
		return fmt.Errorf("send mail: %w", err)
	}

	m.log.Info(ctx, "account notice sent", "user", user.ID)
	return nil
}

// SendSMTP delivers msg through the server in s, upgrading with STARTTLS
// and authenticating with PLAIN when the settings ask for it.
func SendSMTP(ctx context.Context, s Settings, from string, to []string, msg []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.Addr())
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.Server)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if s.TLS {
		if err := c.StartTLS(&tls.Config{ServerName: s.Server, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if s.Authenticate {
		if err := c.Auth(smtp.PlainAuth("", s.User, s.Password, s.Server)); err != nil {
			return err
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
