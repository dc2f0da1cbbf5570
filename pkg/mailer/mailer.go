package mailer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/config"
)

// Email is an outgoing message with both text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// sender is the part of *gomail.Client the mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*gomail.Msg) error
}

// Mailer delivers mail over SMTP.
type Mailer struct {
	cfg         config.MailConfig
	frontendURL string
	logger      *zap.Logger
	dial        func() (sender, error)
}

// New builds a Mailer. frontendURL is the base for links in mails.
func New(cfg *config.MailConfig, frontendURL string, logger *zap.Logger) *Mailer {
	m := &Mailer{
		cfg:         *cfg,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
	m.dial = m.client
	return m
}

func (m *Mailer) client() (sender, error) {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.SMTPPort),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(m.cfg.Timeout))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	c, err := gomail.NewClient(m.cfg.SMTPHost, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Send delivers e within the configured timeout. Cancelling ctx aborts the
// SMTP session.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.To == "" {
		return fmt.Errorf("mailer: empty recipient")
	}

	msg, err := m.message(e)
	if err != nil {
		return fmt.Errorf("mailer: build message: %w", err)
	}
	client, err := m.dial()
	if err != nil {
		return fmt.Errorf("mailer: client: %w", err)
	}

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", e.To, err)
	}

	m.logger.Info("mail sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}

func (m *Mailer) message(e Email) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, err
	}
	if err := msg.To(e.To); err != nil {
		return nil, err
	}
	msg.Subject(e.Subject)
	msg.SetDate()
	msg.SetBodyString(gomail.TypeTextPlain, e.TextBody)
	if e.HTMLBody != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, e.HTMLBody)
	}
	return msg, nil
}

// ── notifications ──

// NotifyWelcome sends the login name and temporary password of a newly
// provisioned account.
func (m *Mailer) NotifyWelcome(ctx context.Context, to, fullName, username, tempPassword string) error {
	e := BuildWelcomeEmail(WelcomeEmailData{
		SiteName:     m.cfg.SiteName,
		FullName:     fullName,
		Username:     username,
		TempPassword: tempPassword,
		LoginURL:     m.frontendURL + "/login",
	})
	e.To = to
	return m.Send(ctx, e)
}

// NotifyPasswordReset sends the reset link carrying token.
func (m *Mailer) NotifyPasswordReset(ctx context.Context, to, fullName, token string, ttl time.Duration) error {
	e := BuildPasswordResetEmail(PasswordResetEmailData{
		SiteName:  m.cfg.SiteName,
		FullName:  fullName,
		ResetLink: m.frontendURL + "/reset-password?token=" + token,
		ExpiresIn: humanDuration(ttl),
	})
	e.To = to
	return m.Send(ctx, e)
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return strconv.Itoa(h) + " hours"
	case d >= time.Minute:
		return strconv.Itoa(int(d/time.Minute)) + " minutes"
	default:
		return d.String()
	}
}
