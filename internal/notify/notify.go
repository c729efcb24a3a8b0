// Package notify emails the front office when a visitor overstays.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/sendgrid/rest"

	"github.com/evcraddock/front-desk/internal/visitor"
)

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// IsConfigured returns true if SMTP settings are present.
func (c SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}

// Config selects where overstay alerts go.
type Config struct {
	SMTP     SMTPConfig
	SendGrid SendGridConfig
	To       []string
	DevMode  bool
	BaseURL  string
}

// sendTimeout bounds one delivery, dial included, when the caller's
// context carries no earlier deadline.
const sendTimeout = 30 * time.Second

// sendFunc delivers a composed message. Replaced in tests.
type sendFunc func(ctx context.Context, cfg SMTPConfig, to []string, msg []byte) error

var _ visitor.Notifier = (*Mailer)(nil)

// Mailer implements visitor.Notifier over SendGrid or SMTP, preferring
// SendGrid when both are configured. In dev mode, or when neither is
// configured, it logs the message instead of sending it.
type Mailer struct {
	cfg      Config
	logger   *slog.Logger
	send     sendFunc
	sendGrid sendGridAPI
}

// NewMailer creates an overstay mailer.
func NewMailer(cfg Config, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	sgClient := &rest.Client{HTTPClient: &http.Client{Timeout: sendTimeout}}
	return &Mailer{cfg: cfg, logger: logger, send: Send, sendGrid: sgClient.Send}
}

// NotifyOverstay sends one overstay alert.
func (m *Mailer) NotifyOverstay(ctx context.Context, v *visitor.Visitor, a visitor.Alert) error {
	subject := fmt.Sprintf("Overstay: %s (host %s)", v.FullName, v.HostName)
	body := FormatOverstay(v, a, m.cfg.BaseURL)

	configured := m.cfg.SendGrid.IsConfigured() || m.cfg.SMTP.IsConfigured()
	if m.cfg.DevMode || !configured || len(m.cfg.To) == 0 {
		m.logger.Info("overstay notification (not sent)", "to", strings.Join(m.cfg.To, ","), "subject", subject)
		m.logger.Debug(body)
		return nil
	}

	if m.cfg.SendGrid.IsConfigured() {
		if err := sendSendGrid(m.sendGrid, m.cfg.SendGrid, m.cfg.To, subject, body); err != nil {
			return fmt.Errorf("sending overstay alert: %w", err)
		}
		return nil
	}

	msg := buildMessage(m.cfg.SMTP.From, m.cfg.To, subject, body)
	if err := m.send(ctx, m.cfg.SMTP, m.cfg.To, msg); err != nil {
		return fmt.Errorf("sending overstay alert: %w", err)
	}
	return nil
}

// FormatOverstay builds the plain-text body of an overstay alert.
func FormatOverstay(v *visitor.Visitor, a visitor.Alert, baseURL string) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n\n", a.Message)
	fmt.Fprintf(&buf, "Visitor:   %s\n", v.FullName)
	fmt.Fprintf(&buf, "Phone:     %s\n", v.PhoneNumber)
	if v.Company != "" {
		fmt.Fprintf(&buf, "Company:   %s\n", v.Company)
	}
	fmt.Fprintf(&buf, "Host:      %s\n", v.HostName)
	fmt.Fprintf(&buf, "Purpose:   %s\n", v.Purpose)
	if v.Location != "" {
		fmt.Fprintf(&buf, "Location:  %s\n", v.Location)
	}
	fmt.Fprintf(&buf, "Checked in: %s\n", v.CheckInTime.Local().Format(time.Kitchen))
	fmt.Fprintf(&buf, "Expected:  %d minutes\n", v.ExpectedDurationMinutes)
	fmt.Fprintf(&buf, "Overstay:  %d minutes\n", v.OverstayMinutes)

	if baseURL != "" {
		fmt.Fprintf(&buf, "\nAcknowledge: POST %s/api/visitors/%s/alerts/%s/ack\n",
			strings.TrimSuffix(baseURL, "/"), v.ID, a.ID)
	}

	return buf.String()
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

// Send delivers a message via SMTP.
// Supports both port 465 (implicit TLS) and port 587 (STARTTLS). The whole
// exchange is abandoned when ctx ends or after sendTimeout.
func Send(ctx context.Context, cfg SMTPConfig, to []string, msg []byte) (err error) {
	if !cfg.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return fmt.Errorf("setting deadline: %w", err)
		}
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	tlsConfig := &tls.Config{ServerName: cfg.Host}
	if cfg.Port == "465" {
		conn = tls.Client(conn, tlsConfig)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer func() {
		if quitErr := c.Quit(); quitErr != nil && err == nil {
			err = fmt.Errorf("quit: %w", quitErr)
		}
	}()

	if cfg.Port != "465" {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if cfg.User != "" {
		if err := c.Auth(smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return nil
}
