package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

const dialTimeout = 15 * time.Second

// SMTPConfig holds the settings for SMTPRelay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the envelope sender and From header address.
	From string
	// To is the site owner's address that receives submissions.
	To string
}

// Validate checks that the relay has enough information to send.
func (c SMTPConfig) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("smtp host is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid smtp port %d", c.Port))
	}
	if c.From == "" {
		errs = append(errs, errors.New("smtp sender address is required"))
	}
	if c.To == "" {
		errs = append(errs, errors.New("contact recipient address is required"))
	}
	return errors.Join(errs...)
}

// SMTPRelay delivers messages through an SMTP server, upgrading to TLS with
// STARTTLS when the server offers it.
type SMTPRelay struct {
	cfg SMTPConfig
}

// NewSMTPRelay creates an SMTPRelay after validating cfg.
func NewSMTPRelay(cfg SMTPConfig) (*SMTPRelay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid smtp configuration: %w", err)
	}
	return &SMTPRelay{cfg: cfg}, nil
}

// Send implements Relay.
func (r *SMTPRelay) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, r.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: r.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if r.cfg.Username != "" {
		auth := smtp.PlainAuth("", r.cfg.Username, r.cfg.Password, r.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(r.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := c.Rcpt(r.cfg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(buildMessage(r.cfg, msg)); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return c.Quit()
}

// buildMessage renders msg as a plain-text email addressed to the site owner
// with Reply-To set to the submitter.
func buildMessage(cfg SMTPConfig, msg Message) []byte {
	var sb strings.Builder
	header := func(k, v string) {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(stripNewlines(v))
		sb.WriteString("\r\n")
	}

	header("From", cfg.From)
	header("To", cfg.To)
	header("Reply-To", fmt.Sprintf("%s <%s>", msg.Name, msg.Email))
	header("Subject", "[Contact] "+msg.Subject)
	header("Date", msg.ReceivedAt.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", msg.ID, cfg.Host))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	sb.WriteString("\r\n")

	fmt.Fprintf(&sb, "Name: %s\r\nEmail: %s\r\n\r\n", msg.Name, msg.Email)
	// The DATA writer converts bare LF line endings to CRLF.
	sb.WriteString(msg.Body)
	sb.WriteString("\r\n")

	return []byte(sb.String())
}

// stripNewlines prevents header injection through user-supplied values.
func stripNewlines(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
