package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	gosmtp "net/smtp"
	"strings"
	"time"
)

// Encryption selects the SMTP transport mode.
type Encryption string

const (
	// EncryptionNone sends over a plain TCP connection.
	EncryptionNone Encryption = "none"
	// EncryptionStartTLS upgrades the connection with STARTTLS (port 587 typical).
	EncryptionStartTLS Encryption = "starttls"
	// EncryptionSSL uses implicit TLS from the first byte (port 465 typical).
	EncryptionSSL Encryption = "ssl"
)

// Config holds SMTP connection and sender settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	FromName    string
	FromAddress string

	Encryption  Encryption
	DialTimeout time.Duration

	// Subject overrides the default two-factor message subject.
	Subject string
}

// ErrNotConfigured is returned when the mailer is missing a host or sender
// address.
var ErrNotConfigured = errors.New("mail: smtp host and from address are required")

const defaultSubject = "Your login code"

// SMTPMailer implements [lockgate.Mailer] over net/smtp.
type SMTPMailer struct {
	cfg Config
}

// NewSMTPMailer creates a mailer. Zero Port selects 587, zero Encryption
// selects STARTTLS, zero DialTimeout selects ten seconds.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.FromAddress == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Encryption == "" {
		cfg.Encryption = EncryptionStartTLS
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.Subject == "" {
		cfg.Subject = defaultSubject
	}
	return &SMTPMailer{cfg: cfg}, nil
}

// SendTwoFactorCode delivers the code to the recipient as a plain-text
// message.
func (m *SMTPMailer) SendTwoFactorCode(ctx context.Context, recipientName, recipientEmail, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(m.cfg, recipientName, recipientEmail, token, time.Now())
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	switch m.cfg.Encryption {
	case EncryptionSSL:
		return m.sendSSL(addr, recipientEmail, msg)
	case EncryptionNone:
		return m.sendPlain(addr, recipientEmail, msg)
	default:
		return m.sendStartTLS(addr, recipientEmail, msg)
	}
}

// buildMessage assembles the RFC 2822 message text. Split out so the body
// and headers are testable without a server.
func buildMessage(cfg Config, recipientName, recipientEmail, token string, now time.Time) string {
	from := mail.Address{Name: cfg.FromName, Address: cfg.FromAddress}
	to := mail.Address{Name: recipientName, Address: recipientEmail}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from.String()))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to.String()))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", cfg.Subject))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", now.UTC().Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")

	greeting := "Hello"
	if recipientName != "" {
		greeting = "Hello " + recipientName
	}
	msg.WriteString(fmt.Sprintf("%s,\r\n\r\n", greeting))
	msg.WriteString(fmt.Sprintf("Your login code is: %s\r\n\r\n", token))
	msg.WriteString("The code is valid for a few minutes. If you did not try to log in, you can ignore this message.\r\n")

	return msg.String()
}

func (m *SMTPMailer) sendStartTLS(addr, recipient, msg string) error {
	conn, err := net.DialTimeout("tcp", addr, m.cfg.DialTimeout)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("starting TLS: %w", err)
	}

	if err := m.authenticate(client); err != nil {
		return err
	}

	return m.sendMessage(client, recipient, msg)
}

func (m *SMTPMailer) sendSSL(addr, recipient, msg string) error {
	tlsConfig := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: m.cfg.DialTimeout}, "tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("connecting to %s (SSL): %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	if err := m.authenticate(client); err != nil {
		return err
	}

	return m.sendMessage(client, recipient, msg)
}

func (m *SMTPMailer) sendPlain(addr, recipient, msg string) error {
	var auth gosmtp.Auth
	if m.cfg.Username != "" {
		auth = gosmtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := gosmtp.SendMail(addr, auth, m.cfg.FromAddress, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

func (m *SMTPMailer) authenticate(client *gosmtp.Client) error {
	if m.cfg.Username == "" {
		return nil
	}
	auth := gosmtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	return nil
}

func (m *SMTPMailer) sendMessage(client *gosmtp.Client, recipient, msg string) error {
	if err := client.Mail(m.cfg.FromAddress); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("RCPT TO %s: %w", recipient, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data: %w", err)
	}
	return client.Quit()
}
