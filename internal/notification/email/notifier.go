package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// EncryptionMode defines the TLS encryption strategy
type EncryptionMode string

const (
	EncryptionPreferred EncryptionMode = "preferred" // Try STARTTLS, fall back to plain
	EncryptionAlways    EncryptionMode = "always"    // Require TLS (port 465 or STARTTLS)
	EncryptionNever     EncryptionMode = "never"     // No encryption
)

// Settings contains SMTP configuration
type Settings struct {
	Server     string         `json:"server"`
	Port       int            `json:"port"`
	Encryption EncryptionMode `json:"encryption,omitempty"`
	Username   string         `json:"username,omitempty"`
	Password   string         `json:"password,omitempty"`
	From       string         `json:"from"`
}

// Notifier sends messages via SMTP email
type Notifier struct {
	settings Settings
	logger   zerolog.Logger
}

// New creates a new email notifier
func New(settings Settings, logger zerolog.Logger) *Notifier {
	if settings.Port == 0 {
		settings.Port = 587
	}
	if settings.Encryption == "" {
		settings.Encryption = EncryptionPreferred
	}
	return &Notifier{
		settings: settings,
		logger:   logger.With().Str("notifier", "email").Logger(),
	}
}

// Test sends a test message to verify the SMTP configuration.
func (n *Notifier) Test(ctx context.Context, to string) error {
	return n.Send(to, "Teyra Test Notification", "This is a test notification from Teyra.")
}

// Send delivers a plain-text message to a single recipient.
func (n *Notifier) Send(to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("no recipient specified")
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", n.settings.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", n.settings.Server, n.settings.Port)

	var auth smtp.Auth
	if n.settings.Username != "" && n.settings.Password != "" {
		auth = smtp.PlainAuth("", n.settings.Username, n.settings.Password, n.settings.Server)
	}

	// Implicit TLS on the submission-over-TLS port; everything else goes
	// through SendMail, which negotiates STARTTLS when offered.
	if n.settings.Encryption == EncryptionAlways && n.settings.Port == 465 {
		return n.sendTLS(addr, auth, to, msg.String())
	}

	return smtp.SendMail(addr, auth, n.settings.From, []string{to}, []byte(msg.String()))
}

func (n *Notifier) sendTLS(addr string, auth smtp.Auth, recipient, message string) error {
	client, err := n.dialTLS(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := authenticateAndSetEnvelope(client, auth, n.settings.From, recipient); err != nil {
		return err
	}

	return writeMessageData(client, message)
}

func (n *Notifier) dialTLS(addr string) (*smtp.Client, error) {
	tlsConfig := &tls.Config{
		ServerName: n.settings.Server,
		MinVersion: tls.VersionTLS12,
	}

	dialer := &tls.Dialer{Config: tlsConfig}
	conn, err := dialer.DialContext(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	client, err := smtp.NewClient(conn, n.settings.Server)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func authenticateAndSetEnvelope(client *smtp.Client, auth smtp.Auth, from, recipient string) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", recipient, err)
	}
	return nil
}

func writeMessageData(client *smtp.Client, message string) error {
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return client.Quit()
}
