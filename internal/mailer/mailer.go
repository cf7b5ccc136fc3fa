// Package mailer emails result files to the user who requested them.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/MikeSquared-Agency/Topsis/internal/config"
)

const StatusSent = "Email sent successfully"

var ErrNotConfigured = errors.New("Email credentials not configured in .env file")

// Message is a plain-text mail with one attachment.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Status is the email_status string reported to the uploader.
func Status(err error) string {
	if err == nil {
		return StatusSent
	}
	return "Warning: " + err.Error()
}

// ResultMessage builds the mail that carries a result file back to the user.
func ResultMessage(to, inputName, resultName string, result []byte, now time.Time) Message {
	body := fmt.Sprintf(`Dear User,

Your TOPSIS analysis has been completed successfully!

File: %s
Generated: %s

The results file with Topsis Score and Rank columns is attached.

Best regards,
TOPSIS Web Service
`, inputName, now.Format("2006-01-02 15:04:05"))

	return Message{
		To:             to,
		Subject:        "TOPSIS Analysis Results - " + inputName,
		Body:           body,
		AttachmentName: resultName,
		Attachment:     result,
	}
}

type dialFunc func(ctx context.Context, addr string) (net.Conn, error)

// SMTPMailer sends over implicit TLS, as expected on port 465.
type SMTPMailer struct {
	host     string
	port     int
	sender   string
	password string
	limiter  *rate.Limiter
	dial     dialFunc
	logger   *slog.Logger
}

func NewSMTPMailer(cfg config.MailConfig, logger *slog.Logger) *SMTPMailer {
	perMinute := cfg.PerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	m := &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		sender:   cfg.Sender,
		password: cfg.Password,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		logger:   logger,
	}
	m.dial = m.dialTLS
	return m
}

func (m *SMTPMailer) dialTLS(ctx context.Context, addr string) (net.Conn, error) {
	d := &tls.Dialer{Config: &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12}}
	return d.DialContext(ctx, "tcp", addr)
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.sender == "" || m.password == "" {
		return ErrNotConfigured
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("email throttled: %w", err)
	}

	raw, err := m.build(msg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	conn, err := m.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("Email sending failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := m.deliver(conn, msg.To, raw); err != nil {
		return fmt.Errorf("Email sending failed: %w", err)
	}
	m.logger.Info("email sent", "to", msg.To, "attachment", msg.AttachmentName, "bytes", len(raw))
	return nil
}

func (m *SMTPMailer) deliver(conn net.Conn, to string, raw []byte) error {
	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", m.sender, m.password, m.host)); err != nil {
		return err
	}
	if err := c.Mail(m.sender); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (m *SMTPMailer) build(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.sender)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	if msg.AttachmentName != "" {
		att, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/octet-stream"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": msg.AttachmentName})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(att, msg.Attachment); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64 wraps encoded output at 76 columns.
func writeBase64(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 0 {
		n := min(76, len(enc))
		if _, err := w.Write([]byte(enc[:n] + "\r\n")); err != nil {
			return err
		}
		enc = enc[n:]
	}
	return nil
}
