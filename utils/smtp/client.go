package smtp

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"assistante-suite/config"
)

func SendMailTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	host := strings.Split(addr, ":")[0]

	conn, err := tls.Dial("tcp", addr, &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         host,
	})
	if err != nil {
		return fmt.Errorf("failed to dial TLS: %w", err)
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func(c *smtp.Client) {
		_ = c.Close()
	}(c)

	if err = c.Auth(auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	if err = c.Mail(from); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}

	for _, recipient := range to {
		if err = c.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", recipient, err)
		}
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	_, err = wc.Write(msg)
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	err = wc.Close()
	if err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err = c.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}

	return nil
}

type Client struct {
	Addr        string
	Auth        smtp.Auth
	From        string
	DisplayName string
}

func NewSMTPClient(cfg config.SMTPConfig) *Client {
	addr := fmt.Sprintf("%s:%d", cfg.SMTPAddr, cfg.SMTPPort)
	auth := smtp.PlainAuth("", cfg.SMTPMail, cfg.SMTPPass, cfg.SMTPAddr)
	return &Client{
		Addr:        addr,
		Auth:        auth,
		From:        cfg.SMTPMail,
		DisplayName: cfg.DisplayName,
	}
}

// BuildMessage renders the headers and HTML body of one mail. Header order is
// fixed so the output is stable.
func (c *Client) BuildMessage(to []string, subject, body string, displayName string, now time.Time) string {
	if displayName == "" {
		displayName = c.DisplayName
	}
	from := c.From
	if displayName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", displayName), c.From)
	}
	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(to, ", ")},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=\"UTF-8\""},
		{"Date", now.Format(time.RFC1123Z)},
	}

	var msgBuilder strings.Builder
	for _, h := range headers {
		_, _ = fmt.Fprintf(&msgBuilder, "%s: %s\r\n", h[0], h[1])
	}
	msgBuilder.WriteString("\r\n")
	msgBuilder.WriteString(body)
	return msgBuilder.String()
}

func (c *Client) Send(to []string, subject, body string, displayName string) error {
	msg := c.BuildMessage(to, subject, body, displayName, time.Now())
	return SendMailTLS(c.Addr, c.Auth, c.From, to, []byte(msg))
}
