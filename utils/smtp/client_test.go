package smtp

import (
	"strings"
	"testing"
	"time"

	"assistante-suite/config"

	"github.com/stretchr/testify/require"
)

func TestRenderEscapesValues(t *testing.T) {
	out := Render(AppointmentNotifyTemplate, map[string]string{
		"NAME":    "Zoé <b>",
		"MESSAGE": "a & b",
	})
	require.Contains(t, out, "Zoé &lt;b&gt;")
	require.Contains(t, out, "a &amp; b")
	require.Contains(t, out, "{{PHONE}}")
}

func TestRenderConfirmLink(t *testing.T) {
	out := Render(NewsletterConfirmTemplate, map[string]string{
		"SITE_NAME":       "Assistante",
		"CONFIRM_URL":     "https://example.fr/newsletter/confirm/abc",
		"UNSUBSCRIBE_URL": "https://example.fr/newsletter/unsubscribe/abc",
	})
	require.Contains(t, out, `href="https://example.fr/newsletter/confirm/abc"`)
	require.NotContains(t, out, "{{")
}

func TestBuildMessage(t *testing.T) {
	c := NewSMTPClient(config.SMTPConfig{
		SMTPAddr:    "smtp.example.fr",
		SMTPPort:    465,
		SMTPMail:    "contact@example.fr",
		DisplayName: "Assistante",
	})
	require.Equal(t, "smtp.example.fr:465", c.Addr)

	now := time.Date(2024, 6, 11, 9, 30, 0, 0, time.UTC)
	msg := c.BuildMessage([]string{"a@example.fr", "b@example.fr"}, "Bonjour", "<p>Salut</p>", "", now)

	head, body, ok := strings.Cut(msg, "\r\n\r\n")
	require.True(t, ok)
	require.Equal(t, "<p>Salut</p>", body)
	lines := strings.Split(head, "\r\n")
	require.Equal(t, "From: Assistante <contact@example.fr>", lines[0])
	require.Equal(t, "To: a@example.fr, b@example.fr", lines[1])
	require.Equal(t, "Subject: Bonjour", lines[2])
	require.Equal(t, "Date: "+now.Format(time.RFC1123Z), lines[5])
}

func TestBuildMessageEncodesAccents(t *testing.T) {
	c := &Client{From: "contact@example.fr"}
	msg := c.BuildMessage([]string{"a@example.fr"}, "Réservation", "x", "", time.Now())
	require.Contains(t, msg, "Subject: =?utf-8?q?R=C3=A9servation?=\r\n")
	require.Contains(t, msg, "From: contact@example.fr\r\n")
}
