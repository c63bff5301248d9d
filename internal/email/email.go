package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
)

type Mailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.Host != ""
}

// RSVPNotice is what the couple is told about a new reply.
type RSVPNotice struct {
	Couple    string
	GuestName string
	Email     string
	Attending bool
	Guests    int
	Message   string
}

func (m *Mailer) SendRSVPNotice(to string, n RSVPNotice) error {
	subject := fmt.Sprintf("New RSVP from %s", headerSafe.Replace(n.GuestName))

	reply := "can't make it"
	if n.Attending {
		reply = fmt.Sprintf("will attend with %d guest(s)", n.Guests)
	}

	textBody := fmt.Sprintf(`Hello %s,

%s (%s) %s.
`, n.Couple, n.GuestName, n.Email, reply)
	if n.Message != "" {
		textBody += fmt.Sprintf("\nTheir message:\n\n%s\n", n.Message)
	}

	htmlBody := fmt.Sprintf(`<html><body>
<p>Hello %s,</p>
<p><strong>%s</strong> (%s) %s.</p>`,
		html.EscapeString(n.Couple), html.EscapeString(n.GuestName), html.EscapeString(n.Email), reply)
	if n.Message != "" {
		htmlBody += fmt.Sprintf(`
<blockquote style="border-left:3px solid #d97794;padding-left:12px;color:#555;">%s</blockquote>`,
			strings.ReplaceAll(html.EscapeString(n.Message), "\n", "<br>"))
	}
	htmlBody += "\n</body></html>"

	return m.sendMultipart(to, subject, textBody, htmlBody)
}

func (m *Mailer) sendMultipart(to, subject, textBody, htmlBody string) error {
	if !m.Enabled() {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: m.Host}
		if err := client.StartTLS(tlsConfig); err != nil {
			slog.Warn("smtp starttls failed, continuing without", "error", err)
		}
	}

	if m.User != "" {
		auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(m.From, to, subject, textBody, htmlBody)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	return client.Quit()
}

var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

const boundary = "----=_Part_invitation_boundary"

func buildMessage(from, to, subject, textBody, htmlBody string) []byte {
	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		fmt.Sprintf(`Content-Type: multipart/alternative; boundary="%s"`, boundary),
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, "\r\n") + "\r\n\r\n")
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(textBody + "\r\n")
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody + "\r\n")
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}
