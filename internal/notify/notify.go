// Package notify отправляет письма: ссылки сброса пароля и сообщения формы обратной связи.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// Message - письмо в формате HTML.
type Message struct {
	To      string
	Subject string
	HTML    string
	ReplyTo string
}

// Notifier доставляет письма. Ошибка доставки не меняет состояние вызывающего.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// PasswordResetMessage формирует письмо со ссылкой сброса пароля.
func PasswordResetMessage(to, resetURL string) Message {
	link := html.EscapeString(resetURL)
	body := `<p>You requested a password reset.</p>` +
		`<p><a href="` + link + `">Reset your password</a></p>` +
		`<p>This link expires in one hour. If you did not request a reset, ignore this email.</p>`
	return Message{To: to, Subject: "Password Reset Request", HTML: body}
}

// ContactMessage формирует уведомление о сообщении из формы обратной связи.
func ContactMessage(inbox string, c *domain.ContactMessage) Message {
	var b strings.Builder
	b.WriteString("<h3>New contact message</h3>")
	fmt.Fprintf(&b, "<p><b>Name:</b> %s</p>", html.EscapeString(c.Name))
	fmt.Fprintf(&b, "<p><b>Email:</b> %s</p>", html.EscapeString(c.Email))
	if c.Phone != "" {
		fmt.Fprintf(&b, "<p><b>Phone:</b> %s</p>", html.EscapeString(c.Phone))
	}
	fmt.Fprintf(&b, "<p><b>Message:</b><br>%s</p>", strings.ReplaceAll(html.EscapeString(c.Message), "\n", "<br>"))
	return Message{
		To:      inbox,
		Subject: "New contact form message from " + c.Name,
		HTML:    b.String(),
		ReplyTo: c.Email,
	}
}

// SMTPNotifier отправляет письма через SMTP.
type SMTPNotifier struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	logger   *slog.Logger
}

func NewSMTPNotifier(host string, port int, username, password string, ssl bool, from, fromName string, logger *slog.Logger) *SMTPNotifier {
	d := gomail.NewDialer(host, port, username, password)
	d.SSL = ssl
	return &SMTPNotifier{dialer: d, from: from, fromName: fromName, logger: logger}
}

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("notify: empty recipient")
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.from, n.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetBody("text/html", msg.HTML)

	// gomail не принимает контекст: проверяем отмену до соединения.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.dialer.DialAndSend(m); err != nil {
		n.logger.ErrorContext(ctx, "Failed to send email", slog.String("subject", msg.Subject), slog.String("error", err.Error()))
		return fmt.Errorf("smtp send: %w", err)
	}
	n.logger.InfoContext(ctx, "Email sent", slog.String("subject", msg.Subject))
	return nil
}

// LogNotifier пишет письма в лог вместо отправки (режим разработки).
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.logger.InfoContext(ctx, "Email not sent (log mail driver)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("bodyLength", len(msg.HTML)),
	)
	return nil
}
