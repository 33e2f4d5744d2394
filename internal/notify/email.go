package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/absentia-hq/absentia/pkg/events"
)

// Email mails an attendance summary through MailerSend, for teams that want a
// mailbox trail next to the chat channels.
type Email struct {
	client *mailersend.Mailersend
	from   string
	to     string
}

func NewEmail(apiKey, from, to string) *Email {
	e := &Email{from: from, to: to}
	if apiKey != "" && from != "" && to != "" {
		e.client = mailersend.NewMailersend(apiKey)
	}
	return e
}

func (e *Email) Name() string { return "email" }

func (e *Email) Enabled() bool { return e.client != nil }

func (e *Email) Send(ctx context.Context, ev events.ClockedEvent, address string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	subject := fmt.Sprintf("[Absensi] %s - %s - %s",
		ev.Type, displayName(ev.Email), ev.Timestamp.Local().Format("2 Jan 2006 15:04"))

	msg := e.client.Email.NewMessage()
	msg.SetFrom(mailersend.From{Name: "Absentia", Email: e.from})
	msg.SetRecipients([]mailersend.Recipient{{Email: e.to}})
	msg.SetSubject(subject)
	msg.SetText(buildMessage(ev, address, false))

	_, err := e.client.Email.Send(ctx, msg)
	return err
}
