// Package notify fans attendance events out to the configured chat channels.
// Every send is best effort: failures are logged and never bubble up into the
// clock request that produced the event.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/absentia-hq/absentia/internal/geocode"
	"github.com/absentia-hq/absentia/pkg/events"
	"github.com/absentia-hq/absentia/pkg/logger"
)

// Sender delivers one attendance message to one channel. A sender whose
// configuration is incomplete reports Enabled() == false and is skipped.
type Sender interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, ev events.ClockedEvent, address string) error
}

// Fanout subscribes to attendance events and pushes them through every
// enabled sender.
type Fanout struct {
	senders  []Sender
	resolver geocode.Resolver
}

func NewFanout(resolver geocode.Resolver, senders ...Sender) *Fanout {
	return &Fanout{senders: senders, resolver: resolver}
}

func (f *Fanout) Listen(bus events.Subscriber) error {
	handler := func(msg *events.Message) {
		var ev events.ClockedEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			logger.Error("Dropping malformed attendance event", "subject", msg.Subject, "error", err)
			return
		}
		f.Dispatch(context.Background(), ev)
	}

	if err := bus.Subscribe(events.AttendanceClockedIn, handler); err != nil {
		return err
	}
	return bus.Subscribe(events.AttendanceClockedOut, handler)
}

// Dispatch resolves the event's location once and hands the event to every
// enabled sender, collecting failures as log lines only.
func (f *Fanout) Dispatch(ctx context.Context, ev events.ClockedEvent) {
	address := ""
	if ev.Latitude != nil && ev.Longitude != nil {
		address = f.resolver.Address(ctx, *ev.Latitude, *ev.Longitude)
	}

	for _, s := range f.senders {
		if !s.Enabled() {
			continue
		}
		if err := s.Send(ctx, ev, address); err != nil {
			logger.ErrorContext(ctx, "Notification send failed",
				"channel", s.Name(), "email", ev.Email, "error", err)
			continue
		}
		logger.InfoContext(ctx, "Notification sent", "channel", s.Name(), "type", ev.Type, "email", ev.Email)
	}
}

// displayName derives a presentable first name from the email local part,
// e.g. "budi.santoso@corp.id" becomes "Budi".
func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	first, _, _ := strings.Cut(local, ".")
	if first == "" {
		return email
	}
	return strings.ToUpper(first[:1]) + first[1:]
}

func typeEmoji(typ string) string {
	if typ == "IN" {
		return "🟢"
	}
	return "🔴"
}

// buildMessage renders the shared notification body. Markdown mode wraps the
// maps link for Telegram; plain mode spells the URL out for WhatsApp.
func buildMessage(ev events.ClockedEvent, address string, markdown bool) string {
	timeStr := ev.Timestamp.Local().Format("15:04:05")

	var b strings.Builder
	fmt.Fprintf(&b, "%s ", typeEmoji(ev.Type))
	if markdown {
		fmt.Fprintf(&b, "*%s*", ev.Type)
	} else {
		b.WriteString(ev.Type)
	}
	fmt.Fprintf(&b, " - %s - %s", displayName(ev.Email), timeStr)

	if address != "" && ev.Latitude != nil && ev.Longitude != nil {
		mapsURL := fmt.Sprintf("https://www.google.com/maps?q=%v,%v", *ev.Latitude, *ev.Longitude)
		fmt.Fprintf(&b, "\n📍 Lokasi: %s", address)
		if markdown {
			fmt.Fprintf(&b, "\n🗺️ [Lihat di Maps](%s)", mapsURL)
		} else {
			fmt.Fprintf(&b, "\n🗺️ %s", mapsURL)
		}
	}

	if ev.Type == "OUT" && ev.Notes != "" {
		fmt.Fprintf(&b, "\n📝 Catatan: %s", ev.Notes)
	}

	return b.String()
}
