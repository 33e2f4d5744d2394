package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/absentia-hq/absentia/pkg/events"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram posts the attendance message to a chat through the Bot API.
// Both the bot token and the chat id must be configured or the sender stays
// disabled.
type Telegram struct {
	http    *http.Client
	baseURL string
	token   string
	chatID  string
}

func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: telegramAPIBase,
		token:   token,
		chatID:  chatID,
	}
}

// NewTelegramWithBase is used by tests to point at a fake Bot API.
func NewTelegramWithBase(token, chatID, baseURL string) *Telegram {
	tg := NewTelegram(token, chatID)
	tg.baseURL = baseURL
	return tg
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Enabled() bool { return t.token != "" && t.chatID != "" }

func (t *Telegram) Send(ctx context.Context, ev events.ClockedEvent, address string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       buildMessage(ev, address, true),
		"parse_mode": "Markdown",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendMessage returned status %d", res.StatusCode)
	}
	return nil
}
