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

// WhatsApp talks to a separately deployed gateway that holds the linked
// device session. The sender is gated twice: on configuration (gateway URL
// and group name) and on the gateway reporting itself ready.
type WhatsApp struct {
	http       *http.Client
	gatewayURL string
	group      string
}

func NewWhatsApp(gatewayURL, group string) *WhatsApp {
	return &WhatsApp{
		http:       &http.Client{Timeout: 10 * time.Second},
		gatewayURL: gatewayURL,
		group:      group,
	}
}

func (w *WhatsApp) Name() string { return "whatsapp" }

func (w *WhatsApp) Enabled() bool { return w.gatewayURL != "" && w.group != "" }

func (w *WhatsApp) Send(ctx context.Context, ev events.ClockedEvent, address string) error {
	ready, err := w.clientReady(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return fmt.Errorf("whatsapp gateway not ready")
	}

	payload, err := json.Marshal(map[string]string{
		"group":   w.group,
		"message": buildMessage(ev, address, false),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.gatewayURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("whatsapp gateway returned status %d", res.StatusCode)
	}
	return nil
}

func (w *WhatsApp) clientReady(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.gatewayURL+"/status", nil)
	if err != nil {
		return false, err
	}

	res, err := w.http.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return false, nil
	}

	var body struct {
		Ready bool `json:"ready"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Ready, nil
}
