// Package geocode resolves coordinates to a human-readable address for
// notification messages. Lookups are best effort: any failure falls back to
// the raw coordinate pair.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"
)

const nominatimURL = "https://nominatim.openstreetmap.org/reverse"

type Resolver interface {
	Address(ctx context.Context, lat, lon float64) string
}

type Nominatim struct {
	http    *http.Client
	baseURL string
}

func NewNominatim() *Nominatim {
	return &Nominatim{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: nominatimURL,
	}
}

// NewNominatimWithBase is used by tests to point at a fake server.
func NewNominatimWithBase(baseURL string) *Nominatim {
	n := NewNominatim()
	n.baseURL = baseURL
	return n
}

type reverseQuery struct {
	Format string  `url:"format"`
	Lat    float64 `url:"lat"`
	Lon    float64 `url:"lon"`
}

func (n *Nominatim) Address(ctx context.Context, lat, lon float64) string {
	fallback := fmt.Sprintf("%.6f, %.6f", lat, lon)

	qs, err := query.Values(reverseQuery{Format: "json", Lat: lat, Lon: lon})
	if err != nil {
		return fallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+qs.Encode(), nil)
	if err != nil {
		return fallback
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "AbsentiaSystem/1.0")

	res, err := n.http.Do(req)
	if err != nil {
		return fallback
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fallback
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.DisplayName == "" {
		return fallback
	}

	return body.DisplayName
}
