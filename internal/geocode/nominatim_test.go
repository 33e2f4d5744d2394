package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressResolved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"display_name":"Jl. Sudirman No.1, Jakarta"}`)
	}))
	defer srv.Close()

	n := NewNominatimWithBase(srv.URL)
	assert.Equal(t, "Jl. Sudirman No.1, Jakarta", n.Address(context.Background(), -6.2, 106.8))
}

func TestAddressFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n := NewNominatimWithBase(srv.URL)
	assert.Equal(t, "-6.200000, 106.800000", n.Address(context.Background(), -6.2, 106.8))
}
