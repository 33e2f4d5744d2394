package peoplehr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleLoginHTML = `<!DOCTYPE html>
<html><body>
<form action="/hr/security/login" method="post">
  <input name="__RequestVerificationToken" type="hidden" value="csrf-123" />
  <input type="text" id="username" />
  <input type="password" id="password" />
</form>
<input type="hidden" id="hdnPublicKey" value="cHVibGljLWtleQ==" />
</body></html>`

func TestParseLoginPage(t *testing.T) {
	page, err := parseLoginPage(strings.NewReader(sampleLoginHTML))
	require.NoError(t, err)
	require.Equal(t, "cHVibGljLWtleQ==", page.PublicKeyBase64)
	require.Equal(t, "csrf-123", page.CSRFToken)
}

func TestParseLoginPageMissingPublicKey(t *testing.T) {
	html := strings.Replace(sampleLoginHTML, "hdnPublicKey", "somethingElse", 1)

	_, err := parseLoginPage(strings.NewReader(html))
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "missing public key", pe.Reason)
}

func TestParseLoginPageMissingCSRF(t *testing.T) {
	html := strings.Replace(sampleLoginHTML, "__RequestVerificationToken", "someOtherField", 1)

	_, err := parseLoginPage(strings.NewReader(html))
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "missing csrf token", pe.Reason)
}
