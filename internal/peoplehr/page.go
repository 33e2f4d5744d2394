package peoplehr

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// loginPage holds the two tokens scraped from the portal's login markup.
type loginPage struct {
	PublicKeyBase64 string
	CSRFToken       string
}

func parseLoginPage(r io.Reader) (*loginPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ProtocolError{Reason: "login page is not parseable HTML"}
	}

	key := hiddenField(doc, "#hdnPublicKey")
	if key == "" {
		return nil, &ProtocolError{Reason: "missing public key"}
	}

	csrf := hiddenField(doc, `input[name="__RequestVerificationToken"]`)
	if csrf == "" {
		return nil, &ProtocolError{Reason: "missing csrf token"}
	}

	return &loginPage{PublicKeyBase64: key, CSRFToken: csrf}, nil
}

// hiddenField reads the value attribute of the first element matching the
// selector, empty when absent.
func hiddenField(doc *goquery.Document, selector string) string {
	val, _ := doc.Find(selector).First().Attr("value")
	return strings.TrimSpace(val)
}
