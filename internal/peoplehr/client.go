package peoplehr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"github.com/absentia-hq/absentia/pkg/config"
	"github.com/absentia-hq/absentia/pkg/logger"
)

// Client emulates the portal's browser login flow: fetch the login page,
// extract the RSA public key and CSRF token, submit encrypted credentials,
// then optionally mirror a clock event through the manual-swipe form. Every
// invocation authenticates from scratch with its own cookie jar.
type Client struct {
	cfg config.RemoteConfig
}

func NewClient(cfg config.RemoteConfig) *Client {
	return &Client{cfg: cfg}
}

// Session is one authenticated conversation with the portal: the cookie jar
// the portal set during login plus the CSRF token from the login page. Cookie
// continuity across the steps is what keeps the handshake alive.
type Session struct {
	http *http.Client
	csrf string
}

// AuthUser is what the portal tells us about the account after login.
type AuthUser struct {
	Email    string
	FullName string
}

func (c *Client) newSession() (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Session{
		http: &http.Client{Jar: jar, Timeout: c.cfg.Timeout},
	}, nil
}

// Login runs the three-step handshake and returns the authenticated session
// for follow-up calls. Callers that only need to verify credentials can stop
// here and discard the session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, *AuthUser, error) {
	sess, err := c.newSession()
	if err != nil {
		return nil, nil, err
	}

	page, err := c.fetchLoginPage(ctx, sess)
	if err != nil {
		return nil, nil, err
	}
	sess.csrf = page.CSRFToken

	publicKeyPEM, err := base64.StdEncoding.DecodeString(page.PublicKeyBase64)
	if err != nil {
		return nil, nil, &ProtocolError{Reason: "public key is not valid base64"}
	}

	encryptedUser, err := EncryptCredential(publicKeyPEM, email)
	if err != nil {
		return nil, nil, err
	}
	encryptedPass, err := EncryptCredential(publicKeyPEM, password)
	if err != nil {
		return nil, nil, err
	}

	user, err := c.submitLogin(ctx, sess, email, encryptedUser, encryptedPass)
	if err != nil {
		return nil, nil, err
	}

	return sess, user, nil
}

// Swipe mirrors one clock event into the portal: authenticate, look up the
// employee id from the profile brief, then submit the manual swipe form.
func (c *Client) Swipe(ctx context.Context, email, password, comment string, at time.Time) error {
	sess, _, err := c.Login(ctx, email, password)
	if err != nil {
		return err
	}

	employeeID, err := c.profileBrief(ctx, sess)
	if err != nil {
		return err
	}

	return c.submitSwipe(ctx, sess, employeeID, comment, at)
}

func (c *Client) fetchLoginPage(ctx context.Context, sess *Session) (*loginPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+c.cfg.LoginPagePath, nil)
	if err != nil {
		return nil, err
	}

	res, err := sess.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch login page: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login page returned status %d", res.StatusCode)
	}

	return parseLoginPage(res.Body)
}

type loginPayload struct {
	UserName  string `json:"userName"`
	Password  string `json:"password"`
	ReturnURL string `json:"returnurl"`
}

func (c *Client) submitLogin(ctx context.Context, sess *Session, email, encryptedUser, encryptedPass string) (*AuthUser, error) {
	payload, err := json.Marshal(loginPayload{
		UserName:  encryptedUser,
		Password:  encryptedPass,
		ReturnURL: c.cfg.ReturnURL,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.LoginAPIPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("__RequestVerificationToken", sess.csrf)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	res, err := sess.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit login: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}

	if res.StatusCode != http.StatusOK || len(bytes.TrimSpace(body)) == 0 {
		return nil, &AuthenticationError{Email: email}
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &AuthenticationError{Email: email}
	}

	// An explicit status:false means rejected; a truthy or absent status
	// field counts as authenticated.
	if status, ok := fields["status"].(bool); ok && !status {
		return nil, &AuthenticationError{Email: email}
	}

	return &AuthUser{
		Email:    email,
		FullName: stringField(fields, "fullName", "FullName", "name"),
	}, nil
}

func (c *Client) profileBrief(ctx context.Context, sess *Session) (string, error) {
	// The cache-busting _ query parameter mimics what the portal's own JS sends.
	url := fmt.Sprintf("%s%s?_=%d", c.cfg.BaseURL, c.cfg.ProfilePath, time.Now().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", c.cfg.BaseURL+c.cfg.ReturnURL)

	res, err := sess.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch profile brief: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profile brief returned status %d", res.StatusCode)
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&fields); err != nil {
		return "", &ProtocolError{Reason: "profile brief is not valid JSON"}
	}

	employeeID := stringField(fields, "EmployeeNumber", "employeeNumber", "EmployeeID", "employeeID")
	if employeeID == "" {
		return "", &ProtocolError{Reason: "employee id not found"}
	}

	return employeeID, nil
}

type swipePayload struct {
	Employee   string `json:"Employee"`
	ActionName string `json:"ActionName"`
	Hours      int    `json:"Hours"`
	Minutes    int    `json:"Minutes"`
	ShiftCode  string `json:"ShiftCode"`
	Comment    string `json:"Comment"`
	Location   string `json:"Location"`
	Latitude   int    `json:"Latitude"`
	// The portal misspells longitude on the wire.
	Longtitude int `json:"Longtitude"`
}

func (c *Client) submitSwipe(ctx context.Context, sess *Session, employeeID, comment string, at time.Time) error {
	payload, err := json.Marshal(swipePayload{
		Employee:   employeeID,
		ActionName: "SWAP",
		Hours:      at.Hour(),
		Minutes:    at.Minute(),
		ShiftCode:  c.cfg.ShiftCode,
		Comment:    comment,
		Location:   "",
		Latitude:   -1,
		Longtitude: -1,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.SwipePath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("__RequestVerificationToken", sess.csrf)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", c.cfg.BaseURL+c.cfg.ReturnURL)

	res, err := sess.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit manual swipe: %w", err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	// The portal answers the swipe form with an opaque blob; a completed
	// round trip is treated as success, matching the browser behavior.
	logger.DebugContext(ctx, "Manual swipe submitted", "employee_id", employeeID, "status", res.StatusCode)
	return nil
}

// stringField returns the first non-empty value among the given keys,
// stringifying numeric JSON values.
func stringField(fields map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
