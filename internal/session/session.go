// Package session carries the authenticated identity across requests in a
// single HMAC-signed cookie. The payload is readable by anyone holding the
// cookie; the signature is what prevents forging another user's identity.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

const CookieName = "sprout_session"

// ErrUnauthorized signals a missing, tampered or expired session.
var ErrUnauthorized = errors.New("unauthorized - please log in")

// Session is the identity payload embedded in the cookie.
type Session struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	IssuedAt int64  `json:"iat"`
}

// Manager signs and verifies session cookies with a shared secret.
type Manager struct {
	secret []byte
	maxAge time.Duration
}

func NewManager(secret string, maxAge time.Duration) *Manager {
	return &Manager{secret: []byte(secret), maxAge: maxAge}
}

func (m *Manager) sign(payload string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Encode produces the cookie value: base64url(json payload) + "." + hex(hmac).
func (m *Manager) Encode(s *Session) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + m.sign(payload), nil
}

// Decode verifies the signature and expiry before trusting the payload.
func (m *Manager) Decode(value string) (*Session, error) {
	payload, sig, found := strings.Cut(value, ".")
	if !found {
		return nil, ErrUnauthorized
	}

	if !hmac.Equal([]byte(m.sign(payload)), []byte(sig)) {
		return nil, ErrUnauthorized
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrUnauthorized
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, ErrUnauthorized
	}

	if m.maxAge > 0 && time.Since(time.Unix(s.IssuedAt, 0)) > m.maxAge {
		return nil, ErrUnauthorized
	}

	return &s, nil
}

// Get returns the session carried by the request, or nil when absent or invalid.
func (m *Manager) Get(r *http.Request) *Session {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	s, err := m.Decode(c.Value)
	if err != nil {
		return nil
	}
	return s
}

// Require returns the session or ErrUnauthorized. Handlers map the error to 401.
func (m *Manager) Require(r *http.Request) (*Session, error) {
	s := m.Get(r)
	if s == nil {
		return nil, ErrUnauthorized
	}
	return s, nil
}

// Set writes the signed session cookie on the response.
func (m *Manager) Set(w http.ResponseWriter, r *http.Request, s *Session) error {
	if s.IssuedAt == 0 {
		s.IssuedAt = time.Now().Unix()
	}

	value, err := m.Encode(s)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,                 // JavaScript access forbidden (XSS protection)
		Secure:   r.TLS != nil,         // True if using HTTPS
		SameSite: http.SameSiteLaxMode, // CSRF
		MaxAge:   int(m.maxAge.Seconds()),
	})
	return nil
}

// Clear invalidates the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
