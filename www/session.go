package www

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	sessionName    = "weatherboard"
	clientIDKey    = "client_id"
	minSessionKeyN = 32
)

// Sessions hands every browser a stable client id in a signed cookie.
// Preferences are stored under that id.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions signs cookies with key. A short or missing key is replaced
// by a random one.
func NewSessions(key []byte, maxAge time.Duration) *Sessions {
	if len(key) < minSessionKeyN {
		key = securecookie.GenerateRandomKey(minSessionKeyN)
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// ClientID returns the id of the requesting browser, issuing a new one
// (and setting the cookie) when the request carries none. An invalid
// cookie is treated as missing.
func (s *Sessions) ClientID(w http.ResponseWriter, r *http.Request) (string, error) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		// Get still returns a fresh session alongside a decode error.
		session.Values = map[any]any{}
	}

	if id, ok := session.Values[clientIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	session.Values[clientIDKey] = id
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}
	return id, nil
}
