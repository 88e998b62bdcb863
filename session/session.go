// Package session implements cookie based session tracking for the
// web viewers.
package session

import (
	"crypto/rand"
	"net/http"
	"sync"
	"time"
)

const defaultTTL = 3 * time.Hour

type Data struct {
	ExpireAt time.Time
	Value    any
}

type Control struct {
	mux        sync.Mutex
	cookieName string
	sessions   map[string]Data
}

func New(cookieName string) *Control {
	return &Control{
		cookieName: cookieName,
		sessions:   make(map[string]Data),
	}
}

// Get returns the session id and data for the request cookie, if the
// session exists and has not expired.
func (c *Control) Get(r *http.Request) (string, *Data, bool) {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil {
		return "", nil, false
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	s, ok := c.sessions[cookie.Value]
	if !ok {
		return "", nil, false
	}

	if s.ExpireAt.Before(time.Now()) {
		delete(c.sessions, cookie.Value)
		return "", nil, false
	}

	return cookie.Value, &s, true
}

// Create returns a fresh session id and data, not yet saved.
func (c *Control) Create() (string, *Data) {
	return RandomID(), &Data{
		ExpireAt: time.Now().Add(defaultTTL),
	}
}

// Save stores the session and sets the cookie on the response.
func (c *Control) Save(w http.ResponseWriter, id string, data *Data) {
	expireAt := time.Now().Add(defaultTTL)
	data.ExpireAt = expireAt

	c.mux.Lock()
	c.sessions[id] = *data
	c.mux.Unlock()

	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     c.cookieName,
		Value:    id,
		Expires:  expireAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteDefaultMode,
	})
}

func (c *Control) Delete(w http.ResponseWriter, id string) {
	c.mux.Lock()
	delete(c.sessions, id)
	c.mux.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:   c.cookieName,
		Value:  "",
		MaxAge: -1,
	})
}

func (c *Control) RemoveExpired() {
	c.mux.Lock()
	defer c.mux.Unlock()
	now := time.Now()
	for k, v := range c.sessions {
		if v.ExpireAt.Before(now) {
			delete(c.sessions, k)
		}
	}
}

func RandomID() string {
	const (
		length  = 16
		charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	)
	lenCharset := byte(len(charset))
	b := make([]byte, length)
	rand.Read(b)
	for i := 0; i < length; i++ {
		b[i] = charset[b[i]%lenCharset]
	}
	return string(b)
}
