package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

// SessionName is the cookie carrying the session
const SessionName = "sessId"

const sessionUserKey = "userId"

// SessionOptions configures the session cookie
type SessionOptions struct {
	MaxAge   time.Duration
	Secure   bool
	HTTPOnly bool
	// Rolling re-issues the cookie on every authenticated request
	Rolling bool
}

// SessionManager stores the logged-in user id in a gorilla session
type SessionManager struct {
	store   sessions.Store
	rolling bool
}

// NewCookieSessions keeps the session in the signed cookie itself
func NewCookieSessions(opts SessionOptions, keyPairs ...[]byte) *SessionManager {
	store := sessions.NewCookieStore(keyPairs...)
	store.MaxAge(int(opts.MaxAge.Seconds()))
	applyOptions(store.Options, opts)
	return &SessionManager{store: store, rolling: opts.Rolling}
}

// NewRedisSessions keeps session values in Redis
func NewRedisSessions(client redis.UniversalClient, opts SessionOptions, keyPairs ...[]byte) *SessionManager {
	store := NewRedisStore(client, keyPairs...)
	store.MaxAge(int(opts.MaxAge.Seconds()))
	applyOptions(store.Options, opts)
	return &SessionManager{store: store, rolling: opts.Rolling}
}

func applyOptions(o *sessions.Options, opts SessionOptions) {
	o.Path = "/"
	o.Secure = opts.Secure
	o.HttpOnly = opts.HTTPOnly
	o.SameSite = http.SameSiteLaxMode
}

// Login starts a fresh session for userID. Whatever session the request
// carried is discarded, so a planted cookie never becomes authenticated.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	// a stale or tampered cookie just yields a fresh session
	s, _ := m.store.Get(r, SessionName)
	if rs, ok := m.store.(*RedisStore); ok {
		if err := rs.discard(r.Context(), s); err != nil {
			return err
		}
	}
	for k := range s.Values {
		delete(s.Values, k)
	}
	s.ID = ""
	s.IsNew = true
	s.Values[sessionUserKey] = userID
	return s.Save(r, w)
}

// Logout ends the current session, if any
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	s, _ := m.store.Get(r, SessionName)
	for k := range s.Values {
		delete(s.Values, k)
	}
	s.Options.MaxAge = -1
	return s.Save(r, w)
}

// UserID returns the user id stored in the session
func (m *SessionManager) UserID(r *http.Request) (int64, bool) {
	s, err := m.store.Get(r, SessionName)
	if err != nil || s.IsNew {
		return 0, false
	}
	id, ok := s.Values[sessionUserKey].(int64)
	return id, ok && id > 0
}

// Refresh re-issues the session cookie when rolling expiry is enabled
func (m *SessionManager) Refresh(w http.ResponseWriter, r *http.Request) error {
	if !m.rolling {
		return nil
	}
	s, err := m.store.Get(r, SessionName)
	if err != nil {
		return err
	}
	return s.Save(r, w)
}
