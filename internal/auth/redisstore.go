package auth

import (
	"context"
	"encoding/base32"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"computer-inventory-api/internal/logger"
)

// redisKeyPrefix namespaces session keys
const redisKeyPrefix = "session:"

// RedisStore keeps session values server-side in Redis. The cookie only
// carries the signed session id.
type RedisStore struct {
	client  redis.UniversalClient
	Codecs  []securecookie.Codec
	Options *sessions.Options
	prefix  string
}

// NewRedisStore returns a store using keyPairs to sign (and optionally
// encrypt) both the cookie and the stored values
func NewRedisStore(client redis.UniversalClient, keyPairs ...[]byte) *RedisStore {
	return &RedisStore{
		client: client,
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{
			Path:   "/",
			MaxAge: 86400 * 30,
		},
		prefix: redisKeyPrefix,
	}
}

// MaxAge sets the maximum age of the store and its codecs
func (s *RedisStore) MaxAge(age int) {
	s.Options.MaxAge = age
	for _, c := range s.Codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(age)
		}
	}
}

// Get returns the session registered for the request, loading it once
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie, or returns a fresh one
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		return session, err
	}
	found, err := s.load(r.Context(), session)
	if err != nil {
		return session, err
	}
	session.IsNew = !found
	return session, nil
}

// Save persists the session and writes its cookie. A non-positive MaxAge
// deletes it.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge <= 0 {
		if session.ID != "" {
			if err := s.client.Del(r.Context(), s.prefix+session.ID).Err(); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
	}
	if err := s.save(r.Context(), session); err != nil {
		return err
	}
	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// discard deletes the stored values of session and clears its id, so the
// next Save mints a new one
func (s *RedisStore) discard(ctx context.Context, session *sessions.Session) error {
	if session.ID == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+session.ID).Err(); err != nil {
		return err
	}
	session.ID = ""
	return nil
}

func (s *RedisStore) save(ctx context.Context, session *sessions.Session) error {
	encoded, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return err
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	err = s.client.Set(ctx, s.prefix+session.ID, encoded, ttl).Err()
	logger.Log.Debugw("session saved", "ttl", ttl, "error", err)
	return err
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) (bool, error) {
	val, err := s.client.Get(ctx, s.prefix+session.ID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := securecookie.DecodeMulti(session.Name(), val, &session.Values, s.Codecs...); err != nil {
		return false, err
	}
	return true, nil
}
