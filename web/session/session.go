// Package session persists the signed-in identity in the cookie session.
package session

import (
	"encoding/gob"
	"sync"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CookieName is the name of the session cookie.
const CookieName = "console"

const loginSession = "LOGIN_SESSION"

// scopeSpace namespaces the per-session scope ids derived from tokens.
var scopeSpace = uuid.MustParse("6f1c5a0e-3b8d-4f7a-9c2e-5d4b1a0f8e37")

const (
	RoleAdmin    = "admin"
	RoleUploader = "uploader"
)

// Session is the identity returned by the backend on login. The three fields
// are stored as one value so they are always written and cleared together.
type Session struct {
	Token string
	Role  string
	Email string
}

func init() {
	gob.Register(Session{})
}

// Valid reports whether every field is set.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.Role != "" && s.Email != ""
}

// Scope identifies the session for server-side state without exposing the token.
func (s *Session) Scope() string {
	if !s.Valid() {
		return ""
	}
	return uuid.NewSHA1(scopeSpace, []byte(s.Token)).String()
}

func Set(c *gin.Context, sess *Session) error {
	s := sessions.Default(c)
	s.Set(loginSession, *sess)
	return s.Save()
}

func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

// Get returns the stored session, or nil when absent or incomplete.
func Get(c *gin.Context) *Session {
	s := sessions.Default(c)
	if obj := s.Get(loginSession); obj != nil {
		if sess, ok := obj.(Session); ok && sess.Valid() {
			return &sess
		}
	}
	return nil
}

func Clear(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	return nil
}

// Store is where an AuthGate keeps the session.
type Store interface {
	Load() *Session
	Save(sess *Session) error
	Clear() error
}

type ginStore struct {
	c *gin.Context
}

// FromContext returns the cookie-backed store of the current request.
func FromContext(c *gin.Context) Store {
	return ginStore{c: c}
}

func (s ginStore) Load() *Session           { return Get(s.c) }
func (s ginStore) Save(sess *Session) error { return Set(s.c, sess) }
func (s ginStore) Clear() error             { return Clear(s.c) }

// MemoryStore keeps the session in memory, for command-line use and tests.
type MemoryStore struct {
	mu   sync.Mutex
	sess *Session
}

func (m *MemoryStore) Load() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sess.Valid() {
		return nil
	}
	cp := *m.sess
	return &cp
}

func (m *MemoryStore) Save(sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sess
	m.sess = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
