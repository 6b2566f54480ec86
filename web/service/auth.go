// Package service holds the operations behind the console pages that talk to
// the backend directly rather than through a resource controller.
package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web/locale"
	"github.com/shyamgroup/backoffice/web/session"
)

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// AuthGate is the session authority for one request. It owns login and
// logout and is the only source of the bearer header.
type AuthGate struct {
	store  session.Store
	client *backend.Client
}

func NewAuthGate(store session.Store, client *backend.Client) *AuthGate {
	return &AuthGate{store: store, client: client}
}

// Login authenticates against the backend and, only when the response carries
// a token, a role and an email, stores all three.
func (g *AuthGate) Login(ctx context.Context, cred Credentials) (*session.Session, error) {
	cred.Email = strings.TrimSpace(cred.Email)
	if cred.Email == "" {
		return nil, &backend.ValidationError{Msg: locale.I18n("pages.login.toasts.emptyEmail")}
	}
	if cred.Password == "" {
		return nil, &backend.ValidationError{Msg: locale.I18n("pages.login.toasts.emptyPassword")}
	}

	res, err := g.client.PostJSON(ctx, "/auth/login", cred)
	if err != nil {
		logger.Warningf("login failed for %s: %v", cred.Email, err)
		if backend.IsNetwork(err) {
			return nil, &backend.ValidationError{Msg: locale.I18n("pages.login.toasts.networkError")}
		}
		return nil, &backend.ValidationError{Msg: backend.UserMessage(err, locale.I18n("pages.login.toasts.failed"))}
	}

	var body loginResponse
	if err := res.Decode(&body); err != nil || body.Token == "" || body.Role == "" || body.Email == "" {
		logger.Warningf("login for %s returned an incomplete session", cred.Email)
		return nil, &backend.ValidationError{Msg: locale.I18n("pages.login.toasts.invalidResponse")}
	}

	sess := &session.Session{Token: body.Token, Role: body.Role, Email: body.Email}
	if err := g.store.Save(sess); err != nil {
		return nil, err
	}
	logger.Infof("%s logged in as %s", sess.Email, sess.Role)
	return sess, nil
}

// Logout removes the whole session. It never contacts the backend.
func (g *AuthGate) Logout() error {
	if sess := g.store.Load(); sess != nil {
		logger.Infof("%s logged out", sess.Email)
	}
	return g.store.Clear()
}

// Session returns the stored session, or nil.
func (g *AuthGate) Session() *session.Session {
	return g.store.Load()
}

func (g *AuthGate) IsAuthenticated() bool {
	return g.store.Load() != nil
}

// HasRole reports whether the stored role is one of allowed.
func (g *AuthGate) HasRole(allowed ...string) bool {
	sess := g.store.Load()
	if sess == nil {
		return false
	}
	for _, r := range allowed {
		if sess.Role == r {
			return true
		}
	}
	return false
}

// AuthHeader is the bearer header for backend calls; empty without a session.
// It never sets Content-Type.
func (g *AuthGate) AuthHeader() http.Header {
	h := http.Header{}
	if sess := g.store.Load(); sess != nil {
		h.Set("Authorization", "Bearer "+sess.Token)
	}
	return h
}

// Context attaches the bearer header to ctx for the backend client.
func (g *AuthGate) Context(ctx context.Context) context.Context {
	return backend.WithHeader(ctx, g.AuthHeader())
}

// Scope identifies the session for server-side state; empty without a session.
func (g *AuthGate) Scope() string {
	return g.store.Load().Scope()
}
