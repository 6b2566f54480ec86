// Package controller provides the gin handlers of the console pages: login,
// the dashboard, the generic resource pages and the admin pages.
package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web/locale"
	"github.com/shyamgroup/backoffice/web/middleware"
	"github.com/shyamgroup/backoffice/web/resource"
	"github.com/shyamgroup/backoffice/web/routing"
	"github.com/shyamgroup/backoffice/web/service"
	"github.com/shyamgroup/backoffice/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// BaseController provides helpers shared by all page controllers.
type BaseController struct{}

// gate returns the request's AuthGate. RouteGuard guarantees one exists on
// every guarded route.
func (a *BaseController) gate(c *gin.Context) *service.AuthGate {
	return middleware.GateFrom(c)
}

// backendCtx is the request context carrying the session's bearer header.
func (a *BaseController) backendCtx(c *gin.Context) context.Context {
	if g := a.gate(c); g != nil {
		return g.Context(c.Request.Context())
	}
	return c.Request.Context()
}

// I18nWeb retrieves a message in the request's locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	anyfunc, funcExists := c.Get("I18n")
	if !funcExists {
		return locale.I18n(name, params...)
	}
	i18nFunc, _ := anyfunc.(func(key string, params ...string) string)
	if i18nFunc == nil {
		return locale.I18n(name, params...)
	}
	return i18nFunc(name, params...)
}

const flashSep = "|"

// addFlash queues a one-shot message for the next rendered page.
func addFlash(c *gin.Context, kind resource.MessageKind, text string) {
	s := sessions.Default(c)
	s.AddFlash(string(kind) + flashSep + text)
	if err := s.Save(); err != nil {
		logger.Warning("Unable to save flash message:", err)
	}
}

// takeFlash pops the queued messages, keeping the last one.
func takeFlash(c *gin.Context) *resource.Message {
	s := sessions.Default(c)
	flashes := s.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := s.Save(); err != nil {
		logger.Warning("Unable to save session after reading flashes:", err)
	}
	raw, _ := flashes[len(flashes)-1].(string)
	kind, text, ok := strings.Cut(raw, flashSep)
	if !ok {
		return nil
	}
	return &resource.Message{Kind: resource.MessageKind(kind), Text: text}
}

// MenuItem is one navigation entry.
type MenuItem struct {
	Path  string
	Title string
}

// menu lists the pages the session may open, resources first.
func menu(gate *service.AuthGate) []MenuItem {
	if gate == nil || !gate.IsAuthenticated() {
		return nil
	}
	items := []MenuItem{{Path: routing.LandingPath, Title: locale.I18n("menu.dashboard")}}
	for _, s := range resource.All() {
		items = append(items, MenuItem{Path: routing.ResourcePath(s.Name), Title: s.Title})
	}
	if gate.HasRole(session.RoleAdmin) {
		items = append(items,
			MenuItem{Path: "/create-uploader", Title: locale.I18n("menu.createUploader")},
			MenuItem{Path: "/manage-users", Title: locale.I18n("menu.manageUsers")},
			MenuItem{Path: "/activity-logs", Title: locale.I18n("menu.activityLogs")},
		)
	}
	return items
}

// redirect answers a POST with a 303 so a reload does not resubmit.
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
