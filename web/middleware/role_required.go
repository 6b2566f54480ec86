package middleware

import (
	"net/http"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web/locale"
	"github.com/shyamgroup/backoffice/web/routing"
	"github.com/shyamgroup/backoffice/web/service"
	"github.com/shyamgroup/backoffice/web/session"

	"github.com/gin-gonic/gin"
)

const (
	gateKey  = "gate"
	routeKey = "route"
)

// Gate builds the request's AuthGate over the cookie session and stores it in
// the gin context.
func Gate(client *backend.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(gateKey, service.NewAuthGate(session.FromContext(c), client))
		c.Next()
	}
}

// GateFrom returns the AuthGate stored by Gate.
func GateFrom(c *gin.Context) *service.AuthGate {
	if v, ok := c.Get(gateKey); ok {
		if g, ok := v.(*service.AuthGate); ok {
			return g
		}
	}
	return nil
}

// RouteFrom returns the route matched by RouteGuard.
func RouteFrom(c *gin.Context) *routing.Route {
	if v, ok := c.Get(routeKey); ok {
		if r, ok := v.(*routing.Route); ok {
			return r
		}
	}
	return nil
}

// RouteGuard applies the routing table before any page handler runs.
// Static assets are not in the table and must be mounted outside the guard.
func RouteGuard(table *routing.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		gate := GateFrom(c)
		if gate == nil {
			logger.Error("route guard without auth gate")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		d := table.Decide(gate, c.Request.URL.Path)
		switch d.Outcome {
		case routing.Redirect:
			c.Redirect(http.StatusFound, d.Location)
			c.Abort()
		case routing.NotFound:
			c.String(http.StatusNotFound, locale.I18n("notFound"))
			c.Abort()
		case routing.Forbidden:
			c.String(http.StatusForbidden, locale.I18n("forbidden"))
			c.Abort()
		default:
			c.Set(routeKey, d.Route)
			c.Next()
		}
	}
}

// RoleRequired rejects requests whose session role is not one of roles.
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		gate := GateFrom(c)
		if gate == nil || !gate.IsAuthenticated() {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !gate.HasRole(roles...) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
