package controller

import (
	"net/http"

	"github.com/shyamgroup/backoffice/config"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web/global"
	"github.com/shyamgroup/backoffice/web/resource"
	"github.com/shyamgroup/backoffice/web/routing"
	"github.com/shyamgroup/backoffice/web/service"
	"github.com/shyamgroup/backoffice/web/session"

	"github.com/gin-gonic/gin"
)

// recentLogs is how many console warnings the admin dashboard shows.
const recentLogs = 20

// IndexController handles login, logout and the dashboard.
type IndexController struct {
	BaseController

	registry *resource.Registry
}

// NewIndexController creates a new IndexController and initializes its routes.
func NewIndexController(g *gin.RouterGroup, registry *resource.Registry) *IndexController {
	a := &IndexController{registry: registry}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET(routing.LandingPath, a.index)
	g.GET(routing.LoginPath, a.loginPage)
	g.POST(routing.LoginPath, a.login)
	g.GET("/logout", a.logout)
}

func (a *IndexController) index(c *gin.Context) {
	sess := a.gate(c).Session()
	data := gin.H{
		"welcome": I18nWeb(c, "pages.index.welcome", "Email=="+sess.Email, "Role=="+sess.Role),
	}
	if a.gate(c).HasRole(session.RoleAdmin) {
		data["recent"] = logger.GetLogs(recentLogs, "WARNING")
	}
	if ws := global.GetWebServer(); ws != nil {
		data["backendKnown"] = true
		data["backendUp"] = ws.BackendUp()
		if cr := ws.GetCron(); cr != nil {
			if entries := cr.Entries(); len(entries) > 0 {
				data["nextCheck"] = entries[0].Next
			}
		}
	}
	html(c, "index.html", I18nWeb(c, "pages.index.title"), data)
}

func (a *IndexController) loginPage(c *gin.Context) {
	if a.gate(c).IsAuthenticated() {
		c.Redirect(http.StatusTemporaryRedirect, routing.LandingPath)
		return
	}
	html(c, "login.html", I18nWeb(c, "pages.login.title"), nil)
}

func (a *IndexController) login(c *gin.Context) {
	var form service.Credentials
	if err := c.ShouldBind(&form); err != nil {
		a.loginFailed(c, form.Email, I18nWeb(c, "pages.login.toasts.failed"))
		return
	}

	gate := a.gate(c)
	sess, err := gate.Login(c.Request.Context(), form)
	if err != nil {
		logger.Warningf("login of %q from %s failed: %v", form.Email, getRemoteIp(c), err)
		a.loginFailed(c, form.Email, err.Error())
		return
	}
	if err := session.SetMaxAge(c, config.GetSessionMaxAge()*60); err != nil {
		logger.Warning("Unable to set session max age:", err)
	}

	if isAjax(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "msg": "", "obj": gin.H{"email": sess.Email, "role": sess.Role}})
		return
	}
	redirect(c, routing.LandingPath)
}

func (a *IndexController) loginFailed(c *gin.Context, email, msg string) {
	if isAjax(c) {
		pureJsonMsg(c, http.StatusOK, false, msg)
		return
	}
	htmlStatus(c, http.StatusUnauthorized, "login.html", I18nWeb(c, "pages.login.title"), gin.H{
		"email":   email,
		"message": &resource.Message{Kind: resource.MessageError, Text: msg},
	})
}

// logout drops the session's server-side state and the cookie session.
func (a *IndexController) logout(c *gin.Context) {
	gate := a.gate(c)
	a.registry.Drop(gate.Scope())
	if err := gate.Logout(); err != nil {
		logger.Warning("Unable to clear session:", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, routing.LoginPath)
}
