package controller

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/web/middleware"
	"github.com/shyamgroup/backoffice/web/resource"
	"github.com/shyamgroup/backoffice/web/service"
	"github.com/shyamgroup/backoffice/web/session"

	"github.com/gin-gonic/gin"
)

// UserAdminController serves the admin-only account pages.
type UserAdminController struct {
	BaseController

	svc *service.UserAdminService
}

func NewUserAdminController(g *gin.RouterGroup, svc *service.UserAdminService) *UserAdminController {
	a := &UserAdminController{svc: svc}
	a.initRouter(g)
	return a
}

func (a *UserAdminController) initRouter(g *gin.RouterGroup) {
	admin := g.Group("")
	admin.Use(middleware.RoleRequired(session.RoleAdmin))
	{
		admin.GET("/create-uploader", a.uploaderPage)
		admin.POST("/create-uploader", a.createUploader)

		admin.GET("/manage-users", a.list)
		admin.POST("/manage-users/:id/role", a.setRole)
		admin.GET("/manage-users/:id/delete", a.confirmDelete)
		admin.POST("/manage-users/:id/delete", a.delete)
	}
}

var userColumns = []resource.Column{
	{Key: "email", Label: "Email"},
	{Key: "role", Label: "Role"},
	{Key: "createdAt", Label: "Created", Render: resource.DateOnly("createdAt")},
}

func (a *UserAdminController) list(c *gin.Context) {
	users, err := a.svc.ListUsers(a.backendCtx(c))
	data := gin.H{}
	if err != nil {
		data["message"] = &resource.Message{Kind: resource.MessageError, Text: err.Error()}
	}
	self := a.gate(c).Session()
	data["list"] = resource.RenderList(userColumns, users, func(rec backend.Record) template.HTML {
		return a.userActions(c, rec, self)
	})
	html(c, "users.html", I18nWeb(c, "pages.users.title"), data)
}

func (a *UserAdminController) userActions(c *gin.Context, rec backend.Record, self *session.Session) template.HTML {
	if self != nil && rec.String("email") == self.Email {
		return ""
	}
	base := "/manage-users/" + url.PathEscape(rec.ID)
	role, label := session.RoleAdmin, I18nWeb(c, "pages.users.promote")
	if rec.String("role") == session.RoleAdmin {
		role, label = session.RoleUploader, I18nWeb(c, "pages.users.demote")
	}
	return template.HTML(fmt.Sprintf(
		`<form method="post" action="%s/role" class="inline"><input type="hidden" name="role" value="%s"><button class="btn">%s</button></form> `+
			`<a class="btn danger" href="%s/delete">%s</a>`,
		template.HTMLEscapeString(base), role, template.HTMLEscapeString(label),
		template.HTMLEscapeString(base), template.HTMLEscapeString(I18nWeb(c, "delete"))))
}

func (a *UserAdminController) setRole(c *gin.Context) {
	err := a.svc.SetUserRole(a.backendCtx(c), c.Param("id"), c.PostForm("role"))
	finish(c, "/manage-users", I18nWeb(c, "pages.users.toasts.roleChanged"), err)
}

func (a *UserAdminController) confirmDelete(c *gin.Context) {
	id := c.Param("id")
	html(c, "confirm.html", I18nWeb(c, "pages.users.title"), gin.H{
		"question": I18nWeb(c, "pages.users.confirmDelete"),
		"subject":  id,
		"action":   "/manage-users/" + url.PathEscape(id) + "/delete",
		"back":     "/manage-users",
	})
}

func (a *UserAdminController) delete(c *gin.Context) {
	err := a.svc.DeleteUser(a.backendCtx(c), c.Param("id"), c.PostForm("confirm") == "yes")
	finish(c, "/manage-users", I18nWeb(c, "pages.users.toasts.deleted"), err)
}

func (a *UserAdminController) uploaderPage(c *gin.Context) {
	html(c, "uploader.html", I18nWeb(c, "pages.uploader.title"), nil)
}

func (a *UserAdminController) createUploader(c *gin.Context) {
	var form service.Credentials
	if err := c.ShouldBind(&form); err != nil {
		finish(c, "/create-uploader", "", &backend.ValidationError{Msg: I18nWeb(c, "pages.uploader.toasts.required")})
		return
	}
	email, err := a.svc.CreateUploader(a.backendCtx(c), form.Email, form.Password)
	finish(c, "/create-uploader", I18nWeb(c, "pages.uploader.toasts.created", "Email=="+email), err)
}

// finish reports the outcome of an admin action and returns to location.
func finish(c *gin.Context, location, success string, err error) {
	msg := &resource.Message{Kind: resource.MessageSuccess, Text: success}
	switch {
	case errors.Is(err, backend.ErrNotConfirmed):
		msg = &resource.Message{Kind: resource.MessageError, Text: I18nWeb(c, "pages.resource.toasts.notConfirmed")}
	case err != nil:
		msg = &resource.Message{Kind: resource.MessageError, Text: err.Error()}
	}
	if isAjax(c) {
		messageJson(c, msg, nil)
		return
	}
	addFlash(c, msg.Kind, msg.Text)
	c.Redirect(http.StatusSeeOther, location)
}
