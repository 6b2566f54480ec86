package controller

import (
	"fmt"
	"html/template"
	"net/url"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/web/middleware"
	"github.com/shyamgroup/backoffice/web/resource"
	"github.com/shyamgroup/backoffice/web/service"
	"github.com/shyamgroup/backoffice/web/session"

	"github.com/gin-gonic/gin"
)

// ActivityLogController serves the admin-only audit trail page.
type ActivityLogController struct {
	BaseController

	svc *service.ActivityLogService
}

func NewActivityLogController(g *gin.RouterGroup, svc *service.ActivityLogService) *ActivityLogController {
	a := &ActivityLogController{svc: svc}
	a.initRouter(g)
	return a
}

func (a *ActivityLogController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/activity-logs")
	g.Use(middleware.RoleRequired(session.RoleAdmin))

	g.GET("", a.list)
	g.GET("/:id/delete", a.confirmDelete)
	g.POST("/:id/delete", a.delete)
}

func durationColumn(rec backend.Record) template.HTML {
	meta, _ := rec.Get("metadata").(map[string]any)
	if meta == nil || meta["durationMs"] == nil {
		return ""
	}
	return template.HTML(template.HTMLEscapeString(backend.FormatValue(meta["durationMs"]) + "ms"))
}

var logColumns = []resource.Column{
	{Key: "createdAt", Label: "Time"},
	{Key: "email", Label: "User"},
	{Key: "action", Label: "Action"},
	{Key: "method", Label: "Method"},
	{Key: "route", Label: "Route"},
	{Key: "status", Label: "Status"},
	{Key: "ip", Label: "IP"},
	{Key: "metadata", Label: "Duration", Render: durationColumn},
}

func (a *ActivityLogController) list(c *gin.Context) {
	logs, err := a.svc.ListLogs(a.backendCtx(c))
	data := gin.H{}
	if err != nil {
		data["message"] = &resource.Message{Kind: resource.MessageError, Text: err.Error()}
	}
	data["list"] = resource.RenderList(logColumns, logs, func(rec backend.Record) template.HTML {
		return template.HTML(fmt.Sprintf(`<a class="btn danger" href="/activity-logs/%s/delete">%s</a>`,
			template.HTMLEscapeString(url.PathEscape(rec.ID)), template.HTMLEscapeString(I18nWeb(c, "delete"))))
	})
	html(c, "logs.html", I18nWeb(c, "pages.logs.title"), data)
}

func (a *ActivityLogController) confirmDelete(c *gin.Context) {
	id := c.Param("id")
	html(c, "confirm.html", I18nWeb(c, "pages.logs.title"), gin.H{
		"question": I18nWeb(c, "pages.logs.confirmDelete"),
		"subject":  id,
		"action":   "/activity-logs/" + url.PathEscape(id) + "/delete",
		"back":     "/activity-logs",
	})
}

func (a *ActivityLogController) delete(c *gin.Context) {
	err := a.svc.DeleteLog(a.backendCtx(c), c.Param("id"), c.PostForm("confirm") == "yes")
	finish(c, "/activity-logs", I18nWeb(c, "pages.logs.toasts.deleted"), err)
}
