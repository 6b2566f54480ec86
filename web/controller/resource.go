package controller

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web/resource"
	"github.com/shyamgroup/backoffice/web/routing"

	"github.com/gin-gonic/gin"
)

// maxMultipartMemory bounds the in-memory part of a parsed upload form.
const maxMultipartMemory = 33 << 20

// ResourceController serves every catalog resource through one set of
// handlers, parameterised by the schema named in the path.
type ResourceController struct {
	BaseController

	registry *resource.Registry
}

func NewResourceController(g *gin.RouterGroup, registry *resource.Registry) *ResourceController {
	a := &ResourceController{registry: registry}
	a.initRouter(g)
	return a
}

func (a *ResourceController) initRouter(g *gin.RouterGroup) {
	g = g.Group(routing.ResourcePrefix + ":resource")

	g.GET("", a.page)
	g.POST("/create", a.create)
	g.GET("/edit/:id", a.startEdit)
	g.POST("/edit", a.commitEdit)
	g.POST("/edit/cancel", a.cancelEdit)
	g.GET("/delete/:id", a.confirmDelete)
	g.POST("/delete/:id", a.delete)
	g.GET("/view/:id", a.view)
	g.POST("/status/:id", a.setStatus)
}

var rowActionsTemplate = template.Must(template.New("row_actions").Parse(
	`{{ with .View }}<a class="btn" href="{{ . }}">{{ $.ViewLabel }}</a> {{ end -}}
{{ with .Status }}{{ template "status_form" . }} {{ end -}}
{{ with .Edit }}<a class="btn" href="{{ . }}">{{ $.EditLabel }}</a> {{ end -}}
{{ with .Delete }}<a class="btn danger" href="{{ . }}">{{ $.DeleteLabel }}</a>{{ end -}}
{{ define "status_form" -}}
<form class="inline" method="post" action="{{ .Action }}">
{{- with .From }}<input type="hidden" name="from" value="{{ . }}">{{ end -}}
<select name="status" aria-label="{{ .Label }}" onchange="this.form.submit()">
{{- $cur := .Current }}{{ range .Values }}<option value="{{ . }}"{{ if eq . $cur }} selected{{ end }}>{{ . }}</option>{{ end -}}
</select><noscript><button class="btn">{{ .Label }}</button></noscript></form>
{{- end }}`))

type statusForm struct {
	Action  string
	From    string
	Label   string
	Values  []string
	Current string
}

type rowActions struct {
	View, Edit, Delete                string
	ViewLabel, EditLabel, DeleteLabel string
	Status                            *statusForm
}

func newStatusForm(ctl *resource.Controller, rec backend.Record, from string) *statusForm {
	st := ctl.Schema().Status
	if st == nil {
		return nil
	}
	return &statusForm{
		Action:  actionPath(ctl, "/status/"+url.PathEscape(rec.ID)),
		From:    from,
		Label:   st.Label,
		Values:  st.Values,
		Current: ctl.Schema().StatusOf(rec),
	}
}

// actionsFor returns the list's action cell renderer, nil when a resource
// has no per-row actions.
func actionsFor(c *gin.Context, ctl *resource.Controller) resource.ActionsFunc {
	schema := ctl.Schema()
	if !schema.CanUpdate() && !schema.CanDelete() && !schema.HasView() && schema.Status == nil {
		return nil
	}
	return func(rec backend.Record) template.HTML {
		id := url.PathEscape(rec.ID)
		data := rowActions{
			ViewLabel:   I18nWeb(c, "view"),
			EditLabel:   I18nWeb(c, "edit"),
			DeleteLabel: I18nWeb(c, "delete"),
			Status:      newStatusForm(ctl, rec, ""),
		}
		if schema.HasView() {
			data.View = actionPath(ctl, "/view/"+id)
		}
		if schema.CanUpdate() {
			data.Edit = actionPath(ctl, "/edit/"+id)
		}
		if schema.CanDelete() {
			data.Delete = actionPath(ctl, "/delete/"+id)
		}
		var b strings.Builder
		if err := rowActionsTemplate.Execute(&b, data); err != nil {
			logger.Warning("render row actions:", err)
			return ""
		}
		return template.HTML(b.String())
	}
}

// controller resolves the schema and option of the request to the session's
// controller instance. Unknown options fall back to the first one.
func (a *ResourceController) controller(c *gin.Context) (*resource.Controller, bool) {
	schema, ok := resource.Lookup(c.Param("resource"))
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return nil, false
	}
	option := ""
	if schema.Scoped() {
		option = c.Query("option")
		if option == "" {
			option = c.PostForm("option")
		}
		if !schema.HasOption(option) {
			option = schema.DefaultOption()
		}
	}
	return a.registry.Controller(a.gate(c).Scope(), schema, option), true
}

func pagePath(ctl *resource.Controller) string {
	p := routing.ResourcePath(ctl.Schema().Name)
	if ctl.Option() != "" {
		p += "?option=" + url.QueryEscape(ctl.Option())
	}
	return p
}

func actionPath(ctl *resource.Controller, action string) string {
	p := routing.ResourcePath(ctl.Schema().Name) + action
	if ctl.Option() != "" {
		p += "?option=" + url.QueryEscape(ctl.Option())
	}
	return p
}

// done finishes a mutating request: XHR callers get the message as JSON,
// form posts are redirected back to the list.
func (a *ResourceController) done(c *gin.Context, ctl *resource.Controller) {
	if isAjax(c) {
		messageJson(c, ctl.TakeMessage(), nil)
		return
	}
	redirect(c, pagePath(ctl))
}

func (a *ResourceController) page(c *gin.Context) {
	ctl, ok := a.controller(c)
	if !ok {
		return
	}
	ctl.Fetch(a.backendCtx(c))
	snap := ctl.Snapshot()
	schema := snap.Schema

	data := gin.H{
		"schema":     schema,
		"snap":       snap,
		"fields":     ctl.TextFields(),
		"fileField":  ctl.FileField(),
		"list":       resource.RenderList(schema.Columns, snap.Records, actionsFor(c, ctl)),
		"base":       routing.ResourcePath(schema.Name),
		"optionArg":  optionArg(snap.Option),
		"createPath": actionPath(ctl, "/create"),
		"editPath":   actionPath(ctl, "/edit"),
		"cancelPath": actionPath(ctl, "/edit/cancel"),
	}
	if msg := ctl.TakeMessage(); msg != nil {
		data["message"] = msg
	}
	html(c, "resource.html", schema.Title, data)
}

func optionArg(option string) string {
	if option == "" {
		return ""
	}
	return "?option=" + url.QueryEscape(option)
}

// formInput collects the submitted text fields and the uploaded file of the
// controller's option. Fields absent from the form are left out so the draft
// keeps its value.
func formInput(c *gin.Context, ctl *resource.Controller) (map[string]string, *resource.File, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, &backend.ValidationError{Msg: err.Error()}
	}
	fields := make(map[string]string)
	for _, f := range ctl.TextFields() {
		if v, ok := c.GetPostForm(f.Name); ok {
			fields[f.Name] = v
		}
	}
	ff := ctl.FileField()
	if ff == nil {
		return fields, nil, nil
	}
	fh, err := c.FormFile(ff.Name)
	if err != nil {
		return fields, nil, nil
	}
	file, err := resource.FileFromHeader(fh)
	if err != nil {
		return fields, nil, &backend.ValidationError{Msg: err.Error()}
	}
	return fields, file, nil
}

func (a *ResourceController) create(c *gin.Context) {
	ctl, ok := a.controller(c)
	if !ok {
		return
	}
	fields, file, err := formInput(c, ctl)
	if err != nil {
		ctl.Reject(err)
		a.done(c, ctl)
		return
	}
	ctl.Create(a.backendCtx(c), fields, file)
	a.done(c, ctl)
}

func (a *ResourceController) startEdit(c *gin.Context) {
	ctl, ok := a.controller(c)
	if !ok {
		return
	}
	ctl.StartEditByID(c.Param("id"))
	c.Redirect(http.StatusFound, pagePath(ctl))
}

func (a *ResourceController) commitEdit(c *gin.Context) {
	ctl, ok := a.controller(c)
	if !ok {
		return
	}
	fields, file, err := formInput(c, ctl)
	if err != nil {
		ctl.Reject(err)
		a.done(c, ctl)
		return
	}
	ctl.CommitEdit(a.backendCtx(c), fields, file)
	a.done(c, ctl)
}

func (a *ResourceController) cancelEdit(c *gin.Context) {
	ctl, ok := a.controller(c)
	if !ok {
		return
	}
	ctl.CancelEdit()
	a.done(c, ctl)
}

func (a *ResourceController) confirmDelete(c *gin.Context) {
	ctl, ok := a.controller(c)
	if !ok {
		return
	}
	id := c.Param("id")
	summary := id
	for _, rec := range ctl.Snapshot().Records {
		if rec.ID == id && len(ctl.Schema().Columns) > 0 {
			if s := rec.String(ctl.Schema().Columns[0].Key); s != "" {
				summary = s
			}
		}
	}
	html(c, "confirm.html", ctl.Schema().Title, gin.H{
		"question": I18nWeb(c, "pages.resource.confirmDelete", "Singular=="+ctl.Schema().Singular),
		"subject":  summary,
		"action":   actionPath(ctl, "/delete/"+url.PathEscape(id)),
		"back":     pagePath(ctl),
	})
}

func (a *ResourceController) delete(c *gin.Context) {
	ctl, ok := a.controller(c)
	if !ok {
		return
	}
	id := c.Param("id")
	err := ctl.Delete(a.backendCtx(c), id, c.PostForm("confirm") == "yes")
	if errors.Is(err, backend.ErrNotConfirmed) {
		logger.Debugf("delete of %s/%s not confirmed", ctl.Schema().Name, id)
		ctl.Reject(&backend.ValidationError{Msg: I18nWeb(c, "pages.resource.toasts.notConfirmed")})
	}
	a.done(c, ctl)
}

type detailRow struct {
	Label string
	Value any
}

// view shows one listed record: its detail rows, the status control and the
// record's sub-list.
func (a *ResourceController) view(c *gin.Context) {
	ctl, ok := a.controller(c)
	if !ok {
		return
	}
	schema := ctl.Schema()
	if !schema.HasView() {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	ctx := a.backendCtx(c)
	id := c.Param("id")
	rec, found := ctl.Record(id)
	if !found {
		ctl.Fetch(ctx)
		rec, found = ctl.Record(id)
	}
	if !found {
		ctl.Reject(&backend.ValidationError{Msg: I18nWeb(c, "pages.resource.toasts.notInList", "ID=="+id)})
		redirect(c, pagePath(ctl))
		return
	}

	rows := make([]detailRow, 0, len(schema.Details))
	for _, col := range schema.Details {
		row := detailRow{Label: col.Label, Value: rec.String(col.Key)}
		if col.Render != nil {
			row.Value = col.Render(rec)
		}
		rows = append(rows, row)
	}
	data := gin.H{
		"details": rows,
		"status":  newStatusForm(ctl, rec, "view"),
		"back":    pagePath(ctl),
	}
	if sub := schema.Children; sub != nil {
		children, err := ctl.Children(ctx, id)
		if err != nil {
			data["message"] = &resource.Message{Kind: resource.MessageError, Text: err.Error()}
		}
		data["childrenTitle"] = sub.Title
		data["children"] = resource.RenderList(sub.Columns, children, nil)
	}
	html(c, "record.html", schema.Singular, data)
}

func (a *ResourceController) setStatus(c *gin.Context) {
	ctl, ok := a.controller(c)
	if !ok {
		return
	}
	id := c.Param("id")
	ctl.SetStatus(a.backendCtx(c), id, c.PostForm("status"))
	if c.PostForm("from") == "view" && !isAjax(c) {
		if msg := ctl.TakeMessage(); msg != nil {
			addFlash(c, msg.Kind, msg.Text)
		}
		redirect(c, actionPath(ctl, "/view/"+url.PathEscape(id)))
		return
	}
	a.done(c, ctl)
}
