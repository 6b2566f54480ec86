package devapi

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/database"
	"github.com/shyamgroup/backoffice/database/model"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web/resource"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const maxUpload = 32 << 20

// bareLists are the resources whose list endpoint answers with a bare JSON
// array instead of a {"data": [...]} envelope.
var bareLists = map[string]bool{"jobs": true}

// publicCreate are resources created by the public site: the create route is
// mounted without auth even though the console cannot create them.
var publicCreate = map[string]bool{"inquiries": true}

// ginPath turns a catalog endpoint template into a gin route pattern.
func ginPath(base, tmpl string) string {
	p := base + tmpl
	p = strings.ReplaceAll(p, "{id}", ":id")
	p = strings.ReplaceAll(p, "{option}", ":option")
	return p
}

func (s *Server) mountResource(engine *gin.Engine, staff *gin.RouterGroup, schema *resource.Schema) {
	ep := schema.Endpoints
	h := &resourceHandler{srv: s, schema: schema}

	staff.GET(ginPath(ep.Base, ep.List), h.list)
	if schema.CanCreate() {
		staff.POST(ginPath(ep.Base, ep.Create), h.create)
	} else if publicCreate[schema.Name] {
		engine.POST(ep.Base, h.create)
	}
	if schema.CanUpdate() {
		staff.PUT(ginPath(ep.Base, ep.Update), h.update)
	}
	if schema.CanDelete() {
		staff.DELETE(ginPath(ep.Base, ep.Delete), h.delete)
	}
	if st := schema.Status; st != nil {
		staff.PATCH(ginPath(ep.Base, st.Path), h.setStatus)
	}
	if sub := schema.Children; sub != nil {
		staff.GET(ginPath(ep.Base, sub.Path), h.children)
		engine.POST(ginPath(ep.Base, sub.Path), h.apply)
	}
}

type resourceHandler struct {
	srv    *Server
	schema *resource.Schema
}

func (h *resourceHandler) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": h.schema.Singular + " not found"})
}

// view renders a stored record the way the production backend does.
func (h *resourceHandler) view(rec *model.Record) gin.H {
	out := recordView(rec)
	if h.schema.Scoped() {
		out[h.schema.OptionField] = rec.Option
	}
	return out
}

func (h *resourceHandler) list(c *gin.Context) {
	q := h.srv.db.Where("resource = ?", h.schema.Name)
	if h.schema.Scoped() {
		q = q.Where("option = ?", c.Param("option"))
	}
	var recs []model.Record
	if err := q.Order("created_at DESC").Find(&recs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	data := make([]gin.H, 0, len(recs))
	for i := range recs {
		data = append(data, h.view(&recs[i]))
	}
	if bareLists[h.schema.Name] {
		c.JSON(http.StatusOK, data)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// readBody decodes a JSON object body, or collects every value of a
// multipart or urlencoded one. Dotted form keys are nested.
func readBody(c *gin.Context) (map[string]any, error) {
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		body := map[string]any{}
		if err := json.NewDecoder(io.LimitReader(c.Request.Body, maxUpload)).Decode(&body); err != nil {
			return nil, err
		}
		return body, nil
	}
	if err := c.Request.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	body := map[string]any{}
	for k, v := range c.Request.PostForm {
		if len(v) == 0 {
			continue
		}
		head, rest, dotted := strings.Cut(k, ".")
		if !dotted {
			body[k] = v[0]
			continue
		}
		nested, _ := body[head].(map[string]any)
		if nested == nil {
			nested = map[string]any{}
			body[head] = nested
		}
		nested[rest] = v[0]
	}
	return body, nil
}

// pick keeps the body values of option's declared fields. A schema without
// fields keeps the whole body, e.g. inquiries from the public site.
func (h *resourceHandler) pick(body map[string]any, option string) map[string]any {
	if len(h.schema.FieldsFor(option)) == 0 {
		out := make(map[string]any, len(body))
		for k, v := range body {
			if k != h.schema.OptionField {
				out[k] = v
			}
		}
		return out
	}
	fields := h.schema.TextFieldsFor(option)
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		head, _, _ := strings.Cut(f.Name, ".")
		if v, ok := body[head]; ok {
			out[head] = v
		}
	}
	return out
}

// storeFile saves option's file part, if one was sent, and returns its URL.
func (h *resourceHandler) storeFile(c *gin.Context, option string) (string, bool, error) {
	ff := h.schema.FileFieldFor(option)
	if ff == nil || c.Request.MultipartForm == nil {
		return "", false, nil
	}
	return h.srv.saveUpload(c, ff.Name)
}

// saveUpload stores the named file part and returns its download URL.
func (s *Server) saveUpload(c *gin.Context, name string) (string, bool, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		return "", false, nil
	}
	src, err := fh.Open()
	if err != nil {
		return "", false, err
	}
	defer src.Close()
	content, err := io.ReadAll(io.LimitReader(src, maxUpload))
	if err != nil {
		return "", false, err
	}
	up := &model.Upload{ID: uuid.NewString(), Name: fh.Filename, Content: content}
	if err := s.db.Create(up).Error; err != nil {
		return "", false, err
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/uploads/" + up.ID + "/" + url.PathEscape(up.Name), true, nil
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func (h *resourceHandler) missing(values map[string]any, option string, hasFile bool) []string {
	var missing []string
	for _, f := range h.schema.TextFieldsFor(option) {
		if f.Required && blank(backend.Dig(values, f.Name)) {
			missing = append(missing, f.Name)
		}
	}
	if ff := h.schema.FileFieldFor(option); ff != nil && ff.Required && !hasFile {
		missing = append(missing, ff.Name)
	}
	return missing
}

func (h *resourceHandler) create(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	option := ""
	if h.schema.Scoped() {
		option, _ = body[h.schema.OptionField].(string)
		if !h.schema.HasOption(option) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid option"})
			return
		}
	}
	values := h.pick(body, option)
	fileURL, hasFile, err := h.storeFile(c, option)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if missing := h.missing(values, option, hasFile); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields: " + strings.Join(missing, ", ")})
		return
	}
	if hasFile {
		values[h.schema.FileFieldFor(option).Name] = fileURL
	}
	raw, err := json.Marshal(values)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	rec := &model.Record{ID: uuid.NewString(), Resource: h.schema.Name, Option: option, Fields: string(raw)}
	if err := h.srv.db.Create(rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": h.schema.Singular + " created successfully!",
		"data":    h.view(rec),
	})
}

func (h *resourceHandler) find(id string) (*model.Record, error) {
	var rec model.Record
	err := h.srv.db.Where("id = ? AND resource = ?", id, h.schema.Name).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (h *resourceHandler) update(c *gin.Context) {
	rec, err := h.find(c.Param("id"))
	if err != nil {
		if database.IsNotFound(err) {
			h.notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	fileURL, hasFile, err := h.storeFile(c, rec.Option)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	values := map[string]any{}
	if rec.Fields != "" {
		if err := json.Unmarshal([]byte(rec.Fields), &values); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
	}
	for k, v := range h.pick(body, rec.Option) {
		values[k] = v
	}
	if hasFile {
		values[h.schema.FileFieldFor(rec.Option).Name] = fileURL
	}
	raw, err := json.Marshal(values)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	rec.Fields = string(raw)
	if err := h.srv.db.Save(rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": h.schema.Singular + " updated successfully!",
		"data":    h.view(rec),
	})
}

func (h *resourceHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if h.schema.Endpoints.DeleteStyle == resource.DeleteByBody {
		var body struct {
			ID string `json:"id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "id is required"})
			return
		}
		id = body.ID
	}
	res := h.srv.db.Where("id = ? AND resource = ?", id, h.schema.Name).Delete(&model.Record{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		h.notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.schema.Singular + " deleted successfully"})
}

func (h *resourceHandler) setStatus(c *gin.Context) {
	field := h.schema.Status.Field
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	value, _ := body[field].(string)
	if !h.schema.AllowsStatus(value) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}
	rec, err := h.find(c.Param("id"))
	if err != nil {
		if database.IsNotFound(err) {
			h.notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	values := map[string]any{}
	if rec.Fields != "" {
		if err := json.Unmarshal([]byte(rec.Fields), &values); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
	}
	values[field] = value
	raw, err := json.Marshal(values)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	rec.Fields = string(raw)
	if err := h.srv.db.Save(rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated", "data": h.view(rec)})
}

// childResource names the table rows holding a record's sub-list; the parent
// id is kept in the option column.
func (h *resourceHandler) childResource() string {
	return h.schema.Name + "/applications"
}

func recordView(rec *model.Record) gin.H {
	out := gin.H{}
	if rec.Fields != "" {
		if err := json.Unmarshal([]byte(rec.Fields), &out); err != nil {
			logger.Warningf("devapi: corrupt record %s: %v", rec.ID, err)
		}
	}
	out["_id"] = rec.ID
	out["createdAt"] = rec.CreatedAt.UTC().Format(time.RFC3339)
	return out
}

func (h *resourceHandler) children(c *gin.Context) {
	var recs []model.Record
	err := h.srv.db.Where("resource = ? AND option = ?", h.childResource(), c.Param("id")).
		Order("created_at DESC").Find(&recs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	data := make([]gin.H, 0, len(recs))
	for i := range recs {
		data = append(data, recordView(&recs[i]))
	}
	c.JSON(http.StatusOK, data)
}

// apply is the public site's job application form: name, email, phone and a
// resume file.
func (h *resourceHandler) apply(c *gin.Context) {
	parent := c.Param("id")
	if _, err := h.find(parent); err != nil {
		if database.IsNotFound(err) {
			h.notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if err := c.Request.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	values := map[string]any{}
	for _, k := range []string{"name", "email", "phone"} {
		values[k] = c.PostForm(k)
	}
	if blank(values["name"]) || blank(values["email"]) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields: name, email"})
		return
	}
	resume, ok, err := h.srv.saveUpload(c, "resume")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields: resume"})
		return
	}
	values["resume"] = resume
	raw, err := json.Marshal(values)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	rec := &model.Record{ID: uuid.NewString(), Resource: h.childResource(), Option: parent, Fields: string(raw)}
	if err := h.srv.db.Create(rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Application submitted", "data": recordView(rec)})
}

func (s *Server) serveUpload(c *gin.Context) {
	var up model.Upload
	if err := s.db.First(&up, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+strings.ReplaceAll(up.Name, `"`, "")+`"`)
	c.Data(http.StatusOK, http.DetectContentType(up.Content), up.Content)
}
