package resource

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web/locale"

	"go.uber.org/atomic"
)

// MessageKind tells the page how to style a message.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Message is the one user-visible status line of a controller.
type Message struct {
	Kind MessageKind
	Text string
}

// EditState is a copy of the controller's open edit session. File is the
// replacement file held for it, nil when the stored file is kept.
type EditState struct {
	ID     string
	Fields map[string]string
	File   *File
}

// editSession is the single open edit of a controller.
type editSession struct {
	id     string
	fields map[string]string
	file   *FileField
}

// Snapshot is a consistent copy of a controller's state for rendering.
type Snapshot struct {
	Schema    *Schema
	Option    string
	Records   []backend.Record
	Form      map[string]string
	FormFile  *File
	Edit      *EditState
	Message   *Message
	Uploading bool
}

// Controller orchestrates fetch/create/edit/delete for one resource (and one
// option, for scoped resources). State is guarded by mu; backend calls run
// without holding it.
type Controller struct {
	schema *Schema
	option string
	client *backend.Client

	mu      sync.Mutex
	records []backend.Record
	form    map[string]string
	file    *FileField
	edit    *editSession
	msg     *Message

	uploading atomic.Bool
	seq       atomic.Uint64
}

func NewController(schema *Schema, client *backend.Client, option string) *Controller {
	return &Controller{
		schema:  schema,
		option:  option,
		client:  client,
		records: []backend.Record{},
		form:    make(map[string]string),
		file:    NewFileField(schema.FileFieldFor(option)),
	}
}

func (c *Controller) Schema() *Schema {
	return c.schema
}

func (c *Controller) Option() string {
	return c.option
}

// TextFields returns the form inputs of the controller's option.
func (c *Controller) TextFields() []Field {
	return c.schema.TextFieldsFor(c.option)
}

// FileField returns the file input of the controller's option, or nil.
func (c *Controller) FileField() *Field {
	return c.schema.FileFieldFor(c.option)
}

// Uploading reports whether a create or update call is in flight.
func (c *Controller) Uploading() bool {
	return c.uploading.Load()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Schema:    c.schema,
		Option:    c.option,
		Records:   append([]backend.Record(nil), c.records...),
		Form:      copyFields(c.form),
		FormFile:  c.file.File(),
		Uploading: c.uploading.Load(),
	}
	if c.msg != nil {
		m := *c.msg
		s.Message = &m
	}
	if c.edit != nil {
		s.Edit = &EditState{ID: c.edit.id, Fields: copyFields(c.edit.fields), File: c.edit.file.File()}
	}
	return s
}

// TakeMessage returns the pending message, if any, and clears it.
func (c *Controller) TakeMessage() *Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.msg
	c.msg = nil
	return m
}

// Reject records err as the current error message.
func (c *Controller) Reject(err error) {
	c.fail(backend.UserMessage(err, err.Error()))
}

// Fetch replaces the list with the backend's. Failures empty the list and set
// a message. Responses overtaken by a later Fetch are dropped.
func (c *Controller) Fetch(ctx context.Context) {
	seq := c.seq.Inc()
	res, err := c.client.Get(ctx, c.schema.ListPath(c.option), nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq.Load() {
		logger.Debugf("dropping stale %s list response (seq %d)", c.schema.Name, seq)
		return
	}
	if err != nil {
		logger.Warningf("fetch %s failed: %v", c.schema.Name, err)
		c.records = []backend.Record{}
		c.edit = nil
		c.setError(backend.UserMessage(err, locale.I18n("pages.resource.toasts.fetchFailed", "Title=="+c.schema.Title)))
		return
	}
	c.records = res.Data
	if c.edit != nil && c.indexOf(c.edit.id) < 0 {
		c.edit = nil
	}
}

// Create validates the draft and, when complete, posts it. fields are merged
// into the form state; file replaces the held selection when non-nil.
func (c *Controller) Create(ctx context.Context, fields map[string]string, file *File) {
	if !c.schema.CanCreate() {
		c.fail(locale.I18n("pages.resource.toasts.readOnly"))
		return
	}
	// a submit racing an in-flight one must not touch the draft it is sending
	if c.uploading.Load() {
		c.fail(locale.I18n("pages.resource.toasts.busy"))
		return
	}

	c.mu.Lock()
	for k, v := range fields {
		c.form[k] = v
	}
	if err := c.file.Select(file); err != nil {
		c.setError(err.Error())
		c.mu.Unlock()
		return
	}
	if missing := c.missing(c.form, c.file, ModeCreate); missing != "" {
		c.setError(missing)
		c.mu.Unlock()
		return
	}
	payload := c.payload(c.form, c.file, true)
	c.mu.Unlock()

	if !c.uploading.CompareAndSwap(false, true) {
		c.fail(locale.I18n("pages.resource.toasts.busy"))
		return
	}
	res, err := c.send(ctx, http.MethodPost, c.schema.CreatePath(), payload)
	c.uploading.Store(false)

	if err != nil {
		logger.Warningf("create %s failed: %v", c.schema.Name, err)
		c.fail(c.errorText(err, locale.I18n("pages.resource.toasts.createFailed", "Singular=="+c.schema.Singular)))
		return
	}

	c.mu.Lock()
	c.form = make(map[string]string)
	c.file.Clear()
	c.setSuccess(orDefault(res.Message, locale.I18n("pages.resource.toasts.created", "Singular=="+c.schema.Singular)))
	c.mu.Unlock()

	logger.Infof("%s created", c.schema.Singular)
	c.Fetch(ctx)
}

// StartEdit opens an edit session on rec, which must be in the current list.
func (c *Controller) StartEdit(rec backend.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startEdit(rec)
}

// StartEditByID opens an edit session on the listed record with id.
func (c *Controller) StartEditByID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		c.setError(locale.I18n("pages.resource.toasts.notInList", "ID=="+id))
		return
	}
	c.startEdit(c.records[i])
}

func (c *Controller) startEdit(rec backend.Record) {
	if !c.schema.CanUpdate() {
		c.setError(locale.I18n("pages.resource.toasts.readOnly"))
		return
	}
	if rec.ID == "" || c.indexOf(rec.ID) < 0 {
		c.setError(locale.I18n("pages.resource.toasts.notInList", "ID=="+rec.ID))
		return
	}
	fields := make(map[string]string)
	for _, f := range c.TextFields() {
		v := rec.String(f.Name)
		if f.Kind == KindDate && len(v) > 10 {
			v = v[:10]
		}
		fields[f.Name] = v
	}
	c.edit = &editSession{id: rec.ID, fields: fields, file: NewFileField(c.FileField())}
	c.msg = nil
}

// CancelEdit closes the edit session without contacting the backend.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = nil
}

// CommitEdit sends the edited fields for the snapshotted record. Without a
// replacement file the payload has no file part. On failure the edit stays open.
func (c *Controller) CommitEdit(ctx context.Context, fields map[string]string, file *File) {
	if c.uploading.Load() {
		c.fail(locale.I18n("pages.resource.toasts.busy"))
		return
	}

	c.mu.Lock()
	if c.edit == nil {
		c.setError(locale.I18n("pages.resource.toasts.noEdit"))
		c.mu.Unlock()
		return
	}
	edit := c.edit
	for k, v := range fields {
		edit.fields[k] = v
	}
	if err := edit.file.Select(file); err != nil {
		c.setError(err.Error())
		c.mu.Unlock()
		return
	}
	if missing := c.missing(edit.fields, edit.file, ModeEdit); missing != "" {
		c.setError(missing)
		c.mu.Unlock()
		return
	}
	id := edit.id
	payload := c.payload(edit.fields, edit.file, false)
	c.mu.Unlock()

	if !c.uploading.CompareAndSwap(false, true) {
		c.fail(locale.I18n("pages.resource.toasts.busy"))
		return
	}
	res, err := c.send(ctx, http.MethodPut, c.schema.UpdatePath(id), payload)
	c.uploading.Store(false)

	if err != nil {
		logger.Warningf("update %s %s failed: %v", c.schema.Name, id, err)
		c.fail(c.errorText(err, locale.I18n("pages.resource.toasts.updateFailed")))
		return
	}

	c.mu.Lock()
	if c.edit == edit {
		c.edit = nil
	}
	c.setSuccess(orDefault(res.Message, locale.I18n("pages.resource.toasts.updated", "Singular=="+c.schema.Singular)))
	c.mu.Unlock()

	logger.Infof("%s %s updated", c.schema.Singular, id)
	c.Fetch(ctx)
}

// Delete removes a record. Without confirmed no request is made.
func (c *Controller) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return backend.ErrNotConfirmed
	}
	if !c.schema.CanDelete() {
		c.fail(locale.I18n("pages.resource.toasts.readOnly"))
		return nil
	}

	var (
		res *backend.Result
		err error
	)
	if c.schema.Endpoints.DeleteStyle == DeleteByPath {
		res, err = c.client.Delete(ctx, c.schema.DeletePath(id), nil)
	} else {
		res, err = c.client.Delete(ctx, c.schema.DeletePath(id), map[string]string{"id": id})
	}
	if err != nil {
		logger.Warningf("delete %s %s failed: %v", c.schema.Name, id, err)
		c.fail(c.errorText(err, locale.I18n("pages.resource.toasts.deleteFailed")))
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]backend.Record, 0, len(c.records))
	for _, r := range c.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	c.records = kept
	if c.edit != nil && c.edit.id == id {
		c.edit = nil
	}
	c.setSuccess(orDefault(res.Message, locale.I18n("pages.resource.toasts.deleted", "Singular=="+c.schema.Singular)))
	logger.Infof("%s %s deleted", c.schema.Singular, id)
	return nil
}

// SetStatus moves the listed record id to value. The list entry is updated
// in place on success.
func (c *Controller) SetStatus(ctx context.Context, id, value string) {
	if c.schema.Status == nil {
		c.fail(locale.I18n("pages.resource.toasts.readOnly"))
		return
	}
	if !c.schema.AllowsStatus(value) {
		c.fail(locale.I18n("pages.resource.toasts.badStatus", "Status=="+value))
		return
	}
	field := c.schema.Status.Field
	res, err := c.client.PatchJSON(ctx, c.schema.StatusPath(id), map[string]string{field: value})
	if err != nil {
		logger.Warningf("status of %s %s failed: %v", c.schema.Name, id, err)
		c.fail(c.errorText(err, locale.I18n("pages.resource.toasts.statusFailed")))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		rec := c.records[i]
		updated := make(map[string]any, len(rec.Fields)+1)
		for k, v := range rec.Fields {
			updated[k] = v
		}
		updated[field] = value
		c.records[i] = backend.Record{ID: rec.ID, Fields: updated}
	}
	c.setSuccess(orDefault(res.Message, locale.I18n("pages.resource.toasts.statusChanged", "Status=="+value)))
	logger.Infof("%s %s is now %s", c.schema.Singular, id, value)
}

// Record returns the listed record with id.
func (c *Controller) Record(id string) (backend.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.records[i], true
	}
	return backend.Record{}, false
}

// Children loads the read-only sub-list of record id. It does not touch the
// controller's state.
func (c *Controller) Children(ctx context.Context, id string) ([]backend.Record, error) {
	if c.schema.Children == nil {
		return nil, nil
	}
	res, err := c.client.Get(ctx, c.schema.ChildrenPath(id), nil)
	if err != nil {
		logger.Warningf("load %s of %s %s failed: %v", c.schema.Children.Title, c.schema.Name, id, err)
		return nil, errors.New(c.errorText(err, locale.I18n("pages.resource.toasts.childrenFailed", "Title=="+c.schema.Children.Title)))
	}
	return res.Data, nil
}

// send posts payload in the body format of the controller's option.
func (c *Controller) send(ctx context.Context, method, path string, payload *backend.Form) (*backend.Result, error) {
	if c.schema.EncodingFor(c.option) == EncodeJSON {
		if method == http.MethodPut {
			return c.client.PutJSON(ctx, path, payload.JSON())
		}
		return c.client.PostJSON(ctx, path, payload.JSON())
	}
	if method == http.MethodPut {
		return c.client.PutMultipart(ctx, path, payload)
	}
	return c.client.PostMultipart(ctx, path, payload)
}

// missing returns the validation message for absent required inputs, or "".
func (c *Controller) missing(values map[string]string, file *FileField, mode Mode) string {
	var labels []string
	if c.schema.Scoped() && mode == ModeCreate && c.option == "" {
		labels = append(labels, strings.ToLower(c.schema.OptionField))
	}
	for _, f := range c.TextFields() {
		if f.Required && strings.TrimSpace(values[f.Name]) == "" {
			labels = append(labels, strings.ToLower(f.Label))
		}
	}
	if file.Missing(mode) {
		labels = append(labels, locale.I18n("pages.resource.toasts.aFile"))
	}
	if len(labels) == 0 {
		return ""
	}
	return locale.I18n("pages.resource.toasts.required", "Fields=="+joinLabels(labels))
}

func (c *Controller) payload(values map[string]string, file *FileField, create bool) *backend.Form {
	form := backend.NewForm()
	if create && c.schema.Scoped() {
		form.Set(c.schema.OptionField, c.option)
	}
	for _, f := range c.TextFields() {
		form.Set(f.Name, values[f.Name])
	}
	form.SetFile(file.Part())
	return form
}

func (c *Controller) errorText(err error, fallback string) string {
	if backend.IsNetwork(err) {
		return locale.I18n("pages.resource.toasts.serverError")
	}
	return backend.UserMessage(err, fallback)
}

func (c *Controller) indexOf(id string) int {
	for i, r := range c.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) fail(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setError(text)
}

func (c *Controller) setError(text string) {
	c.msg = &Message{Kind: MessageError, Text: text}
}

func (c *Controller) setSuccess(text string) {
	c.msg = &Message{Kind: MessageSuccess, Text: text}
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// joinLabels renders "a", "a and b", "a, b and c".
func joinLabels(labels []string) string {
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
}
