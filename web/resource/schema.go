// Package resource implements the generic record admin: declarative
// schemas, the file upload field, the CRUD controller, and list rendering.
package resource

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/shyamgroup/backoffice/backend"
)

// Kind is the input type of a schema field.
type Kind string

const (
	KindText     Kind = "text"
	KindTextArea Kind = "textarea"
	KindDate     Kind = "date"
	KindSelect   Kind = "select"
	KindFile     Kind = "file"
)

// Field is one form input. For KindFile, Name is the multipart part name the
// backend expects and Accept lists allowed filename suffixes (empty = any).
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Options  []string
	Accept   []string
}

// Column is one list column. Render, when set, replaces the raw value.
type Column struct {
	Key    string
	Label  string
	Render func(rec backend.Record) template.HTML
}

// DeleteStyle says how a delete request identifies the record.
type DeleteStyle int

const (
	// DeleteByBody sends DELETE {Delete} with JSON {"id": ...}.
	DeleteByBody DeleteStyle = iota
	// DeleteByPath substitutes {id} into the Delete path and sends no body.
	DeleteByPath
)

// Encoding is the body format of create and update requests.
type Encoding int

const (
	EncodeMultipart Encoding = iota
	EncodeJSON
)

// Endpoints is a resource's route family relative to the API base. Paths may
// contain {id} and {option} placeholders. An empty Create or Update means the
// resource does not support that operation.
type Endpoints struct {
	Base        string
	List        string
	Create      string
	Update      string
	Delete      string
	DeleteStyle DeleteStyle
	Encoding    Encoding
}

// Variant replaces the form of one option of a scoped schema.
type Variant struct {
	Fields   []Field
	Encoding Encoding
}

// StatusAction is a one-field workflow update sent as PATCH {Path} with
// JSON {Field: value}. Records without the field show Default.
type StatusAction struct {
	Field   string
	Label   string
	Path    string
	Values  []string
	Default string
}

// SubList is a read-only list owned by one record, e.g. a job's applications.
type SubList struct {
	Title   string
	Path    string
	Columns []Column
}

// Schema declares one resource: its route, backend endpoints, form fields and
// list columns. Schemas are configuration and are never mutated at runtime.
type Schema struct {
	Name      string
	Title     string
	Singular  string
	Endpoints Endpoints
	Fields    []Field
	Columns   []Column

	// Options turns on the category selector; OptionField is the multipart
	// field carrying the selected option on create.
	Options     []string
	OptionField string
	Variants    map[string]Variant

	// Details are the rows of the record view page; Children is listed below them.
	Details  []Column
	Children *SubList
	Status   *StatusAction
}

// Scoped reports whether the list is parameterised by a category option.
func (s *Schema) Scoped() bool {
	return len(s.Options) > 0
}

func (s *Schema) CanCreate() bool {
	return s.Endpoints.Create != ""
}

func (s *Schema) CanUpdate() bool {
	return s.Endpoints.Update != ""
}

func (s *Schema) CanDelete() bool {
	return s.Endpoints.Delete != ""
}

// HasView reports whether records have a detail page.
func (s *Schema) HasView() bool {
	return len(s.Details) > 0 || s.Children != nil
}

// FieldsFor returns the form of option: its variant's fields, or the
// schema's own.
func (s *Schema) FieldsFor(option string) []Field {
	if v, ok := s.Variants[option]; ok {
		return v.Fields
	}
	return s.Fields
}

func (s *Schema) EncodingFor(option string) Encoding {
	if v, ok := s.Variants[option]; ok {
		return v.Encoding
	}
	return s.Endpoints.Encoding
}

// FileField returns the schema's file field, or nil.
func (s *Schema) FileField() *Field {
	return s.FileFieldFor("")
}

func (s *Schema) FileFieldFor(option string) *Field {
	fields := s.FieldsFor(option)
	for i := range fields {
		if fields[i].Kind == KindFile {
			return &fields[i]
		}
	}
	return nil
}

// TextFields returns the non-file fields in declaration order.
func (s *Schema) TextFields() []Field {
	return s.TextFieldsFor("")
}

func (s *Schema) TextFieldsFor(option string) []Field {
	fields := s.FieldsFor(option)
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Kind != KindFile {
			out = append(out, f)
		}
	}
	return out
}

// StatusOf returns rec's workflow status, or the default when unset.
func (s *Schema) StatusOf(rec backend.Record) string {
	if s.Status == nil {
		return ""
	}
	if v := rec.String(s.Status.Field); v != "" {
		return v
	}
	return s.Status.Default
}

// AllowsStatus reports whether value is one of the workflow values.
func (s *Schema) AllowsStatus(value string) bool {
	if s.Status == nil {
		return false
	}
	for _, v := range s.Status.Values {
		if v == value {
			return true
		}
	}
	return false
}

// HasOption reports whether opt is one of the configured options.
func (s *Schema) HasOption(opt string) bool {
	for _, o := range s.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// DefaultOption is the option selected when none is given.
func (s *Schema) DefaultOption() string {
	if len(s.Options) == 0 {
		return ""
	}
	return s.Options[0]
}

func (s *Schema) ListPath(option string) string {
	return s.path(s.Endpoints.List, "", option)
}

func (s *Schema) CreatePath() string {
	return s.path(s.Endpoints.Create, "", "")
}

func (s *Schema) UpdatePath(id string) string {
	return s.path(s.Endpoints.Update, id, "")
}

func (s *Schema) DeletePath(id string) string {
	return s.path(s.Endpoints.Delete, id, "")
}

func (s *Schema) StatusPath(id string) string {
	return s.path(s.Status.Path, id, "")
}

func (s *Schema) ChildrenPath(id string) string {
	return s.path(s.Children.Path, id, "")
}

func (s *Schema) path(tmpl, id, option string) string {
	p := strings.ReplaceAll(tmpl, "{id}", url.PathEscape(id))
	p = strings.ReplaceAll(p, "{option}", url.PathEscape(option))
	return s.Endpoints.Base + p
}

// Validate checks the declaration itself.
func (s *Schema) Validate() error {
	if s.Name == "" || s.Title == "" || s.Singular == "" {
		return fmt.Errorf("schema %q: name, title and singular are required", s.Name)
	}
	if s.Endpoints.List == "" && s.Endpoints.Base == "" {
		return fmt.Errorf("schema %q: list endpoint is required", s.Name)
	}
	if s.Scoped() && !strings.Contains(s.Endpoints.List, "{option}") {
		return fmt.Errorf("schema %q: scoped list endpoint must contain {option}", s.Name)
	}
	if s.Scoped() && s.OptionField == "" {
		return fmt.Errorf("schema %q: scoped schema needs an option field", s.Name)
	}
	if s.CanUpdate() && !strings.Contains(s.Endpoints.Update, "{id}") {
		return fmt.Errorf("schema %q: update endpoint must contain {id}", s.Name)
	}
	if s.CanDelete() && s.Endpoints.DeleteStyle == DeleteByPath && !strings.Contains(s.Endpoints.Delete, "{id}") {
		return fmt.Errorf("schema %q: path-style delete endpoint must contain {id}", s.Name)
	}
	if err := s.validateFields(s.Fields, s.Endpoints.Encoding); err != nil {
		return err
	}
	for opt, v := range s.Variants {
		if !s.HasOption(opt) {
			return fmt.Errorf("schema %q: variant for unknown option %q", s.Name, opt)
		}
		if err := s.validateFields(v.Fields, v.Encoding); err != nil {
			return fmt.Errorf("%w (option %q)", err, opt)
		}
	}
	if st := s.Status; st != nil {
		if st.Field == "" || !strings.Contains(st.Path, "{id}") || len(st.Values) == 0 {
			return fmt.Errorf("schema %q: status action needs a field, an {id} path and values", s.Name)
		}
		if !s.AllowsStatus(st.Default) {
			return fmt.Errorf("schema %q: default status %q is not a status value", s.Name, st.Default)
		}
	}
	if s.Children != nil && !strings.Contains(s.Children.Path, "{id}") {
		return fmt.Errorf("schema %q: child list path must contain {id}", s.Name)
	}
	return nil
}

func (s *Schema) validateFields(fields []Field, enc Encoding) error {
	files := 0
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("schema %q: field without name", s.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %q: duplicate field %q", s.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Kind == KindFile {
			files++
		}
		if f.Kind == KindSelect && len(f.Options) == 0 {
			return fmt.Errorf("schema %q: select field %q has no options", s.Name, f.Name)
		}
	}
	if files > 1 {
		return fmt.Errorf("schema %q: at most one file field is allowed", s.Name)
	}
	if files > 0 && enc == EncodeJSON {
		return fmt.Errorf("schema %q: a JSON body cannot carry a file field", s.Name)
	}
	return nil
}
