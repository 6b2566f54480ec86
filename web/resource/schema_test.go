package resource

import (
	"strings"
	"testing"

	"github.com/shyamgroup/backoffice/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsValid(t *testing.T) {
	names := map[string]bool{}
	for _, s := range All() {
		require.NoError(t, s.Validate())
		assert.False(t, names[s.Name], "duplicate schema %s", s.Name)
		names[s.Name] = true
	}
	assert.Len(t, names, 18)

	_, ok := Lookup("disclosures")
	assert.True(t, ok)
	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestSchemaPaths(t *testing.T) {
	disclosures, _ := Lookup("disclosures")
	assert.Equal(t, "/disclosure/get_disclosure", disclosures.ListPath(""))
	assert.Equal(t, "/disclosure/create_disclosure", disclosures.CreatePath())
	assert.Equal(t, "/disclosure/update_disclosure/abc", disclosures.UpdatePath("abc"))
	assert.Equal(t, "/disclosure/delete", disclosures.DeletePath("abc"))
	assert.Equal(t, DeleteByBody, disclosures.Endpoints.DeleteStyle)

	stock, _ := Lookup("stock-exchange")
	require.True(t, stock.Scoped())
	assert.Equal(t, "Shareholding Pattern", stock.DefaultOption())
	assert.Equal(t, "/stock/get/Regulation%2074%285%29", stock.ListPath("Regulation 74(5)"))
	assert.True(t, stock.HasOption("Regulation 40(9)"))
	assert.False(t, stock.HasOption("regulation 40(9)"))

	jobs, _ := Lookup("jobs")
	assert.Equal(t, "/jobs/delete/a%2Fb", jobs.DeletePath("a/b"))
	assert.Nil(t, jobs.FileField().Accept)

	inquiries, _ := Lookup("inquiries")
	assert.False(t, inquiries.CanCreate())
	assert.False(t, inquiries.CanUpdate())
	assert.True(t, inquiries.CanDelete())
	assert.Equal(t, "/inquiries", inquiries.ListPath(""))
	assert.Nil(t, inquiries.FileField())
	assert.True(t, inquiries.HasView())
	assert.Equal(t, "/inquiries/abc/status", inquiries.StatusPath("abc"))

	require.True(t, jobs.HasView())
	assert.Equal(t, "/jobs/applications/j1", jobs.ChildrenPath("j1"))
	assert.False(t, disclosures.HasView())
}

func TestSchemaValidateRejects(t *testing.T) {
	base := func() *Schema {
		return &Schema{
			Name: "x", Title: "X", Singular: "X",
			Endpoints: Endpoints{Base: "/x", List: "/all"},
		}
	}
	tests := []struct {
		name   string
		mutate func(s *Schema)
		want   string
	}{
		{"no title", func(s *Schema) { s.Title = "" }, "required"},
		{"scoped list without option", func(s *Schema) { s.Options = []string{"a"}; s.OptionField = "option" }, "{option}"},
		{"scoped without field", func(s *Schema) { s.Options = []string{"a"}; s.Endpoints.List = "/get/{option}" }, "option field"},
		{"update without id", func(s *Schema) { s.Endpoints.Update = "/update" }, "{id}"},
		{"path delete without id", func(s *Schema) { s.Endpoints.Delete = "/delete"; s.Endpoints.DeleteStyle = DeleteByPath }, "{id}"},
		{"duplicate field", func(s *Schema) {
			s.Fields = []Field{{Name: "a", Kind: KindText}, {Name: "a", Kind: KindDate}}
		}, "duplicate"},
		{"two files", func(s *Schema) {
			s.Fields = []Field{{Name: "a", Kind: KindFile}, {Name: "b", Kind: KindFile}}
		}, "one file"},
		{"empty select", func(s *Schema) { s.Fields = []Field{{Name: "a", Kind: KindSelect}} }, "no options"},
		{"file in json body", func(s *Schema) {
			s.Endpoints.Encoding = EncodeJSON
			s.Fields = []Field{{Name: "a", Kind: KindFile}}
		}, "JSON"},
		{"variant of unknown option", func(s *Schema) {
			s.Variants = map[string]Variant{"b": {Fields: []Field{{Name: "a", Kind: KindText}}}}
		}, "unknown option"},
		{"json variant with file", func(s *Schema) {
			s.Options, s.OptionField, s.Endpoints.List = []string{"a"}, "option", "/get/{option}"
			s.Variants = map[string]Variant{"a": {Encoding: EncodeJSON, Fields: []Field{{Name: "f", Kind: KindFile}}}}
		}, `option "a"`},
		{"status without id", func(s *Schema) {
			s.Status = &StatusAction{Field: "status", Path: "/status", Values: []string{"Open"}, Default: "Open"}
		}, "{id}"},
		{"status default not a value", func(s *Schema) {
			s.Status = &StatusAction{Field: "status", Path: "/{id}/status", Values: []string{"Open"}, Default: "Closed"}
		}, "default status"},
		{"children without id", func(s *Schema) { s.Children = &SubList{Title: "Sub", Path: "/sub"} }, "{id}"},
	}
	require.NoError(t, base().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestJoinLabels(t *testing.T) {
	assert.Equal(t, "", joinLabels(nil))
	assert.Equal(t, "name", joinLabels([]string{"name"}))
	assert.Equal(t, "name and date", joinLabels([]string{"name", "date"}))
	assert.Equal(t, "name, date and a file", joinLabels([]string{"name", "date", "a file"}))
}

func TestInquiryColumnsAndStatus(t *testing.T) {
	inquiries, _ := Lookup("inquiries")
	keys := make([]string, 0, len(inquiries.Columns))
	for _, c := range inquiries.Columns {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"fullName", "email", "companyName", "status"}, keys)

	require.NotNil(t, inquiries.Status)
	assert.Equal(t, []string{"Pending", "In Progress", "Resolved", "Rejected"}, inquiries.Status.Values)
	assert.True(t, inquiries.AllowsStatus("In Progress"))
	assert.False(t, inquiries.AllowsStatus("in progress"))
	assert.False(t, inquiries.AllowsStatus(""))

	unset := backend.Record{ID: "1", Fields: map[string]any{}}
	assert.Equal(t, "Pending", inquiries.StatusOf(unset))
	assert.Equal(t, "Resolved", inquiries.StatusOf(backend.Record{ID: "2", Fields: map[string]any{"status": "Resolved"}}))

	disclosures, _ := Lookup("disclosures")
	assert.Equal(t, "", disclosures.StatusOf(unset))
	assert.False(t, disclosures.AllowsStatus("Pending"))
}

func TestVariantsPickFieldsAndEncoding(t *testing.T) {
	other, _ := Lookup("other")

	docs := other.FieldsFor("Other Compliances")
	assert.Equal(t, other.Fields, docs)
	assert.Equal(t, EncodeMultipart, other.EncodingFor("Other Compliances"))
	require.NotNil(t, other.FileFieldFor("Other Compliances"))

	for _, opt := range []string{"KMP Contact Details", "Investor Relations Contact"} {
		assert.Equal(t, EncodeJSON, other.EncodingFor(opt), opt)
		assert.Nil(t, other.FileFieldFor(opt), opt)
		names := make([]string, 0)
		for _, f := range other.TextFieldsFor(opt) {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{
			"name", "date",
			"contactInfo.name", "contactInfo.designation", "contactInfo.office", "contactInfo.company",
			"contactInfo.address", "contactInfo.phone", "contactInfo.email",
		}, names, opt)
	}

	distributors, _ := Lookup("distributors")
	assert.Equal(t, EncodeJSON, distributors.EncodingFor(""))
}
