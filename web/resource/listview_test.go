package resource

import (
	"html/template"
	"strings"
	"testing"

	"github.com/shyamgroup/backoffice/backend"

	"github.com/stretchr/testify/assert"
)

func TestRenderListEmpty(t *testing.T) {
	cols := []Column{{Key: "name", Label: "Name"}, {Key: "date", Label: "Date"}}

	out := string(RenderList(cols, nil, nil))
	assert.Contains(t, out, `<td class="empty" colspan="2">No records found</td>`)

	out = string(RenderList(cols, []backend.Record{}, func(backend.Record) template.HTML { return "" }))
	assert.Contains(t, out, `colspan="3"`)
	assert.Equal(t, 1, strings.Count(out, "<tr><td"))
}

func TestRenderListEscapesAndKeepsOrder(t *testing.T) {
	disclosures, _ := Lookup("disclosures")
	records := []backend.Record{
		{ID: "2", Fields: map[string]any{"name": "<b>Q2</b>", "date": "2024-06-30T00:00:00.000Z", "file": "http://x/2.webp"}},
		{ID: "1", Fields: map[string]any{"name": "Q1 Report", "date": "2024-03-31", "file": "javascript:alert(1)"}},
	}
	out := string(RenderList(disclosures.Columns, records, func(rec backend.Record) template.HTML {
		return template.HTML(`<a data-id="` + template.HTMLEscapeString(rec.ID) + `">x</a>`)
	}))

	assert.NotContains(t, out, "<b>Q2</b>")
	assert.Contains(t, out, "&lt;b&gt;Q2&lt;/b&gt;")
	assert.Contains(t, out, "<td>2024-06-30</td>")
	assert.Contains(t, out, `<a href="http://x/2.webp" target="_blank" rel="noopener">View</a>`)
	assert.NotContains(t, out, `href="javascript`)
	assert.NotContains(t, out, "No records found")
	assert.Less(t, strings.Index(out, `data-id="2"`), strings.Index(out, `data-id="1"`))
}
