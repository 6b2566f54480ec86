package resource

import (
	"html/template"
	"strings"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web/locale"
)

// ActionsFunc renders the per-row action cell (edit/delete buttons).
type ActionsFunc func(rec backend.Record) template.HTML

var listTemplate = template.Must(template.New("list_view").Parse(`<table class="list"><thead><tr>
{{- range .Headers }}<th>{{ . }}</th>{{ end -}}
</tr></thead><tbody>
{{- if not .Rows }}<tr><td class="empty" colspan="{{ .Span }}">{{ .Empty }}</td></tr>{{ end -}}
{{- range .Rows }}<tr>
{{- range .Cells }}<td>{{ . }}</td>{{ end -}}
{{- if $.HasActions }}<td class="actions">{{ .Actions }}</td>{{ end -}}
</tr>{{ end -}}
</tbody></table>`))

type listRow struct {
	Cells   []any
	Actions template.HTML
}

type listData struct {
	Headers    []string
	Rows       []listRow
	HasActions bool
	Span       int
	Empty      string
}

// RenderList renders records as a table in server order. Values without a
// column renderer are escaped. With no records a single spanning row says so.
func RenderList(columns []Column, records []backend.Record, actions ActionsFunc) template.HTML {
	data := listData{
		Headers:    make([]string, 0, len(columns)+1),
		Rows:       make([]listRow, 0, len(records)),
		HasActions: actions != nil,
		Empty:      locale.I18n("pages.listView.empty"),
	}
	for _, c := range columns {
		data.Headers = append(data.Headers, c.Label)
	}
	if actions != nil {
		data.Headers = append(data.Headers, locale.I18n("actions"))
	}
	data.Span = max(len(data.Headers), 1)

	for _, rec := range records {
		row := listRow{Cells: make([]any, 0, len(columns))}
		for _, c := range columns {
			if c.Render != nil {
				row.Cells = append(row.Cells, c.Render(rec))
			} else {
				row.Cells = append(row.Cells, rec.String(c.Key))
			}
		}
		if actions != nil {
			row.Actions = actions(rec)
		}
		data.Rows = append(data.Rows, row)
	}

	var b strings.Builder
	if err := listTemplate.Execute(&b, data); err != nil {
		logger.Warning("render list:", err)
		return ""
	}
	return template.HTML(b.String())
}
