package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Record is one persisted item as returned by the backend. ID is assigned by
// the server (`_id`, or `id` for older routes) and never generated here.
type Record struct {
	ID     string
	Fields map[string]any
}

// Get returns the raw value of a field. A dotted name that is not a key
// itself walks nested objects, e.g. "contactInfo.email".
func (r Record) Get(name string) any {
	return Dig(r.Fields, name)
}

// Dig looks name up in m, descending into nested objects on dots.
func Dig(m map[string]any, name string) any {
	if m == nil {
		return nil
	}
	if v, ok := m[name]; ok {
		return v
	}
	head, rest, ok := strings.Cut(name, ".")
	if !ok {
		return nil
	}
	inner, _ := m[head].(map[string]any)
	return Dig(inner, rest)
}

// String formats a field for display or for pre-filling a form input.
func (r Record) String(name string) string {
	return FormatValue(r.Get(name))
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = ""
	r.Fields = make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case "_id", "id":
			if r.ID == "" || k == "_id" {
				r.ID = FormatValue(v)
			}
		default:
			r.Fields[k] = v
		}
	}
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["_id"] = r.ID
	return json.Marshal(out)
}

// FormatValue renders a decoded JSON value as plain text. Objects and arrays
// are re-encoded as compact JSON.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
