package backend

import (
	"bytes"
	"mime/multipart"
	"strings"
)

// FilePart is the binary part of a multipart payload.
type FilePart struct {
	Field   string
	Name    string
	Content []byte
}

// Form is an ordered multipart/form-data payload: text fields plus at most one file.
type Form struct {
	keys   []string
	values map[string]string
	file   *FilePart
}

func NewForm() *Form {
	return &Form{values: make(map[string]string)}
}

// Set adds or replaces a text field, keeping first-insertion order.
func (f *Form) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

func (f *Form) Value(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *Form) Keys() []string {
	return append([]string(nil), f.keys...)
}

// SetFile attaches the file part. A nil part leaves the payload without one,
// which the update endpoints read as "keep the stored file".
func (f *Form) SetFile(part *FilePart) {
	f.file = part
}

func (f *Form) File() *FilePart {
	return f.file
}

// JSON returns the text fields as a JSON object. Dotted keys become nested
// objects ("contactInfo.name" -> {"contactInfo": {"name": ...}}). The file
// part is not representable and is left out.
func (f *Form) JSON() map[string]any {
	out := make(map[string]any, len(f.keys))
	for _, k := range f.keys {
		target := out
		parts := strings.Split(k, ".")
		for _, p := range parts[:len(parts)-1] {
			next, ok := target[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				target[p] = next
			}
			target = next
		}
		target[parts[len(parts)-1]] = f.values[k]
	}
	return out
}

// Encode writes the payload and returns the body and its content type,
// boundary included.
func (f *Form) Encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, k := range f.keys {
		if err := w.WriteField(k, f.values[k]); err != nil {
			return nil, "", err
		}
	}
	if f.file != nil {
		part, err := w.CreateFormFile(f.file.Field, f.file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}
