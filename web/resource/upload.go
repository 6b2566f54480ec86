package resource

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/web/locale"
)

// maxUploadSize bounds a single held file.
const maxUploadSize = 32 << 20

// File is a selected upload held in memory until it is submitted.
type File struct {
	Name    string
	Content []byte
}

func (f *File) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Content))
}

// FileFromHeader reads an uploaded multipart file. A nil header or an empty
// unnamed part (no file chosen in the browser) yields nil, nil.
func FileFromHeader(fh *multipart.FileHeader) (*File, error) {
	if fh == nil || (fh.Filename == "" && fh.Size == 0) {
		return nil, nil
	}
	if fh.Size > maxUploadSize {
		return nil, errors.New("file too large")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	content, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if len(content) > maxUploadSize {
		return nil, errors.New("file too large")
	}
	return &File{Name: fh.Filename, Content: content}, nil
}

// Mode distinguishes the create form from the edit form.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// FileField holds zero or one selected file and enforces the suffix allow-list.
type FileField struct {
	name     string
	accept   []string
	required bool
	file     *File
}

// NewFileField builds the field for a schema file input; f may be nil for
// schemas without one, in which case nothing is ever required.
func NewFileField(f *Field) *FileField {
	if f == nil {
		return &FileField{}
	}
	accept := make([]string, 0, len(f.Accept))
	for _, a := range f.Accept {
		accept = append(accept, strings.ToLower(a))
	}
	return &FileField{name: f.Name, accept: accept, required: f.Required}
}

// Select replaces the held file. A name failing the allow-list is rejected
// and the previous selection, if any, is kept. A nil file is a no-op.
func (f *FileField) Select(file *File) error {
	if file == nil || file.Name == "" {
		return nil
	}
	if !f.Accepts(file.Name) {
		return &backend.ValidationError{
			Msg: locale.I18n("pages.resource.toasts.fileRejected", "Accept=="+strings.Join(f.accept, ", ")),
		}
	}
	f.file = file
	return nil
}

// Accepts reports whether name passes the allow-list (case-insensitive).
func (f *FileField) Accepts(name string) bool {
	if len(f.accept) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range f.accept {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func (f *FileField) Held() bool {
	return f.file != nil
}

func (f *FileField) File() *File {
	return f.file
}

func (f *FileField) Clear() {
	f.file = nil
}

// Missing reports a validation failure: only create mode with a required
// file and nothing held. In edit mode no file means "keep the stored one".
func (f *FileField) Missing(mode Mode) bool {
	return mode == ModeCreate && f.required && f.file == nil
}

// Part converts the held file to a multipart part, nil when nothing is held.
func (f *FileField) Part() *backend.FilePart {
	if f.file == nil || f.name == "" {
		return nil
	}
	return &backend.FilePart{Field: f.name, Name: f.file.Name, Content: f.file.Content}
}
