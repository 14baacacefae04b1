package resources

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	portalerrors "github.com/studyhub/portal/internal/errors"
	"github.com/studyhub/portal/internal/validation"
)

const bytesPerMB = 1024 * 1024

var (
	ErrNoFile             = portalerrors.ErrNoFile
	ErrFileTooLarge       = portalerrors.ErrFileTooLarge
	ErrFileTypeNotAllowed = portalerrors.ErrFileTypeNotAllowed
)

// UploadError is a rejected file. Its message names the limit that was broken.
type UploadError struct {
	Err     error
	Message string
}

func (e *UploadError) Error() string {
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Limits are the client-side upload restrictions
type Limits struct {
	MaxMB      int64
	Extensions []string // lower-case, with leading dot
}

// CheckFile validates a file name and size against the limits
func (l Limits) CheckFile(name string, size int64) error {
	if strings.TrimSpace(name) == "" {
		return ErrNoFile
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !l.allowed(ext) {
		shown := ext
		if shown == "" {
			shown = "(none)"
		}
		return &UploadError{
			Err:     ErrFileTypeNotAllowed,
			Message: fmt.Sprintf("file type %q is not allowed (allowed: %s)", shown, strings.Join(l.Extensions, ", ")),
		}
	}

	if l.MaxMB > 0 && size > l.MaxMB*bytesPerMB {
		return &UploadError{
			Err:     ErrFileTooLarge,
			Message: fmt.Sprintf("file exceeds the maximum upload size of %d MB", l.MaxMB),
		}
	}
	return nil
}

func (l Limits) allowed(ext string) bool {
	if len(l.Extensions) == 0 {
		return ext != ""
	}
	for _, allowed := range l.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// UploadForm is the resource hub upload form
type UploadForm struct {
	Title        string       `json:"title" validate:"notblank,max=200"`
	Description  string       `json:"description" validate:"omitempty,max=2000"`
	College      string       `json:"college" validate:"notblank"`
	Branch       string       `json:"branch" validate:"notblank"`
	ResourceType ResourceType `json:"resource_type" validate:"notblank"`

	FileName string    `json:"-"`
	Size     int64     `json:"-"`
	File     io.Reader `json:"-"`
}

// Validate checks metadata then the file; nothing is sent when it fails
func (f *UploadForm) Validate(v *validation.Validator, limits Limits) error {
	if err := v.Validate(f); err != nil {
		return err
	}
	if f.File == nil {
		return ErrNoFile
	}
	return limits.CheckFile(f.FileName, f.Size)
}

func (f *UploadForm) fields() map[string]string {
	return map[string]string{
		"title":         strings.TrimSpace(f.Title),
		"description":   f.Description,
		"college":       strings.TrimSpace(f.College),
		"branch":        strings.TrimSpace(f.Branch),
		"resource_type": string(f.ResourceType),
	}
}

// OpenFile attaches a file on disk to the form. The caller closes the returned file.
func (f *UploadForm) OpenFile(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "[UploadForm.OpenFile] Open")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "[UploadForm.OpenFile] Stat")
	}
	if info.IsDir() {
		file.Close()
		return nil, errors.Errorf("[UploadForm.OpenFile] %s is a directory", path)
	}

	f.FileName = filepath.Base(path)
	f.Size = info.Size()
	f.File = file
	return file, nil
}
