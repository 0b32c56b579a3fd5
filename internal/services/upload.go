package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/desertthunder/mrx/internal/shared"
)

// FilePart is a file attached to a named multipart part.
type FilePart struct {
	Field string
	Path  string
}

// Form is a multipart submission. Fields are written in order, followed by files.
type Form struct {
	Fields [][2]string
	Files  []FilePart
}

// Field appends a text part.
func (f *Form) Field(name, value string) *Form {
	f.Fields = append(f.Fields, [2]string{name, value})
	return f
}

// File appends a file part. Empty paths are skipped.
func (f *Form) File(field, path string) *Form {
	if path != "" {
		f.Files = append(f.Files, FilePart{Field: field, Path: path})
	}
	return f
}

// Encode writes the form and returns the body with its content type.
func (f *Form) Encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range f.Fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", kv[0], err)
		}
	}

	for _, fp := range f.Files {
		if err := writeFile(w, fp); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, fp FilePart) error {
	data, err := shared.VerifyAndReadFile(fp.Path)
	if err != nil {
		return fmt.Errorf("%s: %w", fp.Field, err)
	}

	part, err := w.CreateFormFile(fp.Field, filepath.Base(fp.Path))
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", fp.Field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to copy %s: %w", fp.Field, err)
	}
	return nil
}

// Upload submits form to path with method and decodes the JSON response into out.
func (a *APIService) Upload(ctx context.Context, method, path string, form *Form, out any) error {
	body, contentType, err := form.Encode()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, a.URL(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	return a.send(req, out)
}
