package dispatch

import (
	"io"
	"mime/multipart"
	"net/http"
)

// UploadedFile represents a file from a multipart form
type UploadedFile struct {
	File     multipart.File
	Header   *multipart.FileHeader
	Filename string
	Size     int64
}

// Close closes the underlying file
func (u *UploadedFile) Close() error {
	return u.File.Close()
}

// ReadAll reads all bytes from the file
func (u *UploadedFile) ReadAll() ([]byte, error) {
	return io.ReadAll(u.File)
}

// ParseMultipartForm parses the request body as a multipart form with the
// given max memory in MB. Default is 32MB if maxMemoryMB is 0.
func (r Request) ParseMultipartForm(maxMemoryMB int64) error {
	if r.raw == nil {
		return http.ErrNotMultipart
	}
	if maxMemoryMB == 0 {
		maxMemoryMB = 32
	}
	return r.raw.ParseMultipartForm(maxMemoryMB << 20)
}

// UploadedFile gets a single file from the form
func (r Request) UploadedFile(fieldName string) (*UploadedFile, error) {
	if r.raw == nil {
		return nil, http.ErrMissingFile
	}
	file, header, err := r.raw.FormFile(fieldName)
	if err != nil {
		return nil, err
	}

	return &UploadedFile{
		File:     file,
		Header:   header,
		Filename: header.Filename,
		Size:     header.Size,
	}, nil
}

// UploadedFiles gets every file uploaded under fieldName. The form must have
// been parsed with ParseMultipartForm.
func (r Request) UploadedFiles(fieldName string) ([]*UploadedFile, error) {
	if r.raw == nil || r.raw.MultipartForm == nil {
		return nil, http.ErrMissingFile
	}
	files := r.raw.MultipartForm.File[fieldName]
	if len(files) == 0 {
		return nil, http.ErrMissingFile
	}

	uploaded := make([]*UploadedFile, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			for _, u := range uploaded {
				u.Close()
			}
			return nil, err
		}

		uploaded = append(uploaded, &UploadedFile{
			File:     file,
			Header:   header,
			Filename: header.Filename,
			Size:     header.Size,
		})
	}

	return uploaded, nil
}

// FormValue gets a form field value (for non-file fields in multipart form)
func (r Request) FormValue(fieldName string) string {
	if r.raw == nil {
		return ""
	}
	return r.raw.FormValue(fieldName)
}
