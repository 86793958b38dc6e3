package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"songmarket/internal/server/storage"
)

const defaultMimeType = "application/octet-stream"

// FileUpload is one file received under a multipart field.
type FileUpload struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// FileMetadata describes a stored upload.
type FileMetadata struct {
	FieldName    string `json:"fieldname"`
	OriginalName string `json:"originalname"`
	Encoding     string `json:"encoding"`
	MimeType     string `json:"mimetype"`
	Destination  string `json:"destination"`
	Filename     string `json:"filename"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}

// UploadService persists media files under time-prefixed names.
type UploadService struct {
	store storage.Store
	now   func() time.Time
}

// NewUploadService creates a new upload service.
func NewUploadService(store storage.Store) *UploadService {
	return &UploadService{store: store, now: time.Now}
}

// Upload stores f as "<unix millis>-<original filename>". The content is not
// inspected; two uploads of one name in the same millisecond collide.
func (s *UploadService) Upload(ctx context.Context, f *FileUpload) (*FileMetadata, error) {
	if f == nil || f.Data == nil {
		return nil, ErrNoFile
	}

	name := storageName(s.now(), f.Filename)
	mimeType := f.ContentType
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	obj, err := s.store.Save(ctx, name, f.Data, f.Size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	slog.Info("upload stored",
		"field", f.Field,
		"filename", name,
		"size", obj.Size,
	)

	return &FileMetadata{
		FieldName:    f.Field,
		OriginalName: f.Filename,
		Encoding:     "7bit",
		MimeType:     mimeType,
		Destination:  obj.Destination,
		Filename:     name,
		Path:         obj.Path,
		Size:         obj.Size,
	}, nil
}

func storageName(at time.Time, original string) string {
	return fmt.Sprintf("%d-%s", at.UnixMilli(), sanitizeFilename(original))
}

// sanitizeFilename strips directory components and limits length.
func sanitizeFilename(name string) string {
	// Normalize Windows-style backslashes to forward slashes before
	// calling filepath.Base, which is platform-specific.
	name = strings.ReplaceAll(name, "\\", "/")

	name = filepath.Base(name)

	if len(name) > 200 {
		ext := filepath.Ext(name)
		if len(ext) > 16 || !utf8.ValidString(ext) {
			ext = ""
		}
		cut := 200 - len(ext)
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut] + ext
	}

	if name == "" || name == "." || name == "/" || name == ".." {
		name = "upload"
	}

	return name
}
